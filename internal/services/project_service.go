package services

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taskflowhq/taskflow-api/internal/apperrors"
	"github.com/taskflowhq/taskflow-api/internal/authz"
	"github.com/taskflowhq/taskflow-api/internal/models"
	"github.com/taskflowhq/taskflow-api/internal/notifier"
	"github.com/taskflowhq/taskflow-api/internal/repository"
)

// ProjectService manages tenant-scoped and personal projects. Every read and
// write passes through the policy engine; list visibility is pushed into the
// query so foreign rows are never fetched at all.
type ProjectService struct {
	projects repository.ProjectRepository
	engine   *authz.Engine
	pub      *notifier.Publisher
	log      *zap.Logger
}

// NewProjectService creates a new ProjectService.
func NewProjectService(
	projects repository.ProjectRepository,
	engine *authz.Engine,
	pub *notifier.Publisher,
	log *zap.Logger,
) *ProjectService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProjectService{
		projects: projects,
		engine:   engine,
		pub:      pub,
		log:      log,
	}
}

func projectResource(pr *models.Project) authz.Resource {
	return authz.Resource{Kind: authz.KindProject, TenantID: pr.TenantID, OwnerID: pr.OwnerID}
}

// load fetches a project and authorizes op against it.
func (s *ProjectService) load(p authz.Principal, id uint64, op authz.Operation) (*models.Project, error) {
	project, err := s.projects.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.E(apperrors.KindNotFound, "Project not found")
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	if err := s.engine.Authorize(op, p, projectResource(project)); err != nil {
		return nil, err
	}
	return project, nil
}

// CreateProjectInput holds the fields of a new project. Personal projects
// belong to no tenant and are visible only to their owner.
type CreateProjectInput struct {
	Name        string
	Description string
	Personal    bool
}

// Create creates a project owned by the caller, scoped to the caller's
// tenant unless Personal is set.
func (s *ProjectService) Create(p authz.Principal, input CreateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.E(apperrors.KindValidation, "Project name is required")
	}

	var tenantID *uint64
	if !input.Personal {
		if p.TenantID == nil {
			return nil, apperrors.E(apperrors.KindValidation, "No tenant to create the project in")
		}
		tenantID = p.TenantID
	}

	resource := authz.Resource{Kind: authz.KindProject, TenantID: tenantID, OwnerID: p.ID}
	if err := s.engine.Authorize(authz.OpCreate, p, resource); err != nil {
		return nil, err
	}

	project := &models.Project{
		Name:        name,
		Description: input.Description,
		TenantID:    tenantID,
		OwnerID:     p.ID,
	}
	if err := s.projects.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.publish(notifier.OpCreate, nil, project)
	return project, nil
}

// Get retrieves a project visible to the principal.
func (s *ProjectService) Get(p authz.Principal, id uint64) (*models.Project, error) {
	return s.load(p, id, authz.OpRead)
}

// List returns the projects visible to the principal: the tenant's projects
// plus the caller's personal ones, or everything for a superuser.
func (s *ProjectService) List(p authz.Principal, page, pageSize int) ([]models.Project, int64, error) {
	filter := repository.ProjectFilter{Page: page, PageSize: pageSize}
	if p.Role == models.RoleSuperuser {
		filter.All = true
	} else {
		ownerID := p.ID
		filter.TenantID = p.TenantID
		filter.PersonalOwnerID = &ownerID
	}

	projects, total, err := s.projects.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, total, nil
}

// UpdateProjectInput holds the updatable project fields. Nil means unchanged.
type UpdateProjectInput struct {
	Name        *string
	Description *string
}

// Update modifies a project's name or description.
func (s *ProjectService) Update(p authz.Principal, id uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.load(p, id, authz.OpUpdate)
	if err != nil {
		return nil, err
	}

	before := *project
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.E(apperrors.KindValidation, "Project name cannot be empty")
		}
		project.Name = name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}

	if err := s.projects.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	s.publish(notifier.OpUpdate, &before, project)
	return project, nil
}

// Delete removes a project and its whole subtree of tasks, dependency edges,
// attachments, comments, and timers in one transaction. Either everything
// goes or nothing does.
func (s *ProjectService) Delete(p authz.Principal, id uint64) error {
	project, err := s.load(p, id, authz.OpDelete)
	if err != nil {
		return err
	}

	if err := s.projects.Delete(id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	s.log.Info("project deleted",
		zap.Uint64("project_id", id),
		zap.Uint64("principal_id", p.ID),
	)
	s.publish(notifier.OpDelete, project, nil)
	return nil
}

func (s *ProjectService) publish(op notifier.Op, before, after *models.Project) {
	if s.pub == nil {
		return
	}
	ref := before
	if ref == nil {
		ref = after
	}
	e := notifier.Event{Kind: authz.KindProject, Op: op, TenantID: ref.TenantID, OwnerID: ref.OwnerID}
	if before != nil {
		e.Before = before
	}
	if after != nil {
		e.After = after
	}
	s.pub.Publish(e)
}
