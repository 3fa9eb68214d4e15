package repository

import (
	"github.com/taskflowhq/taskflow-api/internal/database"
	"github.com/taskflowhq/taskflow-api/internal/models"
	"github.com/taskflowhq/taskflow-api/internal/utils"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(p *models.Project) error {
	return r.db.Create(p).Error
}

// FindByID finds a project by ID with optional preloading
func (r *GormProjectRepository) FindByID(id uint64, preload ...string) (*models.Project, error) {
	var project models.Project
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}

	err := withReadRetry(func() error {
		return query.First(&project, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// List retrieves projects within the given visibility scope. The scope is a
// WHERE clause, never a client-side filter: rows outside it are not fetched.
func (r *GormProjectRepository) List(filter ProjectFilter) ([]models.Project, int64, error) {
	var projects []models.Project

	query := r.db.Model(&models.Project{})

	switch {
	case filter.All:
		// superuser: no scoping
	case filter.TenantID != nil && filter.PersonalOwnerID != nil:
		query = query.Where(
			"tenant_id = ? OR (tenant_id IS NULL AND owner_id = ?)",
			*filter.TenantID, *filter.PersonalOwnerID,
		)
	case filter.TenantID != nil:
		query = query.Where("tenant_id = ?", *filter.TenantID)
	case filter.PersonalOwnerID != nil:
		query = query.Where("tenant_id IS NULL AND owner_id = ?", *filter.PersonalOwnerID)
	default:
		return []models.Project{}, 0, nil
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("created_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Offset: (filter.Page - 1) * filter.PageSize,
			Limit:  filter.PageSize,
		}))
	}

	if err := listQuery.Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

// Update updates a project
func (r *GormProjectRepository) Update(p *models.Project) error {
	return r.db.Save(p).Error
}

// Delete removes a project and its whole subtree in one transaction. Either
// the full cascade applies or none of it does.
func (r *GormProjectRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var taskIDs []uint64
		if err := tx.Model(&models.Task{}).Where("project_id = ?", id).
			Pluck("id", &taskIDs).Error; err != nil {
			return err
		}

		if len(taskIDs) > 0 {
			if err := tx.Where("from_task_id IN ? OR to_task_id IN ?", taskIDs, taskIDs).
				Delete(&models.TaskDependency{}).Error; err != nil {
				return err
			}
			if err := tx.Where("task_id IN ?", taskIDs).
				Delete(&models.Attachment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("task_id IN ?", taskIDs).
				Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("task_id IN ?", taskIDs).
				Delete(&models.Timer{}).Error; err != nil {
				return err
			}
			if err := tx.Where("project_id = ?", id).
				Delete(&models.Task{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&models.Project{}, id).Error
	})
}
