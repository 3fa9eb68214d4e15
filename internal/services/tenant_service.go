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

// TenantService manages tenant records. Reads are open to members of the
// tenant; writes require at least admin; hard deletion is superuser-only and
// everyone else archives instead.
type TenantService struct {
	tenants    repository.TenantRepository
	principals repository.PrincipalRepository
	engine     *authz.Engine
	pub        *notifier.Publisher
	log        *zap.Logger
}

// NewTenantService creates a new TenantService.
func NewTenantService(
	tenants repository.TenantRepository,
	principals repository.PrincipalRepository,
	engine *authz.Engine,
	pub *notifier.Publisher,
	log *zap.Logger,
) *TenantService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TenantService{
		tenants:    tenants,
		principals: principals,
		engine:     engine,
		pub:        pub,
		log:        log,
	}
}

func tenantResource(t *models.Tenant) authz.Resource {
	id := t.ID
	return authz.Resource{Kind: authz.KindTenant, TenantID: &id}
}

// load fetches a tenant and authorizes op against it. Denials and missing
// rows are indistinguishable to the caller.
func (s *TenantService) load(p authz.Principal, id uint64, op authz.Operation) (*models.Tenant, error) {
	tenant, err := s.tenants.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.E(apperrors.KindNotFound, "Tenant not found")
		}
		return nil, fmt.Errorf("failed to find tenant: %w", err)
	}
	if err := s.engine.Authorize(op, p, tenantResource(tenant)); err != nil {
		return nil, err
	}
	return tenant, nil
}

// Get retrieves a tenant visible to the principal.
func (s *TenantService) Get(p authz.Principal, id uint64) (*models.Tenant, error) {
	return s.load(p, id, authz.OpRead)
}

// UpdateTenantInput holds the updatable tenant fields. Nil means unchanged.
type UpdateTenantInput struct {
	Name     *string
	Settings *string
}

// Update modifies a tenant's name or settings.
func (s *TenantService) Update(p authz.Principal, id uint64, input UpdateTenantInput) (*models.Tenant, error) {
	tenant, err := s.load(p, id, authz.OpUpdate)
	if err != nil {
		return nil, err
	}

	before := *tenant
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.E(apperrors.KindValidation, "Tenant name cannot be empty")
		}
		tenant.Name = name
	}
	if input.Settings != nil {
		tenant.Settings = *input.Settings
	}

	if err := s.tenants.Update(tenant); err != nil {
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}

	s.publish(notifier.OpUpdate, &before, tenant)
	return tenant, nil
}

// Archive flips a tenant to archived. This is the deletion available to
// tenant admins; rows under the tenant stay in place.
func (s *TenantService) Archive(p authz.Principal, id uint64) (*models.Tenant, error) {
	tenant, err := s.load(p, id, authz.OpUpdate)
	if err != nil {
		return nil, err
	}
	if tenant.Status == models.TenantStatusArchived {
		return tenant, nil
	}

	before := *tenant
	tenant.Status = models.TenantStatusArchived
	if err := s.tenants.Update(tenant); err != nil {
		return nil, fmt.Errorf("failed to archive tenant: %w", err)
	}

	s.publish(notifier.OpUpdate, &before, tenant)
	return tenant, nil
}

// HardDelete removes a tenant and every row scoped to it. Superuser only;
// for everyone else the tenant simply does not exist as a delete target.
func (s *TenantService) HardDelete(p authz.Principal, id uint64) error {
	if p.Role != models.RoleSuperuser {
		return apperrors.E(apperrors.KindForbidden, "Resource not found")
	}
	tenant, err := s.load(p, id, authz.OpDelete)
	if err != nil {
		return err
	}

	if err := s.tenants.HardDelete(id); err != nil {
		return fmt.Errorf("failed to delete tenant: %w", err)
	}

	s.log.Info("tenant hard-deleted",
		zap.Uint64("tenant_id", id),
		zap.Uint64("principal_id", p.ID),
	)
	s.publish(notifier.OpDelete, tenant, nil)
	return nil
}

// ListMembers returns the principals of a tenant visible to the caller.
func (s *TenantService) ListMembers(p authz.Principal, id uint64) ([]models.Principal, error) {
	if _, err := s.load(p, id, authz.OpRead); err != nil {
		return nil, err
	}
	members, err := s.principals.ListByTenant(id)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

func (s *TenantService) publish(op notifier.Op, before, after *models.Tenant) {
	if s.pub == nil {
		return
	}
	ref := before
	if ref == nil {
		ref = after
	}
	id := ref.ID
	e := notifier.Event{Kind: authz.KindTenant, Op: op, TenantID: &id}
	if before != nil {
		e.Before = before
	}
	if after != nil {
		e.After = after
	}
	s.pub.Publish(e)
}
