package repository

import (
	"errors"
	"fmt"

	"github.com/taskflowhq/taskflow-api/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrCreateTenant is returned when creating a tenant fails inside the signup transaction.
	ErrCreateTenant = errors.New("tenant repository: create tenant failed")
	// ErrCreateAdmin is returned when creating the first admin fails inside the signup transaction.
	ErrCreateAdmin = errors.New("tenant repository: create admin principal failed")
)

// GormTenantRepository is a GORM implementation of TenantRepository
type GormTenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository creates a new TenantRepository
func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &GormTenantRepository{db: db}
}

// Create creates a new tenant
func (r *GormTenantRepository) Create(t *models.Tenant) error {
	return r.db.Create(t).Error
}

// CreateWithAdmin creates a tenant and its first admin principal atomically.
func (r *GormTenantRepository) CreateWithAdmin(t *models.Tenant, p *models.Principal) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateTenant, err)
		}

		p.TenantID = &t.ID
		p.Role = models.RoleAdmin

		if err := tx.Create(p).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateAdmin, err)
		}

		return nil
	})
}

// FindByID finds a tenant by ID
func (r *GormTenantRepository) FindByID(id uint64) (*models.Tenant, error) {
	var t models.Tenant
	err := withReadRetry(func() error {
		return r.db.First(&t, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Update updates a tenant
func (r *GormTenantRepository) Update(t *models.Tenant) error {
	return r.db.Save(t).Error
}

// HardDelete removes a tenant and every row scoped to it in one transaction.
func (r *GormTenantRepository) HardDelete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var taskIDs []uint64
		if err := tx.Model(&models.Task{}).Where("tenant_id = ?", id).
			Pluck("id", &taskIDs).Error; err != nil {
			return err
		}

		if len(taskIDs) > 0 {
			if err := tx.Where("from_task_id IN ? OR to_task_id IN ?", taskIDs, taskIDs).
				Delete(&models.TaskDependency{}).Error; err != nil {
				return err
			}
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.Timer{}).Error; err != nil {
				return err
			}
		}

		for _, m := range []interface{}{
			&models.Attachment{}, &models.Comment{}, &models.Task{},
			&models.Project{}, &models.Invite{}, &models.Principal{},
		} {
			if err := tx.Where("tenant_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&models.Tenant{}, id).Error
	})
}
