package repository

import (
	"github.com/taskflowhq/taskflow-api/internal/models"
	"gorm.io/gorm"
)

// GormPrincipalRepository is a GORM implementation of PrincipalRepository
type GormPrincipalRepository struct {
	db *gorm.DB
}

// NewPrincipalRepository creates a new PrincipalRepository
func NewPrincipalRepository(db *gorm.DB) PrincipalRepository {
	return &GormPrincipalRepository{db: db}
}

// Create creates a new principal
func (r *GormPrincipalRepository) Create(p *models.Principal) error {
	return r.db.Create(p).Error
}

// FindByID finds a principal by ID
func (r *GormPrincipalRepository) FindByID(id uint64) (*models.Principal, error) {
	var p models.Principal
	err := withReadRetry(func() error {
		return r.db.First(&p, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByEmail finds a principal by email
func (r *GormPrincipalRepository) FindByEmail(email string) (*models.Principal, error) {
	var p models.Principal
	err := withReadRetry(func() error {
		return r.db.Where("email = ?", email).First(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Update updates a principal
func (r *GormPrincipalRepository) Update(p *models.Principal) error {
	return r.db.Save(p).Error
}

// ListByTenant lists all principals of a tenant
func (r *GormPrincipalRepository) ListByTenant(tenantID uint64) ([]models.Principal, error) {
	var principals []models.Principal
	if err := r.db.Where("tenant_id = ?", tenantID).Find(&principals).Error; err != nil {
		return nil, err
	}
	return principals, nil
}
