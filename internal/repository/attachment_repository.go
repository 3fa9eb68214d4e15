package repository

import (
	"github.com/taskflowhq/taskflow-api/internal/models"
	"gorm.io/gorm"
)

// GormAttachmentRepository is a GORM implementation of AttachmentRepository
type GormAttachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository creates a new AttachmentRepository
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &GormAttachmentRepository{db: db}
}

func (r *GormAttachmentRepository) Create(a *models.Attachment) error {
	return r.db.Create(a).Error
}

func (r *GormAttachmentRepository) FindByID(id uint64) (*models.Attachment, error) {
	var a models.Attachment
	err := withReadRetry(func() error {
		return r.db.First(&a, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *GormAttachmentRepository) ListByTask(taskID uint64) ([]models.Attachment, error) {
	var attachments []models.Attachment
	if err := r.db.Where("task_id = ?", taskID).
		Order("created_at ASC").Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}

func (r *GormAttachmentRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Attachment{}, id).Error
}
