package repository

import (
	"github.com/taskflowhq/taskflow-api/internal/models"
	"gorm.io/gorm"
)

// GormCommentRepository is a GORM implementation of CommentRepository
type GormCommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &GormCommentRepository{db: db}
}

func (r *GormCommentRepository) Create(c *models.Comment) error {
	return r.db.Create(c).Error
}

func (r *GormCommentRepository) FindByID(id uint64) (*models.Comment, error) {
	var c models.Comment
	err := withReadRetry(func() error {
		return r.db.First(&c, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormCommentRepository) ListByTask(taskID uint64) ([]models.Comment, error) {
	var comments []models.Comment
	if err := r.db.Where("task_id = ?", taskID).
		Order("created_at ASC").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *GormCommentRepository) Update(c *models.Comment) error {
	return r.db.Save(c).Error
}

func (r *GormCommentRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Comment{}, id).Error
}
