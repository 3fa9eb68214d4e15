package repository

import (
	"time"

	"github.com/taskflowhq/taskflow-api/internal/models"
	"gorm.io/gorm"
)

// GormTimerRepository is a GORM implementation of TimerRepository
type GormTimerRepository struct {
	db *gorm.DB
}

// NewTimerRepository creates a new TimerRepository
func NewTimerRepository(db *gorm.DB) TimerRepository {
	return &GormTimerRepository{db: db}
}

// Start inserts an open timer. The partial unique index on
// (principal_id) WHERE stopped_at IS NULL makes this a single atomic
// check-then-insert; when an open timer exists the insert fails with
// gorm.ErrDuplicatedKey, never with a silent second timer.
func (r *GormTimerRepository) Start(t *models.Timer) error {
	return r.db.Create(t).Error
}

// Stop closes the principal's open timer
func (r *GormTimerRepository) Stop(principalID uint64, now time.Time) (*models.Timer, error) {
	var timer models.Timer
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("principal_id = ? AND stopped_at IS NULL", principalID).
			First(&timer).Error; err != nil {
			return err
		}
		timer.StoppedAt = &now
		return tx.Save(&timer).Error
	})
	if err != nil {
		return nil, err
	}
	return &timer, nil
}

// FindOpen returns the principal's open timer
func (r *GormTimerRepository) FindOpen(principalID uint64) (*models.Timer, error) {
	var timer models.Timer
	err := withReadRetry(func() error {
		return r.db.Where("principal_id = ? AND stopped_at IS NULL", principalID).
			First(&timer).Error
	})
	if err != nil {
		return nil, err
	}
	return &timer, nil
}
