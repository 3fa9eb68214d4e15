package repository

import (
	"github.com/taskflowhq/taskflow-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDependencyRepository is a GORM implementation of DependencyRepository
type GormDependencyRepository struct {
	db *gorm.DB
}

// NewDependencyRepository creates a new DependencyRepository
func NewDependencyRepository(db *gorm.DB) DependencyRepository {
	return &GormDependencyRepository{db: db}
}

// Create inserts a user-authored edge. A duplicate (from,to) pair surfaces as
// gorm.ErrDuplicatedKey for the service to translate.
func (r *GormDependencyRepository) Create(d *models.TaskDependency) error {
	return r.db.Create(d).Error
}

// ReplaceAuto swaps a project's scheduler-owned edge set for the given one.
// Delete and reinsert run in one transaction, so a failed rebuild leaves the
// previous chain intact instead of half-applied. Pairs already connected by a
// manual edge are skipped via the unique (from,to) index; the manual edge
// wins and the insert is simply not an error.
func (r *GormDependencyRepository) ReplaceAuto(projectID uint64, edges []models.TaskDependency) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ? AND auto = ?", projectID, true).
			Delete(&models.TaskDependency{}).Error; err != nil {
			return err
		}
		if len(edges) == 0 {
			return nil
		}
		return tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "from_task_id"}, {Name: "to_task_id"}},
				DoNothing: true,
			}).
			Create(&edges).Error
	})
}

// Delete removes the edge between two tasks
func (r *GormDependencyRepository) Delete(fromTaskID, toTaskID uint64) error {
	return r.db.Where("from_task_id = ? AND to_task_id = ?", fromTaskID, toTaskID).
		Delete(&models.TaskDependency{}).Error
}

// ListByProject returns every edge of a project
func (r *GormDependencyRepository) ListByProject(projectID uint64) ([]models.TaskDependency, error) {
	var edges []models.TaskDependency
	err := withReadRetry(func() error {
		return r.db.Where("project_id = ?", projectID).Find(&edges).Error
	})
	if err != nil {
		return nil, err
	}
	return edges, nil
}
