package repository

import (
	"github.com/taskflowhq/taskflow-api/internal/database"
	"github.com/taskflowhq/taskflow-api/internal/models"
	"github.com/taskflowhq/taskflow-api/internal/utils"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(t *models.Task) error {
	return r.db.Create(t).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}

	err := withReadRetry(func() error {
		return query.First(&task, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByProject returns a project's tasks ordered by their explicit position.
func (r *GormTaskRepository) ListByProject(projectID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Where("project_id = ?", projectID).
		Order("position ASC, id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{})

	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("position ASC, id ASC")
	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Offset: (filter.Page - 1) * filter.PageSize,
			Limit:  filter.PageSize,
		}))
	}

	if err := listQuery.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(t *models.Task) error {
	return r.db.Save(t).Error
}

// UpdateDates persists a batch of scheduling assignments atomically.
func (r *GormTaskRepository) UpdateDates(assignments []DateAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, a := range assignments {
			err := tx.Model(&models.Task{}).Where("id = ?", a.TaskID).
				Updates(map[string]interface{}{
					"start_date": a.StartDate,
					"due_date":   a.DueDate,
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// SwapPositions exchanges the ordering keys of two tasks atomically.
func (r *GormTaskRepository) SwapPositions(a, b *models.Task) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).Where("id = ?", a.ID).
			Update("position", b.Position).Error; err != nil {
			return err
		}
		return tx.Model(&models.Task{}).Where("id = ?", b.ID).
			Update("position", a.Position).Error
	})
}

// MaxPosition returns the highest position within a project, 0 when empty.
func (r *GormTaskRepository) MaxPosition(projectID uint64) (int, error) {
	var max *int
	err := r.db.Model(&models.Task{}).Where("project_id = ?", projectID).
		Select("MAX(position)").Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// Delete removes a task and its dependents in one transaction.
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("from_task_id = ? OR to_task_id = ?", id, id).
			Delete(&models.TaskDependency{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.Attachment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.Timer{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}
