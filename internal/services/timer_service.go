package services

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taskflowhq/taskflow-api/internal/apperrors"
	"github.com/taskflowhq/taskflow-api/internal/authz"
	"github.com/taskflowhq/taskflow-api/internal/models"
	"github.com/taskflowhq/taskflow-api/internal/repository"
)

// TimerService tracks time against tasks. A principal runs at most one timer
// at a time; the start path relies on the store's atomic insert rather than a
// read-then-write check, so concurrent starts cannot both win.
type TimerService struct {
	timers   repository.TimerRepository
	tasks    repository.TaskRepository
	projects repository.ProjectRepository
	engine   *authz.Engine
	log      *zap.Logger
	now      func() time.Time
}

// NewTimerService creates a new TimerService.
func NewTimerService(
	timers repository.TimerRepository,
	tasks repository.TaskRepository,
	projects repository.ProjectRepository,
	engine *authz.Engine,
	log *zap.Logger,
) *TimerService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TimerService{
		timers:   timers,
		tasks:    tasks,
		projects: projects,
		engine:   engine,
		log:      log,
		now:      time.Now,
	}
}

// SetClock overrides the time source. Tests only.
func (s *TimerService) SetClock(now func() time.Time) {
	s.now = now
}

// Start opens a timer on a task visible to the principal. Fails with a
// conflict when the principal already has a timer running, no matter which
// task it runs against.
func (s *TimerService) Start(p authz.Principal, taskID uint64) (*models.Timer, error) {
	task, err := s.tasks.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.E(apperrors.KindNotFound, "Task not found")
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	project, err := s.projects.FindByID(task.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to find parent project: %w", err)
	}
	resource := authz.Resource{Kind: authz.KindTask, TenantID: task.TenantID, OwnerID: project.OwnerID}
	if err := s.engine.Authorize(authz.OpRead, p, resource); err != nil {
		return nil, err
	}

	timer := &models.Timer{
		PrincipalID: p.ID,
		TaskID:      task.ID,
		TenantID:    task.TenantID,
		StartedAt:   s.now(),
	}
	if err := s.timers.Start(timer); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.E(apperrors.KindConflict, "A timer is already running")
		}
		return nil, fmt.Errorf("failed to start timer: %w", err)
	}

	return timer, nil
}

// Stop closes the principal's open timer and returns it.
func (s *TimerService) Stop(p authz.Principal) (*models.Timer, error) {
	timer, err := s.timers.Stop(p.ID, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.E(apperrors.KindNotFound, "No timer is running")
		}
		return nil, fmt.Errorf("failed to stop timer: %w", err)
	}
	return timer, nil
}

// Current returns the principal's open timer, if any.
func (s *TimerService) Current(p authz.Principal) (*models.Timer, error) {
	timer, err := s.timers.FindOpen(p.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.E(apperrors.KindNotFound, "No timer is running")
		}
		return nil, fmt.Errorf("failed to find timer: %w", err)
	}
	return timer, nil
}
