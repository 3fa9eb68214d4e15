// Package scheduler maintains and computes derived scheduling data for a
// project's task dependency graph.
package scheduler

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taskflowhq/taskflow-api/internal/apperrors"
	"github.com/taskflowhq/taskflow-api/internal/authz"
	"github.com/taskflowhq/taskflow-api/internal/models"
	"github.com/taskflowhq/taskflow-api/internal/notifier"
	"github.com/taskflowhq/taskflow-api/internal/repository"
)

// Scheduler is the dependency-graph component. Every operation reads one
// snapshot of tasks+edges, validates fully, and only then writes.
type Scheduler struct {
	projects repository.ProjectRepository
	tasks    repository.TaskRepository
	deps     repository.DependencyRepository
	engine   *authz.Engine
	pub      *notifier.Publisher
	log      *zap.Logger
	now      func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(
	projects repository.ProjectRepository,
	tasks repository.TaskRepository,
	deps repository.DependencyRepository,
	engine *authz.Engine,
	pub *notifier.Publisher,
	log *zap.Logger,
) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		projects: projects,
		tasks:    tasks,
		deps:     deps,
		engine:   engine,
		pub:      pub,
		log:      log,
		now:      time.Now,
	}
}

// SetClock overrides the scheduler's clock (used for testing).
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

// authorizeProject loads the project and checks the operation against it.
// Denials surface as NotFound shapes, never as 500s.
func (s *Scheduler) authorizeProject(p authz.Principal, projectID uint64, op authz.Operation) (*models.Project, error) {
	project, err := s.projects.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.E(apperrors.KindNotFound, "Project not found")
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	res := authz.Resource{Kind: authz.KindProject, TenantID: project.TenantID, OwnerID: project.OwnerID}
	if err := s.engine.Authorize(op, p, res); err != nil {
		return nil, err
	}
	return project, nil
}

// snapshot reads the project's tasks and edges once. All computation in the
// calling operation happens against this view.
func (s *Scheduler) snapshot(projectID uint64) (*Snapshot, error) {
	tasks, err := s.tasks.ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	edges, err := s.deps.ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dependencies: %w", err)
	}
	return NewSnapshot(tasks, edges), nil
}

// AddDependency inserts a user-authored edge after probing for cycles. The
// probe runs before any write: a rejected edge leaves the edge set untouched.
func (s *Scheduler) AddDependency(p authz.Principal, fromTaskID, toTaskID uint64, kind models.DependencyKind) (*models.TaskDependency, error) {
	if fromTaskID == toTaskID {
		return nil, apperrors.E(apperrors.KindValidation, "A task cannot depend on itself")
	}
	if !models.ValidDependencyKind(kind) {
		return nil, apperrors.E(apperrors.KindValidation, "Invalid dependency kind")
	}

	from, err := s.tasks.FindByID(fromTaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.E(apperrors.KindNotFound, "Task not found")
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	to, err := s.tasks.FindByID(toTaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.E(apperrors.KindNotFound, "Task not found")
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if from.ProjectID != to.ProjectID {
		return nil, apperrors.E(apperrors.KindValidation, "Tasks belong to different projects")
	}

	project, err := s.authorizeProject(p, from.ProjectID, authz.OpUpdate)
	if err != nil {
		return nil, err
	}

	snap, err := s.snapshot(from.ProjectID)
	if err != nil {
		return nil, err
	}
	if snap.PathExists(toTaskID, fromTaskID) {
		return nil, apperrors.E(apperrors.KindCycle, "Dependency would create a cycle")
	}

	edge := &models.TaskDependency{
		FromTaskID: fromTaskID,
		ToTaskID:   toTaskID,
		Kind:       kind,
		Auto:       false,
		ProjectID:  from.ProjectID,
	}
	if err := s.deps.Create(edge); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.E(apperrors.KindConflict, "Dependency already exists")
		}
		return nil, fmt.Errorf("failed to create dependency: %w", err)
	}

	s.publish(authz.KindDependency, notifier.OpCreate, project, nil, edge)
	return edge, nil
}

// RemoveDependency removes the edge between two tasks. No cascade.
func (s *Scheduler) RemoveDependency(p authz.Principal, fromTaskID, toTaskID uint64) error {
	from, err := s.tasks.FindByID(fromTaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.E(apperrors.KindNotFound, "Task not found")
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	project, err := s.authorizeProject(p, from.ProjectID, authz.OpUpdate)
	if err != nil {
		return err
	}

	if err := s.deps.Delete(fromTaskID, toTaskID); err != nil {
		return fmt.Errorf("failed to delete dependency: %w", err)
	}

	s.publish(authz.KindDependency, notifier.OpDelete, project,
		&models.TaskDependency{FromTaskID: fromTaskID, ToTaskID: toTaskID, ProjectID: from.ProjectID}, nil)
	return nil
}

// ListDependencies returns every edge of a project visible to the principal.
func (s *Scheduler) ListDependencies(p authz.Principal, projectID uint64) ([]models.TaskDependency, error) {
	if _, err := s.authorizeProject(p, projectID, authz.OpRead); err != nil {
		return nil, err
	}
	edges, err := s.deps.ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dependencies: %w", err)
	}
	return edges, nil
}

// CriticalPath computes the longest-duration chain through the project's
// dated tasks, annotating every dated task with its slack.
func (s *Scheduler) CriticalPath(p authz.Principal, projectID uint64) (*CriticalPathResult, error) {
	if _, err := s.authorizeProject(p, projectID, authz.OpRead); err != nil {
		return nil, err
	}

	snap, err := s.snapshot(projectID)
	if err != nil {
		return nil, err
	}

	result, stuck := snap.CriticalPath()
	if stuck != nil {
		s.log.Warn("dependency graph has a residual cycle",
			zap.Uint64("project_id", projectID),
			zap.Uint64s("stuck_task_ids", stuck),
		)
		return nil, apperrors.E(apperrors.KindCycle, "Dependency graph contains a cycle")
	}
	return result, nil
}

// AutoSchedule fills missing dates via a forward topological pass and
// persists the assignments atomically. Manually dated tasks are untouched.
func (s *Scheduler) AutoSchedule(p authz.Principal, projectID uint64) ([]repository.DateAssignment, error) {
	project, err := s.authorizeProject(p, projectID, authz.OpUpdate)
	if err != nil {
		return nil, err
	}

	snap, err := s.snapshot(projectID)
	if err != nil {
		return nil, err
	}

	assignments, stuck := snap.AutoSchedule(s.now())
	if stuck != nil {
		s.log.Warn("auto-schedule aborted: residual cycle",
			zap.Uint64("project_id", projectID),
			zap.Uint64s("stuck_task_ids", stuck),
		)
		return nil, apperrors.E(apperrors.KindCycle, "Dependency graph contains a cycle")
	}

	if err := s.tasks.UpdateDates(assignments); err != nil {
		return nil, fmt.Errorf("failed to persist schedule: %w", err)
	}

	for _, a := range assignments {
		before := *snap.tasks[a.TaskID]
		s.publish(authz.KindTask, notifier.OpUpdate, project, &before, a)
	}
	return assignments, nil
}

// RebuildAutoDependencies replaces the scheduler-owned edge set with a linear
// finish-to-start chain following the tasks' explicit vertical ordering.
// Pairs already connected by a manual edge are skipped, not overwritten.
// Calling it again without reordering reproduces the same edge set. The old
// chain and the new one swap in a single transaction.
func (s *Scheduler) RebuildAutoDependencies(p authz.Principal, projectID uint64) error {
	project, err := s.authorizeProject(p, projectID, authz.OpUpdate)
	if err != nil {
		return err
	}

	old, err := s.deps.ListByProject(projectID)
	if err != nil {
		return fmt.Errorf("failed to list dependencies: %w", err)
	}

	tasks, err := s.tasks.ListByProject(projectID)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}
	snap := NewSnapshot(tasks, nil)

	edges := make([]models.TaskDependency, 0, len(tasks))
	for _, pair := range snap.ChainPairs() {
		edges = append(edges, models.TaskDependency{
			FromTaskID: pair[0],
			ToTaskID:   pair[1],
			Kind:       models.DependencyFinishToStart,
			Auto:       true,
			ProjectID:  projectID,
		})
	}

	if err := s.deps.ReplaceAuto(projectID, edges); err != nil {
		return fmt.Errorf("failed to rebuild auto dependencies: %w", err)
	}

	s.publish(authz.KindDependency, notifier.OpUpdate, project, old, edges)
	return nil
}

// MoveUp swaps a task's ordering key with its upper neighbor. No-op for the
// first task.
func (s *Scheduler) MoveUp(p authz.Principal, taskID uint64) error {
	return s.move(p, taskID, -1)
}

// MoveDown swaps a task's ordering key with its lower neighbor. No-op for the
// last task.
func (s *Scheduler) MoveDown(p authz.Principal, taskID uint64) error {
	return s.move(p, taskID, 1)
}

func (s *Scheduler) move(p authz.Principal, taskID uint64, direction int) error {
	task, err := s.tasks.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.E(apperrors.KindNotFound, "Task not found")
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	project, err := s.authorizeProject(p, task.ProjectID, authz.OpUpdate)
	if err != nil {
		return err
	}

	siblings, err := s.tasks.ListByProject(task.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	idx := -1
	for i := range siblings {
		if siblings[i].ID == taskID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return apperrors.E(apperrors.KindNotFound, "Task not found")
	}

	swap := idx + direction
	if swap < 0 || swap >= len(siblings) {
		return nil // boundary: nothing to do
	}

	before := siblings[idx]
	if err := s.tasks.SwapPositions(&siblings[idx], &siblings[swap]); err != nil {
		return fmt.Errorf("failed to swap positions: %w", err)
	}

	after := before
	after.Position = siblings[swap].Position
	s.publish(authz.KindTask, notifier.OpUpdate, project, &before, &after)
	return nil
}

func (s *Scheduler) publish(kind authz.Kind, op notifier.Op, project *models.Project, before, after interface{}) {
	if s.pub == nil {
		return
	}
	s.pub.Publish(notifier.Event{
		Kind:     kind,
		Op:       op,
		TenantID: project.TenantID,
		OwnerID:  project.OwnerID,
		Before:   before,
		After:    after,
	})
}
