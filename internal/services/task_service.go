package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taskflowhq/taskflow-api/internal/apperrors"
	"github.com/taskflowhq/taskflow-api/internal/authz"
	"github.com/taskflowhq/taskflow-api/internal/models"
	"github.com/taskflowhq/taskflow-api/internal/notifier"
	"github.com/taskflowhq/taskflow-api/internal/repository"
)

// TaskService manages tasks and the records hanging off them (comments,
// attachments). A task inherits its tenant from the parent project at
// creation; callers never supply a tenant directly.
type TaskService struct {
	tasks       repository.TaskRepository
	projects    repository.ProjectRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	engine      *authz.Engine
	pub         *notifier.Publisher
	log         *zap.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(
	tasks repository.TaskRepository,
	projects repository.ProjectRepository,
	comments repository.CommentRepository,
	attachments repository.AttachmentRepository,
	engine *authz.Engine,
	pub *notifier.Publisher,
	log *zap.Logger,
) *TaskService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TaskService{
		tasks:       tasks,
		projects:    projects,
		comments:    comments,
		attachments: attachments,
		engine:      engine,
		pub:         pub,
		log:         log,
	}
}

// loadProject fetches the parent project and authorizes op against it. Task
// visibility is the parent project's visibility.
func (s *TaskService) loadProject(p authz.Principal, projectID uint64, op authz.Operation) (*models.Project, error) {
	project, err := s.projects.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.E(apperrors.KindNotFound, "Project not found")
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	resource := authz.Resource{Kind: authz.KindProject, TenantID: project.TenantID, OwnerID: project.OwnerID}
	if err := s.engine.Authorize(op, p, resource); err != nil {
		return nil, err
	}
	return project, nil
}

// load fetches a task and authorizes op against it.
func (s *TaskService) load(p authz.Principal, id uint64, op authz.Operation) (*models.Task, error) {
	task, err := s.tasks.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.E(apperrors.KindNotFound, "Task not found")
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	// Personal-project tasks are visible to the project owner, not just the
	// task creator, so the owner check runs against the parent project.
	project, err := s.projects.FindByID(task.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to find parent project: %w", err)
	}
	resource := authz.Resource{Kind: authz.KindTask, TenantID: task.TenantID, OwnerID: project.OwnerID}
	if err := s.engine.Authorize(op, p, resource); err != nil {
		return nil, err
	}
	return task, nil
}

// CreateTaskInput holds the fields of a new task.
type CreateTaskInput struct {
	ProjectID   uint64
	Title       string
	Description string
	StartDate   *time.Time
	DueDate     *time.Time
}

// Create creates a task at the bottom of the project's ordering.
func (s *TaskService) Create(p authz.Principal, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.E(apperrors.KindValidation, "Task title is required")
	}
	if err := validateDates(input.StartDate, input.DueDate); err != nil {
		return nil, err
	}

	project, err := s.loadProject(p, input.ProjectID, authz.OpUpdate)
	if err != nil {
		return nil, err
	}

	maxPos, err := s.tasks.MaxPosition(project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute task position: %w", err)
	}

	task := &models.Task{
		Title:       title,
		Description: input.Description,
		Status:      models.TaskStatusTodo,
		StartDate:   input.StartDate,
		DueDate:     input.DueDate,
		Position:    maxPos + 1,
		ProjectID:   project.ID,
		TenantID:    project.TenantID,
		CreatorID:   p.ID,
	}
	if err := s.tasks.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.publish(notifier.OpCreate, nil, task)
	return task, nil
}

// Get retrieves a task visible to the principal.
func (s *TaskService) Get(p authz.Principal, id uint64) (*models.Task, error) {
	return s.load(p, id, authz.OpRead)
}

// ListByProject returns a project's tasks in position order, optionally
// narrowed to one status.
func (s *TaskService) ListByProject(p authz.Principal, projectID uint64, status *models.TaskStatus) ([]models.Task, error) {
	if _, err := s.loadProject(p, projectID, authz.OpRead); err != nil {
		return nil, err
	}
	if status != nil {
		if *status != models.TaskStatusTodo && *status != models.TaskStatusDone {
			return nil, apperrors.E(apperrors.KindValidation, "Invalid task status")
		}
		tasks, _, err := s.tasks.List(repository.TaskFilter{ProjectID: &projectID, Status: status})
		if err != nil {
			return nil, fmt.Errorf("failed to list tasks: %w", err)
		}
		return tasks, nil
	}
	tasks, err := s.tasks.ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTaskInput holds the updatable task fields. Nil means unchanged;
// ClearDates wipes both scheduling dates.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	StartDate   *time.Time
	DueDate     *time.Time
	ClearDates  bool
}

// Update modifies a task.
func (s *TaskService) Update(p authz.Principal, id uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.load(p, id, authz.OpUpdate)
	if err != nil {
		return nil, err
	}

	before := *task
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.E(apperrors.KindValidation, "Task title cannot be empty")
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if *input.Status != models.TaskStatusTodo && *input.Status != models.TaskStatusDone {
			return nil, apperrors.E(apperrors.KindValidation, "Invalid task status")
		}
		task.Status = *input.Status
	}
	if input.ClearDates {
		task.StartDate = nil
		task.DueDate = nil
	} else {
		if input.StartDate != nil {
			task.StartDate = input.StartDate
		}
		if input.DueDate != nil {
			task.DueDate = input.DueDate
		}
	}
	if err := validateDates(task.StartDate, task.DueDate); err != nil {
		return nil, err
	}

	if err := s.tasks.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.publish(notifier.OpUpdate, &before, task)
	return task, nil
}

// Delete removes a task together with its comments, attachments, dependency
// edges, and timers in one transaction.
func (s *TaskService) Delete(p authz.Principal, id uint64) error {
	task, err := s.load(p, id, authz.OpDelete)
	if err != nil {
		return err
	}

	if err := s.tasks.Delete(id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.publish(notifier.OpDelete, task, nil)
	return nil
}

// AddComment attaches a comment to a task visible to the principal.
func (s *TaskService) AddComment(p authz.Principal, taskID uint64, body string) (*models.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.E(apperrors.KindValidation, "Comment body is required")
	}

	task, err := s.load(p, taskID, authz.OpRead)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Body:     body,
		TaskID:   task.ID,
		TenantID: task.TenantID,
		OwnerID:  p.ID,
	}
	if err := s.comments.Create(comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}

// ListComments returns the comments of a task visible to the principal.
func (s *TaskService) ListComments(p authz.Principal, taskID uint64) ([]models.Comment, error) {
	if _, err := s.load(p, taskID, authz.OpRead); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// DeleteComment removes a comment.
func (s *TaskService) DeleteComment(p authz.Principal, commentID uint64) error {
	comment, err := s.comments.FindByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.E(apperrors.KindNotFound, "Comment not found")
		}
		return fmt.Errorf("failed to find comment: %w", err)
	}
	resource := authz.Resource{Kind: authz.KindComment, TenantID: comment.TenantID, OwnerID: comment.OwnerID}
	if err := s.engine.Authorize(authz.OpDelete, p, resource); err != nil {
		return err
	}
	if err := s.comments.Delete(commentID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

// AddAttachmentInput holds the metadata of a stored file.
type AddAttachmentInput struct {
	FileName  string
	FilePath  string
	SizeBytes int64
}

// AddAttachment records file metadata against a task. The bytes live in
// object storage; only the reference is tracked here.
func (s *TaskService) AddAttachment(p authz.Principal, taskID uint64, input AddAttachmentInput) (*models.Attachment, error) {
	if strings.TrimSpace(input.FileName) == "" {
		return nil, apperrors.E(apperrors.KindValidation, "File name is required")
	}

	task, err := s.load(p, taskID, authz.OpUpdate)
	if err != nil {
		return nil, err
	}

	attachment := &models.Attachment{
		FileName:  input.FileName,
		FilePath:  input.FilePath,
		SizeBytes: input.SizeBytes,
		TaskID:    task.ID,
		TenantID:  task.TenantID,
		OwnerID:   p.ID,
	}
	if err := s.attachments.Create(attachment); err != nil {
		return nil, fmt.Errorf("failed to create attachment: %w", err)
	}
	return attachment, nil
}

// ListAttachments returns the attachments of a task visible to the principal.
func (s *TaskService) ListAttachments(p authz.Principal, taskID uint64) ([]models.Attachment, error) {
	if _, err := s.load(p, taskID, authz.OpRead); err != nil {
		return nil, err
	}
	attachments, err := s.attachments.ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	return attachments, nil
}

// DeleteAttachment removes attachment metadata.
func (s *TaskService) DeleteAttachment(p authz.Principal, attachmentID uint64) error {
	attachment, err := s.attachments.FindByID(attachmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.E(apperrors.KindNotFound, "Attachment not found")
		}
		return fmt.Errorf("failed to find attachment: %w", err)
	}
	resource := authz.Resource{Kind: authz.KindAttachment, TenantID: attachment.TenantID, OwnerID: attachment.OwnerID}
	if err := s.engine.Authorize(authz.OpDelete, p, resource); err != nil {
		return err
	}
	if err := s.attachments.Delete(attachmentID); err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	return nil
}

func validateDates(start, due *time.Time) error {
	if start != nil && due != nil && due.Before(*start) {
		return apperrors.E(apperrors.KindValidation, "Due date cannot precede start date")
	}
	return nil
}

func (s *TaskService) publish(op notifier.Op, before, after *models.Task) {
	if s.pub == nil {
		return
	}
	ref := before
	if ref == nil {
		ref = after
	}
	e := notifier.Event{Kind: authz.KindTask, Op: op, TenantID: ref.TenantID, OwnerID: ref.CreatorID}
	if before != nil {
		e.Before = before
	}
	if after != nil {
		e.After = after
	}
	s.pub.Publish(e)
}
