package dto

import (
	"time"

	"github.com/taskflowhq/taskflow-api/internal/models"
	"github.com/taskflowhq/taskflow-api/internal/scheduler"
)

// TaskDTO is the API view of a task.
type TaskDTO struct {
	ID          uint64            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status"`
	StartDate   *time.Time        `json:"start_date"`
	DueDate     *time.Time        `json:"due_date"`
	Position    int               `json:"position"`
	ProjectID   uint64            `json:"project_id"`
	CreatorID   uint64            `json:"creator_id"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ToTaskDTO converts a task to its API view.
func ToTaskDTO(t models.Task) TaskDTO {
	return TaskDTO{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		StartDate:   t.StartDate,
		DueDate:     t.DueDate,
		Position:    t.Position,
		ProjectID:   t.ProjectID,
		CreatorID:   t.CreatorID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// ToTaskDTOs converts a slice of tasks.
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	out := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		out[i] = ToTaskDTO(t)
	}
	return out
}

// DependencyDTO is the API view of a dependency edge.
type DependencyDTO struct {
	ID         uint64                `json:"id"`
	FromTaskID uint64                `json:"from_task_id"`
	ToTaskID   uint64                `json:"to_task_id"`
	Kind       models.DependencyKind `json:"kind"`
	Auto       bool                  `json:"auto"`
}

// ToDependencyDTO converts a dependency edge to its API view.
func ToDependencyDTO(d models.TaskDependency) DependencyDTO {
	return DependencyDTO{
		ID:         d.ID,
		FromTaskID: d.FromTaskID,
		ToTaskID:   d.ToTaskID,
		Kind:       d.Kind,
		Auto:       d.Auto,
	}
}

// ToDependencyDTOs converts a slice of dependency edges.
func ToDependencyDTOs(deps []models.TaskDependency) []DependencyDTO {
	out := make([]DependencyDTO, len(deps))
	for i, d := range deps {
		out[i] = ToDependencyDTO(d)
	}
	return out
}

// TaskScheduleDTO is one task's critical-path numbers.
type TaskScheduleDTO struct {
	TaskID         uint64 `json:"task_id"`
	Duration       int    `json:"duration"`
	EarliestStart  int    `json:"earliest_start"`
	EarliestFinish int    `json:"earliest_finish"`
	LatestStart    int    `json:"latest_start"`
	LatestFinish   int    `json:"latest_finish"`
	Slack          int    `json:"slack"`
	Critical       bool   `json:"critical"`
}

// CriticalPathDTO is the project-wide critical-path analysis.
type CriticalPathDTO struct {
	Tasks         []TaskScheduleDTO `json:"tasks"`
	CriticalPath  []uint64          `json:"critical_path"`
	ProjectLength int               `json:"project_length"`
}

// ToCriticalPathDTO converts an analysis result to its API view.
func ToCriticalPathDTO(r *scheduler.CriticalPathResult) CriticalPathDTO {
	tasks := make([]TaskScheduleDTO, len(r.Tasks))
	for i, t := range r.Tasks {
		tasks[i] = TaskScheduleDTO{
			TaskID:         t.TaskID,
			Duration:       t.Duration,
			EarliestStart:  t.EarliestStart,
			EarliestFinish: t.EarliestFinish,
			LatestStart:    t.LatestStart,
			LatestFinish:   t.LatestFinish,
			Slack:          t.Slack,
			Critical:       t.Critical,
		}
	}
	return CriticalPathDTO{
		Tasks:         tasks,
		CriticalPath:  r.CriticalPath,
		ProjectLength: r.ProjectLength,
	}
}

// CommentDTO is the API view of a comment.
type CommentDTO struct {
	ID        uint64    `json:"id"`
	Body      string    `json:"body"`
	TaskID    uint64    `json:"task_id"`
	OwnerID   uint64    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ToCommentDTO converts a comment to its API view.
func ToCommentDTO(c models.Comment) CommentDTO {
	return CommentDTO{
		ID:        c.ID,
		Body:      c.Body,
		TaskID:    c.TaskID,
		OwnerID:   c.OwnerID,
		CreatedAt: c.CreatedAt,
	}
}

// ToCommentDTOs converts a slice of comments.
func ToCommentDTOs(comments []models.Comment) []CommentDTO {
	out := make([]CommentDTO, len(comments))
	for i, c := range comments {
		out[i] = ToCommentDTO(c)
	}
	return out
}

// AttachmentDTO is the API view of attachment metadata.
type AttachmentDTO struct {
	ID        uint64    `json:"id"`
	FileName  string    `json:"file_name"`
	FilePath  string    `json:"file_path"`
	SizeBytes int64     `json:"size_bytes"`
	TaskID    uint64    `json:"task_id"`
	OwnerID   uint64    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ToAttachmentDTO converts attachment metadata to its API view.
func ToAttachmentDTO(a models.Attachment) AttachmentDTO {
	return AttachmentDTO{
		ID:        a.ID,
		FileName:  a.FileName,
		FilePath:  a.FilePath,
		SizeBytes: a.SizeBytes,
		TaskID:    a.TaskID,
		OwnerID:   a.OwnerID,
		CreatedAt: a.CreatedAt,
	}
}

// ToAttachmentDTOs converts a slice of attachment metadata.
func ToAttachmentDTOs(attachments []models.Attachment) []AttachmentDTO {
	out := make([]AttachmentDTO, len(attachments))
	for i, a := range attachments {
		out[i] = ToAttachmentDTO(a)
	}
	return out
}

// TimerDTO is the API view of a timer.
type TimerDTO struct {
	ID        uint64     `json:"id"`
	TaskID    uint64     `json:"task_id"`
	StartedAt time.Time  `json:"started_at"`
	StoppedAt *time.Time `json:"stopped_at"`
}

// ToTimerDTO converts a timer to its API view.
func ToTimerDTO(t models.Timer) TimerDTO {
	return TimerDTO{
		ID:        t.ID,
		TaskID:    t.TaskID,
		StartedAt: t.StartedAt,
		StoppedAt: t.StoppedAt,
	}
}
