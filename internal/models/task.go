package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusTodo TaskStatus = "TODO"
	TaskStatusDone TaskStatus = "DONE"
)

// Task belongs to a project. TenantID is denormalized from the parent project
// at creation time and is never supplied by the caller directly.
//
// StartDate and DueDate are both optional; the scheduler only treats a task as
// dated when both are set. Position is the explicit vertical ordering key used
// by the auto-dependency chain rebuild.
type Task struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Status      TaskStatus     `gorm:"type:varchar(20);not null;default:'TODO'" json:"status"`
	StartDate   *time.Time     `json:"start_date"`
	DueDate     *time.Time     `json:"due_date"`
	Position    int            `gorm:"not null;default:0" json:"position"`
	ProjectID   uint64         `gorm:"not null;index" json:"project_id"`
	TenantID    *uint64        `gorm:"index" json:"tenant_id"`
	CreatorID   uint64         `gorm:"not null" json:"creator_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Project     Project      `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Creator     Principal    `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Attachments []Attachment `gorm:"foreignKey:TaskID" json:"attachments,omitempty"`
	Comments    []Comment    `gorm:"foreignKey:TaskID" json:"comments,omitempty"`
}

// Dated reports whether both scheduling dates are set.
func (t *Task) Dated() bool {
	return t.StartDate != nil && t.DueDate != nil
}
