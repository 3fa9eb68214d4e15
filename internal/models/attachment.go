package models

import (
	"time"

	"gorm.io/gorm"
)

// Attachment is file metadata hanging off a task. The bytes themselves live in
// object storage; this module only tracks the reference.
type Attachment struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	FileName  string         `gorm:"type:varchar(255);not null" json:"file_name"`
	FilePath  string         `gorm:"type:varchar(1024);not null" json:"file_path"`
	SizeBytes int64          `gorm:"not null;default:0" json:"size_bytes"`
	TaskID    uint64         `gorm:"not null;index" json:"task_id"`
	TenantID  *uint64        `gorm:"index" json:"tenant_id"`
	OwnerID   uint64         `gorm:"not null" json:"owner_id"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Task Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}
