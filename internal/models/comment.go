package models

import (
	"time"

	"gorm.io/gorm"
)

type Comment struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	Body      string         `gorm:"type:text;not null" json:"body"`
	TaskID    uint64         `gorm:"not null;index" json:"task_id"`
	TenantID  *uint64        `gorm:"index" json:"tenant_id"`
	OwnerID   uint64         `gorm:"not null" json:"owner_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Task  Task      `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	Owner Principal `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}
