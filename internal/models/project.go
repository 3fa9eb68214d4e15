package models

import (
	"time"

	"gorm.io/gorm"
)

// Project is a tenant-scoped container of tasks. A nil TenantID marks a
// personal project visible only to its owner (and superusers).
type Project struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	TenantID    *uint64        `gorm:"index" json:"tenant_id"`
	OwnerID     uint64         `gorm:"not null;index" json:"owner_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Owner  Principal `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Tenant *Tenant   `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	Tasks  []Task    `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
}
