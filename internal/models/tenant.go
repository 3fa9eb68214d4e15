package models

import (
	"time"

	"gorm.io/gorm"
)

type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
	TenantStatusArchived  TenantStatus = "archived"
)

type Tenant struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Status    TenantStatus   `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	Settings  string         `gorm:"type:text" json:"settings"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Principals []Principal `gorm:"foreignKey:TenantID" json:"principals,omitempty"`
	Projects   []Project   `gorm:"foreignKey:TenantID" json:"projects,omitempty"`
}
