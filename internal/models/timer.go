package models

import "time"

// Timer records time a principal spends on a task. At most one open timer
// (StoppedAt IS NULL) may exist per principal; a partial unique index enforces
// the check-then-insert atomically so concurrent starts cannot both succeed.
type Timer struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	PrincipalID uint64     `gorm:"not null;index" json:"principal_id"`
	TaskID      uint64     `gorm:"not null;index" json:"task_id"`
	TenantID    *uint64    `gorm:"index" json:"tenant_id"`
	StartedAt   time.Time  `gorm:"not null" json:"started_at"`
	StoppedAt   *time.Time `json:"stopped_at"`

	// Relations
	Principal Principal `gorm:"foreignKey:PrincipalID" json:"principal,omitempty"`
	Task      Task      `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}

// Open reports whether the timer is still running.
func (t *Timer) Open() bool {
	return t.StoppedAt == nil
}
