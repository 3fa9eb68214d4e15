package models

import "time"

type DependencyKind string

const (
	DependencyFinishToStart  DependencyKind = "FS"
	DependencyFinishToFinish DependencyKind = "FF"
	DependencyStartToStart   DependencyKind = "SS"
	DependencyStartToFinish  DependencyKind = "SF"
)

// ValidDependencyKind reports whether k is one of the four link types.
func ValidDependencyKind(k DependencyKind) bool {
	switch k {
	case DependencyFinishToStart, DependencyFinishToFinish,
		DependencyStartToStart, DependencyStartToFinish:
		return true
	}
	return false
}

// TaskDependency is a directed edge between two tasks of the same project.
// The (from_task_id, to_task_id) pair is unique. Auto marks edges owned by the
// scheduler's chain rebuild; user-created edges have Auto=false and always
// take precedence over auto edges for the same pair.
type TaskDependency struct {
	ID         uint64         `gorm:"primarykey" json:"id"`
	FromTaskID uint64         `gorm:"not null;uniqueIndex:uniq_dependency_pair" json:"from_task_id"`
	ToTaskID   uint64         `gorm:"not null;uniqueIndex:uniq_dependency_pair" json:"to_task_id"`
	Kind       DependencyKind `gorm:"type:varchar(4);not null;default:'FS'" json:"kind"`
	Auto       bool           `gorm:"not null;default:false" json:"auto"`
	ProjectID  uint64         `gorm:"not null;index" json:"project_id"`
	CreatedAt  time.Time      `json:"created_at"`

	// Relations
	FromTask Task `gorm:"foreignKey:FromTaskID" json:"from_task,omitempty"`
	ToTask   Task `gorm:"foreignKey:ToTaskID" json:"to_task,omitempty"`
}
