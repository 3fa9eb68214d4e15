package dto

import (
	"time"

	"github.com/taskflowhq/taskflow-api/internal/models"
)

// ProjectDTO is the API view of a project.
type ProjectDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	TenantID    *uint64   `json:"tenant_id"`
	OwnerID     uint64    `json:"owner_id"`
	Personal    bool      `json:"personal"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToProjectDTO converts a project to its API view.
func ToProjectDTO(p models.Project) ProjectDTO {
	return ProjectDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		TenantID:    p.TenantID,
		OwnerID:     p.OwnerID,
		Personal:    p.TenantID == nil,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToProjectDTOs converts a slice of projects.
func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	out := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		out[i] = ToProjectDTO(p)
	}
	return out
}
