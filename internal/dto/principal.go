package dto

import (
	"time"

	"github.com/taskflowhq/taskflow-api/internal/models"
)

// PrincipalDTO is the API view of a principal.
type PrincipalDTO struct {
	ID        uint64      `json:"id"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	TenantID  *uint64     `json:"tenant_id"`
	CreatedAt time.Time   `json:"created_at"`
}

// ToPrincipalDTO converts a principal to its API view.
func ToPrincipalDTO(p models.Principal) PrincipalDTO {
	return PrincipalDTO{
		ID:        p.ID,
		Email:     p.Email,
		Role:      p.Role,
		TenantID:  p.TenantID,
		CreatedAt: p.CreatedAt,
	}
}

// ToPrincipalDTOs converts a slice of principals.
func ToPrincipalDTOs(principals []models.Principal) []PrincipalDTO {
	out := make([]PrincipalDTO, len(principals))
	for i, p := range principals {
		out[i] = ToPrincipalDTO(p)
	}
	return out
}
