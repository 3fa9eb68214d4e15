package dto

import (
	"time"

	"github.com/taskflowhq/taskflow-api/internal/models"
)

// TenantDTO is the API view of a tenant.
type TenantDTO struct {
	ID        uint64              `json:"id"`
	Name      string              `json:"name"`
	Status    models.TenantStatus `json:"status"`
	Settings  string              `json:"settings,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

// ToTenantDTO converts a tenant to its API view.
func ToTenantDTO(t models.Tenant) TenantDTO {
	return TenantDTO{
		ID:        t.ID,
		Name:      t.Name,
		Status:    t.Status,
		Settings:  t.Settings,
		CreatedAt: t.CreatedAt,
	}
}

// InviteDTO is the tenant-admin view of an invite. The token is included so
// the admin can hand it to the invitee; the public validation endpoint never
// returns this shape.
type InviteDTO struct {
	ID        uint64              `json:"id"`
	Token     string              `json:"token"`
	Email     string              `json:"email"`
	Role      models.Role         `json:"role"`
	TenantID  uint64              `json:"tenant_id"`
	Status    models.InviteStatus `json:"status"`
	ExpiresAt time.Time           `json:"expires_at"`
	CreatedAt time.Time           `json:"created_at"`
}

// ToInviteDTO converts an invite to its admin view.
func ToInviteDTO(inv models.Invite) InviteDTO {
	return InviteDTO{
		ID:        inv.ID,
		Token:     inv.Token,
		Email:     inv.Email,
		Role:      inv.Role,
		TenantID:  inv.TenantID,
		Status:    inv.Status,
		ExpiresAt: inv.ExpiresAt,
		CreatedAt: inv.CreatedAt,
	}
}

// ToInviteDTOs converts a slice of invites.
func ToInviteDTOs(invites []models.Invite) []InviteDTO {
	out := make([]InviteDTO, len(invites))
	for i, inv := range invites {
		out[i] = ToInviteDTO(inv)
	}
	return out
}
