package models

import (
	"time"

	"gorm.io/gorm"
)

type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusExpired  InviteStatus = "expired"
	InviteStatusRevoked  InviteStatus = "revoked"
)

// Invite is a one-time token granting a role within a tenant to whoever
// redeems it with a matching email. Only "pending AND not past expiry" rows
// are ever considered redeemable; that condition lives in the queries, not in
// a uniqueness constraint.
type Invite struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	Token     string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	Email     string         `gorm:"type:varchar(255);not null" json:"email"`
	Role      Role           `gorm:"type:varchar(20);not null" json:"role"`
	TenantID  uint64         `gorm:"not null;index" json:"tenant_id"`
	Status    InviteStatus   `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ExpiresAt time.Time      `gorm:"not null" json:"expires_at"`
	InviterID uint64         `gorm:"not null" json:"inviter_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Tenant  Tenant    `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	Inviter Principal `gorm:"foreignKey:InviterID" json:"inviter,omitempty"`
}

// Redeemable reports whether the invite can still be accepted at now.
func (i *Invite) Redeemable(now time.Time) bool {
	return i.Status == InviteStatusPending && i.ExpiresAt.After(now)
}
