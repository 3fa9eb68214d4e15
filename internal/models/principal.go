package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleSuperuser Role = "superuser"
	RoleAdmin     Role = "admin"
	RoleMember    Role = "member"
)

// roleRank orders roles by privilege. Unknown roles rank below member.
var roleRank = map[Role]int{
	RoleMember:    1,
	RoleAdmin:     2,
	RoleSuperuser: 3,
}

// AtLeast reports whether r carries at least the privilege of other.
func (r Role) AtLeast(other Role) bool {
	return roleRank[r] >= roleRank[other]
}

type PrincipalStatus string

const (
	PrincipalStatusActive    PrincipalStatus = "active"
	PrincipalStatusInactive  PrincipalStatus = "inactive"
	PrincipalStatusSuspended PrincipalStatus = "suspended"
)

// Principal is an authenticated identity. TenantID is nil only for superusers;
// a non-superuser with a nil tenant is invalid state and must be denied access.
type Principal struct {
	ID           uint64          `gorm:"primarykey" json:"id"`
	Email        string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string          `gorm:"type:varchar(255);not null" json:"-"`
	Role         Role            `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	TenantID     *uint64         `gorm:"index" json:"tenant_id"`
	Status       PrincipalStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relations
	Tenant *Tenant `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
}
