package repository

import (
	"errors"
	"time"

	"github.com/taskflowhq/taskflow-api/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrInviteNotRedeemable is returned when the token exists but is no
	// longer pending (already accepted, revoked, or expired).
	ErrInviteNotRedeemable = errors.New("invite repository: invite is not redeemable")
	// ErrInviteEmailMismatch is returned when the redeeming principal's email
	// does not match the invite target.
	ErrInviteEmailMismatch = errors.New("invite repository: email does not match invite")
)

// GormInviteRepository is a GORM implementation of InviteRepository
type GormInviteRepository struct {
	db *gorm.DB
}

// NewInviteRepository creates a new InviteRepository
func NewInviteRepository(db *gorm.DB) InviteRepository {
	return &GormInviteRepository{db: db}
}

// Create creates a new invite
func (r *GormInviteRepository) Create(inv *models.Invite) error {
	return r.db.Create(inv).Error
}

// FindByID finds an invite by ID
func (r *GormInviteRepository) FindByID(id uint64) (*models.Invite, error) {
	var inv models.Invite
	err := withReadRetry(func() error {
		return r.db.First(&inv, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// FindByToken finds an invite by its opaque token
func (r *GormInviteRepository) FindByToken(token string) (*models.Invite, error) {
	var inv models.Invite
	err := withReadRetry(func() error {
		return r.db.Where("token = ?", token).First(&inv).Error
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// ListByTenant lists invites issued under a tenant
func (r *GormInviteRepository) ListByTenant(tenantID uint64) ([]models.Invite, error) {
	var invites []models.Invite
	if err := r.db.Where("tenant_id = ?", tenantID).
		Order("created_at DESC").Find(&invites).Error; err != nil {
		return nil, err
	}
	return invites, nil
}

// Redeem accepts a pending invite and grants its role and tenant to the
// principal atomically. The status flip is a conditional update keyed on
// "status = pending", so a second redemption of an already-accepted token
// changes zero rows and fails instead of double-granting.
func (r *GormInviteRepository) Redeem(token, email string, principalID uint64, now time.Time) (*models.Invite, error) {
	var invite models.Invite

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("token = ?", token).First(&invite).Error; err != nil {
			return err
		}

		if invite.Email != email {
			return ErrInviteEmailMismatch
		}

		res := tx.Model(&models.Invite{}).
			Where("id = ? AND status = ? AND expires_at > ?",
				invite.ID, models.InviteStatusPending, now).
			Update("status", models.InviteStatusAccepted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInviteNotRedeemable
		}
		invite.Status = models.InviteStatusAccepted

		return tx.Model(&models.Principal{}).
			Where("id = ?", principalID).
			Updates(map[string]interface{}{
				"tenant_id": invite.TenantID,
				"role":      invite.Role,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	return &invite, nil
}

// Revoke flips a pending invite to revoked
func (r *GormInviteRepository) Revoke(id uint64) error {
	res := r.db.Model(&models.Invite{}).
		Where("id = ? AND status = ?", id, models.InviteStatusPending).
		Update("status", models.InviteStatusRevoked)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInviteNotRedeemable
	}
	return nil
}

// ExpireOverdue flips every pending invite past its expiry to expired. The
// WHERE condition becomes false for a row as soon as one sweep applies it, so
// overlapping sweeps are harmless.
func (r *GormInviteRepository) ExpireOverdue(now time.Time) (int64, error) {
	res := r.db.Model(&models.Invite{}).
		Where("status = ? AND expires_at <= ?", models.InviteStatusPending, now).
		Update("status", models.InviteStatusExpired)
	return res.RowsAffected, res.Error
}
