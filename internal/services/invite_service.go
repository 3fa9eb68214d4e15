package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taskflowhq/taskflow-api/internal/apperrors"
	"github.com/taskflowhq/taskflow-api/internal/authz"
	"github.com/taskflowhq/taskflow-api/internal/constants"
	"github.com/taskflowhq/taskflow-api/internal/models"
	"github.com/taskflowhq/taskflow-api/internal/notifier"
	"github.com/taskflowhq/taskflow-api/internal/repository"
	"github.com/taskflowhq/taskflow-api/internal/utils"
)

// InviteService manages the invite lifecycle: pending on creation, then
// exactly one of accepted, revoked, or expired. Issuing and revoking are
// membership control and therefore admin-gated.
type InviteService struct {
	invites    repository.InviteRepository
	principals repository.PrincipalRepository
	engine     *authz.Engine
	pub        *notifier.Publisher
	log        *zap.Logger
	now        func() time.Time
}

// NewInviteService creates a new InviteService.
func NewInviteService(
	invites repository.InviteRepository,
	principals repository.PrincipalRepository,
	engine *authz.Engine,
	pub *notifier.Publisher,
	log *zap.Logger,
) *InviteService {
	if log == nil {
		log = zap.NewNop()
	}
	return &InviteService{
		invites:    invites,
		principals: principals,
		engine:     engine,
		pub:        pub,
		log:        log,
		now:        time.Now,
	}
}

// SetClock overrides the time source. Tests only.
func (s *InviteService) SetClock(now func() time.Time) {
	s.now = now
}

// CreateInviteInput holds the fields of a new invite.
type CreateInviteInput struct {
	Email string
	Role  models.Role
}

// Create issues a pending invite into the caller's tenant.
func (s *InviteService) Create(p authz.Principal, input CreateInviteInput) (*models.Invite, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		return nil, apperrors.E(apperrors.KindValidation, "Email is required")
	}
	if input.Role != models.RoleAdmin && input.Role != models.RoleMember {
		return nil, apperrors.E(apperrors.KindValidation, "Invite role must be admin or member")
	}
	if p.TenantID == nil {
		// Superusers have no tenant of their own to invite into.
		return nil, apperrors.E(apperrors.KindValidation, "No tenant to invite into")
	}

	resource := authz.Resource{Kind: authz.KindInvite, TenantID: p.TenantID}
	if err := s.engine.Authorize(authz.OpCreate, p, resource); err != nil {
		return nil, err
	}

	invite := &models.Invite{
		Token:     utils.GenerateInviteToken(),
		Email:     email,
		Role:      input.Role,
		TenantID:  *p.TenantID,
		Status:    models.InviteStatusPending,
		ExpiresAt: s.now().Add(constants.InviteTTL),
		InviterID: p.ID,
	}
	if err := s.invites.Create(invite); err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	s.publish(notifier.OpCreate, nil, invite)
	return invite, nil
}

// List returns the invites of the caller's tenant. Issued invites are
// membership control, so listing is admin-gated like the writes.
func (s *InviteService) List(p authz.Principal) ([]models.Invite, error) {
	if p.TenantID == nil {
		return nil, apperrors.E(apperrors.KindValidation, "No tenant to list invites for")
	}
	resource := authz.Resource{Kind: authz.KindInvite, TenantID: p.TenantID}
	if err := s.engine.Authorize(authz.OpUpdate, p, resource); err != nil {
		return nil, err
	}
	invites, err := s.invites.ListByTenant(*p.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	return invites, nil
}

// Revoke flips a pending invite to revoked. Accepted and expired invites are
// past the point of revocation.
func (s *InviteService) Revoke(p authz.Principal, id uint64) error {
	invite, err := s.findVisible(p, id, authz.OpDelete)
	if err != nil {
		return err
	}

	if err := s.invites.Revoke(id); err != nil {
		if errors.Is(err, repository.ErrInviteNotRedeemable) {
			return apperrors.E(apperrors.KindConflict, "Invite is no longer pending")
		}
		return fmt.Errorf("failed to revoke invite: %w", err)
	}

	before := *invite
	invite.Status = models.InviteStatusRevoked
	s.publish(notifier.OpUpdate, &before, invite)
	return nil
}

// Redeem accepts an invite on behalf of the authenticated principal, moving
// them into the invite's tenant with the invite's role. The principal's email
// must match the invite target. Redemption is atomic: the same token cannot
// grant twice.
func (s *InviteService) Redeem(p authz.Principal, token string) (*models.Invite, error) {
	principal, err := s.principals.FindByID(p.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.E(apperrors.KindNotFound, "Principal not found")
		}
		return nil, fmt.Errorf("failed to find principal: %w", err)
	}

	invite, err := s.invites.Redeem(token, principal.Email, p.ID, s.now())
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, apperrors.E(apperrors.KindNotFound, "Invite not found")
		case errors.Is(err, repository.ErrInviteEmailMismatch):
			// Indistinguishable from a missing token; the target email is
			// nobody else's business.
			return nil, apperrors.E(apperrors.KindNotFound, "Invite not found")
		case errors.Is(err, repository.ErrInviteNotRedeemable):
			return nil, apperrors.E(apperrors.KindConflict, "Invite is no longer redeemable")
		default:
			return nil, fmt.Errorf("failed to redeem invite: %w", err)
		}
	}

	s.log.Info("invite redeemed",
		zap.Uint64("invite_id", invite.ID),
		zap.Uint64("principal_id", p.ID),
		zap.Uint64("tenant_id", invite.TenantID),
		zap.String("role", string(invite.Role)),
	)
	s.publish(notifier.OpUpdate, nil, invite)
	return invite, nil
}

// InviteValidation is the narrow public view of an invite. The target email,
// the inviter, and everything else about the tenant stay private.
type InviteValidation struct {
	Valid    bool        `json:"valid"`
	TenantID uint64      `json:"tenant_id,omitempty"`
	Role     models.Role `json:"role,omitempty"`
}

// Validate checks a token without authentication. Unknown tokens and dead
// tokens produce the same answer.
func (s *InviteService) Validate(token string) (*InviteValidation, error) {
	invite, err := s.invites.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &InviteValidation{Valid: false}, nil
		}
		return nil, fmt.Errorf("failed to find invite: %w", err)
	}
	if !invite.Redeemable(s.now()) {
		return &InviteValidation{Valid: false}, nil
	}
	return &InviteValidation{
		Valid:    true,
		TenantID: invite.TenantID,
		Role:     invite.Role,
	}, nil
}

// ExpireOverdue is the sweep entry point: it flips every pending invite past
// its expiry to expired.
func (s *InviteService) ExpireOverdue() (int64, error) {
	n, err := s.invites.ExpireOverdue(s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to expire invites: %w", err)
	}
	if n > 0 {
		s.log.Info("expired overdue invites", zap.Int64("count", n))
	}
	return n, nil
}

// findVisible fetches an invite and authorizes op against it.
func (s *InviteService) findVisible(p authz.Principal, id uint64, op authz.Operation) (*models.Invite, error) {
	invite, err := s.invites.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.E(apperrors.KindNotFound, "Invite not found")
		}
		return nil, fmt.Errorf("failed to find invite: %w", err)
	}

	tenantID := invite.TenantID
	resource := authz.Resource{Kind: authz.KindInvite, TenantID: &tenantID, OwnerID: invite.InviterID}
	if err := s.engine.Authorize(op, p, resource); err != nil {
		return nil, err
	}
	return invite, nil
}

func (s *InviteService) publish(op notifier.Op, before, after *models.Invite) {
	if s.pub == nil {
		return
	}
	ref := before
	if ref == nil {
		ref = after
	}
	tenantID := ref.TenantID
	e := notifier.Event{Kind: authz.KindInvite, Op: op, TenantID: &tenantID, OwnerID: ref.InviterID}
	if before != nil {
		e.Before = before
	}
	if after != nil {
		e.After = after
	}
	s.pub.Publish(e)
}
