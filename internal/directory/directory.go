// Package directory maps a principal identity to its (tenant, role) pair.
// It sits beneath the policy engine: its lookups are not themselves
// policy-checked, which is what breaks the recursion between "who are you"
// and "what may you see".
package directory

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taskflowhq/taskflow-api/internal/apperrors"
	"github.com/taskflowhq/taskflow-api/internal/authz"
	"github.com/taskflowhq/taskflow-api/internal/models"
	"github.com/taskflowhq/taskflow-api/internal/repository"
)

// Entry is a resolved principal context.
type Entry struct {
	TenantID *uint64
	Role     models.Role
}

// Directory resolves principal identities. It holds no per-request state;
// request-scoped memoization lives in Session.
type Directory struct {
	principals repository.PrincipalRepository
	log        *zap.Logger
}

func New(principals repository.PrincipalRepository, log *zap.Logger) *Directory {
	if log == nil {
		log = zap.NewNop()
	}
	return &Directory{principals: principals, log: log}
}

// Resolve produces (tenant, role) for a principal with a single lookup.
func (d *Directory) Resolve(principalID uint64) (Entry, error) {
	p, err := d.principals.FindByID(principalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Entry{}, apperrors.E(apperrors.KindNotFound, "Principal not found")
		}
		return Entry{}, err
	}

	if p.Role != models.RoleSuperuser && p.TenantID == nil {
		// Invariant violation: hard failure, logged, never coerced.
		d.log.Error("principal violates tenant invariant",
			zap.Uint64("principal_id", principalID),
			zap.String("role", string(p.Role)),
		)
		return Entry{}, apperrors.E(apperrors.KindInvalidState, "Principal has no tenant")
	}

	return Entry{TenantID: p.TenantID, Role: p.Role}, nil
}

// NewSession returns a request-scoped memoizing view. Sessions must never be
// shared across requests: a cached role outliving its request risks acting on
// stale privileges.
func (d *Directory) NewSession() *Session {
	return &Session{dir: d, cache: make(map[uint64]Entry)}
}

// Session memoizes resolutions for the lifetime of one request, making every
// decision after the first O(1). Not safe for concurrent use; each request
// owns exactly one.
type Session struct {
	dir   *Directory
	cache map[uint64]Entry
}

// Resolve returns the memoized entry, hitting the store at most once per
// principal per request.
func (s *Session) Resolve(principalID uint64) (Entry, error) {
	if e, ok := s.cache[principalID]; ok {
		return e, nil
	}
	e, err := s.dir.Resolve(principalID)
	if err != nil {
		return Entry{}, err
	}
	s.cache[principalID] = e
	return e, nil
}

// BelongsTo reports whether the principal belongs to the tenant. Superusers
// belong everywhere.
func (s *Session) BelongsTo(principalID, tenantID uint64) (bool, error) {
	e, err := s.Resolve(principalID)
	if err != nil {
		return false, err
	}
	if e.Role == models.RoleSuperuser {
		return true, nil
	}
	return e.TenantID != nil && *e.TenantID == tenantID, nil
}

// PrincipalContext packages a resolved entry as the policy engine's caller
// context.
func (s *Session) PrincipalContext(principalID uint64) (authz.Principal, error) {
	e, err := s.Resolve(principalID)
	if err != nil {
		return authz.Principal{}, err
	}
	return authz.Principal{ID: principalID, TenantID: e.TenantID, Role: e.Role}, nil
}
