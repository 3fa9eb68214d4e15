// Package authz is the authorization policy engine: an explicit, unit-testable
// reimplementation of what row-level security policies would otherwise do
// inside the database. The resource store consults it before every read and
// write.
package authz

import (
	"go.uber.org/zap"

	"github.com/taskflowhq/taskflow-api/internal/apperrors"
	"github.com/taskflowhq/taskflow-api/internal/models"
)

// Principal is the resolved caller context: computed once per request and
// reused for every row-level decision, so no decision re-derives it.
type Principal struct {
	ID       uint64
	TenantID *uint64
	Role     models.Role
}

// Kind identifies a resource type for policy purposes.
type Kind string

const (
	KindTenant     Kind = "tenant"
	KindInvite     Kind = "invite"
	KindProject    Kind = "project"
	KindTask       Kind = "task"
	KindAttachment Kind = "attachment"
	KindComment    Kind = "comment"
	KindTimer      Kind = "timer"
	KindDependency Kind = "dependency"
)

// Resource is the minimal row context a decision needs. A nil TenantID marks
// a personal resource visible only to its owner.
type Resource struct {
	Kind     Kind
	TenantID *uint64
	OwnerID  uint64
}

type Operation string

const (
	OpRead   Operation = "read"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// adminGated lists kinds whose writes require at least tenant-admin even when
// the tenant matches: the tenant record itself and membership control.
var adminGated = map[Kind]bool{
	KindTenant: true,
	KindInvite: true,
}

// Engine evaluates allow/deny decisions. It holds no per-request state.
type Engine struct {
	log *zap.Logger
}

func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log}
}

// valid rejects the one invalid principal shape: a non-superuser with no
// tenant. It is treated as "no access", never as an ambiguous error, but it
// is loud in the logs because it violates a data-model invariant.
func (e *Engine) valid(p Principal) bool {
	if p.Role == models.RoleSuperuser || p.TenantID != nil {
		return true
	}
	e.log.Error("principal in invalid state: non-superuser with nil tenant",
		zap.Uint64("principal_id", p.ID),
		zap.String("role", string(p.Role)),
	)
	return false
}

// sameTenant treats nil on either side as never matching.
func sameTenant(a, b *uint64) bool {
	return a != nil && b != nil && *a == *b
}

// CanRead implements: superuser, OR tenant match, OR the personal-resource
// carve-out (nil tenant and the caller owns the row).
func (e *Engine) CanRead(p Principal, r Resource) bool {
	if p.Role == models.RoleSuperuser {
		return true
	}
	if !e.valid(p) {
		return false
	}
	if r.TenantID == nil {
		return r.OwnerID == p.ID
	}
	return sameTenant(p.TenantID, r.TenantID)
}

// CanCreate decides creation of a resource under r.TenantID. Personal
// resources (nil tenant) are always creatable by their creator. Admin-gated
// kinds require at least tenant-admin.
func (e *Engine) CanCreate(p Principal, r Resource) bool {
	if p.Role == models.RoleSuperuser {
		return true
	}
	if !e.valid(p) {
		return false
	}
	if adminGated[r.Kind] && !p.Role.AtLeast(models.RoleAdmin) {
		return false
	}
	if r.TenantID == nil {
		return r.OwnerID == p.ID
	}
	return sameTenant(p.TenantID, r.TenantID)
}

// CanUpdate is CanRead plus the admin gate for kinds like the tenant record.
func (e *Engine) CanUpdate(p Principal, r Resource) bool {
	if !e.CanRead(p, r) {
		return false
	}
	if p.Role == models.RoleSuperuser {
		return true
	}
	if adminGated[r.Kind] {
		return p.Role.AtLeast(models.RoleAdmin)
	}
	return true
}

// CanDelete follows the same predicate as CanUpdate.
func (e *Engine) CanDelete(p Principal, r Resource) bool {
	return e.CanUpdate(p, r)
}

// Authorize returns a Forbidden taxonomy error when the operation is denied.
// Forbidden is surfaced to callers as "not found" so row existence never
// leaks.
func (e *Engine) Authorize(op Operation, p Principal, r Resource) error {
	var allowed bool
	switch op {
	case OpRead:
		allowed = e.CanRead(p, r)
	case OpCreate:
		allowed = e.CanCreate(p, r)
	case OpUpdate:
		allowed = e.CanUpdate(p, r)
	case OpDelete:
		allowed = e.CanDelete(p, r)
	}
	if !allowed {
		return apperrors.E(apperrors.KindForbidden, "Resource not found")
	}
	return nil
}
