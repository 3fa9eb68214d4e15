package repository

import (
	"time"

	"github.com/taskflowhq/taskflow-api/internal/models"
)

// PrincipalRepository defines the interface for principal data access.
// It is the single authoritative source for (tenant, role) resolution; the
// tenant directory reads through it beneath the policy engine.
type PrincipalRepository interface {
	// Create creates a new principal
	Create(p *models.Principal) error

	// FindByID finds a principal by ID
	FindByID(id uint64) (*models.Principal, error)

	// FindByEmail finds a principal by email
	FindByEmail(email string) (*models.Principal, error)

	// Update updates a principal
	Update(p *models.Principal) error

	// ListByTenant lists all principals of a tenant
	ListByTenant(tenantID uint64) ([]models.Principal, error)
}

// TenantRepository defines the interface for tenant data access
type TenantRepository interface {
	// Create creates a new tenant
	Create(t *models.Tenant) error

	// CreateWithAdmin creates a tenant and its first admin principal within a
	// single transaction.
	CreateWithAdmin(t *models.Tenant, p *models.Principal) error

	// FindByID finds a tenant by ID
	FindByID(id uint64) (*models.Tenant, error)

	// Update updates a tenant
	Update(t *models.Tenant) error

	// HardDelete removes a tenant and every row scoped to it in a single
	// transaction. Reserved for superusers; everyone else archives.
	HardDelete(id uint64) error
}

// InviteRepository defines the interface for invite data access
type InviteRepository interface {
	// Create creates a new invite
	Create(inv *models.Invite) error

	// FindByID finds an invite by ID
	FindByID(id uint64) (*models.Invite, error)

	// FindByToken finds an invite by its opaque token
	FindByToken(token string) (*models.Invite, error)

	// ListByTenant lists invites issued under a tenant
	ListByTenant(tenantID uint64) ([]models.Invite, error)

	// Redeem atomically flips a pending, unexpired invite to accepted and
	// grants its role and tenant to the principal. A second redemption of the
	// same token fails.
	Redeem(token, email string, principalID uint64, now time.Time) (*models.Invite, error)

	// Revoke flips a pending invite to revoked
	Revoke(id uint64) error

	// ExpireOverdue flips every "pending AND past expiry" invite to expired
	// and returns how many rows changed. Safe to run concurrently with itself.
	ExpireOverdue(now time.Time) (int64, error)
}

// ProjectFilter holds the visibility scope for listing projects. The scope is
// pushed into the WHERE clause so rows of other tenants are never fetched.
type ProjectFilter struct {
	// All disables scoping (superuser only).
	All bool
	// TenantID selects rows of one tenant.
	TenantID *uint64
	// PersonalOwnerID additionally selects tenant-less rows of this owner.
	PersonalOwnerID *uint64
	Page            int
	PageSize        int
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(p *models.Project) error

	// FindByID finds a project by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Project, error)

	// List retrieves projects within the given visibility scope
	List(filter ProjectFilter) ([]models.Project, int64, error)

	// Update updates a project
	Update(p *models.Project) error

	// Delete removes a project and its whole subtree (tasks, dependencies,
	// attachments, comments, timers) in one transaction.
	Delete(id uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	ProjectID *uint64
	Status    *models.TaskStatus
	Page      int
	PageSize  int
}

// DateAssignment carries a scheduling decision to be persisted.
type DateAssignment struct {
	TaskID    uint64
	StartDate time.Time
	DueDate   time.Time
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(t *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// ListByProject returns a project's tasks ordered by position
	ListByProject(projectID uint64) ([]models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(t *models.Task) error

	// UpdateDates persists a batch of scheduling assignments atomically
	UpdateDates(assignments []DateAssignment) error

	// SwapPositions exchanges the ordering keys of two tasks atomically
	SwapPositions(a, b *models.Task) error

	// MaxPosition returns the highest position within a project
	MaxPosition(projectID uint64) (int, error)

	// Delete removes a task and its dependents (attachments, comments,
	// dependency edges, timers) in one transaction
	Delete(id uint64) error
}

// DependencyRepository defines the interface for dependency-edge data access
type DependencyRepository interface {
	// Create inserts a user-authored edge; a duplicate (from,to) pair fails
	Create(d *models.TaskDependency) error

	// ReplaceAuto swaps a project's scheduler-owned edges for the given set
	// in one transaction, silently skipping pairs already connected by a
	// manual edge
	ReplaceAuto(projectID uint64, edges []models.TaskDependency) error

	// Delete removes the edge between two tasks
	Delete(fromTaskID, toTaskID uint64) error

	// ListByProject returns every edge of a project
	ListByProject(projectID uint64) ([]models.TaskDependency, error)
}

// TimerRepository defines the interface for timer data access
type TimerRepository interface {
	// Start inserts an open timer; fails when the principal already has one.
	// The check and the insert are a single atomic operation.
	Start(t *models.Timer) error

	// Stop closes the principal's open timer
	Stop(principalID uint64, now time.Time) (*models.Timer, error)

	// FindOpen returns the principal's open timer
	FindOpen(principalID uint64) (*models.Timer, error)
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(c *models.Comment) error
	FindByID(id uint64) (*models.Comment, error)
	ListByTask(taskID uint64) ([]models.Comment, error)
	Update(c *models.Comment) error
	Delete(id uint64) error
}

// AttachmentRepository defines the interface for attachment data access
type AttachmentRepository interface {
	Create(a *models.Attachment) error
	FindByID(id uint64) (*models.Attachment, error)
	ListByTask(taskID uint64) ([]models.Attachment, error)
	Delete(id uint64) error
}
