package constants

import "time"

// Context keys
const (
	ContextKeyPrincipalID = "principal_id"
	ContextKeyPrincipal   = "principal"
	ContextKeyDirectory   = "directory_session"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Auth
const (
	MinPasswordLength = 8
)

// Invites
const (
	InviteTTL = 7 * 24 * time.Hour
)

// Scheduling
const (
	// DefaultTaskDurationDays is assigned when auto-scheduling a task that
	// has no due date of its own.
	DefaultTaskDurationDays = 3
)
