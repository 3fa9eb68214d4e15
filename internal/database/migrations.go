package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds indexes that AutoMigrate cannot express. The open-timer
// index is load-bearing: it makes "start timer" an atomic check-then-insert,
// so two concurrent starts for the same principal cannot both succeed.
func AddIndexes(db *gorm.DB) error {
	indexes := []string{
		// At most one open timer per principal.
		"CREATE UNIQUE INDEX IF NOT EXISTS uniq_open_timer_per_principal ON timers (principal_id) WHERE stopped_at IS NULL",

		// Tenant-filtering paths fire on every list query.
		"CREATE INDEX IF NOT EXISTS idx_projects_tenant_owner ON projects (tenant_id, owner_id)",
		"CREATE INDEX IF NOT EXISTS idx_tasks_project_position ON tasks (project_id, position)",
		"CREATE INDEX IF NOT EXISTS idx_invites_tenant_email ON invites (tenant_id, email)",
		"CREATE INDEX IF NOT EXISTS idx_task_dependencies_to_task ON task_dependencies (to_task_id)",
	}

	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
