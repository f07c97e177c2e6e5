package migration

import (
	"errors"
	"fmt"

	auditdomain "github.com/smallbiznis/billdesk/internal/audit/domain"
	"gorm.io/gorm"
)

// models owns the local tables. Billing data is never stored here; the
// casbin adapter creates its own table.
var models = []any{
	&auditdomain.AuditLog{},
}

// RunMigrations brings the local schema up to date.
func RunMigrations(db *gorm.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
