package migration

import (
	"testing"

	auditdomain "github.com/smallbiznis/billdesk/internal/audit/domain"
	"github.com/smallbiznis/billdesk/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations(t *testing.T) {
	conn, err := db.NewTest(t.Name())
	require.NoError(t, err)

	require.NoError(t, RunMigrations(conn))
	require.NoError(t, RunMigrations(conn))
	assert.True(t, conn.Migrator().HasTable(&auditdomain.AuditLog{}))
}

func TestRunMigrationsRequiresDB(t *testing.T) {
	assert.Error(t, RunMigrations(nil))
}
