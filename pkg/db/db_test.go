package db

import (
	"errors"
	"testing"

	"github.com/smallbiznis/billdesk/internal/config"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDialectSelectsDriver(t *testing.T) {
	cases := map[string]string{
		"postgres": "postgres",
		"mysql":    "mysql",
		"sqlite":   "sqlite",
		"":         "sqlite",
	}
	for dbType, want := range cases {
		d, err := Dialect(Config{Type: dbType, Name: "billdesk"})
		require.NoError(t, err)
		require.Equal(t, want, d.Name())
	}
}

func TestDialectRejectsUnknownType(t *testing.T) {
	_, err := Dialect(Config{Type: "oracle"})
	require.Error(t, err)
}

func TestSQLitePath(t *testing.T) {
	require.Equal(t, "billdesk.db", sqlitePath(""))
	require.Equal(t, "audit.db", sqlitePath("audit"))
	require.Equal(t, "file::memory:", sqlitePath("file::memory:"))
}

func TestConfigFromConvertsSeconds(t *testing.T) {
	cfg := configFrom(config.Config{DBType: " SQLite ", DBConnMaxLifetime: 300})
	require.Equal(t, "sqlite", cfg.Type)
	require.Equal(t, float64(300), cfg.ConnMaxLifetime.Seconds())
}

func TestIsDuplicateKeyErr(t *testing.T) {
	require.True(t, IsDuplicateKeyErr(gorm.ErrDuplicatedKey))
	require.True(t, IsDuplicateKeyErr(errors.New("UNIQUE constraint failed: audit_logs.id")))
	require.False(t, IsDuplicateKeyErr(errors.New("boom")))
	require.False(t, IsDuplicateKeyErr(nil))
}

func TestNewTestOpensMemoryDatabase(t *testing.T) {
	conn, err := NewTest(t.Name())
	require.NoError(t, err)
	require.NoError(t, conn.Exec("CREATE TABLE pings (id INTEGER)").Error)
}
