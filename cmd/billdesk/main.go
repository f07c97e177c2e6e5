package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/billdesk/internal/cache"
	"github.com/smallbiznis/billdesk/internal/clock"
	"github.com/smallbiznis/billdesk/internal/config"
	"github.com/smallbiznis/billdesk/internal/migration"
	"github.com/smallbiznis/billdesk/internal/observability"
	"github.com/smallbiznis/billdesk/internal/server"
	"github.com/smallbiznis/billdesk/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		clock.Module,
		cache.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,

		// server.Module pulls in every domain module and starts the listener.
		server.Module,
	)
	app.Run()
}

// RegisterSnowflake provides the id generator for audit records.
func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
