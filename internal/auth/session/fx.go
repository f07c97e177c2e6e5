package session

import (
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/billdesk/internal/clock"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.session",
	fx.Provide(NewStore),
	fx.Provide(NewManager),
)

// NewStore picks Redis when a client is configured, otherwise process memory.
func NewStore(client *redis.Client, clk clock.Clock) Store {
	if client == nil {
		return NewMemoryStore(clk)
	}
	return NewRedisStore(client, clk)
}
