package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock abstracts wall-clock reads so month-scoped figures can be tested.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// NewSystem returns a clock backed by time.Now in the local zone.
func NewSystem() Clock {
	return systemClock{}
}

var Module = fx.Module("clock",
	fx.Provide(NewSystem),
)
