package billingapi

import "go.uber.org/fx"

var Module = fx.Module("billingapi",
	fx.Provide(New),
)
