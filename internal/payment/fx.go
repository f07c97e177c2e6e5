package payment

import (
	"github.com/smallbiznis/billdesk/internal/payment/repository"
	"github.com/smallbiznis/billdesk/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
