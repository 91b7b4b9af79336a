package payment

import (
	"github.com/openunited/platform/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.provider",
	fx.Provide(service.NewStubCharger),
)
