package order

import (
	"github.com/openunited/platform/internal/order/repository"
	"github.com/openunited/platform/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(
		repository.NewRepository,
		service.NewService,
	),
)
