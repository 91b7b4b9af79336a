package cart

import (
	"github.com/openunited/platform/internal/cart/repository"
	"github.com/openunited/platform/internal/cart/service"
	"go.uber.org/fx"
)

var Module = fx.Module("cart.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
