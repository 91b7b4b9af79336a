package fee

import (
	"github.com/openunited/platform/internal/fee/repository"
	"github.com/openunited/platform/internal/fee/service"
	"go.uber.org/fx"
)

var Module = fx.Module("fee.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
