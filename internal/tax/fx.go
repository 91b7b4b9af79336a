package tax

import (
	"github.com/openunited/platform/internal/tax/repository"
	"github.com/openunited/platform/internal/tax/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tax.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewResolver),
)
