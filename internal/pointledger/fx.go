package pointledger

import (
	"github.com/openunited/platform/internal/pointledger/repository"
	"github.com/openunited/platform/internal/pointledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pointledger.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
