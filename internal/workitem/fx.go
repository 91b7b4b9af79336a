package workitem

import (
	"github.com/openunited/platform/internal/workitem/repository"
	"github.com/openunited/platform/internal/workitem/service"
	"go.uber.org/fx"
)

var Module = fx.Module("workitem.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
	fx.Provide(service.NewActivator),
)
