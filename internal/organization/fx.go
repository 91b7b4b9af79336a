package organization

import (
	"github.com/openunited/platform/internal/organization/repository"
	"github.com/openunited/platform/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
