package adjustment

import (
	"github.com/openunited/platform/internal/adjustment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("adjustment.service",
	fx.Provide(service.NewService),
)
