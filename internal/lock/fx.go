package lock

import "go.uber.org/fx"

var Module = fx.Module("settlement.lock",
	fx.Provide(NewSettlementLocks),
)
