package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	paymentdomain "github.com/openunited/platform/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log *zap.Logger
}

// stubCharger accepts every charge. Real gateway integration lives behind
// the Charger port; nothing else in the codebase knows the difference.
type stubCharger struct {
	log *zap.Logger
}

func NewStubCharger(p Params) paymentdomain.Charger {
	return &stubCharger{log: p.Log.Named("payment.stub")}
}

func (c *stubCharger) Charge(ctx context.Context, orgID snowflake.ID, amountCents int64, reference string) error {
	_ = ctx
	c.log.Info("stub charge accepted",
		zap.String("org_id", orgID.String()),
		zap.Int64("amount_cents", amountCents),
		zap.String("reference", reference),
	)
	return nil
}

func (c *stubCharger) Refund(ctx context.Context, orgID snowflake.ID, amountCents int64, reference string) error {
	_ = ctx
	c.log.Info("stub refund accepted",
		zap.String("org_id", orgID.String()),
		zap.Int64("amount_cents", amountCents),
		zap.String("reference", reference),
	)
	return nil
}
