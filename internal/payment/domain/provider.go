package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Charger is the outbound payment port. Settlement treats any returned
// error as a payment failure and demotes the order to Failed.
type Charger interface {
	Charge(ctx context.Context, orgID snowflake.ID, amountCents int64, reference string) error
	Refund(ctx context.Context, orgID snowflake.ID, amountCents int64, reference string) error
}
