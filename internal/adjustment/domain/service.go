package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/openunited/platform/internal/order/domain"
	workitemdomain "github.com/openunited/platform/internal/workitem/domain"
)

// AcceptResult reports the outcome of accepting a bid. AdjustmentOrder is
// nil when the bid amount matched the bounty's declared reward.
type AcceptResult struct {
	Bid             *workitemdomain.Bid
	AdjustmentOrder *orderdomain.SalesOrder
}

// Service corrects already-settled orders when the accepted bid amount
// differs from the originally funded reward. Corrections never mutate the
// parent order; they spawn a child cart and child order linked to it.
type Service interface {
	// AcceptBid accepts a pending bid, freezes the bounty's final reward at
	// the bid amount and, for USD bounties, creates an adjustment when the
	// amounts differ.
	AcceptBid(ctx context.Context, bidID snowflake.ID) (*AcceptResult, error)

	// CreateAdjustment issues a child cart and order correcting the funded
	// amount of a bounty by deltaCents. A positive delta charges the buyer
	// more; a negative delta credits the difference to their wallet.
	CreateAdjustment(ctx context.Context, bountyID, bidID snowflake.ID, deltaCents int64) (*orderdomain.SalesOrder, error)
}
