package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, userID, orgID, productID snowflake.ID) (*Cart, error)
	Get(ctx context.Context, id snowflake.ID) (*Cart, []CartItem, error)

	// AddBountyItem adds funding for a bounty. The funding type and amount
	// must match the bounty's declared reward exactly; a mismatch is a
	// validation failure, never a silent correction. Fee and tax lines are
	// recomputed afterwards.
	AddBountyItem(ctx context.Context, cartID, bountyID snowflake.ID, fundingType FundingType, amount int64) (*CartItem, error)
	RemoveItem(ctx context.Context, cartID, itemID snowflake.ID) error

	// AddAdjustmentItem attaches a bid-driven adjustment line. Only used by
	// the adjustment flow on child carts.
	AddAdjustmentItem(ctx context.Context, tx *gorm.DB, cartID snowflake.ID, kind ItemKind, bountyID, bidID snowflake.ID, amountCents int64) (*CartItem, error)

	// RecalculateCharges rewrites the fee and tax lines from current cart
	// contents. Idempotent: unchanged inputs produce identical lines.
	RecalculateCharges(ctx context.Context, tx *gorm.DB, cartID snowflake.ID) error

	// BeginCheckout moves an Open cart to Checkout after a final charge
	// recomputation. Settlement calls this inside its own transaction.
	BeginCheckout(ctx context.Context, tx *gorm.DB, cartID snowflake.ID) (*Cart, []CartItem, error)

	MarkCompleted(ctx context.Context, tx *gorm.DB, cartID snowflake.ID) error
	Abandon(ctx context.Context, cartID snowflake.ID) error
}
