package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// CheckoutResult carries the orders minted from one cart. Either side may
// be nil when the cart holds no funding of that kind.
type CheckoutResult struct {
	SalesOrder *SalesOrder
	PointOrder *PointOrder
}

// Service owns the settlement state machine. The boolean-returning methods
// report business outcomes: (false, nil) means the transition did not apply,
// either because the order already left the required state or because funds
// did not cover the movement. Errors are reserved for infrastructure faults.
type Service interface {
	// Checkout freezes an open cart and mints the pending orders from its
	// current totals.
	Checkout(ctx context.Context, cartID snowflake.ID) (*CheckoutResult, error)

	GetSalesOrder(ctx context.Context, id snowflake.ID) (*SalesOrder, error)
	GetPointOrder(ctx context.Context, id snowflake.ID) (*PointOrder, error)

	// ProcessSalesOrder drives a pending order through payment, work item
	// activation and cart completion in one transaction. Any failure inside
	// that transaction rolls everything back and parks the order as Failed.
	ProcessSalesOrder(ctx context.Context, id snowflake.ID) (bool, error)

	// RefundSalesOrder reverses a completed order: refunds the charge and
	// deactivates the purchased work items.
	RefundSalesOrder(ctx context.Context, id snowflake.ID) (bool, error)

	// CompletePointOrder moves the order's points from the organisation to
	// the product account. Insufficient balance leaves the order Pending.
	CompletePointOrder(ctx context.Context, id snowflake.ID) (bool, error)

	// RefundPointOrder claws the transferred points back out of the product.
	RefundPointOrder(ctx context.Context, id snowflake.ID) (bool, error)
}
