package domain

import "errors"

var (
	ErrInvalidCart     = errors.New("invalid_cart")
	ErrInvalidItemKind = errors.New("invalid_item_kind")
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrMissingBounty   = errors.New("missing_bounty")
	ErrMissingBid      = errors.New("missing_bid")
	ErrUnexpectedBid   = errors.New("unexpected_bid")
	ErrFundingMismatch = errors.New("funding_mismatch")
	ErrCartNotOpen     = errors.New("cart_not_open")
	ErrNotFound        = errors.New("not_found")
)
