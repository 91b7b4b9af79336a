package domain

import "errors"

var (
	ErrNotFound         = errors.New("not_found")
	ErrBidNotPending    = errors.New("bid_not_pending")
	ErrInvalidDelta     = errors.New("invalid_delta")
	ErrParentNotSettled = errors.New("parent_order_not_settled")
)
