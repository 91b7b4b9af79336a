package domain

import "errors"

var (
	ErrInvalidProduct = errors.New("invalid_product")
	ErrInvalidTitle   = errors.New("invalid_title")
	ErrInvalidReward  = errors.New("invalid_reward")
	ErrInvalidBid     = errors.New("invalid_bid")
	ErrBidNotPending  = errors.New("bid_not_pending")
	ErrNotFound       = errors.New("not_found")
)
