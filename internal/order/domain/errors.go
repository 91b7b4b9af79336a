package domain

import "errors"

var (
	ErrInvalidOrder    = errors.New("invalid_order")
	ErrInvalidTotals   = errors.New("invalid_totals")
	ErrEmptyCart       = errors.New("empty_cart")
	ErrNotFound        = errors.New("not_found")
	ErrOrderNotSettled = errors.New("order_not_settled")
)
