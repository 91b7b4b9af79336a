package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Service interface {
	// ActivePercentage resolves the fee percentage effective at asOf.
	// Zero when no configuration exists. A non-nil tx pins the read to the
	// caller's transaction so charge recomputation sees its own writes.
	ActivePercentage(ctx context.Context, tx *gorm.DB, asOf time.Time) (int64, error)
	Create(ctx context.Context, percentage int64, appliesFrom time.Time) (*PlatformFeeConfiguration, error)
	List(ctx context.Context) ([]PlatformFeeConfiguration, error)
}

// ComputeFee derives the platform fee from a taxable subtotal. Division
// truncates toward zero; stored amounts stay integer cents.
func ComputeFee(subtotalCents, percentage int64) int64 {
	if subtotalCents <= 0 || percentage <= 0 {
		return 0
	}
	return subtotalCents * percentage / 100
}
