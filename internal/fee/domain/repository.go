package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	// GetActiveConfiguration returns the row with the latest AppliesFrom at
	// or before asOf, or nil when no configuration applies yet.
	GetActiveConfiguration(ctx context.Context, tx *gorm.DB, asOf time.Time) (*PlatformFeeConfiguration, error)
	Create(ctx context.Context, cfg *PlatformFeeConfiguration) error
	List(ctx context.Context) ([]PlatformFeeConfiguration, error)
}
