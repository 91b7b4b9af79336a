package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// PlatformFeeConfiguration is a time-versioned platform fee percentage.
// The active row is the one with the latest AppliesFrom at or before now;
// rows are never edited, only superseded.
type PlatformFeeConfiguration struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	Percentage  int64        `gorm:"not null"`
	AppliesFrom time.Time    `gorm:"not null;index"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (PlatformFeeConfiguration) TableName() string { return "platform_fee_configurations" }

func (c *PlatformFeeConfiguration) Validate() error {
	if c.Percentage < 1 || c.Percentage > 100 {
		return ErrInvalidPercentage
	}
	if c.AppliesFrom.IsZero() {
		return ErrInvalidAppliesFrom
	}
	return nil
}

var (
	ErrInvalidPercentage  = errors.New("invalid_percentage")
	ErrInvalidAppliesFrom = errors.New("invalid_applies_from")
)
