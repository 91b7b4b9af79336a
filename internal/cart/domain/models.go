package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

type CartStatus string

const (
	CartStatusOpen      CartStatus = "Open"
	CartStatusCheckout  CartStatus = "Checkout"
	CartStatusCompleted CartStatus = "Completed"
	CartStatusAbandoned CartStatus = "Abandoned"
)

// Cart collects purchase intents for one organisation buying work on one
// product. Totals are always derived from the items, never stored.
type Cart struct {
	ID             snowflake.ID `gorm:"primaryKey"`
	PublicID       uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex"`
	UserID         snowflake.ID `gorm:"not null;index"`
	OrganisationID snowflake.ID `gorm:"not null;index"`
	ProductID      snowflake.ID `gorm:"not null;index"`
	Status         CartStatus   `gorm:"type:text;not null;default:'Open'"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Cart) TableName() string { return "carts" }

type ItemKind string

const (
	ItemKindBounty             ItemKind = "BOUNTY"
	ItemKindPlatformFee        ItemKind = "PLATFORM_FEE"
	ItemKindSalesTax           ItemKind = "SALES_TAX"
	ItemKindIncreaseAdjustment ItemKind = "INCREASE_ADJUSTMENT"
	ItemKindDecreaseAdjustment ItemKind = "DECREASE_ADJUSTMENT"
)

type FundingType string

const (
	FundingUSD    FundingType = "USD"
	FundingPoints FundingType = "Points"
)

// CartItem is one line of a cart. Bounty items carry the funding for a
// single bounty; fee and tax items are derived and recomputed on every
// content change; adjustment items carry a bid-driven delta.
type CartItem struct {
	ID          snowflake.ID  `gorm:"primaryKey"`
	CartID      snowflake.ID  `gorm:"not null;index"`
	Kind        ItemKind      `gorm:"type:text;not null"`
	BountyID    *snowflake.ID `gorm:"index"`
	BidID       *snowflake.ID `gorm:"index"`
	FundingType FundingType   `gorm:"type:text;not null;default:'USD'"`
	AmountCents int64         `gorm:"not null;default:0"`
	Points      int64         `gorm:"not null;default:0"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CartItem) TableName() string { return "cart_items" }

// Validate enforces per-kind line item invariants.
func (i *CartItem) Validate() error {
	isAdjustment := i.Kind == ItemKindIncreaseAdjustment || i.Kind == ItemKindDecreaseAdjustment

	// Only adjustment items may carry a bid reference, and they must.
	if isAdjustment && i.BidID == nil {
		return ErrMissingBid
	}
	if !isAdjustment && i.BidID != nil {
		return ErrUnexpectedBid
	}

	switch i.Kind {
	case ItemKindBounty:
		if i.BountyID == nil {
			return ErrMissingBounty
		}
		switch i.FundingType {
		case FundingPoints:
			if i.Points <= 0 || i.AmountCents != 0 {
				return ErrFundingMismatch
			}
		case FundingUSD:
			if i.AmountCents <= 0 || i.Points != 0 {
				return ErrFundingMismatch
			}
		default:
			return ErrFundingMismatch
		}
	case ItemKindPlatformFee, ItemKindSalesTax, ItemKindIncreaseAdjustment, ItemKindDecreaseAdjustment:
		if i.AmountCents <= 0 || i.Points != 0 {
			return ErrInvalidAmount
		}
	default:
		return ErrInvalidItemKind
	}
	return nil
}

// TotalUSDCents sums all non-decrease USD amounts and subtracts decreases.
func TotalUSDCents(items []CartItem) int64 {
	var total int64
	for _, item := range items {
		if item.Kind == ItemKindDecreaseAdjustment {
			total -= item.AmountCents
			continue
		}
		total += item.AmountCents
	}
	return total
}

// SubtotalUSDCents sums bounty funding only, the base for fee computation.
func SubtotalUSDCents(items []CartItem) int64 {
	var total int64
	for _, item := range items {
		if item.Kind == ItemKindBounty && item.FundingType == FundingUSD {
			total += item.AmountCents
		}
	}
	return total
}

// TotalPoints sums points-funded bounty items.
func TotalPoints(items []CartItem) int64 {
	var total int64
	for _, item := range items {
		if item.Kind == ItemKindBounty && item.FundingType == FundingPoints {
			total += item.Points
		}
	}
	return total
}
