package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// TaxRate is an organisation-specific flat sales-tax rate in basis points.
// When absent, the buyer's country decides: EU members pay the standard
// VAT rate, everyone else pays nothing.
type TaxRate struct {
	ID             snowflake.ID `gorm:"primaryKey"`
	OrganisationID snowflake.ID `gorm:"not null;uniqueIndex"`
	RateBps        int64        `gorm:"not null"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (TaxRate) TableName() string { return "organisation_tax_rates" }

func (t *TaxRate) Validate() error {
	if t.OrganisationID == 0 {
		return ErrInvalidOrganisation
	}
	if t.RateBps < 0 || t.RateBps > 10000 {
		return ErrInvalidRate
	}
	return nil
}

type Repository interface {
	FindByOrganisation(ctx context.Context, tx *gorm.DB, orgID snowflake.ID) (*TaxRate, error)
	Upsert(ctx context.Context, rate *TaxRate) error
}

// Resolver picks the applicable rate for a buyer.
type Resolver interface {
	// ResolveRateBps returns the sales-tax rate in basis points for the
	// organisation and its country. A non-nil tx pins the override lookup
	// to the caller's transaction.
	ResolveRateBps(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, buyerCountry string) (int64, error)
	SetOrganisationRate(ctx context.Context, orgID snowflake.ID, rateBps int64) (*TaxRate, error)
}

var (
	ErrInvalidOrganisation = errors.New("invalid_organisation")
	ErrInvalidRate         = errors.New("invalid_rate")
)
