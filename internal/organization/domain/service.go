package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Organisation, error)
	Get(ctx context.Context, id snowflake.ID) (*Organisation, error)

	// EnsureWallet returns the organisation's wallet, creating it on first use.
	EnsureWallet(ctx context.Context, tx *gorm.DB, orgID snowflake.ID) (*Wallet, error)
	// CreditWallet unconditionally credits the wallet and records a CREDIT row.
	CreditWallet(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, amountCents int64, description string) error
	// DebitWallet debits only when the balance covers the amount. Returns
	// false without mutation on insufficient funds.
	DebitWallet(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, amountCents int64, description string) (bool, error)
}

type CreateRequest struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	VATNumber *string `json:"vat_number,omitempty"`
}
