package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, org *Organisation) error
	FindByID(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*Organisation, error)
	FindByName(ctx context.Context, name string) (*Organisation, error)

	// Wallet lookups accept an optional transaction handle so settlement
	// flows can read and mutate within one transaction boundary.
	FindWallet(ctx context.Context, tx *gorm.DB, orgID snowflake.ID) (*Wallet, error)
	CreateWallet(ctx context.Context, tx *gorm.DB, wallet *Wallet) error
	UpdateWalletBalance(ctx context.Context, tx *gorm.DB, walletID snowflake.ID, balance int64) error
	CreateWalletTransaction(ctx context.Context, tx *gorm.DB, row *WalletTransaction) error
}
