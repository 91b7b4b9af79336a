package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Organisation is a buyer of bounty work, denominated in USD and/or points.
type Organisation struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Name      string       `gorm:"type:text;not null;uniqueIndex"`
	Country   string       `gorm:"type:varchar(2);not null;default:'US'"`
	VATNumber *string      `gorm:"type:varchar(20)"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Organisation) TableName() string { return "organisations" }

// Wallet holds an organisation's USD credit balance in cents.
// Decrease adjustments settle here rather than re-entering the point ledger.
type Wallet struct {
	ID              snowflake.ID `gorm:"primaryKey"`
	OrganisationID  snowflake.ID `gorm:"not null;uniqueIndex"`
	BalanceUSDCents int64        `gorm:"not null;default:0"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Wallet) TableName() string { return "organisation_wallets" }

type WalletTransactionType string

const (
	WalletTransactionCredit WalletTransactionType = "CREDIT"
	WalletTransactionDebit  WalletTransactionType = "DEBIT"
)

// WalletTransaction is an immutable record of a wallet balance change.
type WalletTransaction struct {
	ID          snowflake.ID          `gorm:"primaryKey"`
	WalletID    snowflake.ID          `gorm:"not null;index"`
	Type        WalletTransactionType `gorm:"type:text;not null"`
	AmountCents int64                 `gorm:"not null"`
	Description string                `gorm:"type:text"`
	CreatedAt   time.Time             `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (WalletTransaction) TableName() string { return "organisation_wallet_transactions" }
