package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// OrganisationPointAccount holds an organisation's point balance. The
// balance is mutated only through the ledger service so every change has a
// matching transaction row.
type OrganisationPointAccount struct {
	ID             snowflake.ID `gorm:"primaryKey"`
	OrganisationID snowflake.ID `gorm:"not null;uniqueIndex"`
	Balance        int64        `gorm:"not null;default:0"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (OrganisationPointAccount) TableName() string { return "organisation_point_accounts" }

// ProductPointAccount holds a product's point balance, funded by transfers
// from organisation accounts at settlement.
type ProductPointAccount struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	ProductID snowflake.ID `gorm:"not null;uniqueIndex"`
	Balance   int64        `gorm:"not null;default:0"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ProductPointAccount) TableName() string { return "product_point_accounts" }

type TransactionType string

const (
	TransactionGrant    TransactionType = "GRANT"
	TransactionUse      TransactionType = "USE"
	TransactionRefund   TransactionType = "REFUND"
	TransactionTransfer TransactionType = "TRANSFER"
)

// PointTransaction is an immutable record of a single account mutation.
// Exactly one of OrgAccountID and ProductAccountID is set.
type PointTransaction struct {
	ID               snowflake.ID    `gorm:"primaryKey"`
	OrgAccountID     *snowflake.ID   `gorm:"index"`
	ProductAccountID *snowflake.ID   `gorm:"index"`
	CartID           *snowflake.ID   `gorm:"index"`
	Amount           int64           `gorm:"not null"`
	Type             TransactionType `gorm:"type:text;not null"`
	Description      string          `gorm:"type:text"`
	CreatedAt        time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (PointTransaction) TableName() string { return "point_transactions" }

// Validate enforces the transaction invariants: a positive amount, a known
// type, and the exactly-one-account rule.
func (t *PointTransaction) Validate() error {
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	switch t.Type {
	case TransactionGrant, TransactionUse, TransactionRefund, TransactionTransfer:
	default:
		return ErrInvalidTransactionType
	}
	hasOrg := t.OrgAccountID != nil && *t.OrgAccountID != 0
	hasProduct := t.ProductAccountID != nil && *t.ProductAccountID != 0
	if hasOrg == hasProduct {
		return ErrAmbiguousAccount
	}
	return nil
}

// OrganisationPointGrant records an administrative grant of points to an
// organisation, with who granted them and why.
type OrganisationPointGrant struct {
	ID             snowflake.ID `gorm:"primaryKey"`
	OrganisationID snowflake.ID `gorm:"not null;index"`
	Amount         int64        `gorm:"not null"`
	GrantedByID    snowflake.ID `gorm:"not null"`
	Rationale      string       `gorm:"type:text"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (OrganisationPointGrant) TableName() string { return "organisation_point_grants" }
