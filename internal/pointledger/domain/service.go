package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Service is the only writer of point balances. Every successful mutation
// appends exactly one PointTransaction row per touched account; rows are
// never edited or deleted.
//
// All methods accept an optional transaction handle. When tx is nil the
// service opens its own transaction, so single calls and settlement-embedded
// calls share one code path.
type Service interface {
	EnsureOrgAccount(ctx context.Context, tx *gorm.DB, orgID snowflake.ID) (*OrganisationPointAccount, error)
	EnsureProductAccount(ctx context.Context, tx *gorm.DB, productID snowflake.ID) (*ProductPointAccount, error)

	// AddOrgPoints unconditionally credits the organisation account.
	AddOrgPoints(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, amount int64, txType TransactionType, description string) error
	// AddProductPoints unconditionally credits the product account.
	AddProductPoints(ctx context.Context, tx *gorm.DB, productID snowflake.ID, amount int64, txType TransactionType, description string) error

	// UseOrgPoints debits only when the balance covers the amount. Returns
	// (false, nil) on insufficient funds with no mutation and no row.
	UseOrgPoints(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, amount int64, description string) (bool, error)
	// UseProductPoints mirrors UseOrgPoints for product accounts. Used by
	// refunds to claw settled points back out of a product.
	UseProductPoints(ctx context.Context, tx *gorm.DB, productID snowflake.ID, amount int64, description string) (bool, error)

	// TransferToProduct atomically moves points from an organisation to a
	// product account. On insufficient source balance nothing is written.
	TransferToProduct(ctx context.Context, tx *gorm.DB, orgID, productID snowflake.ID, amount int64, description string) (bool, error)
	// RefundTransfer reverses a prior transfer, appending REFUND rows on
	// both sides.
	RefundTransfer(ctx context.Context, tx *gorm.DB, orgID, productID snowflake.ID, amount int64, description string) (bool, error)

	// Grant records an administrative grant and credits the account with a
	// GRANT row described as "Grant: <rationale>".
	Grant(ctx context.Context, orgID snowflake.ID, amount int64, grantedBy snowflake.ID, rationale string) (*OrganisationPointGrant, error)

	OrgBalance(ctx context.Context, orgID snowflake.ID) (int64, error)
	ProductBalance(ctx context.Context, productID snowflake.ID) (int64, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]PointTransaction, error)
}
