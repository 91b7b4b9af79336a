package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindOrgAccount(ctx context.Context, tx *gorm.DB, orgID snowflake.ID) (*OrganisationPointAccount, error)
	CreateOrgAccount(ctx context.Context, tx *gorm.DB, account *OrganisationPointAccount) error
	UpdateOrgBalance(ctx context.Context, tx *gorm.DB, accountID snowflake.ID, balance int64) error

	FindProductAccount(ctx context.Context, tx *gorm.DB, productID snowflake.ID) (*ProductPointAccount, error)
	CreateProductAccount(ctx context.Context, tx *gorm.DB, account *ProductPointAccount) error
	UpdateProductBalance(ctx context.Context, tx *gorm.DB, accountID snowflake.ID, balance int64) error

	CreateTransaction(ctx context.Context, tx *gorm.DB, row *PointTransaction) error
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]PointTransaction, error)

	CreateGrant(ctx context.Context, tx *gorm.DB, grant *OrganisationPointGrant) error
}

type TransactionFilter struct {
	OrgAccountID     *snowflake.ID
	ProductAccountID *snowflake.ID
	Type             TransactionType
	Limit            int
}
