package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/openunited/platform/internal/pointledger/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) ledgerdomain.Repository {
	return &repository{db: db}
}

func (r *repository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *repository) FindOrgAccount(ctx context.Context, tx *gorm.DB, orgID snowflake.ID) (*ledgerdomain.OrganisationPointAccount, error) {
	var account ledgerdomain.OrganisationPointAccount
	err := r.conn(tx).WithContext(ctx).First(&account, "organisation_id = ?", orgID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) CreateOrgAccount(ctx context.Context, tx *gorm.DB, account *ledgerdomain.OrganisationPointAccount) error {
	return r.conn(tx).WithContext(ctx).Create(account).Error
}

func (r *repository) UpdateOrgBalance(ctx context.Context, tx *gorm.DB, accountID snowflake.ID, balance int64) error {
	return r.conn(tx).WithContext(ctx).
		Model(&ledgerdomain.OrganisationPointAccount{}).
		Where("id = ?", accountID).
		Updates(map[string]any{"balance": balance, "updated_at": time.Now().UTC()}).Error
}

func (r *repository) FindProductAccount(ctx context.Context, tx *gorm.DB, productID snowflake.ID) (*ledgerdomain.ProductPointAccount, error) {
	var account ledgerdomain.ProductPointAccount
	err := r.conn(tx).WithContext(ctx).First(&account, "product_id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) CreateProductAccount(ctx context.Context, tx *gorm.DB, account *ledgerdomain.ProductPointAccount) error {
	return r.conn(tx).WithContext(ctx).Create(account).Error
}

func (r *repository) UpdateProductBalance(ctx context.Context, tx *gorm.DB, accountID snowflake.ID, balance int64) error {
	return r.conn(tx).WithContext(ctx).
		Model(&ledgerdomain.ProductPointAccount{}).
		Where("id = ?", accountID).
		Updates(map[string]any{"balance": balance, "updated_at": time.Now().UTC()}).Error
}

func (r *repository) CreateTransaction(ctx context.Context, tx *gorm.DB, row *ledgerdomain.PointTransaction) error {
	return r.conn(tx).WithContext(ctx).Create(row).Error
}

func (r *repository) ListTransactions(ctx context.Context, filter ledgerdomain.TransactionFilter) ([]ledgerdomain.PointTransaction, error) {
	stmt := r.db.WithContext(ctx).Model(&ledgerdomain.PointTransaction{})

	if filter.OrgAccountID != nil {
		stmt = stmt.Where("org_account_id = ?", *filter.OrgAccountID)
	}
	if filter.ProductAccountID != nil {
		stmt = stmt.Where("product_account_id = ?", *filter.ProductAccountID)
	}
	if filter.Type != "" {
		stmt = stmt.Where("type = ?", filter.Type)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var rows []ledgerdomain.PointTransaction
	if err := stmt.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CreateGrant(ctx context.Context, tx *gorm.DB, grant *ledgerdomain.OrganisationPointGrant) error {
	return r.conn(tx).WithContext(ctx).Create(grant).Error
}
