package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	orgdomain "github.com/openunited/platform/internal/organization/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) orgdomain.Repository {
	return &repository{db: db}
}

func (r *repository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *repository) Create(ctx context.Context, org *orgdomain.Organisation) error {
	return r.db.WithContext(ctx).Create(org).Error
}

func (r *repository) FindByID(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*orgdomain.Organisation, error) {
	var org orgdomain.Organisation
	err := r.conn(tx).WithContext(ctx).First(&org, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *repository) FindByName(ctx context.Context, name string) (*orgdomain.Organisation, error) {
	var org orgdomain.Organisation
	err := r.db.WithContext(ctx).First(&org, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *repository) FindWallet(ctx context.Context, tx *gorm.DB, orgID snowflake.ID) (*orgdomain.Wallet, error) {
	var wallet orgdomain.Wallet
	err := r.conn(tx).WithContext(ctx).First(&wallet, "organisation_id = ?", orgID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *repository) CreateWallet(ctx context.Context, tx *gorm.DB, wallet *orgdomain.Wallet) error {
	return r.conn(tx).WithContext(ctx).Create(wallet).Error
}

func (r *repository) UpdateWalletBalance(ctx context.Context, tx *gorm.DB, walletID snowflake.ID, balance int64) error {
	return r.conn(tx).WithContext(ctx).
		Model(&orgdomain.Wallet{}).
		Where("id = ?", walletID).
		Update("balance_usd_cents", balance).Error
}

func (r *repository) CreateWalletTransaction(ctx context.Context, tx *gorm.DB, row *orgdomain.WalletTransaction) error {
	return r.conn(tx).WithContext(ctx).Create(row).Error
}
