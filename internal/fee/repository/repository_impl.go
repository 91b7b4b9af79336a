package repository

import (
	"context"
	"errors"
	"time"

	feedomain "github.com/openunited/platform/internal/fee/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) feedomain.Repository {
	return &repository{db: db}
}

func (r *repository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *repository) GetActiveConfiguration(ctx context.Context, tx *gorm.DB, asOf time.Time) (*feedomain.PlatformFeeConfiguration, error) {
	var cfg feedomain.PlatformFeeConfiguration
	err := r.conn(tx).WithContext(ctx).
		Where("applies_from <= ?", asOf.UTC()).
		Order("applies_from DESC").
		First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *repository) Create(ctx context.Context, cfg *feedomain.PlatformFeeConfiguration) error {
	return r.db.WithContext(ctx).Create(cfg).Error
}

func (r *repository) List(ctx context.Context) ([]feedomain.PlatformFeeConfiguration, error) {
	var items []feedomain.PlatformFeeConfiguration
	if err := r.db.WithContext(ctx).Order("applies_from DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
