package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	cartdomain "github.com/openunited/platform/internal/cart/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) cartdomain.Repository {
	return &repository{db: db}
}

func (r *repository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *repository) CreateCart(ctx context.Context, tx *gorm.DB, cart *cartdomain.Cart) error {
	return r.conn(tx).WithContext(ctx).Create(cart).Error
}

func (r *repository) FindCart(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*cartdomain.Cart, error) {
	var cart cartdomain.Cart
	err := r.conn(tx).WithContext(ctx).First(&cart, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *repository) UpdateCartStatus(ctx context.Context, tx *gorm.DB, id snowflake.ID, status cartdomain.CartStatus) error {
	return r.conn(tx).WithContext(ctx).
		Model(&cartdomain.Cart{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()}).Error
}

func (r *repository) CreateItem(ctx context.Context, tx *gorm.DB, item *cartdomain.CartItem) error {
	return r.conn(tx).WithContext(ctx).Create(item).Error
}

func (r *repository) UpdateItemAmount(ctx context.Context, tx *gorm.DB, itemID snowflake.ID, amountCents int64) error {
	return r.conn(tx).WithContext(ctx).
		Model(&cartdomain.CartItem{}).
		Where("id = ?", itemID).
		Updates(map[string]any{"amount_cents": amountCents, "updated_at": time.Now().UTC()}).Error
}

func (r *repository) DeleteItem(ctx context.Context, tx *gorm.DB, itemID snowflake.ID) error {
	return r.conn(tx).WithContext(ctx).Delete(&cartdomain.CartItem{}, "id = ?", itemID).Error
}

func (r *repository) FindItem(ctx context.Context, tx *gorm.DB, cartID, itemID snowflake.ID) (*cartdomain.CartItem, error) {
	var item cartdomain.CartItem
	err := r.conn(tx).WithContext(ctx).First(&item, "id = ? AND cart_id = ?", itemID, cartID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindItemByKind(ctx context.Context, tx *gorm.DB, cartID snowflake.ID, kind cartdomain.ItemKind) (*cartdomain.CartItem, error) {
	var item cartdomain.CartItem
	err := r.conn(tx).WithContext(ctx).First(&item, "cart_id = ? AND kind = ?", cartID, kind).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) ListItems(ctx context.Context, tx *gorm.DB, cartID snowflake.ID) ([]cartdomain.CartItem, error) {
	var items []cartdomain.CartItem
	if err := r.conn(tx).WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
