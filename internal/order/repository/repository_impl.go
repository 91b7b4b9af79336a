package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	cartdomain "github.com/openunited/platform/internal/cart/domain"
	orderdomain "github.com/openunited/platform/internal/order/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) orderdomain.Repository {
	return &repository{db: db}
}

func (r *repository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *repository) CreateSalesOrder(ctx context.Context, tx *gorm.DB, order *orderdomain.SalesOrder) error {
	return r.conn(tx).WithContext(ctx).Create(order).Error
}

func (r *repository) FindSalesOrder(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*orderdomain.SalesOrder, error) {
	var order orderdomain.SalesOrder
	err := r.conn(tx).WithContext(ctx).First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindSalesOrderByCart(ctx context.Context, tx *gorm.DB, cartID snowflake.ID) (*orderdomain.SalesOrder, error) {
	var order orderdomain.SalesOrder
	err := r.conn(tx).WithContext(ctx).First(&order, "cart_id = ?", cartID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) UpdateSalesOrderStatus(ctx context.Context, tx *gorm.DB, id snowflake.ID, status orderdomain.SalesOrderStatus) error {
	return r.conn(tx).WithContext(ctx).
		Model(&orderdomain.SalesOrder{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()}).Error
}

func (r *repository) ListChildSalesOrders(ctx context.Context, tx *gorm.DB, parentID snowflake.ID) ([]orderdomain.SalesOrder, error) {
	var orders []orderdomain.SalesOrder
	if err := r.conn(tx).WithContext(ctx).
		Where("parent_sales_order_id = ?", parentID).
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) FindInitialSalesOrderByBounty(ctx context.Context, tx *gorm.DB, bountyID snowflake.ID) (*orderdomain.SalesOrder, error) {
	var order orderdomain.SalesOrder
	err := r.conn(tx).WithContext(ctx).
		Joins("JOIN cart_items ON cart_items.cart_id = sales_orders.cart_id").
		Where("cart_items.kind = ? AND cart_items.bounty_id = ?", cartdomain.ItemKindBounty, bountyID).
		Where("sales_orders.parent_sales_order_id IS NULL").
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) CreatePointOrder(ctx context.Context, tx *gorm.DB, order *orderdomain.PointOrder) error {
	return r.conn(tx).WithContext(ctx).Create(order).Error
}

func (r *repository) FindPointOrder(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*orderdomain.PointOrder, error) {
	var order orderdomain.PointOrder
	err := r.conn(tx).WithContext(ctx).First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindPointOrderByCart(ctx context.Context, tx *gorm.DB, cartID snowflake.ID) (*orderdomain.PointOrder, error) {
	var order orderdomain.PointOrder
	err := r.conn(tx).WithContext(ctx).First(&order, "cart_id = ?", cartID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) UpdatePointOrderStatus(ctx context.Context, tx *gorm.DB, id snowflake.ID, status orderdomain.PointOrderStatus) error {
	return r.conn(tx).WithContext(ctx).
		Model(&orderdomain.PointOrder{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()}).Error
}
