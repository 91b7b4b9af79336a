package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	CreateSalesOrder(ctx context.Context, tx *gorm.DB, order *SalesOrder) error
	FindSalesOrder(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*SalesOrder, error)
	FindSalesOrderByCart(ctx context.Context, tx *gorm.DB, cartID snowflake.ID) (*SalesOrder, error)
	UpdateSalesOrderStatus(ctx context.Context, tx *gorm.DB, id snowflake.ID, status SalesOrderStatus) error
	ListChildSalesOrders(ctx context.Context, tx *gorm.DB, parentID snowflake.ID) ([]SalesOrder, error)

	// FindInitialSalesOrderByBounty resolves the root order that funded a
	// bounty, skipping adjustment children. Used by the adjustment flow.
	FindInitialSalesOrderByBounty(ctx context.Context, tx *gorm.DB, bountyID snowflake.ID) (*SalesOrder, error)

	CreatePointOrder(ctx context.Context, tx *gorm.DB, order *PointOrder) error
	FindPointOrder(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*PointOrder, error)
	FindPointOrderByCart(ctx context.Context, tx *gorm.DB, cartID snowflake.ID) (*PointOrder, error)
	UpdatePointOrderStatus(ctx context.Context, tx *gorm.DB, id snowflake.ID, status PointOrderStatus) error
}
