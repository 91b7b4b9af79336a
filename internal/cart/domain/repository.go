package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	CreateCart(ctx context.Context, tx *gorm.DB, cart *Cart) error
	FindCart(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*Cart, error)
	UpdateCartStatus(ctx context.Context, tx *gorm.DB, id snowflake.ID, status CartStatus) error

	CreateItem(ctx context.Context, tx *gorm.DB, item *CartItem) error
	UpdateItemAmount(ctx context.Context, tx *gorm.DB, itemID snowflake.ID, amountCents int64) error
	DeleteItem(ctx context.Context, tx *gorm.DB, itemID snowflake.ID) error
	FindItem(ctx context.Context, tx *gorm.DB, cartID, itemID snowflake.ID) (*CartItem, error)
	FindItemByKind(ctx context.Context, tx *gorm.DB, cartID snowflake.ID, kind ItemKind) (*CartItem, error)
	ListItems(ctx context.Context, tx *gorm.DB, cartID snowflake.ID) ([]CartItem, error)
}
