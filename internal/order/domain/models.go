package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

type SalesOrderStatus string

const (
	SalesOrderStatusPending    SalesOrderStatus = "Pending"
	SalesOrderStatusProcessing SalesOrderStatus = "Processing"
	SalesOrderStatusCompleted  SalesOrderStatus = "Completed"
	SalesOrderStatusFailed     SalesOrderStatus = "Failed"
	SalesOrderStatusRefunded   SalesOrderStatus = "Refunded"
)

// SalesOrder is the settled USD-side record of a checked-out cart. Totals
// are frozen at checkout; the order is never mutated after settlement,
// corrections arrive as child orders.
type SalesOrder struct {
	ID                 snowflake.ID     `gorm:"primaryKey"`
	PublicID           uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex"`
	CartID             snowflake.ID     `gorm:"not null;uniqueIndex"`
	ParentSalesOrderID *snowflake.ID    `gorm:"index"`
	Status             SalesOrderStatus `gorm:"type:text;not null;default:'Pending'"`
	SubtotalCents      int64            `gorm:"not null;default:0"`
	FeeCents           int64            `gorm:"not null;default:0"`
	TaxCents           int64            `gorm:"not null;default:0"`
	TotalCents         int64            `gorm:"not null;default:0"`
	CreatedAt          time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt          time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (SalesOrder) TableName() string { return "sales_orders" }

// Validate enforces the grand-total identity.
func (o *SalesOrder) Validate() error {
	if o.CartID == 0 {
		return ErrInvalidOrder
	}
	if o.SubtotalCents < 0 || o.FeeCents < 0 || o.TaxCents < 0 {
		return ErrInvalidTotals
	}
	if o.TotalCents != o.SubtotalCents+o.FeeCents+o.TaxCents {
		return ErrInvalidTotals
	}
	return nil
}

type PointOrderStatus string

const (
	PointOrderStatusPending   PointOrderStatus = "Pending"
	PointOrderStatusCompleted PointOrderStatus = "Completed"
	PointOrderStatusRefunded  PointOrderStatus = "Refunded"
)

// PointOrder is the settled points-side record of a checked-out cart.
type PointOrder struct {
	ID          snowflake.ID     `gorm:"primaryKey"`
	PublicID    uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex"`
	CartID      snowflake.ID     `gorm:"not null;uniqueIndex"`
	Status      PointOrderStatus `gorm:"type:text;not null;default:'Pending'"`
	TotalPoints int64            `gorm:"not null;default:0"`
	CreatedAt   time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (PointOrder) TableName() string { return "point_orders" }
