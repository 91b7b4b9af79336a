package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// AuditLog is an append-only record of a state-changing action.
type AuditLog struct {
	ID             snowflake.ID   `gorm:"primaryKey"`
	OrganisationID *snowflake.ID  `gorm:"index"`
	Action         string         `gorm:"type:text;not null;index"`
	TargetType     string         `gorm:"type:text;not null"`
	TargetID       *string        `gorm:"type:text"`
	Metadata       datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (AuditLog) TableName() string { return "audit_logs" }

type ListRequest struct {
	Action     string
	TargetType string
	Limit      int
}

type Service interface {
	AuditLog(ctx context.Context, orgID *snowflake.ID, action, targetType string, targetID *string, metadata map[string]any) error
	List(ctx context.Context, orgID snowflake.ID, req ListRequest) ([]AuditLog, error)
}

var (
	ErrInvalidAction = errors.New("invalid_action")
	ErrInvalidTarget = errors.New("invalid_target")
)
