package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/openunited/platform/internal/audit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
	}
}

func (s *Service) AuditLog(ctx context.Context, orgID *snowflake.ID, action, targetType string, targetID *string, metadata map[string]any) error {
	action = strings.TrimSpace(action)
	if action == "" {
		return auditdomain.ErrInvalidAction
	}
	targetType = strings.TrimSpace(targetType)
	if targetType == "" {
		return auditdomain.ErrInvalidTarget
	}

	row := auditdomain.AuditLog{
		ID:             s.genID.Generate(),
		OrganisationID: orgID,
		Action:         action,
		TargetType:     targetType,
		TargetID:       targetID,
		CreatedAt:      time.Now().UTC(),
	}
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			s.log.Warn("failed to marshal audit metadata", zap.Error(err))
		} else {
			row.Metadata = raw
		}
	}

	return s.db.WithContext(ctx).Create(&row).Error
}

func (s *Service) List(ctx context.Context, orgID snowflake.ID, req auditdomain.ListRequest) ([]auditdomain.AuditLog, error) {
	stmt := s.db.WithContext(ctx).
		Model(&auditdomain.AuditLog{}).
		Where("organisation_id = ?", orgID)

	if req.Action != "" {
		stmt = stmt.Where("action = ?", req.Action)
	}
	if req.TargetType != "" {
		stmt = stmt.Where("target_type = ?", req.TargetType)
	}
	limit := req.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var logs []auditdomain.AuditLog
	if err := stmt.Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
