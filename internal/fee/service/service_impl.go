package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	feedomain "github.com/openunited/platform/internal/fee/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  feedomain.Repository
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	repo  feedomain.Repository
}

func NewService(p Params) feedomain.Service {
	return &Service{
		log:   p.Log.Named("fee.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) ActivePercentage(ctx context.Context, tx *gorm.DB, asOf time.Time) (int64, error) {
	cfg, err := s.repo.GetActiveConfiguration(ctx, tx, asOf)
	if err != nil {
		return 0, err
	}
	if cfg == nil {
		return 0, nil
	}
	return cfg.Percentage, nil
}

func (s *Service) Create(ctx context.Context, percentage int64, appliesFrom time.Time) (*feedomain.PlatformFeeConfiguration, error) {
	cfg := &feedomain.PlatformFeeConfiguration{
		ID:          s.genID.Generate(),
		Percentage:  percentage,
		AppliesFrom: appliesFrom.UTC(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, cfg); err != nil {
		return nil, err
	}
	s.log.Info("created platform fee configuration",
		zap.Int64("percentage", percentage),
		zap.Time("applies_from", cfg.AppliesFrom),
	)
	return cfg, nil
}

func (s *Service) List(ctx context.Context) ([]feedomain.PlatformFeeConfiguration, error) {
	return s.repo.List(ctx)
}
