package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	workitemdomain "github.com/openunited/platform/internal/workitem/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  workitemdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  workitemdomain.Repository
}

func NewService(p Params) workitemdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("workitem.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) CreateProduct(ctx context.Context, name string) (*workitemdomain.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, workitemdomain.ErrInvalidTitle
	}

	now := time.Now().UTC()
	product := &workitemdomain.Product{
		ID:        s.genID.Generate(),
		Name:      name,
		Slug:      slug.Make(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *Service) CreateChallenge(ctx context.Context, productID snowflake.ID, title string) (*workitemdomain.Challenge, error) {
	if productID == 0 {
		return nil, workitemdomain.ErrInvalidProduct
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, workitemdomain.ErrInvalidTitle
	}

	now := time.Now().UTC()
	challenge := &workitemdomain.Challenge{
		ID:        s.genID.Generate(),
		ProductID: productID,
		Title:     title,
		Status:    workitemdomain.ChallengeStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateChallenge(ctx, challenge); err != nil {
		return nil, err
	}
	return challenge, nil
}

func (s *Service) CreateCompetition(ctx context.Context, productID snowflake.ID, title string) (*workitemdomain.Competition, error) {
	if productID == 0 {
		return nil, workitemdomain.ErrInvalidProduct
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, workitemdomain.ErrInvalidTitle
	}

	now := time.Now().UTC()
	competition := &workitemdomain.Competition{
		ID:        s.genID.Generate(),
		ProductID: productID,
		Title:     title,
		Status:    workitemdomain.CompetitionStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateCompetition(ctx, competition); err != nil {
		return nil, err
	}
	return competition, nil
}

func (s *Service) CreateBounty(ctx context.Context, req workitemdomain.CreateBountyRequest) (*workitemdomain.Bounty, error) {
	if req.ProductID == 0 {
		return nil, workitemdomain.ErrInvalidProduct
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, workitemdomain.ErrInvalidTitle
	}
	if req.RewardType != workitemdomain.RewardTypePoints && req.RewardType != workitemdomain.RewardTypeUSD {
		return nil, workitemdomain.ErrInvalidReward
	}
	if req.RewardAmount <= 0 {
		return nil, workitemdomain.ErrInvalidReward
	}

	now := time.Now().UTC()
	bounty := &workitemdomain.Bounty{
		ID:            s.genID.Generate(),
		ProductID:     req.ProductID,
		ChallengeID:   req.ChallengeID,
		CompetitionID: req.CompetitionID,
		Title:         title,
		Status:        workitemdomain.BountyStatusAvailable,
		RewardType:    req.RewardType,
		RewardAmount:  req.RewardAmount,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.CreateBounty(ctx, bounty); err != nil {
		return nil, err
	}
	return bounty, nil
}

func (s *Service) GetBounty(ctx context.Context, id snowflake.ID) (*workitemdomain.Bounty, error) {
	bounty, err := s.repo.FindBounty(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if bounty == nil {
		return nil, workitemdomain.ErrNotFound
	}
	return bounty, nil
}

func (s *Service) PlaceBid(ctx context.Context, bountyID, personID snowflake.ID, amount int64) (*workitemdomain.Bid, error) {
	if bountyID == 0 || personID == 0 || amount <= 0 {
		return nil, workitemdomain.ErrInvalidBid
	}
	bounty, err := s.repo.FindBounty(ctx, nil, bountyID)
	if err != nil {
		return nil, err
	}
	if bounty == nil {
		return nil, workitemdomain.ErrNotFound
	}

	now := time.Now().UTC()
	bid := &workitemdomain.Bid{
		ID:        s.genID.Generate(),
		BountyID:  bountyID,
		PersonID:  personID,
		Amount:    amount,
		Status:    workitemdomain.BidStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateBid(ctx, bid); err != nil {
		return nil, err
	}
	return bid, nil
}
