package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	workitemdomain "github.com/openunited/platform/internal/workitem/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) workitemdomain.Repository {
	return &repository{db: db}
}

func (r *repository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *repository) CreateProduct(ctx context.Context, product *workitemdomain.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repository) FindProduct(ctx context.Context, id snowflake.ID) (*workitemdomain.Product, error) {
	var product workitemdomain.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) CreateChallenge(ctx context.Context, challenge *workitemdomain.Challenge) error {
	return r.db.WithContext(ctx).Create(challenge).Error
}

func (r *repository) FindChallenge(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*workitemdomain.Challenge, error) {
	var challenge workitemdomain.Challenge
	err := r.conn(tx).WithContext(ctx).First(&challenge, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (r *repository) UpdateChallengeStatus(ctx context.Context, tx *gorm.DB, id snowflake.ID, status workitemdomain.ChallengeStatus) error {
	return r.conn(tx).WithContext(ctx).
		Model(&workitemdomain.Challenge{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()}).Error
}

func (r *repository) CreateCompetition(ctx context.Context, competition *workitemdomain.Competition) error {
	return r.db.WithContext(ctx).Create(competition).Error
}

func (r *repository) FindCompetition(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*workitemdomain.Competition, error) {
	var competition workitemdomain.Competition
	err := r.conn(tx).WithContext(ctx).First(&competition, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &competition, nil
}

func (r *repository) UpdateCompetitionStatus(ctx context.Context, tx *gorm.DB, id snowflake.ID, status workitemdomain.CompetitionStatus) error {
	return r.conn(tx).WithContext(ctx).
		Model(&workitemdomain.Competition{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()}).Error
}

func (r *repository) CreateBounty(ctx context.Context, bounty *workitemdomain.Bounty) error {
	return r.db.WithContext(ctx).Create(bounty).Error
}

func (r *repository) FindBounty(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*workitemdomain.Bounty, error) {
	var bounty workitemdomain.Bounty
	err := r.conn(tx).WithContext(ctx).First(&bounty, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bounty, nil
}

func (r *repository) UpdateBounty(ctx context.Context, tx *gorm.DB, bounty *workitemdomain.Bounty) error {
	bounty.UpdatedAt = time.Now().UTC()
	return r.conn(tx).WithContext(ctx).Save(bounty).Error
}

func (r *repository) CreateBid(ctx context.Context, bid *workitemdomain.Bid) error {
	return r.db.WithContext(ctx).Create(bid).Error
}

func (r *repository) FindBid(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*workitemdomain.Bid, error) {
	var bid workitemdomain.Bid
	err := r.conn(tx).WithContext(ctx).First(&bid, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bid, nil
}

func (r *repository) UpdateBidStatus(ctx context.Context, tx *gorm.DB, id snowflake.ID, status workitemdomain.BidStatus) error {
	return r.conn(tx).WithContext(ctx).
		Model(&workitemdomain.Bid{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()}).Error
}
