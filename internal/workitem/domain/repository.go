package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	CreateProduct(ctx context.Context, product *Product) error
	FindProduct(ctx context.Context, id snowflake.ID) (*Product, error)

	CreateChallenge(ctx context.Context, challenge *Challenge) error
	FindChallenge(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*Challenge, error)
	UpdateChallengeStatus(ctx context.Context, tx *gorm.DB, id snowflake.ID, status ChallengeStatus) error

	CreateCompetition(ctx context.Context, competition *Competition) error
	FindCompetition(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*Competition, error)
	UpdateCompetitionStatus(ctx context.Context, tx *gorm.DB, id snowflake.ID, status CompetitionStatus) error

	CreateBounty(ctx context.Context, bounty *Bounty) error
	FindBounty(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*Bounty, error)
	UpdateBounty(ctx context.Context, tx *gorm.DB, bounty *Bounty) error

	CreateBid(ctx context.Context, bid *Bid) error
	FindBid(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*Bid, error)
	UpdateBidStatus(ctx context.Context, tx *gorm.DB, id snowflake.ID, status BidStatus) error
}
