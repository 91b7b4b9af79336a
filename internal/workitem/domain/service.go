package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Activator flips purchased work items between Draft and Active. Settlement
// invokes it inside its own transaction so activation and funds movement
// commit together.
type Activator interface {
	// Activate marks the bounty's parent challenge Active and its parent
	// competition Active when currently Draft.
	Activate(ctx context.Context, tx *gorm.DB, bountyID snowflake.ID) error
	// Deactivate returns the parents to Draft. Used on refund.
	Deactivate(ctx context.Context, tx *gorm.DB, bountyID snowflake.ID) error
}

type Service interface {
	CreateProduct(ctx context.Context, name string) (*Product, error)
	CreateChallenge(ctx context.Context, productID snowflake.ID, title string) (*Challenge, error)
	CreateCompetition(ctx context.Context, productID snowflake.ID, title string) (*Competition, error)
	CreateBounty(ctx context.Context, req CreateBountyRequest) (*Bounty, error)
	GetBounty(ctx context.Context, id snowflake.ID) (*Bounty, error)
	PlaceBid(ctx context.Context, bountyID, personID snowflake.ID, amount int64) (*Bid, error)
}

type CreateBountyRequest struct {
	ProductID     snowflake.ID
	ChallengeID   *snowflake.ID
	CompetitionID *snowflake.ID
	Title         string
	RewardType    RewardType
	RewardAmount  int64
}
