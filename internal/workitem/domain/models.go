package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Product groups challenges, competitions and bounties.
type Product struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Name      string       `gorm:"type:text;not null"`
	Slug      string       `gorm:"type:text;not null;uniqueIndex"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "products" }

type ChallengeStatus string

const (
	ChallengeStatusDraft     ChallengeStatus = "Draft"
	ChallengeStatusBlocked   ChallengeStatus = "Blocked"
	ChallengeStatusActive    ChallengeStatus = "Active"
	ChallengeStatusCompleted ChallengeStatus = "Completed"
	ChallengeStatusCancelled ChallengeStatus = "Cancelled"
)

type Challenge struct {
	ID        snowflake.ID    `gorm:"primaryKey"`
	ProductID snowflake.ID    `gorm:"not null;index"`
	Title     string          `gorm:"type:text;not null"`
	Status    ChallengeStatus `gorm:"type:text;not null;default:'Draft'"`
	CreatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Challenge) TableName() string { return "challenges" }

type CompetitionStatus string

const (
	CompetitionStatusDraft         CompetitionStatus = "Draft"
	CompetitionStatusActive        CompetitionStatus = "Active"
	CompetitionStatusEntriesClosed CompetitionStatus = "Entries Closed"
	CompetitionStatusJudging       CompetitionStatus = "Judging"
	CompetitionStatusCompleted     CompetitionStatus = "Completed"
	CompetitionStatusCancelled     CompetitionStatus = "Cancelled"
)

type Competition struct {
	ID        snowflake.ID      `gorm:"primaryKey"`
	ProductID snowflake.ID      `gorm:"not null;index"`
	Title     string            `gorm:"type:text;not null"`
	Status    CompetitionStatus `gorm:"type:text;not null;default:'Draft'"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Competition) TableName() string { return "competitions" }

type RewardType string

const (
	RewardTypePoints RewardType = "Points"
	RewardTypeUSD    RewardType = "USD"
)

type BountyStatus string

const (
	BountyStatusAvailable BountyStatus = "Available"
	BountyStatusClaimed   BountyStatus = "Claimed"
	BountyStatusInReview  BountyStatus = "In Review"
	BountyStatusCompleted BountyStatus = "Completed"
	BountyStatusCancelled BountyStatus = "Cancelled"
)

// Bounty is a unit of rewarded work. RewardAmount is points when
// RewardType is Points, USD cents when RewardType is USD.
type Bounty struct {
	ID                snowflake.ID  `gorm:"primaryKey"`
	ProductID         snowflake.ID  `gorm:"not null;index"`
	ChallengeID       *snowflake.ID `gorm:"index"`
	CompetitionID     *snowflake.ID `gorm:"index"`
	Title             string        `gorm:"type:text;not null"`
	Status            BountyStatus  `gorm:"type:text;not null;default:'Available'"`
	RewardType        RewardType    `gorm:"type:text;not null;default:'Points'"`
	RewardAmount      int64         `gorm:"not null;default:0"`
	FinalRewardAmount *int64
	CreatedAt         time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Bounty) TableName() string { return "bounties" }

type BidStatus string

const (
	BidStatusPending   BidStatus = "Pending"
	BidStatusAccepted  BidStatus = "Accepted"
	BidStatusRejected  BidStatus = "Rejected"
	BidStatusWithdrawn BidStatus = "Withdrawn"
)

// Bid is a talent offer on a bounty. The accepted amount may differ from
// the bounty's declared reward, which triggers the adjustment flow.
type Bid struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	BountyID  snowflake.ID `gorm:"not null;index"`
	PersonID  snowflake.ID `gorm:"not null;index"`
	Amount    int64        `gorm:"not null"`
	Status    BidStatus    `gorm:"type:text;not null;default:'Pending'"`
	Message   *string      `gorm:"type:text"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Bid) TableName() string { return "bounty_bids" }
