package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	workitemdomain "github.com/openunited/platform/internal/workitem/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ActivatorParams struct {
	fx.In

	Log  *zap.Logger
	Repo workitemdomain.Repository
}

type activator struct {
	log  *zap.Logger
	repo workitemdomain.Repository
}

func NewActivator(p ActivatorParams) workitemdomain.Activator {
	return &activator{
		log:  p.Log.Named("workitem.activator"),
		repo: p.Repo,
	}
}

func (a *activator) Activate(ctx context.Context, tx *gorm.DB, bountyID snowflake.ID) error {
	bounty, err := a.repo.FindBounty(ctx, tx, bountyID)
	if err != nil {
		return err
	}
	if bounty == nil {
		return fmt.Errorf("bounty %s: %w", bountyID, workitemdomain.ErrNotFound)
	}

	if bounty.ChallengeID != nil {
		if err := a.repo.UpdateChallengeStatus(ctx, tx, *bounty.ChallengeID, workitemdomain.ChallengeStatusActive); err != nil {
			return fmt.Errorf("activate challenge %s: %w", *bounty.ChallengeID, err)
		}
	}

	if bounty.CompetitionID != nil {
		competition, err := a.repo.FindCompetition(ctx, tx, *bounty.CompetitionID)
		if err != nil {
			return err
		}
		// Competitions only move forward from Draft. A competition already
		// past Draft keeps its current lifecycle stage.
		if competition != nil && competition.Status == workitemdomain.CompetitionStatusDraft {
			if err := a.repo.UpdateCompetitionStatus(ctx, tx, competition.ID, workitemdomain.CompetitionStatusActive); err != nil {
				return fmt.Errorf("activate competition %s: %w", competition.ID, err)
			}
		}
	}

	a.log.Info("activated work items for bounty", zap.String("bounty_id", bountyID.String()))
	return nil
}

func (a *activator) Deactivate(ctx context.Context, tx *gorm.DB, bountyID snowflake.ID) error {
	bounty, err := a.repo.FindBounty(ctx, tx, bountyID)
	if err != nil {
		return err
	}
	if bounty == nil {
		return fmt.Errorf("bounty %s: %w", bountyID, workitemdomain.ErrNotFound)
	}

	if bounty.ChallengeID != nil {
		if err := a.repo.UpdateChallengeStatus(ctx, tx, *bounty.ChallengeID, workitemdomain.ChallengeStatusDraft); err != nil {
			return fmt.Errorf("deactivate challenge %s: %w", *bounty.ChallengeID, err)
		}
	}

	if bounty.CompetitionID != nil {
		competition, err := a.repo.FindCompetition(ctx, tx, *bounty.CompetitionID)
		if err != nil {
			return err
		}
		if competition != nil && competition.Status == workitemdomain.CompetitionStatusActive {
			if err := a.repo.UpdateCompetitionStatus(ctx, tx, competition.ID, workitemdomain.CompetitionStatusDraft); err != nil {
				return fmt.Errorf("deactivate competition %s: %w", competition.ID, err)
			}
		}
	}

	a.log.Info("deactivated work items for bounty", zap.String("bounty_id", bountyID.String()))
	return nil
}
