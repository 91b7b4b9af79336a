package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	orgdomain "github.com/openunited/platform/internal/organization/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  orgdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  orgdomain.Repository
}

func NewService(p Params) orgdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("organization.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req orgdomain.CreateRequest) (*orgdomain.Organisation, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, orgdomain.ErrInvalidName
	}
	country := strings.ToUpper(strings.TrimSpace(req.Country))
	if country == "" {
		country = "US"
	}
	if len(country) != 2 {
		return nil, orgdomain.ErrInvalidCountry
	}

	now := time.Now().UTC()
	org := &orgdomain.Organisation{
		ID:        s.genID.Generate(),
		Name:      name,
		Country:   country,
		VATNumber: req.VATNumber,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*orgdomain.Organisation, error) {
	if id == 0 {
		return nil, orgdomain.ErrInvalidOrganisation
	}
	org, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, orgdomain.ErrNotFound
	}
	return org, nil
}

func (s *Service) EnsureWallet(ctx context.Context, tx *gorm.DB, orgID snowflake.ID) (*orgdomain.Wallet, error) {
	if orgID == 0 {
		return nil, orgdomain.ErrInvalidOrganisation
	}
	wallet, err := s.repo.FindWallet(ctx, tx, orgID)
	if err != nil {
		return nil, err
	}
	if wallet != nil {
		return wallet, nil
	}

	now := time.Now().UTC()
	wallet = &orgdomain.Wallet{
		ID:             s.genID.Generate(),
		OrganisationID: orgID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.CreateWallet(ctx, tx, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

func (s *Service) CreditWallet(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, amountCents int64, description string) error {
	if amountCents <= 0 {
		return orgdomain.ErrInvalidAmount
	}

	run := func(tx *gorm.DB) error {
		wallet, err := s.EnsureWallet(ctx, tx, orgID)
		if err != nil {
			return err
		}
		if err := s.repo.UpdateWalletBalance(ctx, tx, wallet.ID, wallet.BalanceUSDCents+amountCents); err != nil {
			return err
		}
		return s.repo.CreateWalletTransaction(ctx, tx, &orgdomain.WalletTransaction{
			ID:          s.genID.Generate(),
			WalletID:    wallet.ID,
			Type:        orgdomain.WalletTransactionCredit,
			AmountCents: amountCents,
			Description: description,
			CreatedAt:   time.Now().UTC(),
		})
	}

	if tx != nil {
		return run(tx)
	}
	return s.db.WithContext(ctx).Transaction(run)
}

func (s *Service) DebitWallet(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, amountCents int64, description string) (bool, error) {
	if amountCents <= 0 {
		return false, orgdomain.ErrInvalidAmount
	}

	debited := false
	run := func(tx *gorm.DB) error {
		wallet, err := s.EnsureWallet(ctx, tx, orgID)
		if err != nil {
			return err
		}
		if wallet.BalanceUSDCents < amountCents {
			return nil
		}
		if err := s.repo.UpdateWalletBalance(ctx, tx, wallet.ID, wallet.BalanceUSDCents-amountCents); err != nil {
			return err
		}
		if err := s.repo.CreateWalletTransaction(ctx, tx, &orgdomain.WalletTransaction{
			ID:          s.genID.Generate(),
			WalletID:    wallet.ID,
			Type:        orgdomain.WalletTransactionDebit,
			AmountCents: amountCents,
			Description: description,
			CreatedAt:   time.Now().UTC(),
		}); err != nil {
			return err
		}
		debited = true
		return nil
	}

	var err error
	if tx != nil {
		err = run(tx)
	} else {
		err = s.db.WithContext(ctx).Transaction(run)
	}
	if err != nil {
		return false, err
	}
	return debited, nil
}
