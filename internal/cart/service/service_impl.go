package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	cartdomain "github.com/openunited/platform/internal/cart/domain"
	"github.com/openunited/platform/internal/clock"
	feedomain "github.com/openunited/platform/internal/fee/domain"
	orgdomain "github.com/openunited/platform/internal/organization/domain"
	taxdomain "github.com/openunited/platform/internal/tax/domain"
	workitemdomain "github.com/openunited/platform/internal/workitem/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         cartdomain.Repository
	FeeSvc       feedomain.Service
	TaxResolver  taxdomain.Resolver
	OrgRepo      orgdomain.Repository
	WorkItemRepo workitemdomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         cartdomain.Repository
	feeSvc       feedomain.Service
	taxResolver  taxdomain.Resolver
	orgRepo      orgdomain.Repository
	workItemRepo workitemdomain.Repository
}

func NewService(p Params) cartdomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("cart.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		feeSvc:       p.FeeSvc,
		taxResolver:  p.TaxResolver,
		orgRepo:      p.OrgRepo,
		workItemRepo: p.WorkItemRepo,
	}
}

func (s *Service) Create(ctx context.Context, userID, orgID, productID snowflake.ID) (*cartdomain.Cart, error) {
	if userID == 0 || orgID == 0 || productID == 0 {
		return nil, cartdomain.ErrInvalidCart
	}

	now := time.Now().UTC()
	cart := &cartdomain.Cart{
		ID:             s.genID.Generate(),
		PublicID:       uuid.New(),
		UserID:         userID,
		OrganisationID: orgID,
		ProductID:      productID,
		Status:         cartdomain.CartStatusOpen,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.CreateCart(ctx, nil, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*cartdomain.Cart, []cartdomain.CartItem, error) {
	cart, err := s.repo.FindCart(ctx, nil, id)
	if err != nil {
		return nil, nil, err
	}
	if cart == nil {
		return nil, nil, cartdomain.ErrNotFound
	}
	items, err := s.repo.ListItems(ctx, nil, id)
	if err != nil {
		return nil, nil, err
	}
	return cart, items, nil
}

func (s *Service) AddBountyItem(ctx context.Context, cartID, bountyID snowflake.ID, fundingType cartdomain.FundingType, amount int64) (*cartdomain.CartItem, error) {
	var created *cartdomain.CartItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.openCart(ctx, tx, cartID)
		if err != nil {
			return err
		}

		bounty, err := s.workItemRepo.FindBounty(ctx, tx, bountyID)
		if err != nil {
			return err
		}
		if bounty == nil {
			return fmt.Errorf("bounty %s: %w", bountyID, cartdomain.ErrMissingBounty)
		}

		// The funding must match the bounty's declared reward exactly.
		if string(fundingType) != string(bounty.RewardType) || amount != bounty.RewardAmount {
			return cartdomain.ErrFundingMismatch
		}

		now := time.Now().UTC()
		item := &cartdomain.CartItem{
			ID:          s.genID.Generate(),
			CartID:      cart.ID,
			Kind:        cartdomain.ItemKindBounty,
			BountyID:    &bounty.ID,
			FundingType: fundingType,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if fundingType == cartdomain.FundingPoints {
			item.Points = amount
		} else {
			item.AmountCents = amount
		}
		if err := item.Validate(); err != nil {
			return err
		}
		if err := s.repo.CreateItem(ctx, tx, item); err != nil {
			return err
		}
		created = item
		return s.recalculateCharges(ctx, tx, cart)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) RemoveItem(ctx context.Context, cartID, itemID snowflake.ID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.openCart(ctx, tx, cartID)
		if err != nil {
			return err
		}
		item, err := s.repo.FindItem(ctx, tx, cartID, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return cartdomain.ErrNotFound
		}
		if err := s.repo.DeleteItem(ctx, tx, item.ID); err != nil {
			return err
		}
		return s.recalculateCharges(ctx, tx, cart)
	})
}

func (s *Service) AddAdjustmentItem(ctx context.Context, tx *gorm.DB, cartID snowflake.ID, kind cartdomain.ItemKind, bountyID, bidID snowflake.ID, amountCents int64) (*cartdomain.CartItem, error) {
	if kind != cartdomain.ItemKindIncreaseAdjustment && kind != cartdomain.ItemKindDecreaseAdjustment {
		return nil, cartdomain.ErrInvalidItemKind
	}

	now := time.Now().UTC()
	item := &cartdomain.CartItem{
		ID:          s.genID.Generate(),
		CartID:      cartID,
		Kind:        kind,
		BountyID:    &bountyID,
		BidID:       &bidID,
		FundingType: cartdomain.FundingUSD,
		AmountCents: amountCents,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.CreateItem(ctx, tx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) RecalculateCharges(ctx context.Context, tx *gorm.DB, cartID snowflake.ID) error {
	run := func(tx *gorm.DB) error {
		cart, err := s.repo.FindCart(ctx, tx, cartID)
		if err != nil {
			return err
		}
		if cart == nil {
			return cartdomain.ErrNotFound
		}
		return s.recalculateCharges(ctx, tx, cart)
	}
	if tx != nil {
		return run(tx)
	}
	return s.db.WithContext(ctx).Transaction(run)
}

func (s *Service) BeginCheckout(ctx context.Context, tx *gorm.DB, cartID snowflake.ID) (*cartdomain.Cart, []cartdomain.CartItem, error) {
	cart, err := s.openCart(ctx, tx, cartID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.recalculateCharges(ctx, tx, cart); err != nil {
		return nil, nil, err
	}
	if err := s.repo.UpdateCartStatus(ctx, tx, cart.ID, cartdomain.CartStatusCheckout); err != nil {
		return nil, nil, err
	}
	cart.Status = cartdomain.CartStatusCheckout

	items, err := s.repo.ListItems(ctx, tx, cart.ID)
	if err != nil {
		return nil, nil, err
	}
	return cart, items, nil
}

func (s *Service) MarkCompleted(ctx context.Context, tx *gorm.DB, cartID snowflake.ID) error {
	return s.repo.UpdateCartStatus(ctx, tx, cartID, cartdomain.CartStatusCompleted)
}

func (s *Service) Abandon(ctx context.Context, cartID snowflake.ID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.openCart(ctx, tx, cartID)
		if err != nil {
			return err
		}
		return s.repo.UpdateCartStatus(ctx, tx, cart.ID, cartdomain.CartStatusAbandoned)
	})
}

func (s *Service) openCart(ctx context.Context, tx *gorm.DB, cartID snowflake.ID) (*cartdomain.Cart, error) {
	cart, err := s.repo.FindCart(ctx, tx, cartID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, cartdomain.ErrNotFound
	}
	if cart.Status != cartdomain.CartStatusOpen {
		return nil, cartdomain.ErrCartNotOpen
	}
	return cart, nil
}

// recalculateCharges rewrites the fee and tax lines from the cart's bounty
// funding. Update-or-create keyed by (cart, kind) keeps the operation
// idempotent; a zero charge deletes the line rather than storing zero.
func (s *Service) recalculateCharges(ctx context.Context, tx *gorm.DB, cart *cartdomain.Cart) error {
	items, err := s.repo.ListItems(ctx, tx, cart.ID)
	if err != nil {
		return err
	}
	subtotal := cartdomain.SubtotalUSDCents(items)

	pct, err := s.feeSvc.ActivePercentage(ctx, tx, s.clock.Now())
	if err != nil {
		return err
	}
	feeCents := feedomain.ComputeFee(subtotal, pct)
	if err := s.upsertCharge(ctx, tx, cart.ID, cartdomain.ItemKindPlatformFee, feeCents); err != nil {
		return err
	}

	org, err := s.orgRepo.FindByID(ctx, tx, cart.OrganisationID)
	if err != nil {
		return err
	}
	country := ""
	if org != nil {
		country = org.Country
	}
	rateBps, err := s.taxResolver.ResolveRateBps(ctx, tx, cart.OrganisationID, country)
	if err != nil {
		return err
	}
	// Sales tax applies to the fee-inclusive amount.
	taxCents := taxdomain.ComputeTax(subtotal+feeCents, rateBps)
	return s.upsertCharge(ctx, tx, cart.ID, cartdomain.ItemKindSalesTax, taxCents)
}

func (s *Service) upsertCharge(ctx context.Context, tx *gorm.DB, cartID snowflake.ID, kind cartdomain.ItemKind, amountCents int64) error {
	existing, err := s.repo.FindItemByKind(ctx, tx, cartID, kind)
	if err != nil {
		return err
	}

	if amountCents <= 0 {
		if existing != nil {
			return s.repo.DeleteItem(ctx, tx, existing.ID)
		}
		return nil
	}

	if existing != nil {
		if existing.AmountCents == amountCents {
			return nil
		}
		return s.repo.UpdateItemAmount(ctx, tx, existing.ID, amountCents)
	}

	now := time.Now().UTC()
	item := &cartdomain.CartItem{
		ID:          s.genID.Generate(),
		CartID:      cartID,
		Kind:        kind,
		FundingType: cartdomain.FundingUSD,
		AmountCents: amountCents,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := item.Validate(); err != nil {
		return err
	}
	return s.repo.CreateItem(ctx, tx, item)
}
