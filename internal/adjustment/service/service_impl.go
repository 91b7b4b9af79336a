package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	adjustmentdomain "github.com/openunited/platform/internal/adjustment/domain"
	auditdomain "github.com/openunited/platform/internal/audit/domain"
	cartdomain "github.com/openunited/platform/internal/cart/domain"
	"github.com/openunited/platform/internal/events"
	orderdomain "github.com/openunited/platform/internal/order/domain"
	orgdomain "github.com/openunited/platform/internal/organization/domain"
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
	OrderRepo    orderdomain.Repository
	OrderSvc     orderdomain.Service
	CartSvc      cartdomain.Service
	CartRepo     cartdomain.Repository
	WorkItemRepo workitemdomain.Repository
	OrgSvc       orgdomain.Service
	Dispatcher   *events.Dispatcher
	AuditSvc     auditdomain.Service `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	orderRepo    orderdomain.Repository
	orderSvc     orderdomain.Service
	cartSvc      cartdomain.Service
	cartRepo     cartdomain.Repository
	workItemRepo workitemdomain.Repository
	orgSvc       orgdomain.Service
	dispatcher   *events.Dispatcher
	auditSvc     auditdomain.Service
}

func NewService(p Params) adjustmentdomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("adjustment.service"),
		genID:        p.GenID,
		orderRepo:    p.OrderRepo,
		orderSvc:     p.OrderSvc,
		cartSvc:      p.CartSvc,
		cartRepo:     p.CartRepo,
		workItemRepo: p.WorkItemRepo,
		orgSvc:       p.OrgSvc,
		dispatcher:   p.Dispatcher,
		auditSvc:     p.AuditSvc,
	}
}

func (s *Service) AcceptBid(ctx context.Context, bidID snowflake.ID) (*adjustmentdomain.AcceptResult, error) {
	bid, err := s.workItemRepo.FindBid(ctx, nil, bidID)
	if err != nil {
		return nil, err
	}
	if bid == nil {
		return nil, adjustmentdomain.ErrNotFound
	}
	if bid.Status != workitemdomain.BidStatusPending {
		return nil, adjustmentdomain.ErrBidNotPending
	}
	bounty, err := s.workItemRepo.FindBounty(ctx, nil, bid.BountyID)
	if err != nil {
		return nil, err
	}
	if bounty == nil {
		return nil, adjustmentdomain.ErrNotFound
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.workItemRepo.UpdateBidStatus(ctx, tx, bid.ID, workitemdomain.BidStatusAccepted); err != nil {
			return err
		}
		amount := bid.Amount
		bounty.FinalRewardAmount = &amount
		bounty.Status = workitemdomain.BountyStatusClaimed
		bounty.UpdatedAt = time.Now().UTC()
		if err := s.workItemRepo.UpdateBounty(ctx, tx, bounty); err != nil {
			return err
		}
		return s.dispatcher.Publish(ctx, tx, events.Event{
			Type: events.EventBidAccepted,
			Payload: map[string]any{
				"bid_id":    bid.ID.String(),
				"bounty_id": bounty.ID.String(),
				"amount":    bid.Amount,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	bid.Status = workitemdomain.BidStatusAccepted

	result := &adjustmentdomain.AcceptResult{Bid: bid}
	delta := bid.Amount - bounty.RewardAmount
	if delta != 0 && bounty.RewardType == workitemdomain.RewardTypeUSD {
		// Without a settled initial order there is nothing to adjust against;
		// the acceptance stands and the bounty simply settles at the bid amount.
		parent, err := s.orderRepo.FindInitialSalesOrderByBounty(ctx, nil, bounty.ID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.Status != orderdomain.SalesOrderStatusCompleted {
			s.log.Info("no settled initial order for bounty, skipping adjustment",
				zap.String("bounty_id", bounty.ID.String()),
				zap.Int64("delta_cents", delta),
			)
			return result, nil
		}
		order, err := s.CreateAdjustment(ctx, bounty.ID, bid.ID, delta)
		if err != nil {
			return nil, err
		}
		result.AdjustmentOrder = order
	}
	return result, nil
}

func (s *Service) CreateAdjustment(ctx context.Context, bountyID, bidID snowflake.ID, deltaCents int64) (*orderdomain.SalesOrder, error) {
	if deltaCents == 0 {
		return nil, adjustmentdomain.ErrInvalidDelta
	}

	parent, err := s.orderRepo.FindInitialSalesOrderByBounty(ctx, nil, bountyID)
	if err != nil {
		return nil, err
	}
	if parent == nil || parent.Status != orderdomain.SalesOrderStatusCompleted {
		return nil, adjustmentdomain.ErrParentNotSettled
	}
	parentCart, err := s.cartRepo.FindCart(ctx, nil, parent.CartID)
	if err != nil {
		return nil, err
	}
	if parentCart == nil {
		return nil, cartdomain.ErrNotFound
	}

	kind := cartdomain.ItemKindIncreaseAdjustment
	amount := deltaCents
	if deltaCents < 0 {
		kind = cartdomain.ItemKindDecreaseAdjustment
		amount = -deltaCents
	}

	var childOrder *orderdomain.SalesOrder
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		childCart := &cartdomain.Cart{
			ID:             s.genID.Generate(),
			PublicID:       uuid.New(),
			UserID:         parentCart.UserID,
			OrganisationID: parentCart.OrganisationID,
			ProductID:      parentCart.ProductID,
			Status:         cartdomain.CartStatusCheckout,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.cartRepo.CreateCart(ctx, tx, childCart); err != nil {
			return err
		}
		if _, err := s.cartSvc.AddAdjustmentItem(ctx, tx, childCart.ID, kind, bountyID, bidID, amount); err != nil {
			return err
		}

		childOrder = &orderdomain.SalesOrder{
			ID:                 s.genID.Generate(),
			PublicID:           uuid.New(),
			CartID:             childCart.ID,
			ParentSalesOrderID: &parent.ID,
			Status:             orderdomain.SalesOrderStatusPending,
			SubtotalCents:      amount,
			TotalCents:         amount,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := childOrder.Validate(); err != nil {
			return err
		}
		if err := s.orderRepo.CreateSalesOrder(ctx, tx, childOrder); err != nil {
			return err
		}

		if kind == cartdomain.ItemKindDecreaseAdjustment {
			// The surplus already settled with the parent; hand it back as a
			// wallet credit instead of reversing the payment.
			if err := s.orgSvc.CreditWallet(ctx, tx, parentCart.OrganisationID, amount,
				fmt.Sprintf("Decrease adjustment for bounty %s", bountyID)); err != nil {
				return err
			}
			if err := s.orderRepo.UpdateSalesOrderStatus(ctx, tx, childOrder.ID, orderdomain.SalesOrderStatusCompleted); err != nil {
				return err
			}
			return s.cartSvc.MarkCompleted(ctx, tx, childCart.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if kind == cartdomain.ItemKindIncreaseAdjustment {
		ok, err := s.orderSvc.ProcessSalesOrder(ctx, childOrder.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			s.log.Warn("increase adjustment order did not settle",
				zap.String("sales_order_id", childOrder.ID.String()),
				zap.String("parent_sales_order_id", parent.ID.String()),
			)
		}
	}

	s.audit(ctx, parentCart.OrganisationID, "adjustment.created", "sales_order", childOrder.ID.String(), map[string]any{
		"parent_sales_order_id": parent.ID.String(),
		"bounty_id":             bountyID.String(),
		"delta_cents":           deltaCents,
	})

	order, err := s.orderRepo.FindSalesOrder(ctx, nil, childOrder.ID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) audit(ctx context.Context, orgID snowflake.ID, action, targetType, targetID string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	if err := s.auditSvc.AuditLog(ctx, &orgID, action, targetType, &targetID, metadata); err != nil {
		s.log.Warn("failed to write adjustment audit log", zap.Error(err))
	}
}
