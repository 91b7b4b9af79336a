package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	auditdomain "github.com/openunited/platform/internal/audit/domain"
	cartdomain "github.com/openunited/platform/internal/cart/domain"
	"github.com/openunited/platform/internal/events"
	"github.com/openunited/platform/internal/lock"
	orderdomain "github.com/openunited/platform/internal/order/domain"
	paymentdomain "github.com/openunited/platform/internal/payment/domain"
	ledgerdomain "github.com/openunited/platform/internal/pointledger/domain"
	workitemdomain "github.com/openunited/platform/internal/workitem/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       orderdomain.Repository
	CartSvc    cartdomain.Service
	CartRepo   cartdomain.Repository
	Ledger     ledgerdomain.Service
	Charger    paymentdomain.Charger
	Activator  workitemdomain.Activator
	Dispatcher *events.Dispatcher
	Locks      *lock.SettlementLocks `optional:"true"`
	AuditSvc   auditdomain.Service   `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       orderdomain.Repository
	cartSvc    cartdomain.Service
	cartRepo   cartdomain.Repository
	ledger     ledgerdomain.Service
	charger    paymentdomain.Charger
	activator  workitemdomain.Activator
	dispatcher *events.Dispatcher
	locks      *lock.SettlementLocks
	auditSvc   auditdomain.Service
}

func NewService(p Params) orderdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("order.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		cartSvc:    p.CartSvc,
		cartRepo:   p.CartRepo,
		ledger:     p.Ledger,
		charger:    p.Charger,
		activator:  p.Activator,
		dispatcher: p.Dispatcher,
		locks:      p.Locks,
		auditSvc:   p.AuditSvc,
	}
}

func (s *Service) Checkout(ctx context.Context, cartID snowflake.ID) (*orderdomain.CheckoutResult, error) {
	result := &orderdomain.CheckoutResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, items, err := s.cartSvc.BeginCheckout(ctx, tx, cartID)
		if err != nil {
			return err
		}

		subtotal := cartdomain.SubtotalUSDCents(items)
		totalPoints := cartdomain.TotalPoints(items)
		var fee, tax int64
		for _, item := range items {
			switch item.Kind {
			case cartdomain.ItemKindPlatformFee:
				fee += item.AmountCents
			case cartdomain.ItemKindSalesTax:
				tax += item.AmountCents
			}
		}
		if subtotal == 0 && totalPoints == 0 {
			return orderdomain.ErrEmptyCart
		}

		now := time.Now().UTC()
		if subtotal > 0 {
			order := &orderdomain.SalesOrder{
				ID:            s.genID.Generate(),
				PublicID:      uuid.New(),
				CartID:        cartID,
				Status:        orderdomain.SalesOrderStatusPending,
				SubtotalCents: subtotal,
				FeeCents:      fee,
				TaxCents:      tax,
				TotalCents:    subtotal + fee + tax,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := order.Validate(); err != nil {
				return err
			}
			if err := s.repo.CreateSalesOrder(ctx, tx, order); err != nil {
				return err
			}
			result.SalesOrder = order
		}
		if totalPoints > 0 {
			order := &orderdomain.PointOrder{
				ID:          s.genID.Generate(),
				PublicID:    uuid.New(),
				CartID:      cartID,
				Status:      orderdomain.PointOrderStatusPending,
				TotalPoints: totalPoints,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := s.repo.CreatePointOrder(ctx, tx, order); err != nil {
				return err
			}
			result.PointOrder = order
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) GetSalesOrder(ctx context.Context, id snowflake.ID) (*orderdomain.SalesOrder, error) {
	order, err := s.repo.FindSalesOrder(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, orderdomain.ErrNotFound
	}
	return order, nil
}

func (s *Service) GetPointOrder(ctx context.Context, id snowflake.ID) (*orderdomain.PointOrder, error) {
	order, err := s.repo.FindPointOrder(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, orderdomain.ErrNotFound
	}
	return order, nil
}

// acquireLock leases the order for this instance. A held lease elsewhere
// means another worker is settling the same order, which is the same
// business outcome as a status-guard miss.
func (s *Service) acquireLock(ctx context.Context, kind string, id snowflake.ID) (func(), bool, error) {
	token, ok, err := s.locks.TryLockOrder(ctx, kind, id)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		s.log.Info("order locked by another worker",
			zap.String("kind", kind),
			zap.String("order_id", id.String()),
		)
		return nil, false, nil
	}
	release := func() {
		if err := s.locks.ReleaseOrder(ctx, kind, id, token); err != nil {
			s.log.Warn("failed to release settlement lock",
				zap.String("kind", kind),
				zap.String("order_id", id.String()),
				zap.Error(err),
			)
		}
	}
	return release, true, nil
}

func (s *Service) ProcessSalesOrder(ctx context.Context, id snowflake.ID) (bool, error) {
	release, ok, err := s.acquireLock(ctx, "sales", id)
	if err != nil || !ok {
		return false, err
	}
	defer release()

	order, err := s.repo.FindSalesOrder(ctx, nil, id)
	if err != nil {
		return false, err
	}
	if order == nil {
		return false, orderdomain.ErrNotFound
	}
	if order.Status != orderdomain.SalesOrderStatusPending {
		s.log.Info("sales order not pending, skipping",
			zap.String("sales_order_id", order.ID.String()),
			zap.String("status", string(order.Status)),
		)
		return false, nil
	}

	// Processing is recorded before settlement so a crash mid-flight leaves
	// an inspectable state instead of a silently re-runnable Pending order.
	if err := s.repo.UpdateSalesOrderStatus(ctx, nil, order.ID, orderdomain.SalesOrderStatusProcessing); err != nil {
		return false, err
	}

	cart, err := s.cartRepo.FindCart(ctx, nil, order.CartID)
	if err != nil {
		return false, err
	}
	if cart == nil {
		return false, cartdomain.ErrNotFound
	}

	settleErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.charger.Charge(ctx, cart.OrganisationID, order.TotalCents, order.PublicID.String()); err != nil {
			return fmt.Errorf("charge: %w", err)
		}
		if err := s.activateItems(ctx, tx, order.CartID, cartdomain.FundingUSD); err != nil {
			return err
		}
		if err := s.repo.UpdateSalesOrderStatus(ctx, tx, order.ID, orderdomain.SalesOrderStatusCompleted); err != nil {
			return err
		}
		if err := s.completeCartIfSettled(ctx, tx, order.CartID); err != nil {
			return err
		}
		return s.dispatcher.Publish(ctx, tx, events.Event{
			Type:  events.EventOrderCompleted,
			OrgID: cart.OrganisationID,
			Payload: map[string]any{
				"sales_order_id": order.ID.String(),
				"cart_id":        order.CartID.String(),
				"total_cents":    order.TotalCents,
			},
		})
	})
	if settleErr != nil {
		s.log.Error("sales order settlement failed",
			zap.String("sales_order_id", order.ID.String()),
			zap.Error(settleErr),
		)
		if err := s.repo.UpdateSalesOrderStatus(ctx, nil, order.ID, orderdomain.SalesOrderStatusFailed); err != nil {
			return false, err
		}
		return false, nil
	}

	ordersSettled.WithLabelValues(kindSales).Inc()
	s.audit(ctx, cart.OrganisationID, "order.completed", "sales_order", order.ID.String(), map[string]any{
		"total_cents": order.TotalCents,
	})
	return true, nil
}

func (s *Service) RefundSalesOrder(ctx context.Context, id snowflake.ID) (bool, error) {
	release, ok, err := s.acquireLock(ctx, "sales", id)
	if err != nil || !ok {
		return false, err
	}
	defer release()

	order, err := s.repo.FindSalesOrder(ctx, nil, id)
	if err != nil {
		return false, err
	}
	if order == nil {
		return false, orderdomain.ErrNotFound
	}
	if order.Status != orderdomain.SalesOrderStatusCompleted {
		return false, nil
	}

	cart, err := s.cartRepo.FindCart(ctx, nil, order.CartID)
	if err != nil {
		return false, err
	}
	if cart == nil {
		return false, cartdomain.ErrNotFound
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.charger.Refund(ctx, cart.OrganisationID, order.TotalCents, order.PublicID.String()); err != nil {
			return fmt.Errorf("refund: %w", err)
		}
		if err := s.deactivateItems(ctx, tx, order.CartID, cartdomain.FundingUSD); err != nil {
			return err
		}
		if err := s.repo.UpdateSalesOrderStatus(ctx, tx, order.ID, orderdomain.SalesOrderStatusRefunded); err != nil {
			return err
		}
		return s.dispatcher.Publish(ctx, tx, events.Event{
			Type:  events.EventOrderRefunded,
			OrgID: cart.OrganisationID,
			Payload: map[string]any{
				"sales_order_id": order.ID.String(),
				"cart_id":        order.CartID.String(),
				"total_cents":    order.TotalCents,
			},
		})
	})
	if err != nil {
		return false, err
	}

	ordersRefunded.WithLabelValues(kindSales).Inc()
	s.audit(ctx, cart.OrganisationID, "order.refunded", "sales_order", order.ID.String(), map[string]any{
		"total_cents": order.TotalCents,
	})
	return true, nil
}

func (s *Service) CompletePointOrder(ctx context.Context, id snowflake.ID) (bool, error) {
	release, ok, err := s.acquireLock(ctx, "point", id)
	if err != nil || !ok {
		return false, err
	}
	defer release()

	order, err := s.repo.FindPointOrder(ctx, nil, id)
	if err != nil {
		return false, err
	}
	if order == nil {
		return false, orderdomain.ErrNotFound
	}
	if order.Status != orderdomain.PointOrderStatusPending {
		return false, nil
	}

	cart, err := s.cartRepo.FindCart(ctx, nil, order.CartID)
	if err != nil {
		return false, err
	}
	if cart == nil {
		return false, cartdomain.ErrNotFound
	}

	completed := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.ledger.TransferToProduct(ctx, tx, cart.OrganisationID, cart.ProductID, order.TotalPoints,
			fmt.Sprintf("Cart %s checkout", cart.PublicID))
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := s.activateItems(ctx, tx, order.CartID, cartdomain.FundingPoints); err != nil {
			return err
		}
		if err := s.repo.UpdatePointOrderStatus(ctx, tx, order.ID, orderdomain.PointOrderStatusCompleted); err != nil {
			return err
		}
		if err := s.completeCartIfSettled(ctx, tx, order.CartID); err != nil {
			return err
		}
		if err := s.dispatcher.Publish(ctx, tx, events.Event{
			Type:  events.EventOrderCompleted,
			OrgID: cart.OrganisationID,
			Payload: map[string]any{
				"point_order_id": order.ID.String(),
				"cart_id":        order.CartID.String(),
				"total_points":   order.TotalPoints,
			},
		}); err != nil {
			return err
		}
		completed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if !completed {
		s.log.Info("point order left pending, insufficient balance",
			zap.String("point_order_id", order.ID.String()),
			zap.Int64("total_points", order.TotalPoints),
		)
		return false, nil
	}

	ordersSettled.WithLabelValues(kindPoint).Inc()
	s.audit(ctx, cart.OrganisationID, "order.completed", "point_order", order.ID.String(), map[string]any{
		"total_points": order.TotalPoints,
	})
	return true, nil
}

func (s *Service) RefundPointOrder(ctx context.Context, id snowflake.ID) (bool, error) {
	release, ok, err := s.acquireLock(ctx, "point", id)
	if err != nil || !ok {
		return false, err
	}
	defer release()

	order, err := s.repo.FindPointOrder(ctx, nil, id)
	if err != nil {
		return false, err
	}
	if order == nil {
		return false, orderdomain.ErrNotFound
	}
	if order.Status != orderdomain.PointOrderStatusCompleted {
		return false, nil
	}

	cart, err := s.cartRepo.FindCart(ctx, nil, order.CartID)
	if err != nil {
		return false, err
	}
	if cart == nil {
		return false, cartdomain.ErrNotFound
	}

	refunded := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.ledger.RefundTransfer(ctx, tx, cart.OrganisationID, cart.ProductID, order.TotalPoints,
			fmt.Sprintf("Refund cart %s", cart.PublicID))
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := s.deactivateItems(ctx, tx, order.CartID, cartdomain.FundingPoints); err != nil {
			return err
		}
		if err := s.repo.UpdatePointOrderStatus(ctx, tx, order.ID, orderdomain.PointOrderStatusRefunded); err != nil {
			return err
		}
		if err := s.dispatcher.Publish(ctx, tx, events.Event{
			Type:  events.EventOrderRefunded,
			OrgID: cart.OrganisationID,
			Payload: map[string]any{
				"point_order_id": order.ID.String(),
				"cart_id":        order.CartID.String(),
				"total_points":   order.TotalPoints,
			},
		}); err != nil {
			return err
		}
		refunded = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if !refunded {
		return false, nil
	}

	ordersRefunded.WithLabelValues(kindPoint).Inc()
	s.audit(ctx, cart.OrganisationID, "order.refunded", "point_order", order.ID.String(), map[string]any{
		"total_points": order.TotalPoints,
	})
	return true, nil
}

// activateItems activates the parents of every bounty the cart funds with
// the given funding type.
func (s *Service) activateItems(ctx context.Context, tx *gorm.DB, cartID snowflake.ID, funding cartdomain.FundingType) error {
	items, err := s.cartRepo.ListItems(ctx, tx, cartID)
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.Kind != cartdomain.ItemKindBounty || item.FundingType != funding || item.BountyID == nil {
			continue
		}
		if err := s.activator.Activate(ctx, tx, *item.BountyID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) deactivateItems(ctx context.Context, tx *gorm.DB, cartID snowflake.ID, funding cartdomain.FundingType) error {
	items, err := s.cartRepo.ListItems(ctx, tx, cartID)
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.Kind != cartdomain.ItemKindBounty || item.FundingType != funding || item.BountyID == nil {
			continue
		}
		if err := s.activator.Deactivate(ctx, tx, *item.BountyID); err != nil {
			return err
		}
	}
	return nil
}

// completeCartIfSettled marks the cart Completed once every order minted
// from it has completed. A cart funding both currencies stays in Checkout
// until the second order settles.
func (s *Service) completeCartIfSettled(ctx context.Context, tx *gorm.DB, cartID snowflake.ID) error {
	salesOrder, err := s.repo.FindSalesOrderByCart(ctx, tx, cartID)
	if err != nil {
		return err
	}
	if salesOrder != nil && salesOrder.Status != orderdomain.SalesOrderStatusCompleted {
		return nil
	}
	pointOrder, err := s.repo.FindPointOrderByCart(ctx, tx, cartID)
	if err != nil {
		return err
	}
	if pointOrder != nil && pointOrder.Status != orderdomain.PointOrderStatusCompleted {
		return nil
	}
	return s.cartSvc.MarkCompleted(ctx, tx, cartID)
}

func (s *Service) audit(ctx context.Context, orgID snowflake.ID, action, targetType, targetID string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	if err := s.auditSvc.AuditLog(ctx, &orgID, action, targetType, &targetID, metadata); err != nil {
		s.log.Warn("failed to write settlement audit log", zap.Error(err))
	}
}
