package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	adjustmentdomain "github.com/openunited/platform/internal/adjustment/domain"
	cartdomain "github.com/openunited/platform/internal/cart/domain"
	cartrepository "github.com/openunited/platform/internal/cart/repository"
	cartservice "github.com/openunited/platform/internal/cart/service"
	"github.com/openunited/platform/internal/clock"
	"github.com/openunited/platform/internal/events"
	feedomain "github.com/openunited/platform/internal/fee/domain"
	feerepository "github.com/openunited/platform/internal/fee/repository"
	feeservice "github.com/openunited/platform/internal/fee/service"
	orderdomain "github.com/openunited/platform/internal/order/domain"
	orderrepository "github.com/openunited/platform/internal/order/repository"
	orderservice "github.com/openunited/platform/internal/order/service"
	orgdomain "github.com/openunited/platform/internal/organization/domain"
	orgrepository "github.com/openunited/platform/internal/organization/repository"
	orgservice "github.com/openunited/platform/internal/organization/service"
	paymentservice "github.com/openunited/platform/internal/payment/service"
	ledgerdomain "github.com/openunited/platform/internal/pointledger/domain"
	ledgerrepository "github.com/openunited/platform/internal/pointledger/repository"
	ledgerservice "github.com/openunited/platform/internal/pointledger/service"
	taxdomain "github.com/openunited/platform/internal/tax/domain"
	taxrepository "github.com/openunited/platform/internal/tax/repository"
	taxservice "github.com/openunited/platform/internal/tax/service"
	workitemdomain "github.com/openunited/platform/internal/workitem/domain"
	workitemrepository "github.com/openunited/platform/internal/workitem/repository"
	workitemservice "github.com/openunited/platform/internal/workitem/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type adjustmentFixture struct {
	svc          adjustmentdomain.Service
	orderSvc     orderdomain.Service
	orderRepo    orderdomain.Repository
	cartSvc      cartdomain.Service
	orgSvc       orgdomain.Service
	workItemRepo workitemdomain.Repository
	db           *gorm.DB
	node         *snowflake.Node
	org          *orgdomain.Organisation
	product      *workitemdomain.Product
}

func newAdjustmentFixture(t *testing.T) *adjustmentFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&orgdomain.Organisation{},
		&orgdomain.Wallet{},
		&orgdomain.WalletTransaction{},
		&workitemdomain.Product{},
		&workitemdomain.Challenge{},
		&workitemdomain.Competition{},
		&workitemdomain.Bounty{},
		&workitemdomain.Bid{},
		&ledgerdomain.OrganisationPointAccount{},
		&ledgerdomain.ProductPointAccount{},
		&ledgerdomain.PointTransaction{},
		&ledgerdomain.OrganisationPointGrant{},
		&feedomain.PlatformFeeConfiguration{},
		&taxdomain.TaxRate{},
		&cartdomain.Cart{},
		&cartdomain.CartItem{},
		&orderdomain.SalesOrder{},
		&orderdomain.PointOrder{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()
	ctx := context.Background()

	feeSvc := feeservice.NewService(feeservice.Params{
		Log:   log,
		GenID: node,
		Repo:  feerepository.NewRepository(db),
	})
	_, err = feeSvc.Create(ctx, 10, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	taxResolver := taxservice.NewResolver(taxservice.Params{
		Log:   log,
		GenID: node,
		Repo:  taxrepository.NewRepository(db),
	})

	orgRepo := orgrepository.NewRepository(db)
	orgSvc := orgservice.NewService(orgservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  orgRepo,
	})
	org, err := orgSvc.Create(ctx, orgdomain.CreateRequest{Name: "Acme", Country: "US"})
	require.NoError(t, err)

	workItemRepo := workitemrepository.NewRepository(db)
	product := &workitemdomain.Product{
		ID:        node.Generate(),
		Name:      "Widget",
		Slug:      "widget",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, workItemRepo.CreateProduct(ctx, product))

	cartRepo := cartrepository.NewRepository(db)
	cartSvc := cartservice.NewService(cartservice.Params{
		DB:           db,
		Log:          log,
		GenID:        node,
		Clock:        clock.System(),
		Repo:         cartRepo,
		FeeSvc:       feeSvc,
		TaxResolver:  taxResolver,
		OrgRepo:      orgRepo,
		WorkItemRepo: workItemRepo,
	})

	ledger := ledgerservice.NewService(ledgerservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  ledgerrepository.NewRepository(db),
	})

	dispatcher := events.NewDispatcher(log)
	orderRepo := orderrepository.NewRepository(db)
	orderSvc := orderservice.NewService(orderservice.Params{
		DB:       db,
		Log:      log,
		GenID:    node,
		Repo:     orderRepo,
		CartSvc:  cartSvc,
		CartRepo: cartRepo,
		Ledger:   ledger,
		Charger:  paymentservice.NewStubCharger(paymentservice.Params{Log: log}),
		Activator: workitemservice.NewActivator(workitemservice.ActivatorParams{
			Log:  log,
			Repo: workItemRepo,
		}),
		Dispatcher: dispatcher,
	})

	svc := NewService(Params{
		DB:           db,
		Log:          log,
		GenID:        node,
		OrderRepo:    orderRepo,
		OrderSvc:     orderSvc,
		CartSvc:      cartSvc,
		CartRepo:     cartRepo,
		WorkItemRepo: workItemRepo,
		OrgSvc:       orgSvc,
		Dispatcher:   dispatcher,
	})

	return &adjustmentFixture{
		svc:          svc,
		orderSvc:     orderSvc,
		orderRepo:    orderRepo,
		cartSvc:      cartSvc,
		orgSvc:       orgSvc,
		workItemRepo: workItemRepo,
		db:           db,
		node:         node,
		org:          org,
		product:      product,
	}
}

func (f *adjustmentFixture) createBounty(t *testing.T, rewardType workitemdomain.RewardType, amount int64) *workitemdomain.Bounty {
	t.Helper()
	bounty := &workitemdomain.Bounty{
		ID:           f.node.Generate(),
		ProductID:    f.product.ID,
		Title:        "Fix the parser",
		Status:       workitemdomain.BountyStatusAvailable,
		RewardType:   rewardType,
		RewardAmount: amount,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	require.NoError(t, f.workItemRepo.CreateBounty(context.Background(), bounty))
	return bounty
}

func (f *adjustmentFixture) createBid(t *testing.T, bountyID snowflake.ID, amount int64) *workitemdomain.Bid {
	t.Helper()
	bid := &workitemdomain.Bid{
		ID:        f.node.Generate(),
		BountyID:  bountyID,
		PersonID:  f.node.Generate(),
		Amount:    amount,
		Status:    workitemdomain.BidStatusPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, f.workItemRepo.CreateBid(context.Background(), bid))
	return bid
}

// settleBounty takes a USD bounty through cart, checkout and settlement so
// a later adjustment has a completed parent order to hang off.
func (f *adjustmentFixture) settleBounty(t *testing.T, bounty *workitemdomain.Bounty) *orderdomain.SalesOrder {
	t.Helper()
	ctx := context.Background()

	cart, err := f.cartSvc.Create(ctx, f.node.Generate(), f.org.ID, f.product.ID)
	require.NoError(t, err)
	_, err = f.cartSvc.AddBountyItem(ctx, cart.ID, bounty.ID, cartdomain.FundingUSD, bounty.RewardAmount)
	require.NoError(t, err)

	result, err := f.orderSvc.Checkout(ctx, cart.ID)
	require.NoError(t, err)
	require.NotNil(t, result.SalesOrder)

	settled, err := f.orderSvc.ProcessSalesOrder(ctx, result.SalesOrder.ID)
	require.NoError(t, err)
	require.True(t, settled)
	return result.SalesOrder
}

func (f *adjustmentFixture) walletBalance(t *testing.T) int64 {
	t.Helper()
	wallet, err := f.orgSvc.EnsureWallet(context.Background(), nil, f.org.ID)
	require.NoError(t, err)
	return wallet.BalanceUSDCents
}

func TestAcceptBidAtRewardAmountNeedsNoAdjustment(t *testing.T) {
	f := newAdjustmentFixture(t)
	ctx := context.Background()

	bounty := f.createBounty(t, workitemdomain.RewardTypeUSD, 10000)
	f.settleBounty(t, bounty)
	bid := f.createBid(t, bounty.ID, 10000)

	result, err := f.svc.AcceptBid(ctx, bid.ID)
	require.NoError(t, err)
	assert.Nil(t, result.AdjustmentOrder)
	assert.Equal(t, workitemdomain.BidStatusAccepted, result.Bid.Status)

	updated, err := f.workItemRepo.FindBounty(ctx, nil, bounty.ID)
	require.NoError(t, err)
	assert.Equal(t, workitemdomain.BountyStatusClaimed, updated.Status)
	require.NotNil(t, updated.FinalRewardAmount)
	assert.Equal(t, int64(10000), *updated.FinalRewardAmount)
}

func TestAcceptHigherBidCreatesIncreaseAdjustment(t *testing.T) {
	f := newAdjustmentFixture(t)
	ctx := context.Background()

	bounty := f.createBounty(t, workitemdomain.RewardTypeUSD, 10000)
	parent := f.settleBounty(t, bounty)
	bid := f.createBid(t, bounty.ID, 12000)

	result, err := f.svc.AcceptBid(ctx, bid.ID)
	require.NoError(t, err)
	require.NotNil(t, result.AdjustmentOrder)

	child := result.AdjustmentOrder
	require.NotNil(t, child.ParentSalesOrderID)
	assert.Equal(t, parent.ID, *child.ParentSalesOrderID)
	assert.Equal(t, int64(2000), child.SubtotalCents)
	assert.Equal(t, int64(2000), child.TotalCents)
	assert.Equal(t, orderdomain.SalesOrderStatusCompleted, child.Status)

	_, items, err := f.cartSvc.Get(ctx, child.CartID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, cartdomain.ItemKindIncreaseAdjustment, items[0].Kind)
	assert.Equal(t, int64(2000), items[0].AmountCents)

	children, err := f.orderRepo.ListChildSalesOrders(ctx, nil, parent.ID)
	require.NoError(t, err)
	assert.Len(t, children, 1)
}

func TestAcceptLowerBidCreditsWallet(t *testing.T) {
	f := newAdjustmentFixture(t)
	ctx := context.Background()

	bounty := f.createBounty(t, workitemdomain.RewardTypeUSD, 10000)
	f.settleBounty(t, bounty)
	bid := f.createBid(t, bounty.ID, 8000)

	result, err := f.svc.AcceptBid(ctx, bid.ID)
	require.NoError(t, err)
	require.NotNil(t, result.AdjustmentOrder)

	child := result.AdjustmentOrder
	assert.Equal(t, int64(2000), child.TotalCents)
	assert.Equal(t, orderdomain.SalesOrderStatusCompleted, child.Status)
	assert.Equal(t, int64(2000), f.walletBalance(t))

	_, items, err := f.cartSvc.Get(ctx, child.CartID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, cartdomain.ItemKindDecreaseAdjustment, items[0].Kind)
}

func TestAcceptBidOnPointsBountySkipsAdjustment(t *testing.T) {
	f := newAdjustmentFixture(t)
	ctx := context.Background()

	bounty := f.createBounty(t, workitemdomain.RewardTypePoints, 400)
	bid := f.createBid(t, bounty.ID, 500)

	result, err := f.svc.AcceptBid(ctx, bid.ID)
	require.NoError(t, err)
	assert.Nil(t, result.AdjustmentOrder)
	assert.Equal(t, int64(0), f.walletBalance(t))
}

func TestAcceptBidWithoutSettledParentSkipsAdjustment(t *testing.T) {
	f := newAdjustmentFixture(t)
	ctx := context.Background()

	// The bounty was never checked out, so no initial sales order exists.
	bounty := f.createBounty(t, workitemdomain.RewardTypeUSD, 10000)
	bid := f.createBid(t, bounty.ID, 12000)

	result, err := f.svc.AcceptBid(ctx, bid.ID)
	require.NoError(t, err)
	assert.Nil(t, result.AdjustmentOrder)
	assert.Equal(t, workitemdomain.BidStatusAccepted, result.Bid.Status)

	updated, err := f.workItemRepo.FindBounty(ctx, nil, bounty.ID)
	require.NoError(t, err)
	assert.Equal(t, workitemdomain.BountyStatusClaimed, updated.Status)
	require.NotNil(t, updated.FinalRewardAmount)
	assert.Equal(t, int64(12000), *updated.FinalRewardAmount)
	assert.Equal(t, int64(0), f.walletBalance(t))
}

func TestAcceptBidTwiceFails(t *testing.T) {
	f := newAdjustmentFixture(t)
	ctx := context.Background()

	bounty := f.createBounty(t, workitemdomain.RewardTypeUSD, 10000)
	f.settleBounty(t, bounty)
	bid := f.createBid(t, bounty.ID, 10000)

	_, err := f.svc.AcceptBid(ctx, bid.ID)
	require.NoError(t, err)

	_, err = f.svc.AcceptBid(ctx, bid.ID)
	assert.ErrorIs(t, err, adjustmentdomain.ErrBidNotPending)
}

func TestCreateAdjustmentRejectsZeroDelta(t *testing.T) {
	f := newAdjustmentFixture(t)

	_, err := f.svc.CreateAdjustment(context.Background(), f.node.Generate(), f.node.Generate(), 0)
	assert.ErrorIs(t, err, adjustmentdomain.ErrInvalidDelta)
}

func TestCreateAdjustmentRequiresSettledParent(t *testing.T) {
	f := newAdjustmentFixture(t)
	ctx := context.Background()

	bounty := f.createBounty(t, workitemdomain.RewardTypeUSD, 10000)
	bid := f.createBid(t, bounty.ID, 12000)

	// No parent order exists yet.
	_, err := f.svc.CreateAdjustment(ctx, bounty.ID, bid.ID, 2000)
	assert.ErrorIs(t, err, adjustmentdomain.ErrParentNotSettled)

	// A pending parent is not enough either.
	cart, err := f.cartSvc.Create(ctx, f.node.Generate(), f.org.ID, f.product.ID)
	require.NoError(t, err)
	_, err = f.cartSvc.AddBountyItem(ctx, cart.ID, bounty.ID, cartdomain.FundingUSD, 10000)
	require.NoError(t, err)
	_, err = f.orderSvc.Checkout(ctx, cart.ID)
	require.NoError(t, err)

	_, err = f.svc.CreateAdjustment(ctx, bounty.ID, bid.ID, 2000)
	assert.ErrorIs(t, err, adjustmentdomain.ErrParentNotSettled)
}
