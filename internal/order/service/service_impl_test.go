package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
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
	orgdomain "github.com/openunited/platform/internal/organization/domain"
	orgrepository "github.com/openunited/platform/internal/organization/repository"
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

type fakeCharger struct {
	failCharge bool
	charges    []int64
	refunds    []int64
}

func (f *fakeCharger) Charge(ctx context.Context, orgID snowflake.ID, amountCents int64, reference string) error {
	if f.failCharge {
		return errors.New("card declined")
	}
	f.charges = append(f.charges, amountCents)
	return nil
}

func (f *fakeCharger) Refund(ctx context.Context, orgID snowflake.ID, amountCents int64, reference string) error {
	f.refunds = append(f.refunds, amountCents)
	return nil
}

type settlementFixture struct {
	svc          orderdomain.Service
	cartSvc      cartdomain.Service
	ledger       ledgerdomain.Service
	charger      *fakeCharger
	dispatcher   *events.Dispatcher
	workItemRepo workitemdomain.Repository
	db           *gorm.DB
	node         *snowflake.Node
	org          *orgdomain.Organisation
	product      *workitemdomain.Product
}

func newSettlementFixture(t *testing.T, country string) *settlementFixture {
	t.Helper()

	// A named shared-cache database keeps every pooled connection on the
	// same store; a plain :memory: DSN gives each connection its own.
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
	org := &orgdomain.Organisation{
		ID:        node.Generate(),
		Name:      "Acme",
		Country:   country,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, orgRepo.Create(ctx, org))

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

	activator := workitemservice.NewActivator(workitemservice.ActivatorParams{
		Log:  log,
		Repo: workItemRepo,
	})

	charger := &fakeCharger{}
	dispatcher := events.NewDispatcher(log)

	svc := NewService(Params{
		DB:         db,
		Log:        log,
		GenID:      node,
		Repo:       orderrepository.NewRepository(db),
		CartSvc:    cartSvc,
		CartRepo:   cartRepo,
		Ledger:     ledger,
		Charger:    charger,
		Activator:  activator,
		Dispatcher: dispatcher,
	})

	return &settlementFixture{
		svc:          svc,
		cartSvc:      cartSvc,
		ledger:       ledger,
		charger:      charger,
		dispatcher:   dispatcher,
		workItemRepo: workItemRepo,
		db:           db,
		node:         node,
		org:          org,
		product:      product,
	}
}

func (f *settlementFixture) createChallengeBounty(t *testing.T, rewardType workitemdomain.RewardType, amount int64) (*workitemdomain.Challenge, *workitemdomain.Bounty) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	challenge := &workitemdomain.Challenge{
		ID:        f.node.Generate(),
		ProductID: f.product.ID,
		Title:     "Ship the widget",
		Status:    workitemdomain.ChallengeStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.workItemRepo.CreateChallenge(ctx, challenge))

	bounty := &workitemdomain.Bounty{
		ID:           f.node.Generate(),
		ProductID:    f.product.ID,
		ChallengeID:  &challenge.ID,
		Title:        "Fix the parser",
		Status:       workitemdomain.BountyStatusAvailable,
		RewardType:   rewardType,
		RewardAmount: amount,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, f.workItemRepo.CreateBounty(ctx, bounty))
	return challenge, bounty
}

func (f *settlementFixture) fundedCart(t *testing.T, bounty *workitemdomain.Bounty, funding cartdomain.FundingType, amount int64) *cartdomain.Cart {
	t.Helper()
	ctx := context.Background()

	cart, err := f.cartSvc.Create(ctx, f.node.Generate(), f.org.ID, f.product.ID)
	require.NoError(t, err)
	_, err = f.cartSvc.AddBountyItem(ctx, cart.ID, bounty.ID, funding, amount)
	require.NoError(t, err)
	return cart
}

func (f *settlementFixture) challengeStatus(t *testing.T, id snowflake.ID) workitemdomain.ChallengeStatus {
	t.Helper()
	challenge, err := f.workItemRepo.FindChallenge(context.Background(), nil, id)
	require.NoError(t, err)
	require.NotNil(t, challenge)
	return challenge.Status
}

func (f *settlementFixture) cartStatus(t *testing.T, id snowflake.ID) cartdomain.CartStatus {
	t.Helper()
	var cart cartdomain.Cart
	require.NoError(t, f.db.First(&cart, "id = ?", id).Error)
	return cart.Status
}

func TestCheckoutFreezesTotals(t *testing.T) {
	f := newSettlementFixture(t, "DE")
	_, bounty := f.createChallengeBounty(t, workitemdomain.RewardTypeUSD, 10000)
	cart := f.fundedCart(t, bounty, cartdomain.FundingUSD, 10000)

	result, err := f.svc.Checkout(context.Background(), cart.ID)
	require.NoError(t, err)
	require.NotNil(t, result.SalesOrder)
	assert.Nil(t, result.PointOrder)

	order := result.SalesOrder
	assert.Equal(t, int64(10000), order.SubtotalCents)
	assert.Equal(t, int64(1000), order.FeeCents)
	assert.Equal(t, int64(2200), order.TaxCents)
	assert.Equal(t, int64(13200), order.TotalCents)
	assert.Equal(t, orderdomain.SalesOrderStatusPending, order.Status)
	assert.Equal(t, cartdomain.CartStatusCheckout, f.cartStatus(t, cart.ID))
}

func TestCheckoutEmptyCartFails(t *testing.T) {
	f := newSettlementFixture(t, "US")
	cart, err := f.cartSvc.Create(context.Background(), f.node.Generate(), f.org.ID, f.product.ID)
	require.NoError(t, err)

	_, err = f.svc.Checkout(context.Background(), cart.ID)
	assert.ErrorIs(t, err, orderdomain.ErrEmptyCart)
}

func TestCheckoutMixedFundingMintsBothOrders(t *testing.T) {
	f := newSettlementFixture(t, "US")
	_, usdBounty := f.createChallengeBounty(t, workitemdomain.RewardTypeUSD, 5000)
	_, pointBounty := f.createChallengeBounty(t, workitemdomain.RewardTypePoints, 400)

	ctx := context.Background()
	cart, err := f.cartSvc.Create(ctx, f.node.Generate(), f.org.ID, f.product.ID)
	require.NoError(t, err)
	_, err = f.cartSvc.AddBountyItem(ctx, cart.ID, usdBounty.ID, cartdomain.FundingUSD, 5000)
	require.NoError(t, err)
	_, err = f.cartSvc.AddBountyItem(ctx, cart.ID, pointBounty.ID, cartdomain.FundingPoints, 400)
	require.NoError(t, err)

	result, err := f.svc.Checkout(ctx, cart.ID)
	require.NoError(t, err)
	require.NotNil(t, result.SalesOrder)
	require.NotNil(t, result.PointOrder)
	assert.Equal(t, int64(400), result.PointOrder.TotalPoints)
}

func TestProcessSalesOrderSettles(t *testing.T) {
	f := newSettlementFixture(t, "DE")
	challenge, bounty := f.createChallengeBounty(t, workitemdomain.RewardTypeUSD, 10000)
	cart := f.fundedCart(t, bounty, cartdomain.FundingUSD, 10000)

	var published int
	f.dispatcher.Subscribe(events.EventOrderCompleted, func(ctx context.Context, tx *gorm.DB, evt events.Event) error {
		published++
		return nil
	})

	ctx := context.Background()
	result, err := f.svc.Checkout(ctx, cart.ID)
	require.NoError(t, err)

	settled, err := f.svc.ProcessSalesOrder(ctx, result.SalesOrder.ID)
	require.NoError(t, err)
	assert.True(t, settled)

	order, err := f.svc.GetSalesOrder(ctx, result.SalesOrder.ID)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.SalesOrderStatusCompleted, order.Status)
	assert.Equal(t, []int64{13200}, f.charger.charges)
	assert.Equal(t, workitemdomain.ChallengeStatusActive, f.challengeStatus(t, challenge.ID))
	assert.Equal(t, cartdomain.CartStatusCompleted, f.cartStatus(t, cart.ID))
	assert.Equal(t, 1, published)

	// Re-processing a settled order is a no-op.
	settled, err = f.svc.ProcessSalesOrder(ctx, result.SalesOrder.ID)
	require.NoError(t, err)
	assert.False(t, settled)
	assert.Len(t, f.charger.charges, 1)
}

func TestProcessSalesOrderChargeFailureParksFailed(t *testing.T) {
	f := newSettlementFixture(t, "US")
	challenge, bounty := f.createChallengeBounty(t, workitemdomain.RewardTypeUSD, 10000)
	cart := f.fundedCart(t, bounty, cartdomain.FundingUSD, 10000)

	ctx := context.Background()
	result, err := f.svc.Checkout(ctx, cart.ID)
	require.NoError(t, err)

	f.charger.failCharge = true
	settled, err := f.svc.ProcessSalesOrder(ctx, result.SalesOrder.ID)
	require.NoError(t, err)
	assert.False(t, settled)

	order, err := f.svc.GetSalesOrder(ctx, result.SalesOrder.ID)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.SalesOrderStatusFailed, order.Status)
	assert.Equal(t, workitemdomain.ChallengeStatusDraft, f.challengeStatus(t, challenge.ID))
	assert.Equal(t, cartdomain.CartStatusCheckout, f.cartStatus(t, cart.ID))

	// A failed order never settles, even with a working gateway.
	f.charger.failCharge = false
	settled, err = f.svc.ProcessSalesOrder(ctx, result.SalesOrder.ID)
	require.NoError(t, err)
	assert.False(t, settled)
}

func TestRefundSalesOrderReverses(t *testing.T) {
	f := newSettlementFixture(t, "US")
	challenge, bounty := f.createChallengeBounty(t, workitemdomain.RewardTypeUSD, 10000)
	cart := f.fundedCart(t, bounty, cartdomain.FundingUSD, 10000)

	ctx := context.Background()
	result, err := f.svc.Checkout(ctx, cart.ID)
	require.NoError(t, err)

	// Refunding before settlement does nothing.
	refunded, err := f.svc.RefundSalesOrder(ctx, result.SalesOrder.ID)
	require.NoError(t, err)
	assert.False(t, refunded)

	settled, err := f.svc.ProcessSalesOrder(ctx, result.SalesOrder.ID)
	require.NoError(t, err)
	require.True(t, settled)

	refunded, err = f.svc.RefundSalesOrder(ctx, result.SalesOrder.ID)
	require.NoError(t, err)
	assert.True(t, refunded)

	order, err := f.svc.GetSalesOrder(ctx, result.SalesOrder.ID)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.SalesOrderStatusRefunded, order.Status)
	assert.Equal(t, []int64{11000}, f.charger.refunds)
	assert.Equal(t, workitemdomain.ChallengeStatusDraft, f.challengeStatus(t, challenge.ID))
}

func TestCompletePointOrderTransfersPoints(t *testing.T) {
	f := newSettlementFixture(t, "US")
	challenge, bounty := f.createChallengeBounty(t, workitemdomain.RewardTypePoints, 400)
	cart := f.fundedCart(t, bounty, cartdomain.FundingPoints, 400)

	ctx := context.Background()
	_, err := f.ledger.Grant(ctx, f.org.ID, 500, f.node.Generate(), "budget")
	require.NoError(t, err)

	result, err := f.svc.Checkout(ctx, cart.ID)
	require.NoError(t, err)
	require.NotNil(t, result.PointOrder)
	assert.Nil(t, result.SalesOrder)

	settled, err := f.svc.CompletePointOrder(ctx, result.PointOrder.ID)
	require.NoError(t, err)
	assert.True(t, settled)

	orgBalance, err := f.ledger.OrgBalance(ctx, f.org.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), orgBalance)

	productBalance, err := f.ledger.ProductBalance(ctx, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(400), productBalance)

	assert.Equal(t, workitemdomain.ChallengeStatusActive, f.challengeStatus(t, challenge.ID))
	assert.Equal(t, cartdomain.CartStatusCompleted, f.cartStatus(t, cart.ID))
}

func TestCompletePointOrderInsufficientBalanceStaysPending(t *testing.T) {
	f := newSettlementFixture(t, "US")
	_, bounty := f.createChallengeBounty(t, workitemdomain.RewardTypePoints, 400)
	cart := f.fundedCart(t, bounty, cartdomain.FundingPoints, 400)

	ctx := context.Background()
	_, err := f.ledger.Grant(ctx, f.org.ID, 399, f.node.Generate(), "not quite enough")
	require.NoError(t, err)

	result, err := f.svc.Checkout(ctx, cart.ID)
	require.NoError(t, err)

	settled, err := f.svc.CompletePointOrder(ctx, result.PointOrder.ID)
	require.NoError(t, err)
	assert.False(t, settled)

	order, err := f.svc.GetPointOrder(ctx, result.PointOrder.ID)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.PointOrderStatusPending, order.Status)

	orgBalance, err := f.ledger.OrgBalance(ctx, f.org.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(399), orgBalance)

	// Topping up lets the same order settle.
	_, err = f.ledger.Grant(ctx, f.org.ID, 1, f.node.Generate(), "top up")
	require.NoError(t, err)
	settled, err = f.svc.CompletePointOrder(ctx, result.PointOrder.ID)
	require.NoError(t, err)
	assert.True(t, settled)
}

func TestRefundPointOrderRestoresBalances(t *testing.T) {
	f := newSettlementFixture(t, "US")
	challenge, bounty := f.createChallengeBounty(t, workitemdomain.RewardTypePoints, 400)
	cart := f.fundedCart(t, bounty, cartdomain.FundingPoints, 400)

	ctx := context.Background()
	_, err := f.ledger.Grant(ctx, f.org.ID, 400, f.node.Generate(), "budget")
	require.NoError(t, err)

	result, err := f.svc.Checkout(ctx, cart.ID)
	require.NoError(t, err)
	settled, err := f.svc.CompletePointOrder(ctx, result.PointOrder.ID)
	require.NoError(t, err)
	require.True(t, settled)

	refunded, err := f.svc.RefundPointOrder(ctx, result.PointOrder.ID)
	require.NoError(t, err)
	assert.True(t, refunded)

	orgBalance, err := f.ledger.OrgBalance(ctx, f.org.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(400), orgBalance)

	productBalance, err := f.ledger.ProductBalance(ctx, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), productBalance)

	assert.Equal(t, workitemdomain.ChallengeStatusDraft, f.challengeStatus(t, challenge.ID))
}
