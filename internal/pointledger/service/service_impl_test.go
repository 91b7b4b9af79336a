package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	ledgerdomain "github.com/openunited/platform/internal/pointledger/domain"
	"github.com/openunited/platform/internal/pointledger/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (ledgerdomain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&ledgerdomain.OrganisationPointAccount{},
		&ledgerdomain.ProductPointAccount{},
		&ledgerdomain.PointTransaction{},
		&ledgerdomain.OrganisationPointGrant{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.NewRepository(db),
	})
	return svc, db, node
}

func countTransactions(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&ledgerdomain.PointTransaction{}).Count(&count).Error)
	return count
}

func TestGrantCreditsOrganisation(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()
	orgID := node.Generate()
	adminID := node.Generate()

	grant, err := svc.Grant(ctx, orgID, 500, adminID, "Q3 budget")
	require.NoError(t, err)
	assert.Equal(t, int64(500), grant.Amount)
	assert.Equal(t, "Q3 budget", grant.Rationale)

	balance, err := svc.OrgBalance(ctx, orgID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), balance)

	var rows []ledgerdomain.PointTransaction
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, ledgerdomain.TransactionGrant, rows[0].Type)
	assert.Equal(t, "Grant: Q3 budget", rows[0].Description)
	assert.NotNil(t, rows[0].OrgAccountID)
	assert.Nil(t, rows[0].ProductAccountID)
}

func TestGrantRejectsNonPositiveAmount(t *testing.T) {
	svc, _, node := newTestService(t)

	_, err := svc.Grant(context.Background(), node.Generate(), 0, node.Generate(), "nothing")
	assert.ErrorIs(t, err, ledgerdomain.ErrInvalidAmount)

	_, err = svc.Grant(context.Background(), node.Generate(), -10, node.Generate(), "negative")
	assert.ErrorIs(t, err, ledgerdomain.ErrInvalidAmount)
}

func TestUseOrgPointsInsufficientBalance(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()
	orgID := node.Generate()

	used, err := svc.UseOrgPoints(ctx, nil, orgID, 100, "attempt")
	require.NoError(t, err)
	assert.False(t, used)
	assert.Equal(t, int64(0), countTransactions(t, db))

	balance, err := svc.OrgBalance(ctx, orgID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestUseOrgPointsDebitsExactly(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()
	orgID := node.Generate()

	_, err := svc.Grant(ctx, orgID, 300, node.Generate(), "budget")
	require.NoError(t, err)

	used, err := svc.UseOrgPoints(ctx, nil, orgID, 300, "spend all")
	require.NoError(t, err)
	assert.True(t, used)

	balance, err := svc.OrgBalance(ctx, orgID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
	assert.Equal(t, int64(2), countTransactions(t, db))
}

func TestTransferToProductMovesPoints(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()
	orgID := node.Generate()
	productID := node.Generate()

	_, err := svc.Grant(ctx, orgID, 400, node.Generate(), "budget")
	require.NoError(t, err)

	moved, err := svc.TransferToProduct(ctx, nil, orgID, productID, 400, "cart checkout")
	require.NoError(t, err)
	assert.True(t, moved)

	orgBalance, err := svc.OrgBalance(ctx, orgID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), orgBalance)

	productBalance, err := svc.ProductBalance(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(400), productBalance)

	// One USE row on the source, one TRANSFER row on the destination.
	var rows []ledgerdomain.PointTransaction
	require.NoError(t, db.Where("description = ?", "cart checkout").Order("id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, ledgerdomain.TransactionUse, rows[0].Type)
	assert.NotNil(t, rows[0].OrgAccountID)
	assert.Equal(t, ledgerdomain.TransactionTransfer, rows[1].Type)
	assert.NotNil(t, rows[1].ProductAccountID)
}

func TestTransferInsufficientBalanceNoRows(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()
	orgID := node.Generate()
	productID := node.Generate()

	_, err := svc.Grant(ctx, orgID, 100, node.Generate(), "budget")
	require.NoError(t, err)
	before := countTransactions(t, db)

	moved, err := svc.TransferToProduct(ctx, nil, orgID, productID, 101, "too much")
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Equal(t, before, countTransactions(t, db))

	orgBalance, err := svc.OrgBalance(ctx, orgID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), orgBalance)
}

func TestRefundTransferRestoresBalances(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()
	orgID := node.Generate()
	productID := node.Generate()

	_, err := svc.Grant(ctx, orgID, 400, node.Generate(), "budget")
	require.NoError(t, err)
	moved, err := svc.TransferToProduct(ctx, nil, orgID, productID, 400, "cart checkout")
	require.NoError(t, err)
	require.True(t, moved)

	refunded, err := svc.RefundTransfer(ctx, nil, orgID, productID, 400, "refund order")
	require.NoError(t, err)
	assert.True(t, refunded)

	orgBalance, err := svc.OrgBalance(ctx, orgID)
	require.NoError(t, err)
	assert.Equal(t, int64(400), orgBalance)

	productBalance, err := svc.ProductBalance(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), productBalance)

	var rows []ledgerdomain.PointTransaction
	require.NoError(t, db.Where("type = ?", ledgerdomain.TransactionRefund).Find(&rows).Error)
	assert.Len(t, rows, 2)
}

func TestRefundTransferFailsWhenProductDrained(t *testing.T) {
	svc, _, node := newTestService(t)
	ctx := context.Background()
	orgID := node.Generate()
	productID := node.Generate()

	refunded, err := svc.RefundTransfer(ctx, nil, orgID, productID, 50, "nothing to refund")
	require.NoError(t, err)
	assert.False(t, refunded)
}

func TestListTransactionsFiltersByAccount(t *testing.T) {
	svc, _, node := newTestService(t)
	ctx := context.Background()
	orgID := node.Generate()
	productID := node.Generate()

	_, err := svc.Grant(ctx, orgID, 400, node.Generate(), "budget")
	require.NoError(t, err)
	_, err = svc.TransferToProduct(ctx, nil, orgID, productID, 100, "checkout")
	require.NoError(t, err)

	account, err := svc.EnsureProductAccount(ctx, nil, productID)
	require.NoError(t, err)

	rows, err := svc.ListTransactions(ctx, ledgerdomain.TransactionFilter{ProductAccountID: &account.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, ledgerdomain.TransactionTransfer, rows[0].Type)
}
