package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	orgdomain "github.com/openunited/platform/internal/organization/domain"
	"github.com/openunited/platform/internal/organization/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (orgdomain.Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&orgdomain.Organisation{},
		&orgdomain.Wallet{},
		&orgdomain.WalletTransaction{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.NewRepository(db),
	}), db
}

func TestCreateValidatesNameAndCountry(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, orgdomain.CreateRequest{Name: "  "})
	assert.ErrorIs(t, err, orgdomain.ErrInvalidName)

	_, err = svc.Create(ctx, orgdomain.CreateRequest{Name: "Acme", Country: "DEU"})
	assert.ErrorIs(t, err, orgdomain.ErrInvalidCountry)

	org, err := svc.Create(ctx, orgdomain.CreateRequest{Name: "Acme", Country: "de"})
	require.NoError(t, err)
	assert.Equal(t, "DE", org.Country)
}

func TestEnsureWalletIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	org, err := svc.Create(ctx, orgdomain.CreateRequest{Name: "Acme"})
	require.NoError(t, err)

	first, err := svc.EnsureWallet(ctx, nil, org.ID)
	require.NoError(t, err)
	second, err := svc.EnsureWallet(ctx, nil, org.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(0), second.BalanceUSDCents)
}

func TestCreditAndDebitWallet(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	org, err := svc.Create(ctx, orgdomain.CreateRequest{Name: "Acme"})
	require.NoError(t, err)

	require.NoError(t, svc.CreditWallet(ctx, nil, org.ID, 2500, "decrease adjustment"))

	debited, err := svc.DebitWallet(ctx, nil, org.ID, 1000, "applied to invoice")
	require.NoError(t, err)
	assert.True(t, debited)

	wallet, err := svc.EnsureWallet(ctx, nil, org.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), wallet.BalanceUSDCents)

	var rows []orgdomain.WalletTransaction
	require.NoError(t, db.Order("id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, orgdomain.WalletTransactionCredit, rows[0].Type)
	assert.Equal(t, orgdomain.WalletTransactionDebit, rows[1].Type)
}

func TestDebitWalletInsufficientFunds(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	org, err := svc.Create(ctx, orgdomain.CreateRequest{Name: "Acme"})
	require.NoError(t, err)
	require.NoError(t, svc.CreditWallet(ctx, nil, org.ID, 100, "seed"))

	debited, err := svc.DebitWallet(ctx, nil, org.ID, 101, "too much")
	require.NoError(t, err)
	assert.False(t, debited)

	wallet, err := svc.EnsureWallet(ctx, nil, org.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), wallet.BalanceUSDCents)

	var count int64
	require.NoError(t, db.Model(&orgdomain.WalletTransaction{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
