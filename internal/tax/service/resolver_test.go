package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	taxdomain "github.com/openunited/platform/internal/tax/domain"
	"github.com/openunited/platform/internal/tax/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestResolver(t *testing.T) (taxdomain.Resolver, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&taxdomain.TaxRate{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewResolver(Params{
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.NewRepository(db),
	}), node
}

func TestResolveRateEUCountriesGetVAT(t *testing.T) {
	resolver, node := newTestResolver(t)
	ctx := context.Background()
	orgID := node.Generate()

	for _, country := range []string{"DE", "FR", "nl", " ie "} {
		rate, err := resolver.ResolveRateBps(ctx, nil, orgID, country)
		require.NoError(t, err)
		assert.Equal(t, EUVATStandardBps, rate, "country %q", country)
	}
}

func TestResolveRateNonEUIsZero(t *testing.T) {
	resolver, node := newTestResolver(t)
	ctx := context.Background()

	for _, country := range []string{"US", "GB", "CH", "NO", "JP", ""} {
		rate, err := resolver.ResolveRateBps(ctx, nil, node.Generate(), country)
		require.NoError(t, err)
		assert.Equal(t, int64(0), rate, "country %q", country)
	}
}

func TestOrganisationRateOverridesCountry(t *testing.T) {
	resolver, node := newTestResolver(t)
	ctx := context.Background()
	orgID := node.Generate()

	_, err := resolver.SetOrganisationRate(ctx, orgID, 850)
	require.NoError(t, err)

	rate, err := resolver.ResolveRateBps(ctx, nil, orgID, "DE")
	require.NoError(t, err)
	assert.Equal(t, int64(850), rate)

	// A zero override suppresses VAT for an EU buyer.
	_, err = resolver.SetOrganisationRate(ctx, orgID, 0)
	require.NoError(t, err)
	rate, err = resolver.ResolveRateBps(ctx, nil, orgID, "DE")
	require.NoError(t, err)
	assert.Equal(t, int64(0), rate)
}

func TestSetOrganisationRateValidatesRange(t *testing.T) {
	resolver, node := newTestResolver(t)

	_, err := resolver.SetOrganisationRate(context.Background(), node.Generate(), 10001)
	assert.ErrorIs(t, err, taxdomain.ErrInvalidRate)

	_, err = resolver.SetOrganisationRate(context.Background(), node.Generate(), -1)
	assert.ErrorIs(t, err, taxdomain.ErrInvalidRate)
}

func TestComputeTaxTruncates(t *testing.T) {
	// 20% VAT on a fee-inclusive 11000 cents.
	assert.Equal(t, int64(2200), taxdomain.ComputeTax(11000, 2000))
	assert.Equal(t, int64(1100), taxdomain.ComputeTax(11000, 1000))
	assert.Equal(t, int64(0), taxdomain.ComputeTax(4, 2000))
	assert.Equal(t, int64(0), taxdomain.ComputeTax(11000, 0))
}
