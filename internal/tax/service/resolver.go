package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/openunited/platform/internal/config"
	taxdomain "github.com/openunited/platform/internal/tax/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EU member states, ISO 3166-1 alpha-2.
var euCountries = map[string]struct{}{
	"AT": {}, "BE": {}, "BG": {}, "HR": {}, "CY": {}, "CZ": {}, "DK": {},
	"EE": {}, "FI": {}, "FR": {}, "DE": {}, "GR": {}, "HU": {}, "IE": {},
	"IT": {}, "LV": {}, "LT": {}, "LU": {}, "MT": {}, "NL": {}, "PL": {},
	"PT": {}, "RO": {}, "SK": {}, "SI": {}, "ES": {}, "SE": {},
}

// EUVATStandardBps is the flat VAT rate applied to EU buyers without an
// organisation-specific rate.
const EUVATStandardBps int64 = 2000

type Params struct {
	fx.In

	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     taxdomain.Repository
	Settings *config.SettlementConfigHolder `optional:"true"`
}

type resolver struct {
	log      *zap.Logger
	genID    *snowflake.Node
	repo     taxdomain.Repository
	settings *config.SettlementConfigHolder
}

func NewResolver(p Params) taxdomain.Resolver {
	return &resolver{
		log:      p.Log.Named("tax.resolver"),
		genID:    p.GenID,
		repo:     p.Repo,
		settings: p.Settings,
	}
}

func (r *resolver) ResolveRateBps(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, buyerCountry string) (int64, error) {
	if orgID != 0 {
		rate, err := r.repo.FindByOrganisation(ctx, tx, orgID)
		if err != nil {
			return 0, err
		}
		if rate != nil {
			return rate.RateBps, nil
		}
	}

	country := strings.ToUpper(strings.TrimSpace(buyerCountry))
	if _, ok := euCountries[country]; ok {
		if r.settings != nil {
			return r.settings.Get().EUVATRateBps, nil
		}
		return EUVATStandardBps, nil
	}
	return 0, nil
}

func (r *resolver) SetOrganisationRate(ctx context.Context, orgID snowflake.ID, rateBps int64) (*taxdomain.TaxRate, error) {
	now := time.Now().UTC()
	rate := &taxdomain.TaxRate{
		ID:             r.genID.Generate(),
		OrganisationID: orgID,
		RateBps:        rateBps,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := rate.Validate(); err != nil {
		return nil, err
	}
	if err := r.repo.Upsert(ctx, rate); err != nil {
		return nil, err
	}
	return rate, nil
}

// IsEUCountry reports whether the country code is in the EU set.
func IsEUCountry(country string) bool {
	_, ok := euCountries[strings.ToUpper(strings.TrimSpace(country))]
	return ok
}
