package migration

import (
	auditdomain "github.com/openunited/platform/internal/audit/domain"
	cartdomain "github.com/openunited/platform/internal/cart/domain"
	"github.com/openunited/platform/internal/config"
	feedomain "github.com/openunited/platform/internal/fee/domain"
	orderdomain "github.com/openunited/platform/internal/order/domain"
	orgdomain "github.com/openunited/platform/internal/organization/domain"
	ledgerdomain "github.com/openunited/platform/internal/pointledger/domain"
	"github.com/openunited/platform/internal/seed"
	taxdomain "github.com/openunited/platform/internal/tax/domain"
	workitemdomain "github.com/openunited/platform/internal/workitem/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, settings *config.SettlementConfigHolder) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// SQLite and MySQL installs derive the schema from the models.
			if err := conn.AutoMigrate(
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
				&auditdomain.AuditLog{},
			); err != nil {
				return err
			}
		}

		feePercent := settings.Get().FeePercent
		if cfg.DefaultOrgID != 0 {
			return seed.EnsureMainOrgWithID(conn, cfg.DefaultOrgID, feePercent)
		}
		return seed.EnsureMainOrg(conn, feePercent)
	}),
)
