package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/openunited/platform/internal/adjustment"
	adjustmentdomain "github.com/openunited/platform/internal/adjustment/domain"
	"github.com/openunited/platform/internal/audit"
	auditdomain "github.com/openunited/platform/internal/audit/domain"
	"github.com/openunited/platform/internal/cart"
	cartdomain "github.com/openunited/platform/internal/cart/domain"
	"github.com/openunited/platform/internal/clock"
	"github.com/openunited/platform/internal/config"
	"github.com/openunited/platform/internal/events"
	"github.com/openunited/platform/internal/fee"
	feedomain "github.com/openunited/platform/internal/fee/domain"
	"github.com/openunited/platform/internal/lock"
	"github.com/openunited/platform/internal/order"
	orderdomain "github.com/openunited/platform/internal/order/domain"
	"github.com/openunited/platform/internal/organization"
	orgdomain "github.com/openunited/platform/internal/organization/domain"
	"github.com/openunited/platform/internal/payment"
	"github.com/openunited/platform/internal/pointledger"
	ledgerdomain "github.com/openunited/platform/internal/pointledger/domain"
	"github.com/openunited/platform/internal/tax"
	taxdomain "github.com/openunited/platform/internal/tax/domain"
	"github.com/openunited/platform/internal/workitem"
	workitemdomain "github.com/openunited/platform/internal/workitem/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	clock.Module,
	events.Module,
	lock.Module,
	audit.Module,
	organization.Module,
	workitem.Module,
	pointledger.Module,
	fee.Module,
	tax.Module,
	cart.Module,
	payment.Module,
	order.Module,
	adjustment.Module,
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	genID         *snowflake.Node
	orgSvc        orgdomain.Service
	ledgerSvc     ledgerdomain.Service
	workItemSvc   workitemdomain.Service
	cartSvc       cartdomain.Service
	orderSvc      orderdomain.Service
	adjustmentSvc adjustmentdomain.Service
	feeSvc        feedomain.Service
	taxResolver   taxdomain.Resolver
	auditSvc      auditdomain.Service
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	GenID         *snowflake.Node
	OrgSvc        orgdomain.Service
	LedgerSvc     ledgerdomain.Service
	WorkItemSvc   workitemdomain.Service
	CartSvc       cartdomain.Service
	OrderSvc      orderdomain.Service
	AdjustmentSvc adjustmentdomain.Service
	FeeSvc        feedomain.Service
	TaxResolver   taxdomain.Resolver
	AuditSvc      auditdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		genID:         p.GenID,
		orgSvc:        p.OrgSvc,
		ledgerSvc:     p.LedgerSvc,
		workItemSvc:   p.WorkItemSvc,
		cartSvc:       p.CartSvc,
		orderSvc:      p.OrderSvc,
		adjustmentSvc: p.AdjustmentSvc,
		feeSvc:        p.FeeSvc,
		taxResolver:   p.TaxResolver,
		auditSvc:      p.AuditSvc,
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.POST("/organisations", s.CreateOrganisation)
	api.GET("/organisations/:id", s.GetOrganisation)
	api.GET("/organisations/:id/wallet", s.GetWallet)
	api.GET("/organisations/:id/points", s.GetOrgPointBalance)
	api.POST("/organisations/:id/grants", s.CreateGrant)

	api.GET("/products/:id/points", s.GetProductPointBalance)
	api.GET("/point-transactions", s.ListPointTransactions)

	api.POST("/products", s.CreateProduct)
	api.POST("/challenges", s.CreateChallenge)
	api.POST("/competitions", s.CreateCompetition)
	api.POST("/bounties", s.CreateBounty)
	api.GET("/bounties/:id", s.GetBounty)
	api.POST("/bounties/:id/bids", s.PlaceBid)
	api.POST("/bids/:id/accept", s.AcceptBid)

	api.POST("/carts", s.CreateCart)
	api.GET("/carts/:id", s.GetCart)
	api.POST("/carts/:id/items", s.AddCartItem)
	api.DELETE("/carts/:id/items/:item_id", s.RemoveCartItem)
	api.POST("/carts/:id/checkout", s.CheckoutCart)
	api.POST("/carts/:id/abandon", s.AbandonCart)

	api.GET("/sales-orders/:id", s.GetSalesOrder)
	api.POST("/sales-orders/:id/process", s.ProcessSalesOrder)
	api.POST("/sales-orders/:id/refund", s.RefundSalesOrder)

	api.GET("/point-orders/:id", s.GetPointOrder)
	api.POST("/point-orders/:id/complete", s.CompletePointOrder)
	api.POST("/point-orders/:id/refund", s.RefundPointOrder)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/api/admin")

	admin.POST("/fee-configurations", s.CreateFeeConfiguration)
	admin.GET("/fee-configurations", s.ListFeeConfigurations)
	admin.PUT("/organisations/:id/tax-rate", s.SetOrganisationTaxRate)
	admin.GET("/organisations/:id/audit-logs", s.ListAuditLogs)
}
