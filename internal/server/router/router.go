package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nkhandelwal3/sauda-backend/internal/config"
	"github.com/nkhandelwal3/sauda-backend/internal/server/handlers"
)

// Handlers bundles the route handlers wired into the engine. Export may be
// nil when the sheets integration is not configured.
type Handlers struct {
	Brokers   *handlers.BrokerHandler
	Deals     *handlers.DealHandler
	Lots      *handlers.LotHandler
	Shipments *handlers.ShipmentHandler
	Export    *handlers.ExportHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(cfg config.ServerConfig, h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	brokers := r.Group("/brokers")
	{
		brokers.POST("", h.Brokers.Create)
		brokers.GET("", h.Brokers.List)
		brokers.GET("/:brokerID", h.Brokers.Get)
		brokers.POST("/:brokerID/ledger", h.Brokers.PostLedgerEntry)
		brokers.GET("/:brokerID/ledger", h.Brokers.ListLedger)
	}

	deals := r.Group("/deals")
	{
		deals.POST("", h.Deals.Create)
		deals.GET("", h.Deals.List)
		deals.GET("/:dealID", h.Deals.Get)
		deals.PATCH("/:dealID/status", h.Deals.UpdateStatus)
		deals.DELETE("/:dealID", h.Deals.Delete)
		deals.GET("/:dealID/analytics", h.Deals.Analytics)
		deals.POST("/:dealID/cost-estimate", h.Deals.PostCostEstimate)

		deals.GET("/:dealID/lots", h.Lots.ListForDeal)
		deals.GET("/:dealID/lots/:lotID", h.Lots.Get)
		deals.PATCH("/:dealID/lots/:lotID", h.Lots.Update)
		deals.PATCH("/:dealID/lots", h.Lots.UpdateBatch)

		deals.POST("/:dealID/lots/:lotID/shipments", h.Shipments.Create)
		deals.GET("/:dealID/lots/:lotID/shipments", h.Shipments.ListForLot)
		deals.POST("/:dealID/shipments", h.Shipments.CreateBatch)
		deals.GET("/:dealID/shipments", h.Shipments.ListForDeal)
		deals.DELETE("/:dealID/lots/:lotID/shipments/:shipmentID", h.Shipments.Delete)
	}

	shipments := r.Group("/shipments")
	{
		shipments.GET("/:shipmentID", h.Shipments.Get)
		shipments.PATCH("/:shipmentID", h.Shipments.Update)
		shipments.PATCH("", h.Shipments.UpdateBatch)
	}

	if h.Export != nil {
		exports := r.Group("/exports")
		exports.POST("/brokers/:brokerID/statement", h.Export.BrokerStatement)
		exports.POST("/deals/progress", h.Export.DealProgress)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
