package handler

import (
	"medshop/internal/auth"
	"medshop/internal/middleware"
	"medshop/internal/websocket"
	"medshop/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers groups everything mounted under /api
type Handlers struct {
	Auth          *AuthHandler
	Health        *HealthHandler
	Inventory     *InventoryHandler
	Categories    *CategoryHandler
	Customers     *CustomerHandler
	Wholesalers   *WholesalerHandler
	Staff         *StaffHandler
	Bills         *BillHandler
	Invoices      *InvoiceHandler
	PurchaseOrder *PurchaseOrderHandler
	Dashboard     *DashboardHandler
}

type RouterConfig struct {
	CORSOrigins []string
	// ErrorDetail adds the error cause to failed responses
	ErrorDetail bool
	Swagger     bool
}

// NewRouter builds the gin engine with middleware, the /api routes, /ws and swagger
func NewRouter(cfg RouterConfig, log *logger.Logger, tokens *auth.TokenManager, hub *websocket.Hub, h Handlers) *gin.Engine {
	SetErrorDetail(cfg.ErrorDetail)

	router := gin.New()
	router.Use(middleware.RequestLogger(log), middleware.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition", middleware.HeaderRequestID}
	router.Use(cors.New(corsConfig))

	if cfg.Swagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	if hub != nil {
		router.GET("/ws", func(c *gin.Context) {
			websocket.ServeWs(hub, tokens, c)
		})
	}

	api := router.Group("/api")
	h.Health.RegisterRoutes(api)
	h.Auth.RegisterRoutes(api)

	protected := api.Group("", middleware.RequireAuth(tokens))
	h.Inventory.RegisterRoutes(protected)
	h.Categories.RegisterRoutes(protected)
	h.Customers.RegisterRoutes(protected)
	h.Wholesalers.RegisterRoutes(protected)
	h.Staff.RegisterRoutes(protected)
	h.Bills.RegisterRoutes(protected)
	h.Invoices.RegisterRoutes(protected)
	h.PurchaseOrder.RegisterRoutes(protected)
	h.Dashboard.RegisterRoutes(protected)

	return router
}
