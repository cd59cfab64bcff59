package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	_ "medshop/api/swagger" // swagger docs
	"medshop/internal/auth"
	"medshop/internal/cache"
	"medshop/internal/config"
	"medshop/internal/database"
	"medshop/internal/handler"
	"medshop/internal/repository"
	"medshop/internal/service"
	"medshop/internal/validation"
	"medshop/internal/websocket"
	"medshop/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title           Medshop Pharmacy API
// @version         1.0
// @description     Back-office API for a pharmacy: inventory, sales invoices, purchase orders, bills and dashboard.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.LoadEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog, err := logger.New(logger.Config{
		Level:       cfg.Logger.Level,
		Development: cfg.Server.IsDevelopment(),
	})
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() { _ = appLog.Sync() }()
	logger.SetDefault(appLog)

	if err := run(cfg, appLog); err != nil {
		appLog.Fatalw("server stopped with error", "error", err)
	}
}

func run(cfg *config.Config, appLog *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(cfg.Postgres, cfg.Logger, appLog)
	if err != nil {
		return err
	}
	appLog.Infow("connected to PostgreSQL", "host", cfg.Postgres.Host, "db", cfg.Postgres.DBName)

	statsCache, err := cache.New(ctx, cfg.Redis)
	if err != nil {
		// the dashboard works uncached
		appLog.Warnw("redis unavailable, dashboard cache disabled", "addr", cfg.Redis.Addr, "error", err)
		statsCache = cache.Noop{}
	}
	if closer, ok := statsCache.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(appLog)
	go wsHub.Run(ctx)

	tokens := auth.NewTokenManager(cfg.JWT)
	validation.Register()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	wholesalerRepo := repository.NewWholesalerRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	poRepo := repository.NewPurchaseOrderRepository(db)

	userService := service.NewUserService(repository.NewUserRepository(db), txManager, tokens)
	inventoryService := service.NewInventoryService(inventoryRepo, categoryRepo, txManager, wsHub, statsCache)
	invoiceService := service.NewInvoiceService(invoiceRepo, inventoryRepo, customerRepo, txManager, wsHub, statsCache)
	poService := service.NewPurchaseOrderService(poRepo, inventoryRepo, wholesalerRepo, txManager, wsHub, statsCache)
	dashboardService := service.NewDashboardService(repository.NewDashboardRepository(db), invoiceRepo, poRepo, statsCache)

	handlers := handler.Handlers{
		Auth:          handler.NewAuthHandler(userService, tokens),
		Health:        handler.NewHealthHandler(db),
		Inventory:     handler.NewInventoryHandler(inventoryService),
		Categories:    handler.NewCategoryHandler(service.NewCategoryService(categoryRepo)),
		Customers:     handler.NewCustomerHandler(service.NewCustomerService(customerRepo)),
		Wholesalers:   handler.NewWholesalerHandler(service.NewWholesalerService(wholesalerRepo)),
		Staff:         handler.NewStaffHandler(service.NewStaffService(repository.NewStaffRepository(db))),
		Bills:         handler.NewBillHandler(service.NewBillService(repository.NewBillRepository(db), wsHub)),
		Invoices:      handler.NewInvoiceHandler(invoiceService),
		PurchaseOrder: handler.NewPurchaseOrderHandler(poService),
		Dashboard:     handler.NewDashboardHandler(dashboardService),
	}

	if !cfg.Server.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(handler.RouterConfig{
		CORSOrigins: cfg.Server.CORSOrigins,
		ErrorDetail: cfg.Server.IsDevelopment(),
		Swagger:     true,
	}, appLog, tokens, wsHub, handlers)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		appLog.Infow("server listening", "port", cfg.Server.Port, "env", cfg.Server.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	appLog.Infow("shutting down", "timeout", cfg.Server.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	appLog.Infow("server stopped")
	return nil
}
