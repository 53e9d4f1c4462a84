package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appinv "github.com/stockledger/backend/internal/application/inventory"
	apptrade "github.com/stockledger/backend/internal/application/trade"
	"github.com/stockledger/backend/internal/infrastructure/cache"
	"github.com/stockledger/backend/internal/infrastructure/config"
	"github.com/stockledger/backend/internal/infrastructure/event"
	"github.com/stockledger/backend/internal/infrastructure/logger"
	"github.com/stockledger/backend/internal/infrastructure/persistence"
	"github.com/stockledger/backend/internal/infrastructure/scheduler"
	"github.com/stockledger/backend/internal/interfaces/http/handler"
	"github.com/stockledger/backend/internal/interfaces/http/middleware"
	"github.com/stockledger/backend/internal/interfaces/http/router"
)

// version is stamped at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	log.Info("Starting stock ledger service",
		zap.String("name", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	log.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("dbname", cfg.Database.DBName),
	)

	// Repositories
	stockDefaults := persistence.StockDefaults{
		MinStock:     cfg.Stock.DefaultMinStock,
		MaxStock:     cfg.Stock.DefaultMaxStock,
		ReorderPoint: cfg.Stock.DefaultReorderPoint,
	}
	productRepo := persistence.NewGormProductRepository(db.DB)
	warehouseRepo := persistence.NewGormWarehouseRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	stockLevelRepo := persistence.NewGormStockLevelRepository(db.DB, stockDefaults)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB, stockDefaults)

	// Idempotency store (Redis with in-memory fallback)
	idempotencyStore := cache.NewIdempotencyStore(cfg.Redis, log)

	// Event bus
	ctx := context.Background()
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(appinv.NewStockAlertHandler(log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	ledgerService := appinv.NewLedgerService(scope, transactionRepo, productRepo, warehouseRepo, eventBus, log)
	transferService := appinv.NewTransferService(scope, transactionRepo, productRepo, warehouseRepo, idempotencyStore, eventBus, log)
	transferService.SetDedupTTL(cfg.Stock.TransferDedupTTL)
	stockService := appinv.NewStockService(stockLevelRepo, eventBus, log)
	stockService.SetSweepPageSize(cfg.Reconcile.PageSize)
	orderService := apptrade.NewPurchaseOrderService(scope, orderRepo, supplierRepo, warehouseRepo, productRepo, eventBus, log)

	// Background reconciliation sweep
	reconcileScheduler := scheduler.NewReconcileScheduler(stockService, cfg.Reconcile, log)
	if err := reconcileScheduler.Start(ctx); err != nil {
		log.Fatal("Failed to start reconcile scheduler", zap.Error(err))
	}

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Health probes live outside API versioning
	handler.NewHealthHandler(db, version).RegisterRoutes(&engine.RouterGroup)

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(handler.NewStockHandler(stockService)).
		Register(handler.NewLedgerHandler(ledgerService)).
		Register(handler.NewTransferHandler(transferService)).
		Register(handler.NewPurchaseOrderHandler(orderService)).
		Register(handler.NewProductHandler(productRepo)).
		Register(handler.NewWarehouseHandler(warehouseRepo)).
		Register(handler.NewSupplierHandler(supplierRepo)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := reconcileScheduler.Stop(shutdownCtx); err != nil {
		log.Error("Reconcile scheduler shutdown error", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Event bus shutdown error", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
