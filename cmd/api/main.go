package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ricemill-ledger/internal/application/analytics"
	"github.com/jhoicas/ricemill-ledger/internal/application/inventory"
	"github.com/jhoicas/ricemill-ledger/internal/application/sales"
	"github.com/jhoicas/ricemill-ledger/internal/application/threshing"
	"github.com/jhoicas/ricemill-ledger/internal/application/usecase"
	"github.com/jhoicas/ricemill-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/ricemill-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/ricemill-ledger/internal/interfaces/http"
	"github.com/jhoicas/ricemill-ledger/pkg/config"
	"github.com/jhoicas/ricemill-ledger/pkg/logger"
	"github.com/jhoicas/ricemill-ledger/pkg/metrics"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load config: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("starting")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to postgres")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, cfg.DB.MigrationsDir, "up"); err != nil {
			log.Fatal().Err(err).Msg("apply migrations")
		}
		log.Info().Msg("migrations applied")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	ledgerMetrics := metrics.NewLedgerMetrics(reg)

	ledgerOpts := []inventory.Option{
		inventory.WithLogger(log),
		inventory.WithMetrics(ledgerMetrics),
		inventory.WithRetry(cfg.Ledger.MaxRetries, cfg.Ledger.RetryBase),
	}
	var summaryCache analytics.SummaryCache
	health := map[string]httpRouter.Pinger{"postgres": pool}
	if cfg.Redis.Enabled() {
		rdb, err := cache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			// Reads fall back to postgres; the ledger does not depend on redis.
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, stock cache disabled")
		} else {
			defer rdb.Close()
			stockCache := cache.NewStockCache(rdb, cfg.Redis.TTL, log)
			ledgerOpts = append(ledgerOpts, inventory.WithNotifier(stockCache))
			summaryCache = stockCache
			health["redis"] = stockCache
		}
	}

	txRunner := postgres.NewTxRunner(pool, cfg.DB.LockTimeout)
	ledger := inventory.NewLedger(txRunner, ledgerOpts...)

	reportRepo := postgres.NewReportRepository(pool)
	batchRepo := postgres.NewBatchRepository(pool)
	processingRepo := postgres.NewProcessingRecordRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	threshingRepo := postgres.NewThreshingRepository(pool)

	threshold := decimal.NewFromFloat(cfg.Dashboard.LowStockThreshold)
	reportUC := analytics.NewReportUseCase(reportRepo, batchRepo, processingRepo, summaryCache)
	dashboardUC := analytics.NewDashboardUseCase(reportRepo, reportUC, threshold, cfg.Dashboard.RecentMovements)
	movementUC := inventory.NewMovementUseCase(ledger)
	warehouseUC := usecase.NewWarehouseUseCase(warehouseRepo)
	saleUC := sales.NewUseCase(txRunner, ledger, saleRepo, log)
	threshingUC := threshing.NewUseCase(txRunner, ledger, threshingRepo, cfg.Threshing, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		ErrorHandler: httpRouter.ErrorHandler(log.Named("http")),
	})
	app.Use(recover.New())
	app.Use(requestid.New())

	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Rice Mill Ledger API",
		}))
	}

	app.Get("/health", httpRouter.Health(cfg.App.Name, health))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Inventory: httpRouter.NewInventoryHandler(movementUC, reportUC, threshold),
		Warehouse: httpRouter.NewWarehouseHandler(warehouseUC),
		Threshing: httpRouter.NewThreshingHandler(threshingUC),
		Sale:      httpRouter.NewSaleHandler(saleUC),
		Dashboard: httpRouter.NewDashboardHandler(dashboardUC),
		JWTSecret: cfg.JWT.Secret,
		JWTIssuer: cfg.JWT.Issuer,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("http server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown http server")
	}

	log.Info().Msg("stopped")
}
