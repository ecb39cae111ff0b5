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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jcastellr/bodega-api/internal/application/catalog"
	"github.com/jcastellr/bodega-api/internal/application/fulfillment"
	"github.com/jcastellr/bodega-api/internal/application/orders"
	"github.com/jcastellr/bodega-api/internal/application/stock"
	"github.com/jcastellr/bodega-api/internal/infrastructure/postgres"
	"github.com/jcastellr/bodega-api/internal/infrastructure/redisdb"
	httpRouter "github.com/jcastellr/bodega-api/internal/interfaces/http"
	"github.com/jcastellr/bodega-api/pkg/config"
	"github.com/jcastellr/bodega-api/pkg/jwt"
	"github.com/jcastellr/bodega-api/pkg/logger"
	"github.com/jcastellr/bodega-api/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Redis es opcional: solo acelera la deduplicación de webhooks. Sin él, el
	// constraint único en PostgreSQL sigue garantizando idempotencia.
	var idemStore orders.IdempotencyStore
	if cfg.Redis.Addr != "" {
		redisClient, err := redisdb.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer redisClient.Close()
		idemStore = redisdb.NewIdempotencyStore(redisClient)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	stockMetrics := metrics.NewStockMetrics(registry)

	productRepo := postgres.NewProductRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	stockRepo := postgres.NewLocationStockRepository(pool)
	ledgerRepo := postgres.NewStockLedgerRepository(pool)
	orderRepo := postgres.NewExternalOrderRepository(pool)
	linkRepo := postgres.NewProductLinkRepository(pool)

	txRunner := postgres.NewTxRunner(pool)
	fulfillmentTxRunner := postgres.NewFulfillmentTxRunner(pool)
	ordersTxRunner := postgres.NewOrdersTxRunner(pool)

	adjustUC := stock.NewAdjustUseCase(txRunner, productRepo, locationRepo, stockMetrics)
	transferUC := stock.NewTransferUseCase(txRunner, productRepo, locationRepo, stockMetrics)
	batchUC := stock.NewBatchTransferUseCase(transferUC, stockRepo, productRepo, locationRepo, stockMetrics)
	queryUC := stock.NewQueryUseCase(stockRepo, ledgerRepo)
	fulfillmentUC := fulfillment.NewUseCase(fulfillmentTxRunner, orderRepo, stockRepo, productRepo, locationRepo, cfg.Fulfillment.Timeout, stockMetrics)
	ingestUC := orders.NewIngestUseCase(ordersTxRunner, orderRepo, linkRepo, idemStore, log)
	linkUC := orders.NewLinkUseCase(orderRepo, linkRepo, productRepo)
	catalogUC := catalog.NewUseCase(productRepo, locationRepo)

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, 0)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.LoggingMiddleware(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Bodega API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Stock:       httpRouter.NewStockHandler(adjustUC, transferUC, batchUC, queryUC),
		Fulfillment: httpRouter.NewFulfillmentHandler(fulfillmentUC),
		Orders:      httpRouter.NewOrdersHandler(ingestUC, linkUC, orderRepo),
		Catalog:     httpRouter.NewCatalogHandler(catalogUC),
		JWT:         jwtManager,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
