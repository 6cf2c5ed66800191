package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dentavia-mx/dentavia-backend/api/routes"
	"github.com/dentavia-mx/dentavia-backend/internal/checkout"
	"github.com/dentavia-mx/dentavia-backend/internal/loyalty"
	"github.com/dentavia-mx/dentavia-backend/internal/orders"
	"github.com/dentavia-mx/dentavia-backend/internal/products"
	"github.com/dentavia-mx/dentavia-backend/internal/shipping"
	"github.com/dentavia-mx/dentavia-backend/pkg/config"
	"github.com/dentavia-mx/dentavia-backend/pkg/db"
	"github.com/dentavia-mx/dentavia-backend/pkg/envia"
	"github.com/dentavia-mx/dentavia-backend/pkg/logger"
	"github.com/dentavia-mx/dentavia-backend/pkg/metrics"
	"github.com/dentavia-mx/dentavia-backend/pkg/migrate"
	"github.com/dentavia-mx/dentavia-backend/pkg/redis"
	"github.com/dentavia-mx/dentavia-backend/pkg/square"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	shippingMetrics := metrics.NewShippingMetrics(registry)

	squareClient, err := square.NewClient(context.Background(), cfg.Square, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create square client", err)
		os.Exit(1)
	}

	enviaClient, err := envia.NewClient(cfg.Envia.APIKey,
		envia.WithBaseURL(cfg.Envia.BaseURL),
		envia.WithTimeout(cfg.Envia.Timeout),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create envia client", err)
		os.Exit(1)
	}

	guard := shipping.NewGuard(logg, shippingMetrics)
	calculator := shipping.NewCalculator(cfg.Shipping)

	productsRepo := products.NewRepository(dbClient.DB())
	productsService, err := products.NewService(productsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.NewRepository(dbClient.DB()), dbClient, guard, shippingMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	loyaltyService, err := loyalty.NewService(loyalty.NewRepository(dbClient.DB()), dbClient, cfg.Loyalty)
	if err != nil {
		logg.Error(context.Background(), "failed to create loyalty service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(
		ordersService,
		productsRepo,
		calculator,
		enviaClient,
		squareClient,
		loyaltyService,
		shippingMetrics,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	router := routes.New(routes.Dependencies{
		Config:      cfg,
		Logger:      logg,
		DB:          dbClient,
		Redis:       redisClient,
		Idempotency: redisClient,
		Registry:    registry,
		Products:    productsService,
		Orders:      ordersService,
		Checkout:    checkoutService,
		Loyalty:     loyaltyService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop:
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
