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
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storemock-backend/api/routes"
	checkoutsvc "github.com/angelmondragon/storemock-backend/internal/checkout"
	"github.com/angelmondragon/storemock-backend/internal/fulfillment"
	ordersvc "github.com/angelmondragon/storemock-backend/internal/orders"
	"github.com/angelmondragon/storemock-backend/internal/products"
	"github.com/angelmondragon/storemock-backend/internal/webhooks/agent"
	"github.com/angelmondragon/storemock-backend/pkg/config"
	"github.com/angelmondragon/storemock-backend/pkg/db"
	"github.com/angelmondragon/storemock-backend/pkg/logger"
	"github.com/angelmondragon/storemock-backend/pkg/metrics"
	"github.com/angelmondragon/storemock-backend/pkg/migrate"
	"github.com/angelmondragon/storemock-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	commerceMetrics := metrics.NewCommerceMetrics(registry)

	resolver, err := fulfillment.NewResolver(fulfillment.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create fulfillment resolver", err)
		os.Exit(1)
	}

	ordersRepo := ordersvc.NewRepository(dbClient.DB())
	orderFactory, err := ordersvc.NewFactory(ordersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create order factory", err)
		os.Exit(1)
	}

	profileResolver, err := agent.NewProfileResolver(
		&http.Client{Timeout: cfg.Webhook.RequestTimeout},
		redisClient,
		cfg.Webhook.ProfileCacheTTL,
		cfg.Webhook.ProfileCacheMax,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create profile resolver", err)
		os.Exit(1)
	}
	notifier, err := agent.NewNotifier(cfg.Webhook, profileResolver, commerceMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook notifier", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(
		dbClient,
		checkoutsvc.NewRepository(dbClient.DB()),
		products.NewRepository(dbClient.DB()),
		resolver,
		orderFactory,
		notifier,
		commerceMetrics,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	orderService, err := ordersvc.NewService(dbClient, ordersRepo, notifier, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

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
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			checkoutService,
			orderService,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(timeoutCtx); err != nil {
			logg.Error(ctx, "error during server shutdown", err)
		}
	}

	notifier.Close()
	if err := multierr.Combine(redisClient.Close(), dbClient.Close()); err != nil {
		logg.Error(ctx, "error closing clients", err)
	}
}
