package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/seemtoseven/registry-backend/api/routes"
	"github.com/seemtoseven/registry-backend/internal/collections"
	"github.com/seemtoseven/registry-backend/internal/inventory"
	"github.com/seemtoseven/registry-backend/internal/items"
	"github.com/seemtoseven/registry-backend/internal/units"
	"github.com/seemtoseven/registry-backend/pkg/config"
	"github.com/seemtoseven/registry-backend/pkg/db"
	"github.com/seemtoseven/registry-backend/pkg/logger"
	"github.com/seemtoseven/registry-backend/pkg/metrics"
	"github.com/seemtoseven/registry-backend/pkg/migrate"
	"github.com/seemtoseven/registry-backend/pkg/redis"
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

	reconcileMetrics := metrics.NewReconcileMetrics(prometheus.DefaultRegisterer)
	reconciler := inventory.NewReconciler(cfg.AccessCodes.MaxAttempts, reconcileMetrics)
	availability := inventory.NewAvailability(dbClient.DB())
	inventoryRepo := inventory.NewRepository(dbClient.DB())

	collectionsService, err := collections.NewService(
		collections.NewRepository(dbClient.DB()),
		dbClient,
		reconciler,
		availability,
		inventoryRepo,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create collections service", err)
		os.Exit(1)
	}

	itemsService, err := items.NewService(
		items.NewRepository(dbClient.DB()),
		dbClient,
		reconciler,
		availability,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create items service", err)
		os.Exit(1)
	}

	unitsService, err := units.NewService(
		units.NewRepository(dbClient.DB()),
		dbClient,
		reconciler,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create units service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, collectionsService, itemsService, unitsService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
