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

	"github.com/kioskworks/counter-backend/api/routes"
	authsvc "github.com/kioskworks/counter-backend/internal/auth"
	cartsvc "github.com/kioskworks/counter-backend/internal/cart"
	"github.com/kioskworks/counter-backend/internal/liveview"
	"github.com/kioskworks/counter-backend/internal/notify"
	"github.com/kioskworks/counter-backend/internal/orders"
	productsvc "github.com/kioskworks/counter-backend/internal/products"
	statssvc "github.com/kioskworks/counter-backend/internal/stats"
	"github.com/kioskworks/counter-backend/pkg/config"
	"github.com/kioskworks/counter-backend/pkg/db"
	"github.com/kioskworks/counter-backend/pkg/logger"
	"github.com/kioskworks/counter-backend/pkg/metrics"
	"github.com/kioskworks/counter-backend/pkg/migrate"
	"github.com/kioskworks/counter-backend/pkg/redis"
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

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
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
	pipeline := metrics.NewPipelineMetrics(registry)
	notifier := notify.New()

	orderRepo := orders.NewRepository(dbClient.DB())
	var stockGate orders.StockGate
	if cfg.FeatureFlags.EnforceStock {
		stockGate = orders.NewCeilingStock(orderRepo)
	}
	store, err := orders.NewStore(context.Background(), orderRepo, dbClient, notifier, stockGate, pipeline)
	if err != nil {
		logg.Error(context.Background(), "failed to create order store", err)
		os.Exit(1)
	}

	productRepo := productsvc.NewRepository(dbClient.DB())
	productService, err := productsvc.NewService(productRepo, store, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}
	if cfg.FeatureFlags.SeedCatalog {
		if err := productService.SeedIfEmpty(context.Background()); err != nil {
			logg.Error(context.Background(), "failed to seed catalog", err)
			os.Exit(1)
		}
	}

	cartManager, err := cartsvc.NewManager(productRepo, store)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart manager", err)
		os.Exit(1)
	}

	facade, err := liveview.NewFacade(liveview.NewRepository(dbClient.DB()), notifier, logg, pipeline)
	if err != nil {
		logg.Error(context.Background(), "failed to create liveview facade", err)
		os.Exit(1)
	}

	statsService, err := statssvc.NewService(statssvc.NewRepository(dbClient.DB()), cfg.Stats)
	if err != nil {
		logg.Error(context.Background(), "failed to create stats service", err)
		os.Exit(1)
	}

	authService, err := authsvc.NewService(cfg.Staff, cfg.JWT, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
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
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			AuthService: authService,
			Cart:        cartManager,
			Orders:      store,
			Liveview:    facade,
			Products:    productService,
			Stats:       statsService,
			Registry:    registry,
		}),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-shutdown
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
