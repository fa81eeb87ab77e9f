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

	"github.com/dissmar/storefront-backend/api/controllers"
	"github.com/dissmar/storefront-backend/api/routes"
	"github.com/dissmar/storefront-backend/internal/catalog"
	"github.com/dissmar/storefront-backend/internal/gateway"
	"github.com/dissmar/storefront-backend/internal/identity"
	"github.com/dissmar/storefront-backend/internal/orders"
	"github.com/dissmar/storefront-backend/internal/profile"
	"github.com/dissmar/storefront-backend/internal/session"
	"github.com/dissmar/storefront-backend/pkg/config"
	"github.com/dissmar/storefront-backend/pkg/firebase"
	"github.com/dissmar/storefront-backend/pkg/logger"
	"github.com/dissmar/storefront-backend/pkg/metrics"
	"github.com/dissmar/storefront-backend/pkg/redis"
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

	fbClient, err := firebase.New(context.Background(), cfg.Firebase)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap firebase", err)
		os.Exit(1)
	}
	defer func() {
		if err := fbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing firebase", err)
		}
	}()

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

	store, err := gateway.NewFirestoreGateway(fbClient.Firestore)
	if err != nil {
		logg.Error(context.Background(), "failed to create firestore gateway", err)
		os.Exit(1)
	}

	verifier, err := identity.NewFirebaseVerifier(fbClient.Auth)
	if err != nil {
		logg.Error(context.Background(), "failed to create token verifier", err)
		os.Exit(1)
	}

	sessions, err := session.NewManager(session.ManagerParams{
		Gateway: store,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	hub := identity.NewHub()
	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	go sessions.Watch(watchCtx, hub)

	catalogService, err := catalog.NewService(catalog.ServiceParams{
		Gateway:  store,
		Cache:    redisClient,
		Logger:   logg,
		CacheTTL: cfg.Catalog.CacheTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	factory, err := orders.NewFactory(orders.FactoryParams{Gateway: store, Logger: logg})
	if err != nil {
		logg.Error(context.Background(), "failed to create order factory", err)
		os.Exit(1)
	}

	history, err := orders.NewHistory(store)
	if err != nil {
		logg.Error(context.Background(), "failed to create order history", err)
		os.Exit(1)
	}

	profileService, err := profile.NewService(store)
	if err != nil {
		logg.Error(context.Background(), "failed to create profile service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

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
			Config:   cfg,
			Logger:   logg,
			Verifier: verifier,
			Hub:      hub,
			Sessions: sessions,
			Catalog:  catalogService,
			Factory:  factory,
			History:  history,
			Profile:  profileService,
			Metrics:  httpMetrics,
			Gatherer: registry,
			Pingers:  []controllers.Pinger{fbClient, redisClient},
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop:
		logg.Info(ctx, "shutting down api server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "error during server shutdown", err)
		}
		if err := sessions.Close(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "error draining sessions", err)
		}
	}
}
