package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/suncrest-energy/solarquote-backend/api/routes"
	"github.com/suncrest-energy/solarquote-backend/internal/catalog"
	"github.com/suncrest-energy/solarquote-backend/internal/installation"
	"github.com/suncrest-energy/solarquote-backend/internal/quotes"
	"github.com/suncrest-energy/solarquote-backend/internal/rebates"
	"github.com/suncrest-energy/solarquote-backend/pkg/config"
	"github.com/suncrest-energy/solarquote-backend/pkg/db"
	"github.com/suncrest-energy/solarquote-backend/pkg/logger"
	"github.com/suncrest-energy/solarquote-backend/pkg/metrics"
	"github.com/suncrest-energy/solarquote-backend/pkg/migrate"
	"github.com/suncrest-energy/solarquote-backend/pkg/redis"
)

const (
	shutdownGrace  = 15 * time.Second
	expirySweepGap = time.Hour
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

	rebateRepo := rebates.NewRepository(dbClient.DB())
	rebateService, err := rebates.NewService(rebateRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create rebate service", err)
		os.Exit(1)
	}

	quoteService, err := quotes.NewService(quotes.Dependencies{
		Quotes:      quotes.NewRepository(dbClient.DB()),
		Catalog:     catalog.NewRepository(dbClient.DB()),
		CostConfigs: installation.NewRepository(dbClient.DB()),
		Rebates:     rebateRepo,
		Settings:    quotes.NewSettings(cfg.Engine),
		Logger:      logg,
		Metrics:     metrics.NewEngineMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create quote service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	go runExpirySweeper(ctx, logg, quoteService)

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, quoteService, rebateService),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "server shutdown error", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shut down gracefully")
}

// runExpirySweeper periodically transitions quotes past their validity
// window to expired. Sweeps race harmlessly across instances thanks to
// the quote row versioning.
func runExpirySweeper(ctx context.Context, logg *logger.Logger, svc quotes.Service) {
	ticker := time.NewTicker(expirySweepGap)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := svc.ExpireStale(ctx, time.Now().UTC())
			sweepCtx := logg.WithField(ctx, "expired", count)
			if err != nil {
				logg.Error(sweepCtx, "quote expiry sweep finished with errors", err)
				continue
			}
			if count > 0 {
				logg.Info(sweepCtx, "quote expiry sweep finished")
			}
		}
	}
}
