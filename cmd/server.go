//go:build !integration

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bitbucket.org/crgw/hotel-hub/internal/availability"
	"bitbucket.org/crgw/hotel-hub/internal/config"
	"bitbucket.org/crgw/hotel-hub/internal/coupons"
	"bitbucket.org/crgw/hotel-hub/internal/platform"
	"bitbucket.org/crgw/hotel-hub/internal/platform/factory"
	"bitbucket.org/crgw/hotel-hub/internal/tools/caching"
	"bitbucket.org/crgw/hotel-hub/internal/tools/logger"
	"bitbucket.org/crgw/hotel-hub/internal/tools/redisfactory"
	"bitbucket.org/crgw/hotel-hub/internal/trafficlight/grouping"
	"bitbucket.org/crgw/hotel-hub/internal/web"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func serverApp(httpServer *http.Server, logger *zerolog.Logger) int {
	shutdown := false
	done := make(chan error, 1)
	stop := make(chan os.Signal, 1)
	go func() {
		logger.
			Info().
			Msg("Listening on address " + httpServer.Addr)
		done <- httpServer.ListenAndServe()
	}()
	go func() {
		// Wait for stop
		<-stop
		shutdown = true
		logger.Info().Msg("Shutting down server...")
		_ = httpServer.Shutdown(context.Background())
	}()

	// Notify stop channel if SIGINT or SIGTERM is received
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	err := <-done
	if err != nil && !shutdown {
		logger.
			Error().
			Err(err).
			Msg("Server failed")
		return 1
	}
	return 0
}

func couponFinder(cfg config.Config, redisFactory *redisfactory.Factory, log *zerolog.Logger) (availability.CouponFinder, error) {
	if cfg.Postgres.DSN == "" {
		log.Warn().Msg("No postgres configured, coupons are disabled")
		return nil, nil
	}

	db, err := coupons.Open(cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := coupons.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate coupons: %w", err)
	}

	return coupons.NewCachedFinder(
		coupons.NewRepository(db),
		caching.NewRedisCache(redisFactory.ResponsesCacheClient()),
		cfg.Coupons.CacheTTL,
		log,
	), nil
}

func run() int {
	_ = godotenv.Load(".env")

	cfg, err := config.Load(".")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	log := logger.New(cfg.LogLevel)

	redisFactory, err := redisfactory.New(cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("Failed to set up redis")
		return 1
	}

	policy, err := cfg.Pricing.Policy()
	if err != nil {
		log.Error().Err(err).Msg("Invalid pricing policy")
		return 1
	}

	finder, err := couponFinder(cfg, redisFactory, log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to set up coupons")
		return 1
	}

	appRouter, err := web.SetupRouter(
		log,
		cfg.Env,
		factory.NewFactory(redisFactory, cfg.Provider, log),
		platform.Dependencies{
			Policy:      policy,
			Coupons:     finder,
			PaddingDays: cfg.Alternatives.PaddingDays,
			Grouping: grouping.Options{
				RedisClient: redisFactory.TrafficlightClient(),
				ResultTTL:   cfg.Grouping.ResultTTL,
			},
		},
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to set up router")
		return 1
	}

	var host string
	if os.Getenv("TEST") == "true" {
		host = "localhost"
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", host, cfg.Port),
		Handler: appRouter,
	}

	return serverApp(httpServer, log)
}

func main() {
	os.Exit(run())
}
