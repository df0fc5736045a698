// README: Entry point; loads config, wires providers and services, starts the HTTP server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"roadtrip/internal/ai"
	"roadtrip/internal/config"
	httptransport "roadtrip/internal/http"
	"roadtrip/internal/infra"
	"roadtrip/internal/maps"
	"roadtrip/internal/modules/extract"
	"roadtrip/internal/modules/routeplan"
	"roadtrip/internal/modules/tools"
	"roadtrip/internal/modules/trip"
	"roadtrip/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := infra.NewLogger(cfg.Log.Level, cfg.Log.Dev)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Fatal("db init", zap.Error(err))
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer redisClient.Close()

	mapsClient, err := maps.NewClient(cfg.Maps.APIKey)
	if err != nil {
		logger.Fatal("maps client init", zap.Error(err))
	}
	routeSvc := maps.NewRouteService(mapsClient, cfg.Maps.Language, cfg.Maps.Region, logger)
	legs := maps.NewCachedRouteService(routeSvc, redisClient, cfg.Planning.LegCacheTTL, logger)
	geocoder := maps.NewGeocodingService(mapsClient, cfg.Maps.Language, logger)
	places := maps.NewPlacesService(mapsClient, cfg.Maps.Language, logger)

	optimizer := routeplan.NewService(legs, routeplan.Config{
		Defaults: routeplan.Preferences{
			MaxDailyDriveHours: cfg.Planning.MaxDriveHours,
			MaxDailyDistanceKm: cfg.Planning.MaxDistanceKm,
		},
		CallDelay:     cfg.Planning.CallDelay,
		CallTimeout:   cfg.Planning.CallTimeout,
		MaxSplitDepth: cfg.Planning.MaxSplitDepth,
	},
		routeplan.WithResolver(routeplan.NewResolver(geocoder, cfg.Planning.ResolveTimeout, logger)),
		routeplan.WithStopFinder(places),
		routeplan.WithLogger(logger),
	)

	// The language model is optional: without a key, extraction is pattern
	// based only and replies use the formatted plan.
	var narrator ai.Narrator
	var intentParser extract.IntentParser
	provider, err := ai.New(ctx, cfg.AI, logger)
	if err != nil {
		logger.Fatal("ai provider init", zap.Error(err))
	}
	if provider != nil {
		defer provider.Close()
		narrator, intentParser = provider, provider
		logger.Info("ai provider enabled", zap.String("provider", cfg.AI.Provider))
	} else {
		logger.Info("no AI key for provider; narration and LLM extraction disabled", zap.String("provider", cfg.AI.Provider))
	}

	extractor := extract.NewExtractor(logger, extract.DefaultStrategies(intentParser, logger)...)
	states := trip.NewStore(dbPool)
	planner := service.NewTripPlanner(extractor, optimizer, states, narrator, logger)
	toolSvc := tools.NewService(optimizer, states, logger)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Planner:     planner,
		States:      states,
		Tools:       toolSvc,
		JWTSecret:   cfg.HTTP.JWTSecret,
		TurnTimeout: cfg.HTTP.TurnTimeout,
		Logger:      logger,
	})
	server := httptransport.NewServer(cfg.HTTP.Addr, router, cfg.HTTP.TurnTimeout)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown", zap.Error(err))
		}
	}()

	logger.Info("server listening", zap.String("addr", cfg.HTTP.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("http server", zap.Error(err))
	}
}
