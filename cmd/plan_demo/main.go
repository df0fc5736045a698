// README: Demo CLI; runs chat turns against live Google Maps (and the AI provider when configured) with an in-memory or SQLite trip store.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"roadtrip/internal/ai"
	"roadtrip/internal/config"
	"roadtrip/internal/infra"
	"roadtrip/internal/maps"
	"roadtrip/internal/modules/extract"
	"roadtrip/internal/modules/routeplan"
	"roadtrip/internal/modules/trip"
	"roadtrip/internal/service"
)

func main() {
	tripID := flag.String("trip", "demo", "trip id used for the in-memory state")
	showJSON := flag.Bool("json", false, "print the plan JSON after each reply")
	dbPath := flag.String("db", "", "SQLite file keeping trips between runs (in-memory when empty)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := infra.NewLogger("warn", true)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	mapsClient, err := maps.NewClient(cfg.Maps.APIKey)
	if err != nil {
		log.Fatal(err)
	}
	geocoder := maps.NewGeocodingService(mapsClient, cfg.Maps.Language, logger)
	optimizer := routeplan.NewService(
		maps.NewRouteService(mapsClient, cfg.Maps.Language, cfg.Maps.Region, logger),
		routeplan.Config{
			Defaults: routeplan.Preferences{
				MaxDailyDriveHours: cfg.Planning.MaxDriveHours,
				MaxDailyDistanceKm: cfg.Planning.MaxDistanceKm,
			},
			CallDelay:     cfg.Planning.CallDelay,
			CallTimeout:   cfg.Planning.CallTimeout,
			MaxSplitDepth: cfg.Planning.MaxSplitDepth,
		},
		routeplan.WithResolver(routeplan.NewResolver(geocoder, cfg.Planning.ResolveTimeout, logger)),
		routeplan.WithStopFinder(maps.NewPlacesService(mapsClient, cfg.Maps.Language, logger)),
		routeplan.WithLogger(logger),
	)

	var narrator ai.Narrator
	var parser extract.IntentParser
	provider, err := ai.New(ctx, cfg.AI, logger)
	if err != nil {
		log.Fatalf("Failed to initialize AI provider: %v", err)
	}
	if provider != nil {
		defer provider.Close()
		narrator, parser = provider, provider
	}

	var store trip.StateStore = trip.NewMemoryStore()
	if *dbPath != "" {
		sqlite, err := trip.OpenSQLiteStore(*dbPath)
		if err != nil {
			log.Fatal(err)
		}
		defer sqlite.Close()
		store = sqlite
	}

	planner := service.NewTripPlanner(
		extract.NewExtractor(logger, extract.DefaultStrategies(parser, logger)...),
		optimizer, store, narrator, logger)

	turn := func(msg string) {
		turnCtx, cancel := context.WithTimeout(ctx, cfg.HTTP.TurnTimeout)
		defer cancel()

		start := time.Now()
		res, err := planner.HandleMessage(turnCtx, *tripID, msg)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		fmt.Printf("\n%s\n(%s, strategy=%s)\n", res.Reply, time.Since(start).Round(time.Millisecond), res.Strategy)
		if *showJSON && res.Plan != nil {
			out, _ := json.MarshalIndent(res.Plan, "", "  ")
			fmt.Println(string(out))
		}
	}

	if flag.NArg() > 0 {
		turn(strings.Join(flag.Args(), " "))
		return
	}

	fmt.Println("Describe your road trip (empty line to quit):")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		msg := strings.TrimSpace(scanner.Text())
		if msg == "" {
			return
		}
		turn(msg)
	}
}
