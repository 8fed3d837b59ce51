package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/skyfield-data/spectrum.report/internal/api"
	"github.com/skyfield-data/spectrum.report/internal/beamplan"
	"github.com/skyfield-data/spectrum.report/internal/beamplan/storage/sqlite"
	"github.com/skyfield-data/spectrum.report/internal/config"
	"github.com/skyfield-data/spectrum.report/internal/db"
)

var (
	listen     = flag.String("listen", ":8080", "Listen address")
	dbFile     = flag.String("db", "beamplan.db", "SQLite database file")
	configFile = flag.String("config", "", "Optional plan settings file (JSON)")
)

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	cfg := beamplan.DefaultPlanConfig()
	if *configFile != "" {
		settings, err := config.LoadPlanSettings(*configFile)
		if err != nil {
			log.Fatalf("Failed to load settings: %v", err)
		}
		cfg = settings.PlanConfig()
	}

	database, err := db.NewDB(*dbFile)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	store := sqlite.NewPlanStore(database.DB)
	plan, err := store.LoadPlan(cfg)
	if err != nil {
		log.Fatalf("Failed to load plan from %s: %v", *dbFile, err)
	}
	log.Printf("loaded plan: %d carriers, grid %dx%dx%d",
		plan.CarrierCount(), cfg.GridRows(), cfg.GridCols(), cfg.Channels)

	server := &http.Server{
		Addr:    *listen,
		Handler: api.LoggingMiddleware(api.NewServer(plan, store).ServeMux()),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("listening on %s", *listen)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
}
