// Command loadgen fills a plan with synthetic carriers and reports how
// hard the grid had to work: escalation depth, channel occupancy, and
// priority spread. Useful for sizing channel budgets before deployment.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	_ "modernc.org/sqlite"

	"gonum.org/v1/gonum/stat"

	"github.com/skyfield-data/spectrum.report/internal/beamplan"
	"github.com/skyfield-data/spectrum.report/internal/beamplan/storage/sqlite"
	"github.com/skyfield-data/spectrum.report/internal/config"
	"github.com/skyfield-data/spectrum.report/internal/db"
)

func main() {
	carriers := flag.Int("carriers", 1000, "Number of synthetic carriers to place")
	seed := flag.Int64("seed", 1, "Random seed")
	configFile := flag.String("config", "", "Optional plan settings file (JSON)")
	dbFile := flag.String("db", "", "Write the resulting plan to this SQLite file")
	outFile := flag.String("out", "", "Write the resulting plan as JSON records to this file")
	flag.Parse()

	cfg := beamplan.DefaultPlanConfig()
	if *configFile != "" {
		settings, err := config.LoadPlanSettings(*configFile)
		if err != nil {
			log.Fatalf("failed to load settings: %v", err)
		}
		cfg = settings.PlanConfig()
		if settings.SynthCarriers != nil && *carriers == 1000 {
			*carriers = settings.GetSynthCarriers()
		}
		if settings.SynthSeed != nil && *seed == 1 {
			*seed = settings.GetSynthSeed()
		}
	}

	plan, err := beamplan.NewPlan(cfg)
	if err != nil {
		log.Fatalf("invalid plan configuration: %v", err)
	}

	rng := rand.New(rand.NewSource(*seed))
	placements, err := beamplan.Synthesise(plan, *carriers, rng)
	if err != nil {
		log.Fatalf("synthesis stopped after %d carriers: %v", len(placements), err)
	}

	printSummary(cfg, plan, placements)

	if *dbFile != "" {
		database, err := db.NewDB(*dbFile)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer database.Close()
		if err := sqlite.NewPlanStore(database.DB).SavePlan(plan); err != nil {
			log.Fatalf("failed to save plan: %v", err)
		}
		log.Printf("saved %d carriers to %s", plan.CarrierCount(), *dbFile)
	}

	if *outFile != "" {
		buf, err := json.MarshalIndent(plan.Export(), "", "  ")
		if err != nil {
			log.Fatalf("failed to encode plan: %v", err)
		}
		if err := os.WriteFile(*outFile, buf, 0o644); err != nil {
			log.Fatalf("failed to write %s: %v", *outFile, err)
		}
		log.Printf("wrote %d records to %s", plan.CarrierCount(), *outFile)
	}
}

func printSummary(cfg beamplan.PlanConfig, plan *beamplan.Plan, placements []beamplan.Placement) {
	priorities := make([]float64, len(placements))
	escalated := 0
	maxPriority := 0
	for i, pl := range placements {
		priorities[i] = float64(pl.FinalPriority)
		if pl.FinalPriority > 0 {
			escalated++
		}
		if pl.FinalPriority > maxPriority {
			maxPriority = pl.FinalPriority
		}
	}

	channelLoad := make([]int, cfg.Channels)
	for _, rec := range plan.Export() {
		channelLoad[rec.Channel]++
	}

	fmt.Printf("placed %d carriers on a %dx%d beam grid with %d channels\n",
		plan.CarrierCount(), cfg.BeamRows, cfg.BeamCols, cfg.Channels)
	fmt.Printf("escalated %d/%d requests, max final priority %d\n",
		escalated, len(placements), maxPriority)
	if len(priorities) > 0 {
		mean, std := stat.MeanStdDev(priorities, nil)
		fmt.Printf("final priority mean %.3f stddev %.3f\n", mean, std)
	}

	fmt.Println("channel,carriers")
	for ch, n := range channelLoad {
		fmt.Printf("%d,%d\n", ch, n)
	}
}
