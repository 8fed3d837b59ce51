// Command occupancy-plot renders PNG charts from a saved plan: carrier
// count per channel across the grid, and the per-channel interference
// profile of one beam. Reads the plan from a SQLite file or a JSON
// record dump (loadgen -out produces one).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/skyfield-data/spectrum.report/internal/beamplan"
	"github.com/skyfield-data/spectrum.report/internal/beamplan/storage/sqlite"
	"github.com/skyfield-data/spectrum.report/internal/config"
	"github.com/skyfield-data/spectrum.report/internal/db"
)

func main() {
	dbFile := flag.String("db", "", "Read the plan from this SQLite file")
	inFile := flag.String("in", "", "Read the plan from this JSON record file")
	configFile := flag.String("config", "", "Optional plan settings file (JSON)")
	outputDir := flag.String("out", "plots", "Output directory for PNG files")
	row := flag.Int("row", -1, "Beam row for the interference profile plot")
	col := flag.Int("col", -1, "Beam column for the interference profile plot")
	flag.Parse()

	cfg := beamplan.DefaultPlanConfig()
	if *configFile != "" {
		settings, err := config.LoadPlanSettings(*configFile)
		if err != nil {
			log.Fatalf("failed to load settings: %v", err)
		}
		cfg = settings.PlanConfig()
	}

	plan, err := loadPlan(cfg, *dbFile, *inFile)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("loaded %d carriers", plan.CarrierCount())

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output dir: %v", err)
	}

	if err := plotChannelLoad(plan, filepath.Join(*outputDir, "channel_load.png")); err != nil {
		log.Fatalf("channel load plot: %v", err)
	}

	if *row >= 0 && *col >= 0 {
		file := filepath.Join(*outputDir, fmt.Sprintf("beam_%02d_%02d_scores.png", *row, *col))
		if err := plotBeamProfile(plan, *row, *col, file); err != nil {
			log.Fatalf("beam profile plot: %v", err)
		}
	}
}

func loadPlan(cfg beamplan.PlanConfig, dbFile, inFile string) (*beamplan.Plan, error) {
	switch {
	case dbFile != "" && inFile != "":
		return nil, fmt.Errorf("pass -db or -in, not both")
	case dbFile != "":
		database, err := db.NewDB(dbFile)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		defer database.Close()
		return sqlite.NewPlanStore(database.DB).LoadPlan(cfg)
	case inFile != "":
		buf, err := os.ReadFile(inFile)
		if err != nil {
			return nil, fmt.Errorf("read records: %w", err)
		}
		var records []beamplan.CarrierRecord
		if err := json.Unmarshal(buf, &records); err != nil {
			return nil, fmt.Errorf("decode records: %w", err)
		}
		return beamplan.Ingest(cfg, records)
	default:
		return nil, fmt.Errorf("pass -db or -in")
	}
}

// plotChannelLoad draws carrier count per channel across the whole grid.
func plotChannelLoad(plan *beamplan.Plan, file string) error {
	load := make(plotter.Values, plan.Config.Channels)
	for _, rec := range plan.Export() {
		load[rec.Channel]++
	}

	p := plot.New()
	p.Title.Text = "Carriers per Channel"
	p.X.Label.Text = "Channel"
	p.Y.Label.Text = "Carriers"

	bars, err := plotter.NewBarChart(load, vg.Points(8))
	if err != nil {
		return fmt.Errorf("build bar chart: %w", err)
	}
	p.Add(bars)

	if err := p.Save(14*vg.Inch, 6*vg.Inch, file); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	log.Printf("wrote %s", file)
	return nil
}

// plotBeamProfile draws the interference score of each channel as seen
// from one beam, the same numbers an allocation scan would compute.
func plotBeamProfile(plan *beamplan.Plan, row, col int, file string) error {
	_, scores, err := plan.ScanChannels(beamplan.BeamCoord{Row: row, Col: col}, beamplan.MaxInterferenceScore)
	if err != nil {
		return fmt.Errorf("scan beam (%d,%d): %w", row, col, err)
	}

	pts := make(plotter.XYs, len(scores))
	for ch, score := range scores {
		pts[ch] = plotter.XY{X: float64(ch), Y: float64(score)}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Beam (%d,%d) - Interference Score per Channel", row, col)
	p.X.Label.Text = "Channel"
	p.Y.Label.Text = "Score"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("build line: %w", err)
	}
	line.Width = vg.Points(1)
	p.Add(line)

	if err := p.Save(14*vg.Inch, 6*vg.Inch, file); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	log.Printf("wrote %s", file)
	return nil
}
