package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/skyfield-data/spectrum.report/internal/httputil"
)

// handleOccupancyChart renders a quick scatter (HTML) of per-beam channel
// load using go-echarts. This is a debugging-only endpoint (no auth) to
// eyeball reuse pressure without a separate UI. One point per logical
// beam, coloured by the number of active channels in that beam.
func (s *Server) handleOccupancyChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	cfg := s.plan.Config
	records := s.plan.Export()

	load := make(map[[2]int]int)
	for _, rec := range records {
		load[[2]int{rec.BeamRow, rec.BeamCol}]++
	}

	data := make([]opts.ScatterData, 0, cfg.BeamRows*cfg.BeamCols)
	maxLoad := 0
	for row := cfg.RowMargin(); row < cfg.BeamRows+cfg.RowMargin(); row++ {
		for col := cfg.ColMargin(); col < cfg.BeamCols+cfg.ColMargin(); col++ {
			n := load[[2]int{row, col}]
			if n > maxLoad {
				maxLoad = n
			}
			data = append(data, opts.ScatterData{Value: []interface{}{col, row, n}})
		}
	}
	if maxLoad == 0 {
		maxLoad = 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Beam Occupancy", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Channel Occupancy per Beam",
			Subtitle: fmt.Sprintf("carriers=%d budget=%d/beam", len(records), cfg.Channels),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "beam column", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "beam row", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxLoad),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#31688e", "#35b779", "#fde725"}},
		}),
	)
	scatter.AddSeries("occupancy", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 14}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
