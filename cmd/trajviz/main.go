// Command trajviz is a debug tool that renders two temporal point
// trajectories as an HTML scatter plot alongside their Fréchet or DTW
// alignment path, so a reviewer can see which instants a similarity
// measure paired up. Not part of the core algebra (spec.md §1 excludes
// visualization); it exists to make internal/analytics's similarity
// routines inspectable.
//
// Grounded on internal/lidar/monitor/echarts_handlers.go's
// charts.NewScatter()/opts.Initialization/WithTitleOpts/WithTooltipOpts/
// WithXAxisOpts/WithVisualMapOpts/AddSeries/components.NewPage() pattern.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/temporalgeo/internal/analytics"
	"github.com/banshee-data/temporalgeo/internal/basetype"
	"github.com/banshee-data/temporalgeo/internal/temporal"
	"github.com/banshee-data/temporalgeo/internal/wire"
)

// Config holds the tool's command-line configuration.
type Config struct {
	HexA, HexB string
	OutputHTML string
	Method     string // "frechet" or "dtw"
}

func parseFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.HexA, "a", "", "HexWKB-encoded tgeompoint/tgeogpoint trajectory A")
	flag.StringVar(&cfg.HexB, "b", "", "HexWKB-encoded tgeompoint/tgeogpoint trajectory B")
	flag.StringVar(&cfg.OutputHTML, "out", "trajviz.html", "output HTML path")
	flag.StringVar(&cfg.Method, "method", "frechet", "similarity path to overlay: frechet or dtw")
	flag.Parse()
	return cfg
}

func main() {
	cfg := parseFlags()
	if cfg.HexA == "" || cfg.HexB == "" {
		log.Fatal("trajviz: both -a and -b are required")
	}

	a, err := decodeTrajectory(cfg.HexA)
	if err != nil {
		log.Fatalf("trajviz: trajectory A: %v", err)
	}
	b, err := decodeTrajectory(cfg.HexB)
	if err != nil {
		log.Fatalf("trajviz: trajectory B: %v", err)
	}

	dist, matches, err := alignmentPath(cfg.Method, a, b)
	if err != nil {
		log.Fatalf("trajviz: %v", err)
	}

	page := renderPage(cfg.Method, dist, a, b, matches)

	f, err := os.Create(cfg.OutputHTML)
	if err != nil {
		log.Fatalf("trajviz: create output: %v", err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		log.Fatalf("trajviz: render: %v", err)
	}
	fmt.Printf("wrote %s (distance=%g)\n", cfg.OutputHTML, dist)
}

func decodeTrajectory(hexWKB string) (temporal.Temporal, error) {
	raw, err := wire.FromHexWKB(hexWKB)
	if err != nil {
		return temporal.Temporal{}, fmt.Errorf("decode hex: %w", err)
	}
	t, err := wire.DecodeTemporalWKB(raw)
	if err != nil {
		return temporal.Temporal{}, err
	}
	if t.Base != basetype.TagGeom && t.Base != basetype.TagGeog {
		return temporal.Temporal{}, fmt.Errorf("expected a temporal point, got base %s", t.Base)
	}
	return t, nil
}

func alignmentPath(method string, a, b temporal.Temporal) (float64, []analytics.Match, error) {
	switch method {
	case "dtw":
		return analytics.DTWPath(a, b)
	case "frechet":
		return analytics.FrechetPath(a, b)
	default:
		return 0, nil, fmt.Errorf("unknown method %q: want frechet or dtw", method)
	}
}

func renderPage(method string, dist float64, a, b temporal.Temporal, matches []analytics.Match) *components.Page {
	aPts := trajectoryScatterData(a)
	bPts := trajectoryScatterData(b)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Trajectory comparison", Theme: "dark", Width: "900px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: "Trajectories", Subtitle: fmt.Sprintf("%s distance=%g", method, dist)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "X", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Y", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("trajectory A", aPts, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	scatter.AddSeries("trajectory B", bPts, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))

	matchTable := charts.NewScatter()
	matchTable.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Alignment path", Theme: "dark", Width: "900px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("%s alignment (index space)", method)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "index in A"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "index in B"}),
	)
	pathData := make([]opts.ScatterData, len(matches))
	for i, m := range matches {
		pathData[i] = opts.ScatterData{Value: []interface{}{m.I, m.J}}
	}
	matchTable.AddSeries("matches", pathData, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))

	page := components.NewPage()
	page.AddCharts(scatter, matchTable)
	return page
}

func trajectoryScatterData(t temporal.Temporal) []opts.ScatterData {
	insts := temporal.AllInstants(t)
	data := make([]opts.ScatterData, 0, len(insts))
	for _, inst := range insts {
		x, y, ok := xy(t.Base, inst.V)
		if !ok {
			continue
		}
		data = append(data, opts.ScatterData{Value: []interface{}{x, y}})
	}
	return data
}

func xy(base basetype.Tag, v basetype.Datum) (float64, float64, bool) {
	switch base {
	case basetype.TagGeom:
		p, ok := v.V.(basetype.GeomPoint)
		if !ok {
			return 0, 0, false
		}
		return p.X, p.Y, true
	case basetype.TagGeog:
		p, ok := v.V.(basetype.GeogPoint)
		if !ok {
			return 0, 0, false
		}
		return p.Lon, p.Lat, true
	default:
		return 0, 0, false
	}
}
