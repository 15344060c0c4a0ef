// Command tplot is a debug tool that renders a temporal float or int
// sequence to a PNG line chart, optionally overlaying its DP-simplified
// form so a reviewer can eyeball how much detail a given epsilon drops.
// Not part of the core algebra (spec.md §1 excludes visualization); it
// exists purely to make internal/analytics's simplification routines
// inspectable by hand, the way the teacher's GridPlotter made background
// grid drift inspectable.
//
// Grounded on internal/lidar/monitor/gridplotter.go's
// plot.New()/plotter.NewLine/vg.Points/p.Save(...) pattern.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/temporalgeo/internal/analytics"
	"github.com/banshee-data/temporalgeo/internal/basetype"
	"github.com/banshee-data/temporalgeo/internal/engconfig"
	"github.com/banshee-data/temporalgeo/internal/temporal"
	"github.com/banshee-data/temporalgeo/internal/wire"
)

// Config holds the tool's command-line configuration.
type Config struct {
	InputHex   string
	InputText  string
	OutputPNG  string
	SimpleEps  float64
	Title      string
	TuningPath string
}

func parseFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.InputHex, "hex", "", "HexWKB-encoded tfloat/tint sequence")
	flag.StringVar(&cfg.InputText, "text", "", "WKT-style sequence text, e.g. \"[1@2024-06-01T00:00:00Z, 2@2024-06-01T00:00:05Z]\"; not parsed: this tool reports an error for it and decodes only -hex input")
	flag.StringVar(&cfg.OutputPNG, "out", "tplot.png", "output PNG path")
	flag.Float64Var(&cfg.SimpleEps, "eps", 0, "DP simplification epsilon; 0 disables the overlay")
	flag.StringVar(&cfg.Title, "title", "temporal sequence", "chart title")
	flag.StringVar(&cfg.TuningPath, "tuning", engconfig.DefaultConfigPath, "engine tuning JSON; missing file keeps the built-in defaults")
	flag.Parse()
	return cfg
}

func main() {
	cfg := parseFlags()

	if tuning, err := engconfig.Load(cfg.TuningPath); err != nil {
		log.Printf("tplot: no tuning document at %s, using engine defaults: %v", cfg.TuningPath, err)
	} else {
		analytics.SetConfig(tuning)
	}

	seq, err := loadSequence(cfg)
	if err != nil {
		log.Fatalf("tplot: %v", err)
	}
	if seq.Subtype != temporal.Sequence {
		log.Fatalf("tplot: input must decode to a single sequence, got subtype %v", seq.Subtype)
	}

	if err := renderPlot(cfg, seq); err != nil {
		log.Fatalf("tplot: %v", err)
	}
	fmt.Printf("wrote %s\n", cfg.OutputPNG)
}

func loadSequence(cfg Config) (temporal.Temporal, error) {
	switch {
	case cfg.InputHex != "":
		raw, err := wire.FromHexWKB(cfg.InputHex)
		if err != nil {
			return temporal.Temporal{}, fmt.Errorf("decode hex: %w", err)
		}
		return wire.DecodeTemporalWKB(raw)
	case cfg.InputText != "":
		return temporal.Temporal{}, fmt.Errorf("-text parsing requires a known base; use -hex for now")
	default:
		return temporal.Temporal{}, fmt.Errorf("one of -hex or -text is required")
	}
}

func renderPlot(cfg Config, seq temporal.Temporal) error {
	if seq.Base != basetype.TagFloat8 && seq.Base != basetype.TagInt4 {
		return fmt.Errorf("unsupported base %s: tplot only charts float8/int4 sequences", seq.Base)
	}

	p := plot.New()
	p.Title.Text = cfg.Title
	p.X.Label.Text = "seconds since sequence start"
	p.Y.Label.Text = "value"

	originalPts := sequenceToXY(seq)
	origLine, err := plotter.NewLine(originalPts)
	if err != nil {
		return fmt.Errorf("build original line: %w", err)
	}
	origLine.Width = vg.Points(1.5)
	p.Add(origLine)
	p.Legend.Add("original", origLine)

	if cfg.SimpleEps > 0 {
		simplified, err := analytics.SimplifyDP(seq, cfg.SimpleEps, false, 2)
		if err != nil {
			return fmt.Errorf("simplify: %w", err)
		}
		simplePts := sequenceToXY(simplified)
		simpleLine, err := plotter.NewLine(simplePts)
		if err != nil {
			return fmt.Errorf("build simplified line: %w", err)
		}
		simpleLine.Width = vg.Points(1.5)
		simpleLine.Color = color.RGBA{R: 220, G: 60, B: 60, A: 255}
		p.Add(simpleLine)
		p.Legend.Add(fmt.Sprintf("simplified (eps=%g)", cfg.SimpleEps), simpleLine)
	}

	p.Legend.Top = true

	if dir := os.Getenv("TPLOT_OUTPUT_DIR"); dir != "" {
		cfg.OutputPNG = dir + "/" + cfg.OutputPNG
	}
	return p.Save(12*vg.Inch, 5*vg.Inch, cfg.OutputPNG)
}

func sequenceToXY(seq temporal.Temporal) plotter.XYs {
	insts := temporal.AllInstants(seq)
	if len(insts) == 0 {
		return nil
	}
	start := insts[0].T
	pts := make(plotter.XYs, len(insts))
	for i, inst := range insts {
		x := inst.T.Sub(start).Seconds()
		var y float64
		switch v := inst.V.V.(type) {
		case float64:
			y = v
		case int32:
			y = float64(v)
		}
		pts[i] = plotter.XY{X: x, Y: y}
	}
	return pts
}
