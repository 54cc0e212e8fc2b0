// Package plot renders the analysis charts as PNG images.
package plot

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"path/filepath"

	"github.com/KaramelBytes/matchstats-cli/internal/analysis"
	"github.com/KaramelBytes/matchstats-cli/internal/utils"
	"github.com/sirupsen/logrus"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	chartWidth  = 1000
	chartHeight = 600

	placementAxis = "Placement (1 = best, 8 = worst)"
)

// Chart file names written by Flush.
const (
	FileDamagePlacement = "damage_vs_placement.png"
	FileTop4Probability = "top4_probability.png"
	FileLevelPlacement  = "level_vs_placement.png"
)

type renderer interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

// Chart is a rendered PNG waiting to be written.
type Chart struct {
	File string
	PNG  []byte
}

// Gallery accumulates charts during a run and writes them all at the end.
type Gallery struct {
	Logger logrus.FieldLogger
	charts []Chart
}

// NewGallery returns an empty gallery.
func NewGallery(log logrus.FieldLogger) *Gallery {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Gallery{Logger: log}
}

// Charts returns the rendered charts in insertion order.
func (g *Gallery) Charts() []Chart { return g.charts }

func (g *Gallery) add(file string, r renderer) error {
	var buf bytes.Buffer
	if err := r.Render(chart.PNG, &buf); err != nil {
		return fmt.Errorf("render %s: %w", file, err)
	}
	g.charts = append(g.charts, Chart{File: file, PNG: buf.Bytes()})
	g.Logger.WithFields(logrus.Fields{"file": file, "bytes": buf.Len()}).Debug("chart rendered")
	return nil
}

// AddReport renders the three charts of a report. A chart that cannot be
// rendered (too few points) is skipped and its error returned in the slice.
func (g *Gallery) AddReport(rep *analysis.Report) []error {
	var errs []error
	if ch, err := DamagePlacement(rep.Charts.DamagePlacement); err != nil {
		errs = append(errs, err)
	} else if err := g.add(FileDamagePlacement, ch); err != nil {
		errs = append(errs, err)
	}
	if err := g.add(FileTop4Probability, Top4Probability(rep.Conditional)); err != nil {
		errs = append(errs, err)
	}
	if ch, err := LevelPlacement(rep.Charts.LevelPlacement, rep.Regression); err != nil {
		errs = append(errs, err)
	} else if err := g.add(FileLevelPlacement, ch); err != nil {
		errs = append(errs, err)
	}
	return errs
}

// Flush writes every accumulated chart into dir and returns the written paths.
func (g *Gallery) Flush(dir string) ([]string, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create charts dir: %w", err)
	}
	paths := make([]string, 0, len(g.charts))
	for _, c := range g.charts {
		p := filepath.Join(dir, c.File)
		if err := utils.SafeWriteFile(p, c.PNG); err != nil {
			return paths, fmt.Errorf("write %s: %w", c.File, err)
		}
		paths = append(paths, p)
	}
	g.charts = nil
	return paths, nil
}

// pointStyle returns a style that renders points only (no connecting line)
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    3,
		DotColor:    col,
	}
}

func bounds(vals []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// placementRange puts the best placement at the top of the y axis.
func placementRange(vals ...float64) *chart.ContinuousRange {
	lo, hi := bounds(vals)
	return &chart.ContinuousRange{Min: lo - 0.5, Max: hi + 0.5, Descending: true}
}

func checkPairs(what string, p analysis.Pairs) error {
	if len(p.X) != len(p.Y) {
		return fmt.Errorf("%s chart: %d x values for %d y values", what, len(p.X), len(p.Y))
	}
	if len(p.X) < 2 {
		return fmt.Errorf("%s chart: need at least 2 points, got %d", what, len(p.X))
	}
	return nil
}

// DamagePlacement builds the damage vs placement scatter plot.
func DamagePlacement(p analysis.Pairs) (*chart.Chart, error) {
	if err := checkPairs("damage/placement", p); err != nil {
		return nil, err
	}
	return &chart.Chart{
		Title:      "Total Damage Dealt vs. Final Placement",
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: "Total damage dealt to opponents"},
		YAxis:      chart.YAxis{Name: placementAxis, Range: placementRange(p.Y...)},
		Series: []chart.Series{
			chart.ContinuousSeries{Name: "Rounds", XValues: p.X, YValues: p.Y, Style: pointStyle(chart.ColorBlue)},
		},
	}, nil
}

// Top4Probability builds the bar chart of top-4 rates per gold group.
// Undefined groups are drawn as empty bars labelled "no data".
func Top4Probability(cp analysis.ConditionalProbability) *chart.BarChart {
	bar := func(g analysis.GroupRate, label string) chart.Value {
		if !g.Defined {
			return chart.Value{Value: 0, Label: label + " (no data)"}
		}
		return chart.Value{Value: g.Rate, Label: fmt.Sprintf("%s (%.2f%%)", label, g.Rate*100)}
	}
	return &chart.BarChart{
		Title:      "Probability of Finishing Top 4",
		Width:      chartWidth / 5 * 4,
		Height:     chartHeight,
		BarWidth:   160,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		YAxis: chart.YAxis{
			Name:           "Probability",
			Range:          &chart.ContinuousRange{Min: 0, Max: 1},
			ValueFormatter: chart.PercentValueFormatter,
		},
		Bars: []chart.Value{
			bar(cp.WithMoreGold, "More gold left"),
			bar(cp.Others, "Other players"),
		},
	}
}

// LevelPlacement builds the level vs placement scatter with the fitted
// regression line overlaid. reg may be nil when the fit is undefined.
func LevelPlacement(p analysis.Pairs, reg *analysis.Regression) (*chart.Chart, error) {
	if err := checkPairs("level/placement", p); err != nil {
		return nil, err
	}
	series := []chart.Series{
		chart.ContinuousSeries{Name: "Rounds", XValues: p.X, YValues: p.Y, Style: pointStyle(chart.ColorBlue)},
	}
	yvals := p.Y
	if reg != nil {
		lo, hi := bounds(p.X)
		line := []float64{reg.Predict(lo), reg.Predict(hi)}
		series = append(series, chart.ContinuousSeries{
			Name:    fmt.Sprintf("placement = %.4f * level + %.4f", reg.Slope, reg.Intercept),
			XValues: []float64{lo, hi},
			YValues: line,
			Style:   chart.Style{StrokeColor: drawing.ColorRed, StrokeWidth: 2},
		})
		yvals = append(append([]float64{}, p.Y...), line...)
	}
	ch := &chart.Chart{
		Title:      "Linear Regression: Player Level vs. Final Placement",
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: "Player level"},
		YAxis:      chart.YAxis{Name: placementAxis, Range: placementRange(yvals...)},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(ch)}
	return ch, nil
}
