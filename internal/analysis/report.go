package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/matchstats-cli/internal/utils"
)

// Pairs is a complete-case column pair handed to the chart renderer.
type Pairs struct {
	X []float64
	Y []float64
}

// ChartData is exactly what the presentation layer needs from a run.
type ChartData struct {
	DamagePlacement Pairs
	LevelPlacement  Pairs
}

// Report collects the results of one engine run.
type Report struct {
	RunID       string                 `json:"run_id"`
	Dataset     string                 `json:"dataset"`
	Path        string                 `json:"path,omitempty"`
	Rows        int                    `json:"rows"`
	Columns     int                    `json:"columns"`
	Correlation *Correlation           `json:"correlation,omitempty"`
	Conditional ConditionalProbability `json:"conditional_top4"`
	Regression  *Regression            `json:"regression,omitempty"`
	// Undefined maps a statistic to the reason it could not be computed.
	Undefined map[string]string `json:"undefined,omitempty"`
	Warnings  []string          `json:"warnings,omitempty"`

	Charts ChartData `json:"-"`
}

func (r *Report) collectWarnings() {
	if d := r.Rows - len(r.Charts.DamagePlacement.X); d > 0 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("correlation: dropped %d rows with missing damage or placement", d))
	}
	if d := r.Rows - len(r.Charts.LevelPlacement.X); d > 0 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("regression: dropped %d rows with missing level or placement", d))
	}
	if r.Conditional.Ignored > 0 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("conditional probability: ignored %d rows with a flag other than 0/1 or a missing placement", r.Conditional.Ignored))
	}
}

// significantReading is the fixed domain reading printed for a significant
// damage correlation. It does not depend on the sign of r.
const significantReading = "-> The correlation is statistically significant: the HIGHER the damage, the BETTER (lower) the placement.\n"

const flatReason = "placement has zero variance"

func undefined(reason string) string { return fmt.Sprintf("undefined (%s)", reason) }

func percent(g GroupRate) string {
	if !g.Defined {
		return undefined("no rows in group")
	}
	return fmt.Sprintf("%.2f%% (%d of %d)", g.Rate*100, g.Hits, g.Size)
}

// Text renders one block per analysis for the terminal.
func (r *Report) Text() string {
	var b strings.Builder
	b.WriteString("[DATASET]\n")
	b.WriteString(fmt.Sprintf("File: %s\n", r.Dataset))
	if r.Path != "" && r.Path != r.Dataset {
		b.WriteString(fmt.Sprintf("Path: %s\n", r.Path))
	}
	b.WriteString(fmt.Sprintf("Rows: %d, Columns: %d\n", r.Rows, r.Columns))

	b.WriteString("\n[ANALYSIS 1: TOTAL DAMAGE ~ PLACEMENT]\n")
	if c := r.Correlation; c != nil {
		b.WriteString(fmt.Sprintf("Pearson correlation coefficient (r): %.4f\n", c.R))
		b.WriteString(fmt.Sprintf("P-value: %.4f (n=%d)\n", c.P, c.N))
		if c.Significant() {
			b.WriteString(significantReading)
		} else {
			b.WriteString("-> The correlation is not statistically significant.\n")
		}
	} else {
		b.WriteString(fmt.Sprintf("Pearson correlation coefficient (r): %s\n", undefined(r.Undefined["correlation"])))
	}

	b.WriteString("\n[ANALYSIS 2: TOP 4 PROBABILITY BY GOLD LEFT]\n")
	b.WriteString(fmt.Sprintf("Probability of top 4 WITH more gold left: %s\n", percent(r.Conditional.WithMoreGold)))
	b.WriteString(fmt.Sprintf("Probability of top 4 WITHOUT more gold left: %s\n", percent(r.Conditional.Others)))

	b.WriteString("\n[ANALYSIS 3: LEVEL ~ PLACEMENT REGRESSION]\n")
	if reg := r.Regression; reg != nil {
		b.WriteString(fmt.Sprintf("Fitted line: placement = %.4f * level + %.4f\n", reg.Slope, reg.Intercept))
		if reg.Flat {
			b.WriteString(fmt.Sprintf("Coefficient of determination (R²): %s\n", undefined(flatReason)))
			b.WriteString(fmt.Sprintf("Slope standard error: %.4f, p-value: %.4f (n=%d)\n", reg.StdErr, reg.P, reg.N))
		} else {
			b.WriteString(fmt.Sprintf("Coefficient of determination (R²): %.4f\n", reg.R2))
			b.WriteString(fmt.Sprintf("Slope standard error: %.4f, p-value: %.4f (n=%d)\n", reg.StdErr, reg.P, reg.N))
			b.WriteString(fmt.Sprintf("-> %.2f%% of the variation in placement can be explained by player level.\n", reg.R2*100))
		}
	} else {
		b.WriteString(fmt.Sprintf("Fitted line: %s\n", undefined(r.Undefined["regression"])))
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		notes := append([]string{}, r.Warnings...)
		sort.Strings(notes)
		for _, w := range notes {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// JSON renders the report as indented JSON.
func (r *Report) JSON() ([]byte, error) {
	return utils.PrettyJSON(r)
}
