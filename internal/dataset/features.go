package dataset

import (
	"fmt"
	"math"

	"github.com/go-gota/gota/series"
)

// Column names of the match-round schema used by the analyses.
const (
	ColDamage    = "total_damage_to_players"
	ColPlacement = "placement"
	ColGoldFlag  = "players_with_more_gold_left"
	ColLevel     = "level"
	ColTop4      = "top_4"
)

// Top4Cutoff is the worst placement that still counts as a top-4 finish.
const Top4Cutoff = 4

// RequireColumns checks that every name is present in the frame with a
// numeric (int, float or bool) type.
func RequireColumns(d *Dataset, names ...string) error {
	for _, name := range names {
		s := d.Frame.Col(name)
		if s.Err != nil {
			return &ConfigurationError{Column: name, Reason: "column not found"}
		}
		switch s.Type() {
		case series.Int, series.Float, series.Bool:
		default:
			return &ConfigurationError{Column: name, Reason: fmt.Sprintf("expected a numeric column, got %s", s.Type())}
		}
	}
	return nil
}

// Floats returns a numeric column as float64 values; NA entries become NaN.
func (d *Dataset) Floats(name string) ([]float64, error) {
	if err := RequireColumns(d, name); err != nil {
		return nil, err
	}
	return d.Frame.Col(name).Float(), nil
}

// DeriveTop4 adds the boolean top_4 column (placement <= 4). Rows with a
// missing placement get an NA flag.
func DeriveTop4(d *Dataset) error {
	placement, err := d.Floats(ColPlacement)
	if err != nil {
		return err
	}
	flags := make([]string, len(placement))
	for i, p := range placement {
		switch {
		case math.IsNaN(p):
			flags[i] = "NaN"
		case p <= Top4Cutoff:
			flags[i] = "true"
		default:
			flags[i] = "false"
		}
	}
	frame := d.Frame.Mutate(series.New(flags, series.Bool, ColTop4))
	if frame.Err != nil {
		return fmt.Errorf("add %s: %w", ColTop4, frame.Err)
	}
	d.Frame = frame
	return nil
}
