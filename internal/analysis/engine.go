package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KaramelBytes/matchstats-cli/internal/dataset"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// RequiredColumns are validated before any analysis runs.
var RequiredColumns = []string{
	dataset.ColDamage,
	dataset.ColPlacement,
	dataset.ColGoldFlag,
	dataset.ColLevel,
	dataset.ColTop4,
}

// Engine runs the three match-round analyses over a loaded dataset.
type Engine struct {
	Logger logrus.FieldLogger
}

// NewEngine returns an engine logging to log, or to the standard logger when nil.
func NewEngine(log logrus.FieldLogger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{Logger: log}
}

// Run validates the required columns and computes every analysis. The
// analyses only read the dataset, so they run concurrently. Degenerate
// input is recorded in the report; column problems abort the run.
func (e *Engine) Run(ctx context.Context, ds *dataset.Dataset) (*Report, error) {
	if err := dataset.RequireColumns(ds, RequiredColumns...); err != nil {
		return nil, err
	}
	cols := make(map[string][]float64, len(RequiredColumns))
	for _, name := range RequiredColumns {
		v, err := ds.Floats(name)
		if err != nil {
			return nil, err
		}
		cols[name] = v
	}

	rep := &Report{
		RunID:   uuid.NewString(),
		Dataset: ds.Name,
		Path:    ds.Path,
		Rows:    ds.Rows(),
		Columns: ds.Columns(),
	}
	log := e.Logger.WithField("run_id", rep.RunID)
	var corrUndef, regUndef *UndefinedError

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		damage, placement := cols[dataset.ColDamage], cols[dataset.ColPlacement]
		xs, ys, _, err := CompleteCases(damage, placement)
		if err != nil {
			return fmt.Errorf("correlation: %w", err)
		}
		rep.Charts.DamagePlacement = Pairs{X: xs, Y: ys}
		c, err := Pearson(damage, placement)
		if err != nil && !errors.As(err, &corrUndef) {
			return fmt.Errorf("correlation: %w", err)
		}
		if corrUndef == nil {
			rep.Correlation = &c
		}
		log.WithFields(logrus.Fields{"n": c.N, "elapsed": time.Since(start)}).Debug("correlation computed")
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		cp, err := ConditionalTop4(cols[dataset.ColGoldFlag], cols[dataset.ColTop4])
		if err != nil {
			return fmt.Errorf("conditional probability: %w", err)
		}
		rep.Conditional = cp
		log.WithField("ignored", cp.Ignored).Debug("conditional probability computed")
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		level, placement := cols[dataset.ColLevel], cols[dataset.ColPlacement]
		xs, ys, _, err := CompleteCases(level, placement)
		if err != nil {
			return fmt.Errorf("regression: %w", err)
		}
		rep.Charts.LevelPlacement = Pairs{X: xs, Y: ys}
		r, err := LinearRegression(level, placement)
		if err != nil && !errors.As(err, &regUndef) {
			return fmt.Errorf("regression: %w", err)
		}
		if regUndef == nil {
			rep.Regression = &r
		}
		log.WithFields(logrus.Fields{"n": r.N, "elapsed": time.Since(start)}).Debug("regression computed")
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep.Undefined = map[string]string{}
	if corrUndef != nil {
		rep.Undefined["correlation"] = corrUndef.Reason
	}
	if regUndef != nil {
		rep.Undefined["regression"] = regUndef.Reason
	}
	if rep.Regression != nil && rep.Regression.Flat {
		rep.Undefined["r2"] = flatReason
	}
	if !rep.Conditional.WithMoreGold.Defined {
		rep.Undefined["top4_with_more_gold"] = "no rows in group"
	}
	if !rep.Conditional.Others.Defined {
		rep.Undefined["top4_others"] = "no rows in group"
	}
	for stat, reason := range rep.Undefined {
		log.WithFields(logrus.Fields{"statistic": stat, "reason": reason}).Warn("statistic undefined")
	}
	rep.collectWarnings()
	return rep, nil
}
