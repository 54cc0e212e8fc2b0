package analysis

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"
)

// SignificanceLevel is the fixed p-value threshold used when interpreting
// the damage/placement correlation.
const SignificanceLevel = 0.05

// UndefinedError reports a statistic that cannot be computed from the input
// (empty group, too few rows, zero variance). It is recovered per analysis.
type UndefinedError struct {
	Statistic string
	Reason    string
}

func (e *UndefinedError) Error() string {
	if e == nil {
		return "undefined statistic"
	}
	return fmt.Sprintf("%s undefined: %s", e.Statistic, e.Reason)
}

// Correlation is a Pearson product-moment correlation with its two-tailed p-value.
type Correlation struct {
	N       int     `json:"n"`
	Dropped int     `json:"dropped"`
	R       float64 `json:"r"`
	P       float64 `json:"p"`
}

// Significant applies the fixed SignificanceLevel.
func (c Correlation) Significant() bool { return c.P < SignificanceLevel }

// Regression is an ordinary least-squares fit of y on x.
type Regression struct {
	N         int     `json:"n"`
	Dropped   int     `json:"dropped"`
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R         float64 `json:"r"`
	R2        float64 `json:"r2"`
	P         float64 `json:"p"`
	StdErr    float64 `json:"slope_stderr"`
	// Flat is set when y has zero variance; R and R2 are then undefined.
	Flat bool `json:"flat_response,omitempty"`
}

// Predict evaluates the fitted line at x.
func (r Regression) Predict(x float64) float64 { return r.Slope*x + r.Intercept }

// GroupRate is the share of rows in a group that finished in the top 4.
type GroupRate struct {
	Label   string  `json:"label"`
	Size    int     `json:"size"`
	Hits    int     `json:"hits"`
	Rate    float64 `json:"rate"`
	Defined bool    `json:"defined"`
}

// ConditionalProbability compares top-4 rates of rows flagged 1 and 0.
type ConditionalProbability struct {
	WithMoreGold GroupRate `json:"with_more_gold"`
	Others       GroupRate `json:"others"`
	// Ignored counts rows whose flag is neither 0 nor 1, or whose top_4 is NA.
	Ignored int `json:"ignored"`
}

// CompleteCases drops every index where x or y is NaN.
func CompleteCases(x, y []float64) (xs, ys []float64, dropped int, err error) {
	if len(x) != len(y) {
		return nil, nil, 0, fmt.Errorf("column length mismatch: %d vs %d", len(x), len(y))
	}
	xs = make([]float64, 0, len(x))
	ys = make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			dropped++
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys, dropped, nil
}

// moments holds centered sums of squares and cross products.
type moments struct {
	n            int
	meanX, meanY float64
	sxx, syy     float64
	sxy          float64
}

func momentsOf(xs, ys []float64) moments {
	m := moments{n: len(xs), meanX: stats.Mean(xs), meanY: stats.Mean(ys)}
	for i := range xs {
		dx := xs[i] - m.meanX
		dy := ys[i] - m.meanY
		m.sxx += dx * dx
		m.syy += dy * dy
		m.sxy += dx * dy
	}
	return m
}

func (m moments) r() float64 {
	r := m.sxy / math.Sqrt(m.sxx*m.syy)
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

// correlationPValue is the two-tailed p-value of H0: rho = 0 using the
// t statistic with n-2 degrees of freedom.
func correlationPValue(r float64, n int) float64 {
	if n <= 2 {
		return 1
	}
	if math.Abs(r) >= 1 {
		return 0
	}
	df := float64(n - 2)
	t := math.Abs(r) * math.Sqrt(df/((1-r)*(1+r)))
	p := 2 * stats.TDist{V: df}.CDF(-t)
	if p > 1 {
		p = 1
	} else if p < 0 || math.IsNaN(p) {
		p = 0
	}
	return p
}

// Pearson computes the correlation of x and y over complete cases.
func Pearson(x, y []float64) (Correlation, error) {
	xs, ys, dropped, err := CompleteCases(x, y)
	if err != nil {
		return Correlation{}, err
	}
	c := Correlation{N: len(xs), Dropped: dropped}
	if c.N < 2 {
		return c, &UndefinedError{Statistic: "correlation", Reason: fmt.Sprintf("need at least 2 complete rows, got %d", c.N)}
	}
	m := momentsOf(xs, ys)
	if m.sxx == 0 || m.syy == 0 {
		return c, &UndefinedError{Statistic: "correlation", Reason: "a column has zero variance"}
	}
	c.R = m.r()
	c.P = correlationPValue(c.R, c.N)
	return c, nil
}

// LinearRegression fits y = slope*x + intercept by least squares over complete cases.
func LinearRegression(x, y []float64) (Regression, error) {
	xs, ys, dropped, err := CompleteCases(x, y)
	if err != nil {
		return Regression{}, err
	}
	reg := Regression{N: len(xs), Dropped: dropped}
	if reg.N < 2 {
		return reg, &UndefinedError{Statistic: "regression", Reason: fmt.Sprintf("need at least 2 complete rows, got %d", reg.N)}
	}
	m := momentsOf(xs, ys)
	if m.sxx == 0 {
		return reg, &UndefinedError{Statistic: "regression", Reason: "the predictor has zero variance"}
	}
	reg.Slope = m.sxy / m.sxx
	reg.Intercept = m.meanY - reg.Slope*m.meanX
	if m.syy == 0 {
		// horizontal data: the line fits exactly but r is 0/0
		reg.Flat = true
		reg.P = 1
		return reg, nil
	}
	reg.R = m.r()
	reg.R2 = reg.R * reg.R
	reg.P = correlationPValue(reg.R, reg.N)
	if reg.N > 2 {
		resid := (1 - reg.R2) * m.syy / m.sxx / float64(reg.N-2)
		if resid > 0 {
			reg.StdErr = math.Sqrt(resid)
		}
	}
	return reg, nil
}

// ConditionalTop4 splits rows by flag (1 vs 0) and returns the top-4 rate of
// each group. An empty group is reported as undefined instead of NaN.
func ConditionalTop4(flag, top4 []float64) (ConditionalProbability, error) {
	if len(flag) != len(top4) {
		return ConditionalProbability{}, fmt.Errorf("column length mismatch: %d vs %d", len(flag), len(top4))
	}
	cp := ConditionalProbability{
		WithMoreGold: GroupRate{Label: "with more gold"},
		Others:       GroupRate{Label: "others"},
	}
	for i, f := range flag {
		if math.IsNaN(top4[i]) {
			cp.Ignored++
			continue
		}
		var g *GroupRate
		switch f {
		case 1:
			g = &cp.WithMoreGold
		case 0:
			g = &cp.Others
		default:
			cp.Ignored++
			continue
		}
		g.Size++
		if top4[i] == 1 {
			g.Hits++
		}
	}
	for _, g := range []*GroupRate{&cp.WithMoreGold, &cp.Others} {
		if g.Size > 0 {
			g.Rate = float64(g.Hits) / float64(g.Size)
			g.Defined = true
		}
	}
	return cp, nil
}
