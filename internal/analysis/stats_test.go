package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sampleDamage    = []float64{140, 35, 90, 120, 20, 60, 75, 10, 110, 50}
	samplePlacement = []float64{1, 6, 4, 2, 8, 5, 3, 7, 2, 6}
)

func TestPearsonPerfectInverse(t *testing.T) {
	c, err := Pearson([]float64{10, 20, 30}, []float64{3, 2, 1})
	require.NoError(t, err)
	assert.Equal(t, 3, c.N)
	assert.InDelta(t, -1.0, c.R, 1e-12)
	assert.False(t, math.IsNaN(c.P))
	assert.Less(t, c.P, SignificanceLevel)
	assert.True(t, c.Significant())
}

func TestPearsonSymmetric(t *testing.T) {
	xy, err := Pearson(sampleDamage, samplePlacement)
	require.NoError(t, err)
	yx, err := Pearson(samplePlacement, sampleDamage)
	require.NoError(t, err)
	assert.InDelta(t, xy.R, yx.R, 1e-12)
	assert.InDelta(t, xy.P, yx.P, 1e-12)
	assert.Less(t, xy.R, 0.0)
}

func TestPearsonAffineInvariant(t *testing.T) {
	base, err := Pearson(sampleDamage, samplePlacement)
	require.NoError(t, err)

	for _, tc := range []struct{ a, b float64 }{{2, 0}, {0.01, -40}, {1000, 3}} {
		scaled := make([]float64, len(sampleDamage))
		for i, v := range sampleDamage {
			scaled[i] = tc.a*v + tc.b
		}
		got, err := Pearson(scaled, samplePlacement)
		require.NoError(t, err)
		assert.InDelta(t, base.R, got.R, 1e-9, "a=%v b=%v", tc.a, tc.b)
	}
}

func TestPearsonPValueKnownValue(t *testing.T) {
	// r = 0.5 with n = 10 gives t = 1.633 on 8 df, two-tailed p ~ 0.1411.
	assert.InDelta(t, 0.1411, correlationPValue(0.5, 10), 5e-4)
	assert.InDelta(t, 0.10725, correlationPValue(0.3, 30), 5e-5)
	assert.InDelta(t, 0.28713, correlationPValue(0.9, 3), 5e-5)
	assert.InDelta(t, correlationPValue(0.3, 30), correlationPValue(-0.3, 30), 1e-12)
	assert.Equal(t, 1.0, correlationPValue(0.9, 2))
	assert.Equal(t, 0.0, correlationPValue(-1, 5))
}

func TestPearsonNotSignificant(t *testing.T) {
	c, err := Pearson([]float64{1, 2, 3, 4}, []float64{2, 1, 2, 1})
	require.NoError(t, err)
	assert.False(t, c.Significant())
}

func TestPearsonDropsMissing(t *testing.T) {
	c, err := Pearson([]float64{10, math.NaN(), 20, 30}, []float64{3, 1, 2, math.NaN()})
	require.NoError(t, err)
	assert.Equal(t, 2, c.N)
	assert.Equal(t, 2, c.Dropped)
	assert.Equal(t, 1.0, c.P)
}

func TestPearsonUndefined(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
	}{
		{"single row", []float64{1}, []float64{2}},
		{"empty", nil, nil},
		{"constant column", []float64{5, 5, 5}, []float64{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Pearson(tt.x, tt.y)
			var undef *UndefinedError
			require.True(t, errors.As(err, &undef), "got %v", err)
			assert.Equal(t, "correlation", undef.Statistic)
		})
	}
}

func TestPearsonLengthMismatch(t *testing.T) {
	_, err := Pearson([]float64{1, 2}, []float64{1})
	require.Error(t, err)
	var undef *UndefinedError
	assert.False(t, errors.As(err, &undef))
}

func TestLinearRegressionExactLine(t *testing.T) {
	level := []float64{3, 4, 5, 6, 7, 8, 9}
	placement := make([]float64, len(level))
	for i, l := range level {
		placement[i] = 2*l + 1
	}
	reg, err := LinearRegression(level, placement)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, reg.Slope, 1e-9)
	assert.InDelta(t, 1.0, reg.Intercept, 1e-9)
	assert.InDelta(t, 1.0, reg.R2, 1e-12)
	assert.InDelta(t, 0.0, reg.StdErr, 1e-6)
	assert.InDelta(t, 0.0, reg.P, 1e-9)
	assert.InDelta(t, 19.0, reg.Predict(9), 1e-9)
}

func TestLinearRegressionNoisy(t *testing.T) {
	level := []float64{5, 6, 7, 8, 9, 6, 7, 8}
	placement := []float64{8, 6, 5, 3, 1, 7, 4, 2}
	reg, err := LinearRegression(level, placement)
	require.NoError(t, err)
	assert.Less(t, reg.Slope, 0.0)
	assert.Greater(t, reg.R2, 0.5)
	assert.LessOrEqual(t, reg.R2, 1.0)
	assert.Greater(t, reg.StdErr, 0.0)

	c, err := Pearson(level, placement)
	require.NoError(t, err)
	assert.InDelta(t, c.R, reg.R, 1e-12)
	assert.InDelta(t, c.P, reg.P, 1e-12)
}

func TestLinearRegressionTwoPoints(t *testing.T) {
	reg, err := LinearRegression([]float64{4, 6}, []float64{7, 3})
	require.NoError(t, err)
	assert.InDelta(t, -2.0, reg.Slope, 1e-12)
	assert.InDelta(t, 15.0, reg.Intercept, 1e-12)
	assert.Equal(t, 1.0, reg.P)
	assert.Equal(t, 0.0, reg.StdErr)
}

func TestLinearRegressionFlatResponse(t *testing.T) {
	reg, err := LinearRegression([]float64{5, 6, 7, 8}, []float64{4, 4, 4, 4})
	require.NoError(t, err)
	assert.True(t, reg.Flat)
	assert.InDelta(t, 0.0, reg.Slope, 1e-12)
	assert.InDelta(t, 4.0, reg.Intercept, 1e-12)
	assert.Equal(t, 1.0, reg.P)

	noisy, err := LinearRegression([]float64{5, 6, 7, 8}, []float64{4, 3, 4, 2})
	require.NoError(t, err)
	assert.False(t, noisy.Flat)
}

func TestLinearRegressionUndefined(t *testing.T) {
	_, err := LinearRegression([]float64{7, 7, 7}, []float64{1, 4, 8})
	var undef *UndefinedError
	require.True(t, errors.As(err, &undef))
	assert.Contains(t, undef.Reason, "zero variance")

	_, err = LinearRegression([]float64{math.NaN()}, []float64{1})
	require.True(t, errors.As(err, &undef))
}

func TestConditionalTop4(t *testing.T) {
	flag := []float64{1, 1, 1, 0, 0, 2, 1, math.NaN()}
	top4 := []float64{1, 0, 1, 0, 1, 1, math.NaN(), 1}
	cp, err := ConditionalTop4(flag, top4)
	require.NoError(t, err)

	assert.Equal(t, 3, cp.WithMoreGold.Size)
	assert.Equal(t, 2, cp.WithMoreGold.Hits)
	assert.InDelta(t, 2.0/3.0, cp.WithMoreGold.Rate, 1e-12)
	assert.Equal(t, 2, cp.Others.Size)
	assert.InDelta(t, 0.5, cp.Others.Rate, 1e-12)
	assert.Equal(t, 3, cp.Ignored)

	for _, g := range []GroupRate{cp.WithMoreGold, cp.Others} {
		assert.True(t, g.Defined)
		assert.GreaterOrEqual(t, g.Rate, 0.0)
		assert.LessOrEqual(t, g.Rate, 1.0)
	}
}

func TestConditionalTop4EmptyGroup(t *testing.T) {
	cp, err := ConditionalTop4([]float64{1, 1, 1}, []float64{1, 0, 0})
	require.NoError(t, err)
	assert.True(t, cp.WithMoreGold.Defined)
	assert.False(t, cp.Others.Defined)
	assert.Equal(t, 0, cp.Others.Size)
	assert.False(t, math.IsNaN(cp.Others.Rate))
	assert.Equal(t, "undefined (no rows in group)", percent(cp.Others))
}
