package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinearRegression_PerfectLine(t *testing.T) {
	fit := LinearRegression([]Point{{0, 0}, {1, 1}, {2, 2}})

	// Normalized x spans [0,1] over an original range of 2, so the
	// normalized slope is 2 and the per-x slope is 1.
	assert.InDelta(t, 2.0, fit.Slope, 1e-9)
	assert.InDelta(t, 1.0, fit.SlopePerX(), 1e-9)
	assert.InDelta(t, 0.0, fit.Intercept, 1e-9)
	assert.InDelta(t, 1.0, fit.R2, 1e-9)
	assert.InDelta(t, 2.0, fit.XRange, 1e-9)
}

func TestLinearRegression_Degenerate(t *testing.T) {
	tests := []struct {
		name          string
		points        []Point
		wantIntercept float64
	}{
		{"empty", nil, 0},
		{"single point", []Point{{3, 7}}, 7},
		{"identical points", []Point{{5, 4}, {5, 4}}, 4},
		{"same x different y", []Point{{2, 10}, {2, 20}}, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fit := LinearRegression(tt.points)
			assert.Zero(t, fit.Slope)
			assert.Zero(t, fit.R2)
			assert.Zero(t, fit.SlopePerX())
			assert.InDelta(t, tt.wantIntercept, fit.Intercept, 1e-9)
		})
	}
}

func TestLinearRegression_FlatSeries(t *testing.T) {
	// Varying x, constant y: slope 0 and r2 0 (no variance to explain).
	fit := LinearRegression([]Point{{0, 50}, {1, 50}, {2, 50}})
	assert.InDelta(t, 0.0, fit.Slope, 1e-9)
	assert.InDelta(t, 50.0, fit.Intercept, 1e-9)
	assert.Zero(t, fit.R2)
}

func TestLinearRegression_R2Range(t *testing.T) {
	fit := LinearRegression([]Point{{0, 10}, {1, 40}, {2, 20}, {3, 60}, {4, 35}})
	assert.GreaterOrEqual(t, fit.R2, 0.0)
	assert.LessOrEqual(t, fit.R2, 1.0)
}

func TestPearsonCorrelation(t *testing.T) {
	tests := []struct {
		name string
		x    []float64
		y    []float64
		want float64
	}{
		{"perfect positive", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"perfect negative", []float64{1, 2, 3}, []float64{3, 2, 1}, -1},
		{"mismatched lengths", []float64{1, 2, 3}, []float64{1, 2}, 0},
		{"too short", []float64{1}, []float64{1}, 0},
		{"empty", nil, nil, 0},
		{"no variance in x", []float64{5, 5, 5}, []float64{1, 2, 3}, 0},
		{"no variance in y", []float64{1, 2, 3}, []float64{5, 5, 5}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PearsonCorrelation(tt.x, tt.y), 1e-9)
		})
	}
}

func TestMovingAverage(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		window int
		want   []float64
	}{
		{"empty", nil, 3, nil},
		{"window one", []float64{1, 2, 3}, 1, []float64{1, 2, 3}},
		{"partial then full", []float64{2, 4, 6, 8}, 2, []float64{2, 3, 5, 7}},
		{"window larger than series", []float64{3, 6}, 5, []float64{3, 4.5}},
		{"invalid window", []float64{1, 2}, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MovingAverage(tt.values, tt.window)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			assert.InDeltaSlice(t, tt.want, got, 1e-9)
		})
	}
}

func TestPopStdDev(t *testing.T) {
	assert.Zero(t, PopStdDev(nil))
	assert.Zero(t, PopStdDev([]float64{7, 7, 7}))
	assert.InDelta(t, 2.0, PopStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
}

func TestBinomialConfidence(t *testing.T) {
	iv := BinomialConfidence(50, 100)
	wantMargin := 1.96 * math.Sqrt(0.5*0.5/100) * 100
	assert.InDelta(t, wantMargin, iv.Margin, 1e-9)
	assert.InDelta(t, 50-wantMargin, iv.Lower, 1e-9)
	assert.InDelta(t, 50+wantMargin, iv.Upper, 1e-9)
}

func TestBinomialConfidence_Clamped(t *testing.T) {
	for _, rate := range []float64{0, 3, 97, 100} {
		iv := BinomialConfidence(rate, 4)
		assert.GreaterOrEqual(t, iv.Lower, 0.0)
		assert.LessOrEqual(t, iv.Upper, 100.0)
	}
}

func TestBinomialConfidence_EmptySample(t *testing.T) {
	iv := BinomialConfidence(80, 0)
	assert.Equal(t, Interval{Lower: 0, Upper: 100, Margin: 100}, iv)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, ClampPercent(-5))
	assert.Equal(t, 100.0, ClampPercent(250))
	assert.Equal(t, 42.0, ClampPercent(42))
	assert.Equal(t, 1.0, ClampUnit(1.5))
	assert.Equal(t, -1.0, Clamp(-3, -1, 1))
}
