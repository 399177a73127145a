// Package stats provides the numeric primitives shared by all analyzers.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Point is a single (x, y) observation for regression fitting.
type Point struct {
	X float64
	Y float64
}

// Fit holds least-squares regression results. Slope and Intercept are
// expressed on an x-axis normalized to [0,1]; divide Slope by XRange to
// recover original x-units.
type Fit struct {
	Slope     float64
	Intercept float64
	R2        float64 // goodness of fit, clamped to [0,1]
	XRange    float64 // original x-domain width before normalization
}

// LinearRegression fits a least-squares line over the points after
// normalizing the x-domain to [0,1]. A degenerate x-range (all x equal, or
// fewer than 2 points) yields slope 0, intercept mean(y), r2 0. A y-series
// with no variance yields r2 0.
func LinearRegression(points []Point) Fit {
	n := len(points)
	if n == 0 {
		return Fit{}
	}

	minX, maxX := points[0].X, points[0].X
	ys := make([]float64, n)
	for i, p := range points {
		ys[i] = p.Y
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
	}

	xRange := maxX - minX
	if n < 2 || xRange == 0 {
		return Fit{Intercept: stat.Mean(ys, nil), XRange: xRange}
	}

	xs := make([]float64, n)
	for i, p := range points {
		xs[i] = (p.X - minX) / xRange
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(slope) || math.IsNaN(intercept) {
		return Fit{Intercept: stat.Mean(ys, nil), XRange: xRange}
	}

	r2 := 0.0
	if stat.PopVariance(ys, nil) > 0 {
		r2 = ClampUnit(stat.RSquared(xs, ys, nil, intercept, slope))
	}

	return Fit{Slope: slope, Intercept: intercept, R2: r2, XRange: xRange}
}

// SlopePerX returns the fitted slope de-normalized to original x-units.
func (f Fit) SlopePerX() float64 {
	if f.XRange == 0 {
		return 0
	}
	return f.Slope / f.XRange
}

// PearsonCorrelation computes the Pearson correlation coefficient between two
// equal-length series. Mismatched lengths, fewer than 2 samples, or a series
// with no variance all return 0. The result is clamped to [-1,1].
func PearsonCorrelation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0
	}
	return Clamp(r, -1, 1)
}

// MovingAverage computes a trailing moving average. Output index i averages
// the up-to-window values ending at i; partial windows at the start average
// over however many values exist so far, so early points are imprecise
// rather than undefined.
func MovingAverage(values []float64, window int) []float64 {
	if len(values) == 0 || window < 1 {
		return nil
	}
	out := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
			out[i] = sum / float64(window)
		} else {
			out[i] = sum / float64(i+1)
		}
	}
	return out
}

// PopStdDev returns the population standard deviation of values, or 0 for an
// empty series.
func PopStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sd := stat.PopStdDev(values, nil)
	if math.IsNaN(sd) {
		return 0
	}
	return sd
}

// Mean returns the arithmetic mean of values, or 0 for an empty series.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// Interval is a confidence interval over a percentage value.
type Interval struct {
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
	Margin float64 `json:"margin"`
}

// z-score for a 95% two-sided normal interval.
const z95 = 1.96

// BinomialConfidence estimates a 95% confidence interval for a success rate
// (in percent) observed over sampleSize trials, using the normal
// approximation to the binomial. Bounds are clamped to [0,100]. A
// non-positive sample size yields the maximally uncertain interval.
func BinomialConfidence(ratePercent float64, sampleSize int) Interval {
	if sampleSize <= 0 {
		return Interval{Lower: 0, Upper: 100, Margin: 100}
	}
	p := ClampPercent(ratePercent) / 100
	margin := z95 * math.Sqrt(p*(1-p)/float64(sampleSize)) * 100
	return Interval{
		Lower:  ClampPercent(ratePercent - margin),
		Upper:  ClampPercent(ratePercent + margin),
		Margin: margin,
	}
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampPercent restricts v to [0,100].
func ClampPercent(v float64) float64 { return Clamp(v, 0, 100) }

// ClampUnit restricts v to [0,1].
func ClampUnit(v float64) float64 { return Clamp(v, 0, 1) }
