// Package trend fits per-subject and overall score trends over time.
package trend

import (
	"math"
	"sort"

	"github.com/studymetrics/lumen/pkg/models"
	"github.com/studymetrics/lumen/pkg/stats"
)

const hoursPerDay = 24

// Analyzer fits score regressions per subject and overall.
type Analyzer struct {
	stableBand    float64
	fastThreshold float64
}

// Option configures the Analyzer.
type Option func(*Analyzer)

// WithStableBand sets the absolute daily slope below which a trend is stable.
func WithStableBand(band float64) Option {
	return func(a *Analyzer) {
		a.stableBand = band
	}
}

// WithFastThreshold sets the daily slope beyond which a trend is fast.
func WithFastThreshold(threshold float64) Option {
	return func(a *Analyzer) {
		a.fastThreshold = threshold
	}
}

// New creates a trend analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		stableBand:    DefaultStableBand,
		fastThreshold: DefaultFastThreshold,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type point struct {
	record models.StudyRecord
	score  float64
	time   float64
}

// Analyze groups records by subject, fits a chronological regression per
// subject, and computes an overall trend across all subjects. Records
// missing a subject, date, or score are skipped.
func (a *Analyzer) Analyze(records []models.StudyRecord) *Analysis {
	bySubject := make(map[string][]point)
	var all []point

	for _, r := range records {
		if r.Subject == "" || !r.HasDate() || r.Score == nil {
			continue
		}
		p := point{record: r, score: stats.ClampPercent(*r.Score)}
		if r.Time != nil {
			p.time = *r.Time
		}
		bySubject[r.Subject] = append(bySubject[r.Subject], p)
		all = append(all, p)
	}

	analysis := &Analysis{Subjects: make(map[string]SubjectTrend, len(bySubject))}

	for subject, pts := range bySubject {
		st := a.fitSubject(pts)
		st.Subject = subject
		analysis.Subjects[subject] = st
	}

	if len(all) >= 2 {
		overall := a.fitSubject(all)
		overall.Subject = "overall"
		analysis.Overall = &overall
	}

	return analysis
}

// fitSubject fits a regression over one chronologically sorted point series.
func (a *Analyzer) fitSubject(pts []point) SubjectTrend {
	sort.SliceStable(pts, func(i, j int) bool {
		return pts[i].record.Date.Before(pts[j].record.Date)
	})

	st := SubjectTrend{Points: len(pts)}

	if len(pts) < 2 {
		st.Label = LabelInsufficientData
		if len(pts) == 1 {
			st.AvgScore = pts[0].score
		}
		return st
	}

	first := pts[0].record.Date
	regPoints := make([]stats.Point, len(pts))
	scores := make([]float64, len(pts))
	times := make([]float64, len(pts))
	for i, p := range pts {
		regPoints[i] = stats.Point{
			X: p.record.Date.Sub(first).Hours() / hoursPerDay,
			Y: p.score,
		}
		scores[i] = p.score
		times[i] = p.time
	}

	fit := stats.LinearRegression(regPoints)
	st.Slope = fit.SlopePerX() // score units per day
	st.Intercept = fit.Intercept
	st.R2 = fit.R2
	st.Label = a.classify(st.Slope)
	st.AvgScore = stats.ClampPercent(stats.Mean(scores))
	st.StudyTimeCorrelation = stats.PearsonCorrelation(times, scores)

	if firstScore := scores[0]; firstScore != 0 {
		st.Improvement = (scores[len(scores)-1] - firstScore) / firstScore * 100
	}

	return st
}

// classify maps a daily slope onto a trend label.
func (a *Analyzer) classify(slopePerDay float64) Label {
	switch {
	case math.Abs(slopePerDay) < a.stableBand:
		return LabelStable
	case slopePerDay > a.fastThreshold:
		return LabelImprovingFast
	case slopePerDay > 0:
		return LabelImproving
	case slopePerDay < -a.fastThreshold:
		return LabelDecliningFast
	default:
		return LabelDeclining
	}
}
