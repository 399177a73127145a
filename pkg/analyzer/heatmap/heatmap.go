// Package heatmap builds a subject x unit proficiency matrix.
package heatmap

import (
	"sort"

	"github.com/studymetrics/lumen/pkg/models"
	"github.com/studymetrics/lumen/pkg/stats"
)

// Builder accumulates study records into a proficiency heatmap.
type Builder struct {
	trendDelta float64
}

// Option configures the Builder.
type Option func(*Builder)

// WithTrendDelta sets the accuracy-point gap between the first and second
// half of a cell's sequence required to call a trend.
func WithTrendDelta(delta float64) Option {
	return func(b *Builder) {
		b.trendDelta = delta
	}
}

// New creates a heatmap builder.
func New(opts ...Option) *Builder {
	b := &Builder{trendDelta: DefaultTrendDelta}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type cellKey struct {
	subject string
	unit    string
}

// Build produces one cell per observed (subject, unit) pair. Records missing
// a subject, unit, or accuracy are skipped. Cells are ordered by subject,
// then unit.
func (b *Builder) Build(records []models.StudyRecord) *Heatmap {
	type accum struct {
		accuracies []float64 // input order, used for half-vs-half trend
		totalTime  float64
	}

	cells := make(map[cellKey]*accum)
	processed := 0

	for _, r := range records {
		if r.Subject == "" || r.Unit == "" || r.Accuracy == nil {
			continue
		}
		processed++

		key := cellKey{r.Subject, r.Unit}
		c := cells[key]
		if c == nil {
			c = &accum{}
			cells[key] = c
		}
		c.accuracies = append(c.accuracies, stats.ClampPercent(*r.Accuracy))
		if r.Time != nil {
			c.totalTime += *r.Time
		}
	}

	hm := &Heatmap{Matrix: make([]Cell, 0, len(cells))}

	subjectSet := make(map[string]struct{})
	unitSet := make(map[string]struct{})
	var accuracySum float64

	for key, c := range cells {
		count := len(c.accuracies)
		sd := stats.PopStdDev(c.accuracies)
		cell := Cell{
			Subject:    key.subject,
			Unit:       key.unit,
			Accuracy:   stats.ClampPercent(stats.Mean(c.accuracies)),
			Count:      count,
			TotalTime:  c.totalTime,
			AvgTime:    c.totalTime / float64(count),
			StdDev:     sd,
			Trend:      b.cellTrend(c.accuracies),
			Confidence: classifyConfidence(count, sd),
		}
		hm.Matrix = append(hm.Matrix, cell)

		subjectSet[key.subject] = struct{}{}
		unitSet[key.unit] = struct{}{}
		accuracySum += cell.Accuracy
	}

	sort.Slice(hm.Matrix, func(i, j int) bool {
		if hm.Matrix[i].Subject != hm.Matrix[j].Subject {
			return hm.Matrix[i].Subject < hm.Matrix[j].Subject
		}
		return hm.Matrix[i].Unit < hm.Matrix[j].Unit
	})

	hm.Subjects = sortedKeys(subjectSet)
	hm.Units = sortedKeys(unitSet)

	hm.Stats.TotalRecords = processed
	if len(hm.Matrix) > 0 {
		hm.Stats.AvgAccuracy = stats.ClampPercent(accuracySum / float64(len(hm.Matrix)))
		possible := len(hm.Subjects) * len(hm.Units)
		hm.Stats.Coverage = stats.ClampPercent(float64(len(hm.Matrix)) / float64(possible) * 100)
	}

	return hm
}

// cellTrend compares mean accuracy of the first half of the sequence against
// the second half.
func (b *Builder) cellTrend(accuracies []float64) CellTrend {
	if len(accuracies) < 2 {
		return TrendStable
	}

	mid := len(accuracies) / 2
	firstMean := stats.Mean(accuracies[:mid])
	secondMean := stats.Mean(accuracies[mid:])

	switch {
	case secondMean-firstMean > b.trendDelta:
		return TrendImproving
	case firstMean-secondMean > b.trendDelta:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func classifyConfidence(count int, stdDev float64) Confidence {
	switch {
	case count < DefaultVeryLowSamples:
		return ConfidenceVeryLow
	case count < DefaultLowSamples:
		return ConfidenceLow
	case count < DefaultMediumSamples || stdDev > DefaultNoisyStdDev:
		return ConfidenceMedium
	default:
		return ConfidenceHigh
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
