// Package weakness ranks (subject, unit) pairs by a weakness heuristic
// combining inverse accuracy, sample-size penalties, activity trend, and
// difficulty adjustments.
package weakness

import (
	"sort"
	"time"

	"github.com/studymetrics/lumen/pkg/models"
	"github.com/studymetrics/lumen/pkg/stats"
)

// Analyzer computes ranked weakness records.
type Analyzer struct {
	topPatterns   int
	activityDelta float64
}

// Option configures the Analyzer.
type Option func(*Analyzer)

// WithTopPatterns sets how many error patterns are reported per group.
func WithTopPatterns(n int) Option {
	return func(a *Analyzer) {
		a.topPatterns = n
	}
}

// WithActivityDelta sets the relative density change needed to call the
// activity trend increasing or decreasing.
func WithActivityDelta(delta float64) Option {
	return func(a *Analyzer) {
		a.activityDelta = delta
	}
}

// New creates a weakness analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		topPatterns:   DefaultTopPatterns,
		activityDelta: DefaultActivityDelta,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type group struct {
	subject      string
	unit         string
	correct      int
	incorrect    int
	errorCounts  map[string]int
	totalTime    float64
	timestamps   []time.Time
	difficulties []float64
}

// Analyze groups records by (subject, unit) and returns one weakness record
// per group, sorted descending by weakness score. Records missing a subject,
// unit, or correctness flag are skipped. Groups with perfect accuracy are
// excluded: the output is a ranked list of weaknesses, and a pair the
// student never misses is not one.
func (a *Analyzer) Analyze(records []models.StudyRecord) []Record {
	type key struct{ subject, unit string }
	groups := make(map[key]*group)

	for _, r := range records {
		if r.Subject == "" || r.Unit == "" || r.IsCorrect == nil {
			continue
		}

		k := key{r.Subject, r.Unit}
		g := groups[k]
		if g == nil {
			g = &group{subject: r.Subject, unit: r.Unit, errorCounts: make(map[string]int)}
			groups[k] = g
		}

		if *r.IsCorrect {
			g.correct++
		} else {
			g.incorrect++
			if r.ErrorType != "" {
				g.errorCounts[r.ErrorType]++
			}
		}

		switch {
		case r.Time != nil:
			g.totalTime += *r.Time
		case r.Duration != nil:
			g.totalTime += *r.Duration
		}

		if t := r.EventTime(); !t.IsZero() {
			g.timestamps = append(g.timestamps, t)
		}
		if r.Difficulty != nil {
			g.difficulties = append(g.difficulties, *r.Difficulty)
		}
	}

	out := make([]Record, 0, len(groups))
	for _, g := range groups {
		if g.incorrect == 0 {
			continue // perfect accuracy is not a weakness
		}
		out = append(out, a.score(g))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].WeaknessScore != out[j].WeaknessScore {
			return out[i].WeaknessScore > out[j].WeaknessScore
		}
		if out[i].Subject != out[j].Subject {
			return out[i].Subject < out[j].Subject
		}
		return out[i].Unit < out[j].Unit
	})

	return out
}

// score computes the ranked record for one group.
func (a *Analyzer) score(g *group) Record {
	total := g.correct + g.incorrect
	accuracy := float64(g.correct) / float64(total) * 100

	progression := a.timeProgression(g.timestamps)

	weakness := 100 - accuracy

	// Thin samples are discounted to avoid overweighting a handful of misses.
	switch {
	case total < DefaultSmallSample:
		weakness *= DefaultSmallPenalty
	case total < DefaultMediumSample:
		weakness *= DefaultMediumPenalty
	}

	switch progression {
	case ActivityIncreasing:
		weakness *= DefaultIncreasingFactor
	case ActivityDecreasing:
		weakness *= DefaultDecreasingFactor
	}

	avgDifficulty := stats.Mean(g.difficulties)
	if len(g.difficulties) > 0 {
		switch {
		case avgDifficulty > DefaultHardDifficulty:
			weakness *= DefaultHardFactor
		case avgDifficulty < DefaultEasyDifficulty:
			weakness *= DefaultEasyFactor
		}
	}

	return Record{
		Subject:            g.subject,
		Unit:               g.unit,
		Accuracy:           stats.ClampPercent(accuracy),
		TotalQuestions:     total,
		CorrectCount:       g.correct,
		IncorrectCount:     g.incorrect,
		AvgTimePerQuestion: g.totalTime / float64(total),
		WeaknessScore:      stats.ClampPercent(weakness),
		TopErrorPatterns:   a.topErrorPatterns(g.errorCounts, g.incorrect),
		TimeProgression:    progression,
		AvgDifficulty:      avgDifficulty,
		ConfidenceLevel:    stats.BinomialConfidence(accuracy, total),
	}
}

// topErrorPatterns ranks error types by frequency among incorrect answers.
func (a *Analyzer) topErrorPatterns(counts map[string]int, incorrect int) []ErrorPattern {
	if len(counts) == 0 {
		return nil
	}

	patterns := make([]ErrorPattern, 0, len(counts))
	for pattern, count := range counts {
		patterns = append(patterns, ErrorPattern{
			Pattern:    pattern,
			Count:      count,
			Percentage: float64(count) / float64(incorrect) * 100,
		})
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Count != patterns[j].Count {
			return patterns[i].Count > patterns[j].Count
		}
		return patterns[i].Pattern < patterns[j].Pattern
	})

	if len(patterns) > a.topPatterns {
		patterns = patterns[:a.topPatterns]
	}
	return patterns
}

// timeProgression splits the sorted timestamps into three equal thirds and
// compares observation density (events per unit time) of the first third
// against the last.
func (a *Analyzer) timeProgression(timestamps []time.Time) Activity {
	third := len(timestamps) / 3
	if third < 2 {
		return ActivityStable
	}

	sorted := make([]time.Time, len(timestamps))
	copy(sorted, timestamps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	firstDensity := density(sorted[:third])
	lastDensity := density(sorted[len(sorted)-third:])
	if firstDensity == 0 || lastDensity == 0 {
		return ActivityStable
	}

	switch {
	case lastDensity > firstDensity*(1+a.activityDelta):
		return ActivityIncreasing
	case lastDensity < firstDensity*(1-a.activityDelta):
		return ActivityDecreasing
	default:
		return ActivityStable
	}
}

// density returns events per hour over the span of the given sorted slice,
// or 0 when the span is zero.
func density(window []time.Time) float64 {
	span := window[len(window)-1].Sub(window[0]).Hours()
	if span <= 0 {
		return 0
	}
	return float64(len(window)) / span
}
