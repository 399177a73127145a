// Package predict projects near, mid, and long-term score trajectories from
// a daily-aggregated score and study-time series.
package predict

import (
	"fmt"
	"sort"
	"time"

	"github.com/studymetrics/lumen/pkg/models"
	"github.com/studymetrics/lumen/pkg/stats"
)

// Predictor forecasts score trajectories.
type Predictor struct {
	minDays    int
	windowDays int
}

// Option configures the Predictor.
type Option func(*Predictor)

// WithMinDays sets the minimum distinct days of data required to forecast.
func WithMinDays(n int) Option {
	return func(p *Predictor) {
		p.minDays = n
	}
}

// WithWindowDays sets the regression window over the most recent days.
func WithWindowDays(n int) Option {
	return func(p *Predictor) {
		p.windowDays = n
	}
}

// New creates a score predictor.
func New(opts ...Option) *Predictor {
	p := &Predictor{
		minDays:    DefaultMinDays,
		windowDays: DefaultWindowDays,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type dailyPoint struct {
	day       time.Time
	meanScore float64
	totalTime float64
	subjects  int
}

// Predict aggregates records by calendar day and projects score trajectories
// from a regression over the most recent days. Records missing a date or
// score are skipped. With fewer than the minimum days of data it returns a
// low-confidence result recommending more data.
func (p *Predictor) Predict(records []models.StudyRecord) *Result {
	days := p.groupByDay(records)

	if len(days) < p.minDays {
		return &Result{
			Confidence: ConfidenceLow,
			Recommendations: []string{
				fmt.Sprintf("Not enough history to forecast: need more data (at least %d days of recorded study).", p.minDays),
			},
			AnalysisDetails: Details{DaysAnalyzed: len(days)},
		}
	}

	means := make([]float64, len(days))
	for i, d := range days {
		means[i] = d.meanScore
	}

	ma7 := stats.MovingAverage(means, shortWindow)
	ma30 := stats.MovingAverage(means, longWindow)
	currentAvg := stats.ClampPercent(ma7[len(ma7)-1])
	monthlyAvg := stats.ClampPercent(ma30[len(ma30)-1])

	// Regression over the most recent window, day index as x.
	window := days
	if len(window) > p.windowDays {
		window = window[len(window)-p.windowDays:]
	}

	regPoints := make([]stats.Point, len(window))
	windowScores := make([]float64, len(window))
	windowTimes := make([]float64, len(window))
	var totalTime float64
	for i, d := range window {
		regPoints[i] = stats.Point{X: float64(i), Y: d.meanScore}
		windowScores[i] = d.meanScore
		windowTimes[i] = d.totalTime
		totalTime += d.totalTime
	}

	fit := stats.LinearRegression(regPoints)
	slope := fit.SlopePerX() // score units per day
	correlation := stats.PearsonCorrelation(windowTimes, windowScores)
	avgDailyTime := totalTime / float64(len(window))

	result := &Result{
		CurrentAvg:  currentAvg,
		WeeklyTrend: slope * horizonWeek,
		MonthlyAvg:  monthlyAvg,
		Predictions: Projections{
			OneWeek:     stats.ClampPercent(currentAvg + slope*horizonWeek),
			OneMonth:    stats.ClampPercent(currentAvg + slope*horizonMonth),
			ThreeMonths: stats.ClampPercent(currentAvg + slope*horizonQuarter*quarterDiscount),
		},
		Confidence:           classifyConfidence(fit.R2, len(days)),
		StudyTimeCorrelation: correlation,
		AnalysisDetails: Details{
			DaysAnalyzed:      len(days),
			WindowDays:        len(window),
			Slope:             slope,
			R2:                fit.R2,
			FirstDay:          days[0].day,
			LastDay:           days[len(days)-1].day,
			AvgDailyStudyTime: avgDailyTime,
		},
	}
	result.Recommendations = recommend(result, avgDailyTime)

	return result
}

// groupByDay collapses records into per-day aggregates, sorted
// chronologically.
func (p *Predictor) groupByDay(records []models.StudyRecord) []dailyPoint {
	type accum struct {
		scoreSum float64
		count    int
		time     float64
		subjects map[string]struct{}
	}

	byDay := make(map[time.Time]*accum)
	for _, r := range records {
		if !r.HasDate() || r.Score == nil {
			continue
		}

		day := r.Day()
		a := byDay[day]
		if a == nil {
			a = &accum{subjects: make(map[string]struct{})}
			byDay[day] = a
		}
		a.scoreSum += stats.ClampPercent(*r.Score)
		a.count++
		switch {
		case r.Duration != nil:
			a.time += *r.Duration
		case r.Time != nil:
			a.time += *r.Time
		}
		if r.Subject != "" {
			a.subjects[r.Subject] = struct{}{}
		}
	}

	days := make([]dailyPoint, 0, len(byDay))
	for day, a := range byDay {
		days = append(days, dailyPoint{
			day:       day,
			meanScore: a.scoreSum / float64(a.count),
			totalTime: a.time,
			subjects:  len(a.subjects),
		})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].day.Before(days[j].day) })

	return days
}

func classifyConfidence(r2 float64, days int) Confidence {
	switch {
	case r2 > highR2 && days >= highMinDays:
		return ConfidenceHigh
	case r2 > mediumR2 || days >= mediumMinDay:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// recommend derives qualitative guidance from simple rule thresholds.
func recommend(r *Result, avgDailyTime float64) []string {
	var recs []string

	if r.CurrentAvg < 60 {
		recs = append(recs, "Current average is below 60: focus on fundamentals in the weakest units before advancing.")
	}

	slope := r.AnalysisDetails.Slope
	switch {
	case slope > 0:
		recs = append(recs, "Scores are trending upward: the current routine is working, keep it up.")
	case slope < 0:
		recs = append(recs, "Scores are trending downward: review recent mistakes before taking on new material.")
	}

	switch {
	case r.StudyTimeCorrelation > 0.5:
		recs = append(recs, "Study time strongly tracks scores: extra minutes per day should pay off directly.")
	case r.StudyTimeCorrelation < -0.3:
		recs = append(recs, "More time is not translating into better scores: change methods rather than adding hours.")
	}

	if avgDailyTime > 0 && avgDailyTime < 30 {
		recs = append(recs, "Average daily study time is under 30 minutes: consider longer or more frequent sessions.")
	}

	if len(recs) == 0 {
		recs = append(recs, "Performance is steady: maintain the current study schedule.")
	}
	return recs
}
