// Package weekly groups study events into ISO-week buckets.
package weekly

import (
	"sort"

	"github.com/studymetrics/lumen/pkg/models"
	"github.com/studymetrics/lumen/pkg/stats"
)

// Aggregator buckets study records by ISO-8601 week.
//
// Week boundaries follow ISO-8601 exactly (weeks start on Monday, week 1 is
// the week containing the year's first Thursday) via time.ISOWeek. This is
// the pinned convention for week-over-week comparisons across year
// rollovers.
type Aggregator struct{}

// New creates a weekly aggregator.
func New() *Aggregator {
	return &Aggregator{}
}

type weekKey struct {
	year int
	week int
}

// Aggregate produces one bucket per observed ISO week, sorted ascending by
// (year, week). Records missing a date, time, or score are skipped.
func (a *Aggregator) Aggregate(records []models.StudyRecord) []Bucket {
	type accum struct {
		count      int
		totalTime  float64
		totalScore float64
		subjects   map[string]*SubjectTotals
	}

	weeks := make(map[weekKey]*accum)

	for _, r := range records {
		if !r.HasDate() || r.Time == nil || r.Score == nil {
			continue
		}

		year, week := r.Date.UTC().ISOWeek()
		key := weekKey{year, week}
		w := weeks[key]
		if w == nil {
			w = &accum{subjects: make(map[string]*SubjectTotals)}
			weeks[key] = w
		}

		w.count++
		w.totalTime += *r.Time
		w.totalScore += *r.Score

		if r.Subject != "" {
			s := w.subjects[r.Subject]
			if s == nil {
				s = &SubjectTotals{Subject: r.Subject}
				w.subjects[r.Subject] = s
			}
			s.Count++
			s.TotalTime += *r.Time
			s.TotalScore += *r.Score
		}
	}

	buckets := make([]Bucket, 0, len(weeks))
	for key, w := range weeks {
		b := Bucket{
			Year:       key.year,
			Week:       key.week,
			Count:      w.count,
			TotalTime:  w.totalTime,
			AvgTime:    w.totalTime / float64(w.count),
			TotalScore: w.totalScore,
			AvgScore:   stats.ClampPercent(w.totalScore / float64(w.count)),
		}

		b.Subjects = make([]SubjectTotals, 0, len(w.subjects))
		for _, s := range w.subjects {
			s.AvgScore = stats.ClampPercent(s.TotalScore / float64(s.Count))
			b.Subjects = append(b.Subjects, *s)
		}
		sort.Slice(b.Subjects, func(i, j int) bool {
			if b.Subjects[i].TotalTime != b.Subjects[j].TotalTime {
				return b.Subjects[i].TotalTime > b.Subjects[j].TotalTime
			}
			return b.Subjects[i].Subject < b.Subjects[j].Subject
		})

		buckets = append(buckets, b)
	}

	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Year != buckets[j].Year {
			return buckets[i].Year < buckets[j].Year
		}
		return buckets[i].Week < buckets[j].Week
	})

	return buckets
}
