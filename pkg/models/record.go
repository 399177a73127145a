// Package models defines the study-event record consumed by all analyzers.
package models

import "time"

// StudyRecord is a single study event as submitted by the host. Fields are
// optional because each operation consumes a different subset; a record
// missing a field required by the active operation is skipped, never an error.
type StudyRecord struct {
	Date       time.Time  `json:"date"`
	Time       *float64   `json:"time,omitempty"`     // minutes spent
	Score      *float64   `json:"score,omitempty"`    // 0-100
	Subject    string     `json:"subject,omitempty"`
	Unit       string     `json:"unit,omitempty"`
	Accuracy   *float64   `json:"accuracy,omitempty"` // 0-100
	IsCorrect  *bool      `json:"isCorrect,omitempty"`
	ErrorType  string     `json:"errorType,omitempty"`
	Difficulty *float64   `json:"difficulty,omitempty"` // 1-5 rating
	Timestamp  *time.Time `json:"timestamp,omitempty"`
	Duration   *float64   `json:"duration,omitempty"` // minutes spent, predictor input
}

// HasDate reports whether the record carries a usable date.
func (r StudyRecord) HasDate() bool {
	return !r.Date.IsZero()
}

// Day returns the record's date truncated to midnight UTC, used for
// calendar-day grouping.
func (r StudyRecord) Day() time.Time {
	d := r.Date.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// EventTime returns the most precise time available for the record: the
// explicit timestamp when present, otherwise the date.
func (r StudyRecord) EventTime() time.Time {
	if r.Timestamp != nil {
		return *r.Timestamp
	}
	return r.Date
}

// Float returns a pointer to v. Convenience for building records.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v. Convenience for building records.
func Bool(v bool) *bool { return &v }
