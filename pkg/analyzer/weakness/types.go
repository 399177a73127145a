package weakness

import "github.com/studymetrics/lumen/pkg/stats"

// Activity classifies how observation density changed over a group's
// timestamp range.
type Activity string

const (
	ActivityIncreasing Activity = "increasing_activity"
	ActivityDecreasing Activity = "decreasing_activity"
	ActivityStable     Activity = "stable"
)

// ErrorPattern is one error type's share of a group's incorrect answers.
type ErrorPattern struct {
	Pattern    string  `json:"pattern"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"` // of incorrect answers
}

// Record is the ranked weakness entry for one (subject, unit) pair. Output
// ordering (descending by WeaknessScore) is the contract consumers rely on
// for "top N weaknesses" views.
type Record struct {
	Subject            string         `json:"subject"`
	Unit               string         `json:"unit"`
	Accuracy           float64        `json:"accuracy"` // 0-100
	TotalQuestions     int            `json:"total_questions"`
	CorrectCount       int            `json:"correct_count"`
	IncorrectCount     int            `json:"incorrect_count"`
	AvgTimePerQuestion float64        `json:"avg_time_per_question"`
	WeaknessScore      float64        `json:"weakness_score"` // 0-100, higher = weaker
	TopErrorPatterns   []ErrorPattern `json:"top_error_patterns"`
	TimeProgression    Activity       `json:"time_progression"`
	AvgDifficulty      float64        `json:"avg_difficulty"` // 0 when no ratings
	ConfidenceLevel    stats.Interval `json:"confidence_level"`
}

// Scoring adjustments applied to the base score of 100 - accuracy.
const (
	DefaultSmallSample   = 10
	DefaultSmallPenalty  = 0.7 // thin samples are discounted
	DefaultMediumSample  = 20
	DefaultMediumPenalty = 0.85

	DefaultIncreasingFactor = 0.8 // rising practice density lowers concern
	DefaultDecreasingFactor = 1.2
	DefaultActivityDelta    = 0.2 // +/-20% density change threshold

	DefaultHardDifficulty = 4.0
	DefaultHardFactor     = 0.9 // hard items excuse poor accuracy
	DefaultEasyDifficulty = 2.0
	DefaultEasyFactor     = 1.1 // easy items amplify concern

	DefaultTopPatterns = 3
)
