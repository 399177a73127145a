package trend

// Label classifies the direction of a fitted score trend.
type Label string

const (
	LabelStable           Label = "stable"
	LabelImproving        Label = "improving"
	LabelImprovingFast    Label = "improving_fast"
	LabelDeclining        Label = "declining"
	LabelDecliningFast    Label = "declining_fast"
	LabelInsufficientData Label = "insufficient_data"
)

// SubjectTrend holds the fitted trend for one subject's score series.
// Slope is expressed in score units per day.
type SubjectTrend struct {
	Subject              string  `json:"subject"`
	Slope                float64 `json:"slope"`
	Intercept            float64 `json:"intercept"`
	R2                   float64 `json:"r2"`
	Label                Label   `json:"trend"`
	AvgScore             float64 `json:"avg_score"`
	Improvement          float64 `json:"improvement"` // percent change, first to last score
	StudyTimeCorrelation float64 `json:"study_time_correlation"`
	Points               int     `json:"points"`
}

// Analysis is the full trend analysis: one entry per subject plus an overall
// trend across all subjects. Overall is nil when fewer than 2 valid points
// exist in total.
type Analysis struct {
	Subjects map[string]SubjectTrend `json:"subjects"`
	Overall  *SubjectTrend           `json:"overall"`
}

// Default slope thresholds (score units per day) for classification.
const (
	DefaultStableBand    = 0.1
	DefaultFastThreshold = 0.5
)
