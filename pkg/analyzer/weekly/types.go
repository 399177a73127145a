package weekly

// SubjectTotals aggregates study activity for one subject within a week.
type SubjectTotals struct {
	Subject    string  `json:"subject"`
	TotalTime  float64 `json:"total_time"`
	TotalScore float64 `json:"total_score"`
	AvgScore   float64 `json:"avg_score"`
	Count      int     `json:"count"`
}

// Bucket is one ISO week of aggregated study activity. Buckets are keyed by
// (ISO year, ISO week) so week 1 records landing in the previous calendar
// year's final days never collide with that year's week 52/53.
type Bucket struct {
	Year       int             `json:"year"` // ISO week-numbering year
	Week       int             `json:"week"` // ISO week, 1-53
	Count      int             `json:"count"`
	TotalTime  float64         `json:"total_time"`
	AvgTime    float64         `json:"avg_time"`
	TotalScore float64         `json:"total_score"`
	AvgScore   float64         `json:"avg_score"`
	Subjects   []SubjectTotals `json:"subjects"` // descending by total time
}
