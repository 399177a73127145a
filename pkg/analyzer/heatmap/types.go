package heatmap

// CellTrend classifies the accuracy direction within one cell.
type CellTrend string

const (
	TrendImproving CellTrend = "improving"
	TrendDeclining CellTrend = "declining"
	TrendStable    CellTrend = "stable"
)

// Confidence qualifies a cell's accuracy by sample size and spread. It
// caveats the statistic rather than suppressing it.
type Confidence string

const (
	ConfidenceVeryLow Confidence = "very_low"
	ConfidenceLow     Confidence = "low"
	ConfidenceMedium  Confidence = "medium"
	ConfidenceHigh    Confidence = "high"
)

// Cell is one (subject, unit) aggregate in the proficiency matrix.
type Cell struct {
	Subject    string     `json:"subject"`
	Unit       string     `json:"unit"`
	Accuracy   float64    `json:"accuracy"` // mean accuracy, 0-100
	Count      int        `json:"count"`
	TotalTime  float64    `json:"total_time"`
	AvgTime    float64    `json:"avg_time"`
	StdDev     float64    `json:"std_dev"` // population std dev of accuracies
	Trend      CellTrend  `json:"trend"`
	Confidence Confidence `json:"confidence"`
}

// Stats summarizes the whole matrix.
type Stats struct {
	TotalRecords int     `json:"total_records"`
	AvgAccuracy  float64 `json:"avg_accuracy"` // mean across cells
	Coverage     float64 `json:"coverage"`     // observed cells / possible cells * 100
}

// Heatmap is the subject x unit proficiency matrix. Matrix holds one cell
// per observed (subject, unit) pair; pairs with no records never appear.
type Heatmap struct {
	Subjects []string `json:"subjects"`
	Units    []string `json:"units"`
	Matrix   []Cell   `json:"matrix"`
	Stats    Stats    `json:"stats"`
}

// Default thresholds for cell trend and confidence classification.
const (
	DefaultTrendDelta     = 5.0 // accuracy points between halves
	DefaultVeryLowSamples = 5
	DefaultLowSamples     = 10
	DefaultMediumSamples  = 30
	DefaultNoisyStdDev    = 20.0
)
