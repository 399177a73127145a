package batch

// Summary is the lightweight per-chunk summary.
type Summary struct {
	ProcessedCount int      `json:"processed_count"`
	AvgScore       float64  `json:"avg_score"`
	MinScore       float64  `json:"min_score"`
	MaxScore       float64  `json:"max_score"`
	Subjects       []string `json:"subjects"` // distinct, sorted
}

// Overall merges all chunk summaries, with averages weighted by chunk
// record count.
type Overall struct {
	TotalCount      int      `json:"total_count"`
	OverallAvgScore float64  `json:"overall_avg_score"`
	MinScore        float64  `json:"min_score"`
	MaxScore        float64  `json:"max_score"`
	Subjects        []string `json:"subjects"` // union across chunks, sorted
}

// Result is the full batch-processing output.
type Result struct {
	TotalProcessed int     `json:"total_processed"`
	Batches        []Summary `json:"batches"`
	OverallSummary Overall `json:"overall_summary"`
}

// DefaultChunkSize bounds per-chunk memory for very large record arrays.
const DefaultChunkSize = 1000
