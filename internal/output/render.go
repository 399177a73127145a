package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/studymetrics/lumen/pkg/analyzer/batch"
	"github.com/studymetrics/lumen/pkg/analyzer/heatmap"
	"github.com/studymetrics/lumen/pkg/analyzer/predict"
	"github.com/studymetrics/lumen/pkg/analyzer/trend"
	"github.com/studymetrics/lumen/pkg/analyzer/weakness"
	"github.com/studymetrics/lumen/pkg/analyzer/weekly"
)

// WeeklyReport renders weekly aggregation buckets as a table.
func WeeklyReport(buckets []weekly.Bucket) Renderable {
	rows := make([][]string, 0, len(buckets))
	for _, b := range buckets {
		subjects := make([]string, len(b.Subjects))
		for i, s := range b.Subjects {
			subjects[i] = s.Subject
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d-W%02d", b.Year, b.Week),
			fmt.Sprintf("%d", b.Count),
			fmt.Sprintf("%.1f", b.TotalTime),
			fmt.Sprintf("%.1f", b.AvgScore),
			strings.Join(subjects, ", "),
		})
	}
	return NewTable(
		"Weekly Study Activity",
		[]string{"Week", "Sessions", "Total Time", "Avg Score", "Subjects"},
		rows, nil, buckets,
	)
}

// TrendReport renders the per-subject trend analysis.
func TrendReport(a trend.Analysis, colored bool) Renderable {
	subjects := make([]string, 0, len(a.Subjects))
	for s := range a.Subjects {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)

	rows := make([][]string, 0, len(subjects))
	for _, s := range subjects {
		t := a.Subjects[s]
		label := string(t.Label)
		if colored {
			label = LabelColor(string(t.Label), label)
		}
		rows = append(rows, []string{
			t.Subject,
			label,
			fmt.Sprintf("%+.3f", t.Slope),
			fmt.Sprintf("%.2f", t.R2),
			fmt.Sprintf("%.1f", t.AvgScore),
			fmt.Sprintf("%+.1f%%", t.Improvement),
			fmt.Sprintf("%d", t.Points),
		})
	}

	var footer []string
	if a.Overall != nil {
		footer = []string{
			"Overall",
			string(a.Overall.Label),
			fmt.Sprintf("%+.3f", a.Overall.Slope),
			fmt.Sprintf("%.2f", a.Overall.R2),
			fmt.Sprintf("%.1f", a.Overall.AvgScore),
			fmt.Sprintf("%+.1f%%", a.Overall.Improvement),
			fmt.Sprintf("%d", a.Overall.Points),
		}
	}
	return NewTable(
		"Score Trends",
		[]string{"Subject", "Trend", "Slope/Day", "R2", "Avg Score", "Change", "Points"},
		rows, footer, a,
	)
}

// HeatmapReport renders the proficiency matrix.
func HeatmapReport(h heatmap.Heatmap, colored bool) Renderable {
	rows := make([][]string, 0, len(h.Matrix))
	for _, c := range h.Matrix {
		conf := string(c.Confidence)
		if colored {
			conf = LabelColor(string(c.Confidence), conf)
		}
		rows = append(rows, []string{
			c.Subject,
			c.Unit,
			fmt.Sprintf("%.1f%%", c.Accuracy),
			fmt.Sprintf("%d", c.Count),
			string(c.Trend),
			conf,
		})
	}
	footer := []string{
		"Totals", "",
		fmt.Sprintf("%.1f%%", h.Stats.AvgAccuracy),
		fmt.Sprintf("%d", h.Stats.TotalRecords),
		fmt.Sprintf("coverage %.0f%%", h.Stats.Coverage),
		"",
	}
	return NewTable(
		"Proficiency Heatmap",
		[]string{"Subject", "Unit", "Accuracy", "Samples", "Trend", "Confidence"},
		rows, footer, h,
	)
}

// WeaknessReport renders ranked weakness records. Scores arrive sorted
// descending and the table preserves that order.
func WeaknessReport(records []weakness.Record) Renderable {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		patterns := make([]string, len(r.TopErrorPatterns))
		for i, p := range r.TopErrorPatterns {
			patterns[i] = fmt.Sprintf("%s (%.0f%%)", p.Pattern, p.Percentage)
		}
		rows = append(rows, []string{
			r.Subject,
			r.Unit,
			fmt.Sprintf("%.1f", r.WeaknessScore),
			fmt.Sprintf("%.1f%%", r.Accuracy),
			fmt.Sprintf("%d", r.TotalQuestions),
			strings.Join(patterns, ", "),
		})
	}
	return NewTable(
		"Weakness Ranking",
		[]string{"Subject", "Unit", "Score", "Accuracy", "Questions", "Top Errors"},
		rows, nil, records,
	)
}

// PredictionReport renders a score forecast as sections.
func PredictionReport(r predict.Result) Renderable {
	summary := &Section{
		Title: "Forecast",
		Content: fmt.Sprintf(
			"Current 7-day average: %.1f\nWeekly trend: %+.2f\n1 week: %.1f\n1 month: %.1f\n3 months: %.1f\nConfidence: %s",
			r.CurrentAvg, r.WeeklyTrend,
			r.Predictions.OneWeek, r.Predictions.OneMonth, r.Predictions.ThreeMonths,
			r.Confidence,
		),
	}
	details := &Section{
		Title: "Analysis",
		Content: fmt.Sprintf(
			"Days analyzed: %d (window %d)\nSlope: %+.3f/day, R2 %.2f\nStudy time correlation: %+.2f",
			r.AnalysisDetails.DaysAnalyzed, r.AnalysisDetails.WindowDays,
			r.AnalysisDetails.Slope, r.AnalysisDetails.R2,
			r.StudyTimeCorrelation,
		),
	}
	recs := &Section{
		Title:   "Recommendations",
		Content: "- " + strings.Join(r.Recommendations, "\n- "),
	}
	return &Report{
		Title:    "Score Forecast",
		Sections: []Renderable{summary, details, recs},
		Data:     r,
	}
}

// BatchReport renders the chunked processing result.
func BatchReport(r batch.Result) Renderable {
	rows := make([][]string, 0, len(r.Batches))
	for i, b := range r.Batches {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", b.ProcessedCount),
			fmt.Sprintf("%.1f", b.AvgScore),
			fmt.Sprintf("%.1f", b.MinScore),
			fmt.Sprintf("%.1f", b.MaxScore),
			fmt.Sprintf("%d", len(b.Subjects)),
		})
	}
	footer := []string{
		"Overall",
		fmt.Sprintf("%d", r.OverallSummary.TotalCount),
		fmt.Sprintf("%.1f", r.OverallSummary.OverallAvgScore),
		fmt.Sprintf("%.1f", r.OverallSummary.MinScore),
		fmt.Sprintf("%.1f", r.OverallSummary.MaxScore),
		fmt.Sprintf("%d", len(r.OverallSummary.Subjects)),
	}
	return NewTable(
		"Batch Processing",
		[]string{"Chunk", "Records", "Avg Score", "Min", "Max", "Subjects"},
		rows, footer, r,
	)
}
