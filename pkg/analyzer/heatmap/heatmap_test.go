package heatmap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studymetrics/lumen/pkg/models"
)

func rec(subject, unit string, accuracy float64) models.StudyRecord {
	return models.StudyRecord{
		Date:     time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC),
		Subject:  subject,
		Unit:     unit,
		Accuracy: models.Float(accuracy),
		Time:     models.Float(10),
	}
}

func repeat(subject, unit string, accuracy float64, n int) []models.StudyRecord {
	out := make([]models.StudyRecord, n)
	for i := range out {
		out[i] = rec(subject, unit, accuracy)
	}
	return out
}

func TestBuild_Empty(t *testing.T) {
	hm := New().Build(nil)
	assert.Empty(t, hm.Matrix)
	assert.Zero(t, hm.Stats.TotalRecords)
	assert.Zero(t, hm.Stats.Coverage)
}

func TestBuild_SkipsIncompleteRecords(t *testing.T) {
	records := []models.StudyRecord{
		{Subject: "math", Accuracy: models.Float(80)},              // no unit
		{Unit: "algebra", Accuracy: models.Float(80)},              // no subject
		{Subject: "math", Unit: "algebra"},                         // no accuracy
		rec("math", "algebra", 80),
	}

	hm := New().Build(records)
	require.Len(t, hm.Matrix, 1)
	assert.Equal(t, 1, hm.Stats.TotalRecords)
}

func TestBuild_CellAggregates(t *testing.T) {
	records := []models.StudyRecord{
		rec("math", "algebra", 60),
		rec("math", "algebra", 80),
		rec("math", "algebra", 100),
	}

	hm := New().Build(records)
	require.Len(t, hm.Matrix, 1)

	cell := hm.Matrix[0]
	assert.Equal(t, "math", cell.Subject)
	assert.Equal(t, "algebra", cell.Unit)
	assert.InDelta(t, 80.0, cell.Accuracy, 1e-9)
	assert.Equal(t, 3, cell.Count)
	assert.InDelta(t, 30.0, cell.TotalTime, 1e-9)
	assert.InDelta(t, 10.0, cell.AvgTime, 1e-9)
	assert.Greater(t, cell.StdDev, 0.0)
}

func TestBuild_Coverage(t *testing.T) {
	// 2 subjects x 2 units but only 3 observed pairs: 75% coverage.
	records := []models.StudyRecord{
		rec("math", "algebra", 80),
		rec("math", "geometry", 70),
		rec("science", "algebra", 60),
	}

	hm := New().Build(records)
	assert.Len(t, hm.Matrix, 3)
	assert.Equal(t, []string{"math", "science"}, hm.Subjects)
	assert.Equal(t, []string{"algebra", "geometry"}, hm.Units)
	assert.InDelta(t, 75.0, hm.Stats.Coverage, 1e-9)
	assert.InDelta(t, 70.0, hm.Stats.AvgAccuracy, 1e-9)
}

func TestBuild_CoverageNeverExceeds100(t *testing.T) {
	var records []models.StudyRecord
	for _, su := range []struct{ s, u string }{
		{"a", "x"}, {"a", "y"}, {"b", "x"}, {"b", "y"},
	} {
		records = append(records, rec(su.s, su.u, 50))
	}

	hm := New().Build(records)
	assert.InDelta(t, 100.0, hm.Stats.Coverage, 1e-9)
	want := float64(len(hm.Matrix)) / float64(len(hm.Subjects)*len(hm.Units)) * 100
	assert.InDelta(t, want, hm.Stats.Coverage, 1e-9)
}

func TestBuild_CellTrend(t *testing.T) {
	tests := []struct {
		name       string
		accuracies []float64
		want       CellTrend
	}{
		{"single sample", []float64{50}, TrendStable},
		{"improving", []float64{50, 55, 70, 80}, TrendImproving},
		{"declining", []float64{90, 85, 70, 60}, TrendDeclining},
		{"within threshold", []float64{70, 71, 72, 73}, TrendStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var records []models.StudyRecord
			for _, acc := range tt.accuracies {
				records = append(records, rec("math", "algebra", acc))
			}
			hm := New().Build(records)
			require.Len(t, hm.Matrix, 1)
			assert.Equal(t, tt.want, hm.Matrix[0].Trend)
		})
	}
}

func TestBuild_ConfidenceTiers(t *testing.T) {
	tests := []struct {
		name    string
		records []models.StudyRecord
		want    Confidence
	}{
		{"very low below 5", repeat("s", "u", 80, 4), ConfidenceVeryLow},
		{"low below 10", repeat("s", "u", 80, 9), ConfidenceLow},
		{"medium below 30", repeat("s", "u", 80, 29), ConfidenceMedium},
		{"high", repeat("s", "u", 80, 30), ConfidenceHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hm := New().Build(tt.records)
			require.Len(t, hm.Matrix, 1)
			assert.Equal(t, tt.want, hm.Matrix[0].Confidence)
		})
	}
}

func TestBuild_NoisyCellCapsAtMedium(t *testing.T) {
	// 30+ samples but alternating 0/100 accuracy: std dev 50 > 20.
	var records []models.StudyRecord
	for i := 0; i < 40; i++ {
		acc := 0.0
		if i%2 == 0 {
			acc = 100
		}
		records = append(records, rec("s", "u", acc))
	}

	hm := New().Build(records)
	require.Len(t, hm.Matrix, 1)
	assert.Equal(t, ConfidenceMedium, hm.Matrix[0].Confidence)
}

func TestBuild_ClampsAccuracy(t *testing.T) {
	records := []models.StudyRecord{
		rec("s", "u", -10),
		rec("s", "u", 140),
	}

	hm := New().Build(records)
	require.Len(t, hm.Matrix, 1)
	assert.GreaterOrEqual(t, hm.Matrix[0].Accuracy, 0.0)
	assert.LessOrEqual(t, hm.Matrix[0].Accuracy, 100.0)
}

func TestBuild_MatrixOrderedBySubjectThenUnit(t *testing.T) {
	records := []models.StudyRecord{
		rec("science", "cells", 70),
		rec("math", "geometry", 70),
		rec("math", "algebra", 70),
	}

	hm := New().Build(records)
	require.Len(t, hm.Matrix, 3)
	assert.Equal(t, "algebra", hm.Matrix[0].Unit)
	assert.Equal(t, "geometry", hm.Matrix[1].Unit)
	assert.Equal(t, "science", hm.Matrix[2].Subject)
}
