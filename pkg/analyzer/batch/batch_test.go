package batch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studymetrics/lumen/pkg/models"
)

func rec(subject string, score float64) models.StudyRecord {
	return models.StudyRecord{
		Date:    time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC),
		Subject: subject,
		Score:   models.Float(score),
	}
}

func TestProcess_Empty(t *testing.T) {
	got, err := New().Process(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, got.TotalProcessed)
	assert.Empty(t, got.Batches)
	assert.Zero(t, got.OverallSummary.TotalCount)
}

func TestProcess_SingleChunk(t *testing.T) {
	records := []models.StudyRecord{
		rec("math", 60),
		rec("science", 80),
		rec("math", 100),
	}

	got, err := New().Process(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, 3, got.TotalProcessed)
	require.Len(t, got.Batches, 1)

	b := got.Batches[0]
	assert.Equal(t, 3, b.ProcessedCount)
	assert.InDelta(t, 80.0, b.AvgScore, 1e-9)
	assert.InDelta(t, 60.0, b.MinScore, 1e-9)
	assert.InDelta(t, 100.0, b.MaxScore, 1e-9)
	assert.Equal(t, []string{"math", "science"}, b.Subjects)
}

func TestProcess_ChunksPreserveOrder(t *testing.T) {
	var records []models.StudyRecord
	for i := 0; i < 10; i++ {
		records = append(records, rec("math", float64(10*(i+1))))
	}

	got, err := New(WithChunkSize(3)).Process(context.Background(), records)
	require.NoError(t, err)

	require.Len(t, got.Batches, 4)
	assert.Equal(t, 3, got.Batches[0].ProcessedCount)
	assert.Equal(t, 1, got.Batches[3].ProcessedCount)
	// First chunk holds the three lowest scores, last chunk the highest.
	assert.InDelta(t, 10.0, got.Batches[0].MinScore, 1e-9)
	assert.InDelta(t, 30.0, got.Batches[0].MaxScore, 1e-9)
	assert.InDelta(t, 100.0, got.Batches[3].MaxScore, 1e-9)
}

func TestProcess_OverallInvariants(t *testing.T) {
	var records []models.StudyRecord
	for i := 0; i < 25; i++ {
		records = append(records, rec("math", float64(i%100)))
	}
	for i := 0; i < 13; i++ {
		records = append(records, rec("science", float64(50+i)))
	}

	got, err := New(WithChunkSize(10)).Process(context.Background(), records)
	require.NoError(t, err)

	sum := 0
	var weighted float64
	for _, b := range got.Batches {
		sum += b.ProcessedCount
		weighted += b.AvgScore * float64(b.ProcessedCount)
	}
	assert.Equal(t, sum, got.OverallSummary.TotalCount)
	assert.Equal(t, got.TotalProcessed, got.OverallSummary.TotalCount)
	assert.InDelta(t, weighted/float64(sum), got.OverallSummary.OverallAvgScore, 1e-9)
	assert.Equal(t, []string{"math", "science"}, got.OverallSummary.Subjects)
}

func TestProcess_RecordsWithoutScores(t *testing.T) {
	records := []models.StudyRecord{
		{Subject: "math"}, // counted but not scored
		rec("math", 70),
	}

	got, err := New().Process(context.Background(), records)
	require.NoError(t, err)

	require.Len(t, got.Batches, 1)
	assert.Equal(t, 2, got.Batches[0].ProcessedCount)
	assert.InDelta(t, 70.0, got.Batches[0].AvgScore, 1e-9)
	assert.InDelta(t, 70.0, got.Batches[0].MinScore, 1e-9)
}

func TestProcess_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var records []models.StudyRecord
	for i := 0; i < 5000; i++ {
		records = append(records, rec("math", 50))
	}

	_, err := New(WithChunkSize(100)).Process(ctx, records)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcess_ClampsScores(t *testing.T) {
	records := []models.StudyRecord{
		rec("math", -50),
		rec("math", 150),
	}

	got, err := New().Process(context.Background(), records)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, got.OverallSummary.MinScore, 1e-9)
	assert.InDelta(t, 100.0, got.OverallSummary.MaxScore, 1e-9)
}

func TestProcessWithProgress_ReportsEveryRecord(t *testing.T) {
	var records []models.StudyRecord
	for i := 0; i < 2500; i++ {
		records = append(records, rec("math", 50))
	}

	var mu sync.Mutex
	var seen int
	chunks := 0

	got, err := New(WithChunkSize(1000)).ProcessWithProgress(context.Background(), records, func(n int) {
		mu.Lock()
		seen += n
		chunks++
		mu.Unlock()
	})
	require.NoError(t, err)

	assert.Equal(t, 2500, got.TotalProcessed)
	assert.Equal(t, 2500, seen)
	assert.Equal(t, 3, chunks)
}
