package weekly

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studymetrics/lumen/pkg/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func rec(date time.Time, subject string, minutes, score float64) models.StudyRecord {
	return models.StudyRecord{
		Date:    date,
		Subject: subject,
		Time:    models.Float(minutes),
		Score:   models.Float(score),
	}
}

func TestAggregate_Empty(t *testing.T) {
	got := New().Aggregate(nil)
	assert.Empty(t, got)
}

func TestAggregate_SkipsIncompleteRecords(t *testing.T) {
	records := []models.StudyRecord{
		{Subject: "math", Time: models.Float(30), Score: models.Float(80)}, // no date
		{Date: day(2026, time.March, 2), Score: models.Float(80)},          // no time
		{Date: day(2026, time.March, 2), Time: models.Float(30)},           // no score
		rec(day(2026, time.March, 2), "math", 30, 80),
	}

	got := New().Aggregate(records)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Count)
}

func TestAggregate_BucketsAndAverages(t *testing.T) {
	// 2026-03-02 is a Monday (ISO week 10); 2026-03-09 starts week 11.
	records := []models.StudyRecord{
		rec(day(2026, time.March, 2), "math", 30, 80),
		rec(day(2026, time.March, 4), "science", 60, 60),
		rec(day(2026, time.March, 8), "math", 10, 100), // Sunday, still week 10
		rec(day(2026, time.March, 9), "math", 45, 90),
	}

	got := New().Aggregate(records)
	require.Len(t, got, 2)

	w10 := got[0]
	assert.Equal(t, 2026, w10.Year)
	assert.Equal(t, 10, w10.Week)
	assert.Equal(t, 3, w10.Count)
	assert.InDelta(t, 100.0, w10.TotalTime, 1e-9)
	assert.InDelta(t, 100.0/3, w10.AvgTime, 1e-9)
	assert.InDelta(t, 80.0, w10.AvgScore, 1e-9)

	w11 := got[1]
	assert.Equal(t, 11, w11.Week)
	assert.Equal(t, 1, w11.Count)
	assert.InDelta(t, 90.0, w11.AvgScore, 1e-9)
}

func TestAggregate_SubjectsSortedByTotalTime(t *testing.T) {
	records := []models.StudyRecord{
		rec(day(2026, time.March, 3), "math", 20, 70),
		rec(day(2026, time.March, 4), "science", 90, 85),
		rec(day(2026, time.March, 5), "math", 25, 75),
	}

	got := New().Aggregate(records)
	require.Len(t, got, 1)
	require.Len(t, got[0].Subjects, 2)

	assert.Equal(t, "science", got[0].Subjects[0].Subject)
	assert.InDelta(t, 90.0, got[0].Subjects[0].TotalTime, 1e-9)
	assert.Equal(t, "math", got[0].Subjects[1].Subject)
	assert.InDelta(t, 45.0, got[0].Subjects[1].TotalTime, 1e-9)
	assert.InDelta(t, 72.5, got[0].Subjects[1].AvgScore, 1e-9)
}

func TestAggregate_ISOYearRollover(t *testing.T) {
	// 2027-01-01 is a Friday belonging to ISO week 53 of 2026;
	// 2027-01-04 is the Monday starting ISO week 1 of 2027.
	records := []models.StudyRecord{
		rec(day(2026, time.December, 30), "", 30, 80),
		rec(day(2027, time.January, 1), "", 30, 80),
		rec(day(2027, time.January, 4), "", 30, 80),
	}

	got := New().Aggregate(records)
	require.Len(t, got, 2)

	assert.Equal(t, 2026, got[0].Year)
	assert.Equal(t, 53, got[0].Week)
	assert.Equal(t, 2, got[0].Count)

	assert.Equal(t, 2027, got[1].Year)
	assert.Equal(t, 1, got[1].Week)
}

func TestAggregate_RecordWithoutSubjectCountsInWeekOnly(t *testing.T) {
	records := []models.StudyRecord{
		rec(day(2026, time.March, 3), "", 20, 70),
	}

	got := New().Aggregate(records)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Count)
	assert.Empty(t, got[0].Subjects)
}
