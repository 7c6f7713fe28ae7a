package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(ts, result string, conf float64) Record {
	return Record{Timestamp: ts, Result: result, Confidence: conf}
}

func TestSummarize_Empty(t *testing.T) {
	s, err := Summarize([]Record{})
	require.NoError(t, err)
	assert.True(t, s.Empty())
	assert.Empty(t, s.Categories)
	assert.Empty(t, s.Trend)
	assert.Empty(t, s.Hourly)

	s, err = Summarize(nil)
	require.NoError(t, err)
	assert.True(t, s.Empty())
}

func TestHourlyHistogram(t *testing.T) {
	log := []Record{
		rec("2025-03-01 14:05:00", "지저분한 방", 80),
		rec("2025-03-01 09:00:01", "깨끗한 방", 90),
		rec("2025-03-02 09:59:59", "깨끗한 방", 70),
	}

	got, err := HourlyHistogram(log)
	require.NoError(t, err)
	assert.Equal(t, []HourCount{{Hour: 9, Count: 2}, {Hour: 14, Count: 1}}, got)
}

func TestHourlyHistogram_AcceptedLayouts(t *testing.T) {
	log := []Record{
		rec("2025-03-01T23:10:00", "a", 1),
		rec("2025-03-01T00:10:00+09:00", "a", 1),
	}

	got, err := HourlyHistogram(log)
	require.NoError(t, err)
	assert.Equal(t, []HourCount{{Hour: 0, Count: 1}, {Hour: 23, Count: 1}}, got)
}

func TestHourlyHistogram_BadTimestamp(t *testing.T) {
	_, err := HourlyHistogram([]Record{rec("yesterday", "a", 1)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadTimestamp)

	_, err = Summarize([]Record{rec("yesterday", "a", 1)})
	assert.ErrorIs(t, err, ErrBadTimestamp)
}

func TestConfidenceTrend(t *testing.T) {
	var log []Record
	for i := 0; i < 15; i++ {
		// timestamps deliberately not sorted; insertion order wins
		log = append(log, rec(fmt.Sprintf("2025-03-01 %02d:00:00", 23-i), "a", float64(i)))
	}

	got := ConfidenceTrend(log, TrendWindow)
	require.Len(t, got, 10)
	for i, p := range got {
		assert.Equal(t, float64(i+5), p.Confidence)
		assert.Equal(t, log[i+5].Timestamp, p.Timestamp)
	}
}

func TestConfidenceTrend_Short(t *testing.T) {
	log := []Record{rec("2025-03-01 10:00:00", "a", 50), rec("2025-03-01 11:00:00", "b", 60)}
	got := ConfidenceTrend(log, TrendWindow)
	assert.Equal(t, []TrendPoint{
		{Timestamp: "2025-03-01 10:00:00", Confidence: 50},
		{Timestamp: "2025-03-01 11:00:00", Confidence: 60},
	}, got)
}

func TestCategoryDistribution(t *testing.T) {
	log := []Record{
		rec("2025-03-01 10:00:00", "깨끗한 방", 50),
		rec("2025-03-01 10:00:00", "지저분한 방", 50),
		rec("2025-03-01 10:00:00", "지저분한 방", 50),
	}
	assert.Equal(t, []CategoryCount{
		{Category: "지저분한 방", Count: 2},
		{Category: "깨끗한 방", Count: 1},
	}, CategoryDistribution(log))
}

func TestSummarize(t *testing.T) {
	log := []Record{
		rec("2025-03-01 09:00:00", "깨끗한 방", 90),
		rec("2025-03-01 09:30:00", "지저분한 방", 65.5),
	}
	s, err := Summarize(log)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Total)
	assert.Len(t, s.Categories, 2)
	assert.Len(t, s.Trend, 2)
	assert.Equal(t, []HourCount{{Hour: 9, Count: 2}}, s.Hourly)
}
