package analysis

import (
	"fmt"
	"sort"
	"time"
)

// TrendWindow is how many recent records the confidence trend shows.
const TrendWindow = 10

// CategoryCount is one slice of the distribution chart.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// TrendPoint is one point of the confidence line.
type TrendPoint struct {
	Timestamp  string  `json:"timestamp"`
	Confidence float64 `json:"confidence"`
}

// HourCount is one bar of the hourly histogram.
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// Stats holds the three views derived from the log.
type Stats struct {
	Total      int             `json:"total"`
	Categories []CategoryCount `json:"categories"`
	Trend      []TrendPoint    `json:"trend"`
	Hourly     []HourCount     `json:"hourly"`
}

// Empty reports whether there is anything to chart.
func (s Stats) Empty() bool { return s.Total == 0 }

// timestamps are naive local time; parse without zone conversion
var timestampLayouts = []string{
	TimestampLayout,
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// Summarize derives the distribution, trend and hourly views from the full log.
func Summarize(log []Record) (Stats, error) {
	hourly, err := HourlyHistogram(log)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Total:      len(log),
		Categories: CategoryDistribution(log),
		Trend:      ConfidenceTrend(log, TrendWindow),
		Hourly:     hourly,
	}, nil
}

// CategoryDistribution counts records per result, largest first.
func CategoryDistribution(log []Record) []CategoryCount {
	counts := make(map[string]int)
	for _, r := range log {
		counts[r.Result]++
	}

	out := make([]CategoryCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, CategoryCount{Category: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// ConfidenceTrend returns the last n records by insertion order.
func ConfidenceTrend(log []Record, n int) []TrendPoint {
	start := 0
	if n > 0 && len(log) > n {
		start = len(log) - n
	}
	out := make([]TrendPoint, 0, len(log)-start)
	for _, r := range log[start:] {
		out = append(out, TrendPoint{Timestamp: r.Timestamp, Confidence: r.Confidence})
	}
	return out
}

// HourlyHistogram counts records per hour of day, ascending by hour.
// Only hours that occur are returned.
func HourlyHistogram(log []Record) ([]HourCount, error) {
	var buckets [24]int
	for i, r := range log {
		h, err := hourOf(r.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		buckets[h]++
	}

	out := make([]HourCount, 0)
	for h, n := range buckets {
		if n > 0 {
			out = append(out, HourCount{Hour: h, Count: n})
		}
	}
	return out, nil
}

func hourOf(ts string) (int, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Hour(), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrBadTimestamp, ts)
}
