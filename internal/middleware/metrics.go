package middleware

import (
	"encoding/json"
	"math"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/bryanwahyu/tidyroom/internal/domain/analysis"
)

// Metrics are process-wide counters exposed on /metrics.
type Metrics struct {
	RequestsTotal      atomic.Uint64
	RequestsInProgress atomic.Int64
	RequestsSuccess    atomic.Uint64
	RequestsFailed     atomic.Uint64

	AnalysesTotal  atomic.Uint64
	AnalysesClean  atomic.Uint64
	AnalysesMessy  atomic.Uint64
	AnalysesFailed atomic.Uint64
	// confidence summed in hundredths of a percent
	ConfidenceSum  atomic.Uint64
	LastAnalysisAt atomic.Int64

	StartTime time.Time
}

var globalMetrics = &Metrics{StartTime: time.Now()}

// RecordAnalysis counts one pipeline run by verdict. Signature matches Service.Observe.
func RecordAnalysis(out analysis.Outcome, err error) {
	m := globalMetrics
	m.AnalysesTotal.Add(1)
	if err != nil {
		m.AnalysesFailed.Add(1)
		return
	}
	if out.Verdict.Clean {
		m.AnalysesClean.Add(1)
	} else {
		m.AnalysesMessy.Add(1)
	}
	m.ConfidenceSum.Add(uint64(math.Round(out.Prediction.Confidence * 100)))
	m.LastAnalysisAt.Store(time.Now().Unix())
}

// GetMetrics snapshots the counters plus runtime stats.
func GetMetrics() map[string]interface{} {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m := globalMetrics

	ok := m.AnalysesClean.Load() + m.AnalysesMessy.Load()
	avg := 0.0
	if ok > 0 {
		avg = float64(m.ConfidenceSum.Load()) / 100 / float64(ok)
	}
	var last interface{}
	if ts := m.LastAnalysisAt.Load(); ts > 0 {
		last = time.Unix(ts, 0).UTC()
	}

	return map[string]interface{}{
		"requests_total":          m.RequestsTotal.Load(),
		"requests_in_progress":    m.RequestsInProgress.Load(),
		"requests_success":        m.RequestsSuccess.Load(),
		"requests_failed":         m.RequestsFailed.Load(),
		"analyses_total":          m.AnalysesTotal.Load(),
		"analyses_clean":          m.AnalysesClean.Load(),
		"analyses_messy":          m.AnalysesMessy.Load(),
		"analyses_failed":         m.AnalysesFailed.Load(),
		"analyses_avg_confidence": math.Round(avg*10) / 10,
		"last_analysis_at":        last,
		"uptime_seconds":          time.Since(m.StartTime).Seconds(),
		"memory": map[string]interface{}{
			"alloc_bytes": ms.Alloc,
			"sys_bytes":   ms.Sys,
			"num_gc":      ms.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// MetricsMiddleware counts requests by outcome; probes and /metrics itself are not counted.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isProbe(r.URL.Path) || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		m := globalMetrics
		m.RequestsTotal.Add(1)
		m.RequestsInProgress.Add(1)
		defer m.RequestsInProgress.Add(-1)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode < 400 {
			m.RequestsSuccess.Add(1)
		} else {
			m.RequestsFailed.Add(1)
		}
	})
}

// MetricsHandler writes GetMetrics as JSON.
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(GetMetrics())
}
