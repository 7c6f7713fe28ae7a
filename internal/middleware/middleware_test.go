package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/tidyroom/internal/domain/analysis"
)

func TestValidateImageUpload(t *testing.T) {
	tests := []struct {
		filename, contentType string
		ok                    bool
	}{
		{"room.jpg", "image/jpeg", true},
		{"ROOM.JPEG", "", true},
		{"room.png", "application/octet-stream", true},
		{"room.webp", "image/webp", true},
		{"room.gif", "image/gif", false},
		{"room", "image/png", false},
		{"", "image/png", false},
		{"room.png", "text/html", false},
	}
	for _, tt := range tests {
		err := ValidateImageUpload(tt.filename, tt.contentType)
		if tt.ok {
			assert.NoError(t, err, tt.filename)
		} else {
			assert.Error(t, err, tt.filename)
		}
	}
}

func TestValidateLimit(t *testing.T) {
	assert.Equal(t, 0, ValidateLimit(-3))
	assert.Equal(t, 0, ValidateLimit(0))
	assert.Equal(t, 25, ValidateLimit(25))
	assert.Equal(t, 1000, ValidateLimit(5000))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "room.jpg", SanitizeString(" room\x00.jpg\x07 "))
}

func TestRecordAnalysis(t *testing.T) {
	before := GetMetrics()
	RecordAnalysis(analysis.Outcome{Verdict: analysis.Verdict{Clean: true}}, nil)
	RecordAnalysis(analysis.Outcome{}, nil)
	RecordAnalysis(analysis.Outcome{}, errors.New("boom"))
	after := GetMetrics()

	diff := func(k string) uint64 { return after[k].(uint64) - before[k].(uint64) }
	assert.Equal(t, uint64(3), diff("analyses_total"))
	assert.Equal(t, uint64(1), diff("analyses_clean"))
	assert.Equal(t, uint64(1), diff("analyses_messy"))
	assert.Equal(t, uint64(1), diff("analyses_failed"))
	assert.NotNil(t, after["last_analysis_at"])
}

type checkerFunc func(ctx context.Context) error

func (f checkerFunc) Check(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	h := HealthHandler(map[string]HealthChecker{
		"history": checkerFunc(func(context.Context) error { return nil }),
		"model":   checkerFunc(func(context.Context) error { return errors.New("labels.txt missing") }),
	})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "healthy", body.Checks["history"].Status)
	assert.Equal(t, "labels.txt missing", body.Checks["model"].Message)
}

func TestMiddlewareChain(t *testing.T) {
	h := LoggingMiddleware(MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestReadinessHandler_OnlyNamedChecks(t *testing.T) {
	checkers := map[string]HealthChecker{
		"history": checkerFunc(func(context.Context) error { return nil }),
		"model":   checkerFunc(func(context.Context) error { return errors.New("not loaded") }),
	}

	rec := httptest.NewRecorder()
	ReadinessHandler(checkers, "history", "database")(rec, httptest.NewRequest(http.MethodGet, "/healthz/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ready", body.Status)
	assert.Contains(t, body.Checks, "history")
	assert.NotContains(t, body.Checks, "model")

	rec = httptest.NewRecorder()
	ReadinessHandler(checkers, "model")(rec, httptest.NewRequest(http.MethodGet, "/healthz/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	var seen string
	h := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}
