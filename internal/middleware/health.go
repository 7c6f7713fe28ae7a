package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// HealthChecker is implemented by the history stores, the model handle,
// the archive and SQL pools.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// DatabaseHealthChecker pings a SQL history backend.
type DatabaseHealthChecker struct {
	DB *sql.DB
}

func (d *DatabaseHealthChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return d.DB.PingContext(ctx)
}

// HealthStatus is the JSON body of /health and /healthz/ready.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
}

// CheckStatus is one named check.
type CheckStatus struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Duration string `json:"duration"`
}

// runChecks runs every checker in parallel. The first model check may load
// weights, so the checks share one deadline instead of queueing.
func runChecks(ctx context.Context, checkers map[string]HealthChecker) HealthStatus {
	health := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Checks:    make(map[string]CheckStatus, len(checkers)),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, checker := range checkers {
		wg.Add(1)
		go func(name string, checker HealthChecker) {
			defer wg.Done()
			start := time.Now()
			err := checker.Check(ctx)
			st := CheckStatus{Status: "healthy", Duration: time.Since(start).Round(time.Millisecond).String()}
			if err != nil {
				st.Status = "unhealthy"
				st.Message = err.Error()
			}

			mu.Lock()
			defer mu.Unlock()
			health.Checks[name] = st
			if err != nil {
				health.Status = "unhealthy"
			}
		}(name, checker)
	}
	wg.Wait()
	return health
}

func writeHealth(w http.ResponseWriter, health HealthStatus) {
	statusCode := http.StatusOK
	if health.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(health)
}

// HealthHandler reports every registered checker.
func HealthHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		writeHealth(w, runChecks(ctx, checkers))
	}
}

// ReadinessHandler reports only the named checkers; names missing from
// checkers are skipped. Siap kalau history bisa dibaca.
func ReadinessHandler(checkers map[string]HealthChecker, names ...string) http.HandlerFunc {
	subset := make(map[string]HealthChecker, len(names))
	for _, n := range names {
		if c, ok := checkers[n]; ok {
			subset[n] = c
		}
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		health := runChecks(ctx, subset)
		if health.Status == "healthy" {
			health.Status = "ready"
		}
		writeHealth(w, health)
	}
}

// LivenessHandler only proves the process serves HTTP.
func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
