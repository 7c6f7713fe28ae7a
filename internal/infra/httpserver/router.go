package httpserver

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appanalysis "github.com/bryanwahyu/tidyroom/internal/application/analysis"
	domain "github.com/bryanwahyu/tidyroom/internal/domain/analysis"
	"github.com/bryanwahyu/tidyroom/internal/infra/charts"
	"github.com/bryanwahyu/tidyroom/internal/middleware"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageTmpl = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"percent": func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) },
}).ParseFS(templatesFS, "templates/index.html"))

const defaultMaxUpload = 10 << 20

// Options for NewRouter. Zero values are usable.
type Options struct {
	MaxUploadBytes int64
	CORSOrigins    []string
	Checkers       map[string]middleware.HealthChecker
	Charts         *charts.Renderer
}

type Router struct {
	svc    *appanalysis.Service
	charts *charts.Renderer
	maxUp  int64
}

func NewRouter(svc *appanalysis.Service, opt Options) http.Handler {
	r := &Router{svc: svc, charts: opt.Charts, maxUp: opt.MaxUploadBytes}
	if r.charts == nil {
		r.charts = charts.New()
	}
	if r.maxUp <= 0 {
		r.maxUp = defaultMaxUpload
	}

	mux := chi.NewRouter()
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	if len(opt.CORSOrigins) > 0 {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins: opt.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	mux.Get("/health", middleware.HealthHandler(opt.Checkers))
	mux.Get("/healthz/live", middleware.LivenessHandler)
	mux.Get("/healthz/ready", middleware.ReadinessHandler(opt.Checkers, "history", "database"))
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Get("/", r.wrapPage(r.handleIndex))
	mux.With(r.limitUpload).Post("/analyze", r.wrapPage(r.handleAnalyzePage))
	mux.Get("/charts/{kind}.png", r.wrap(r.handleChart))

	mux.Route("/api/v1", func(rt chi.Router) {
		rt.With(r.limitUpload).Post("/analyses", r.wrap(r.handleAnalyze))
		rt.Get("/history", r.wrap(r.handleHistory))
		rt.Get("/stats", r.wrap(r.handleStats))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequest marks client input errors that are not domain errors.
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

func statusFor(err error) int {
	var tooBig *http.MaxBytesError
	var bad badRequest
	switch {
	case errors.As(err, &tooBig):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &bad), errors.Is(err, domain.ErrInvalidImage):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrModelClosed):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			code := statusFor(err)
			if code >= 500 {
				log.Printf("request failed path=%s error=%v", req.URL.Path, err)
			}
			http.Error(w, err.Error(), code)
		}
	}
}

// pageData feeds templates/index.html
type pageData struct {
	Outcome *domain.Outcome
	Stats   domain.Stats
	Error   string
}

// wrapPage renders failures into the page instead of plain text.
func (r *Router) wrapPage(h func(*http.Request) (pageData, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		data, err := h(req)
		code := http.StatusOK
		if err != nil {
			code = statusFor(err)
			if code >= 500 {
				log.Printf("request failed path=%s error=%v", req.URL.Path, err)
			}
			data.Error = pageMessage(code, err)
		}

		var buf bytes.Buffer
		if err := pageTmpl.Execute(&buf, data); err != nil {
			log.Printf("render page error=%v", err)
			http.Error(w, "render error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(code)
		w.Write(buf.Bytes())
	}
}

func pageMessage(code int, err error) string {
	switch code {
	case http.StatusBadRequest:
		return "이미지를 읽을 수 없습니다: " + err.Error()
	case http.StatusRequestEntityTooLarge:
		return "파일이 너무 큽니다."
	}
	return "분석 중 오류가 발생했습니다: " + err.Error()
}

// GET /
func (r *Router) handleIndex(req *http.Request) (pageData, error) {
	st, err := r.svc.Stats(req.Context())
	return pageData{Stats: st}, err
}

// POST /analyze (multipart field "image")
func (r *Router) handleAnalyzePage(req *http.Request) (pageData, error) {
	cmd, err := r.readUpload(req)
	if err != nil {
		return r.statsOnly(req), err
	}
	out, err := r.svc.Analyze(req.Context(), cmd)
	if err != nil {
		return r.statsOnly(req), err
	}
	st, err := r.svc.Stats(req.Context())
	return pageData{Outcome: &out, Stats: st}, err
}

// statsOnly keeps the stats panel on an error page when the log is readable.
func (r *Router) statsOnly(req *http.Request) pageData {
	st, _ := r.svc.Stats(req.Context())
	return pageData{Stats: st}
}

// POST /api/v1/analyses (multipart field "image")
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	cmd, err := r.readUpload(req)
	if err != nil {
		return err
	}
	out, err := r.svc.Analyze(req.Context(), cmd)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, out)
}

// GET /api/v1/history?limit=
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	limit := 0
	if v := req.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return badRequest{fmt.Errorf("limit must be a number")}
		}
		limit = middleware.ValidateLimit(n)
	}
	records, err := r.svc.History(req.Context(), limit)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, records)
}

// GET /api/v1/stats
func (r *Router) handleStats(w http.ResponseWriter, req *http.Request) error {
	st, err := r.svc.Stats(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, st)
}

// GET /charts/{kind}.png
func (r *Router) handleChart(w http.ResponseWriter, req *http.Request) error {
	kind := chi.URLParam(req, "kind")
	switch kind {
	case charts.KindDistribution, charts.KindTrend, charts.KindHourly:
	default:
		http.NotFound(w, req)
		return nil
	}

	st, err := r.svc.Stats(req.Context())
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := r.charts.Render(&buf, kind, st); err != nil {
		if errors.Is(err, charts.ErrNoData) {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}
		return err
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, err = w.Write(buf.Bytes())
	return err
}

// limitUpload caps the request body at the configured upload size.
func (r *Router) limitUpload(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		req.Body = http.MaxBytesReader(w, req.Body, r.maxUp)
		next.ServeHTTP(w, req)
	})
}

func (r *Router) readUpload(req *http.Request) (appanalysis.AnalyzeCommand, error) {
	if req.ContentLength > r.maxUp {
		return appanalysis.AnalyzeCommand{}, &http.MaxBytesError{Limit: r.maxUp}
	}
	if err := req.ParseMultipartForm(r.maxUp); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return appanalysis.AnalyzeCommand{}, err
		}
		return appanalysis.AnalyzeCommand{}, badRequest{fmt.Errorf("invalid multipart form: %w", err)}
	}
	f, hdr, err := req.FormFile("image")
	if err != nil {
		return appanalysis.AnalyzeCommand{}, badRequest{fmt.Errorf("image field is required: %w", err)}
	}
	defer f.Close()

	name := middleware.SanitizeString(hdr.Filename)
	ctype := hdr.Header.Get("Content-Type")
	if err := middleware.ValidateImageUpload(name, ctype); err != nil {
		return appanalysis.AnalyzeCommand{}, badRequest{err}
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return appanalysis.AnalyzeCommand{}, err
	}
	return appanalysis.AnalyzeCommand{Image: data, Filename: name, ContentType: ctype}, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}
