// Package bootstrap wires config into a ready Service for both binaries.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/bryanwahyu/tidyroom/internal/application"
	appanalysis "github.com/bryanwahyu/tidyroom/internal/application/analysis"
	"github.com/bryanwahyu/tidyroom/internal/config"
	domain "github.com/bryanwahyu/tidyroom/internal/domain/analysis"
	"github.com/bryanwahyu/tidyroom/internal/infra/ai"
	"github.com/bryanwahyu/tidyroom/internal/infra/ai/onnx"
	openaiclient "github.com/bryanwahyu/tidyroom/internal/infra/ai/openai"
	"github.com/bryanwahyu/tidyroom/internal/infra/ai/tfserving"
	"github.com/bryanwahyu/tidyroom/internal/infra/ai/watch"
	"github.com/bryanwahyu/tidyroom/internal/infra/db/migrations"
	mysqlp "github.com/bryanwahyu/tidyroom/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/tidyroom/internal/infra/db/postgres"
	"github.com/bryanwahyu/tidyroom/internal/infra/history/file"
	"github.com/bryanwahyu/tidyroom/internal/infra/history/memory"
	"github.com/bryanwahyu/tidyroom/internal/infra/imaging"
	minioStore "github.com/bryanwahyu/tidyroom/internal/infra/storage"
	"github.com/bryanwahyu/tidyroom/internal/middleware"
)

// App is everything a binary needs after wiring.
type App struct {
	Service  *appanalysis.Service
	Models   *appanalysis.ModelHandle
	Checkers map[string]middleware.HealthChecker

	closers []func() error
}

// Options toggles the parts only the server wants.
type Options struct {
	// Archive enables the MinIO copy of uploads when minio.enabled is set.
	Archive bool
	// Watch starts the model file watcher when model.watch is set.
	Watch bool
}

// New builds the App. Close must be called when done.
func New(ctx context.Context, cfg *config.Config, opt Options) (*App, error) {
	app := &App{Checkers: make(map[string]middleware.HealthChecker)}

	store, err := app.openHistory(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Models = appanalysis.NewModelHandle(Loader(cfg))
	app.closers = append(app.closers, app.Models.Close)
	app.Checkers["model"] = app.Models

	app.Service = &appanalysis.Service{
		Preprocessor:   imaging.New(),
		Models:         app.Models,
		Store:          store,
		Clock:          application.SystemClock{},
		CleanIndicator: cfg.Model.CleanIndicator,
		Observe:        middleware.RecordAnalysis,
	}

	if opt.Archive && cfg.Minio.Enabled {
		arch, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("minio init: %w", err)
		}
		app.Service.Archive = arch
		app.Checkers["archive"] = arch
	}

	if opt.Watch && cfg.Model.Watch && cfg.Model.Backend != "tfserving" {
		files := []string{cfg.Model.Labels}
		if cfg.Model.Backend == "onnx" {
			files = append(files, cfg.Model.Path)
		}
		w, err := watch.New(files, app.Models.Reload, watch.DefaultDebounce)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("model watch: %w", err)
		}
		app.closers = append(app.closers, w.Close)
		log.Printf("model watch enabled files=%v", files)
	}

	return app, nil
}

func (app *App) openHistory(ctx context.Context, cfg *config.Config) (domain.HistoryStore, error) {
	switch cfg.History.Backend {
	case "memory":
		s := memory.New()
		app.Checkers["history"] = s
		return s, nil
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, fmt.Errorf("mysql connect: %w", err)
		}
		app.trackDB(db)
		return mysqlp.NewHistoryRepository(db), nil
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		app.trackDB(db)
		return postgresp.NewHistoryRepository(db), nil
	}
	s := file.New(cfg.History.Path)
	app.Checkers["history"] = s
	return s, nil
}

func (app *App) trackDB(db *sql.DB) {
	app.closers = append(app.closers, db.Close)
	app.Checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
}

// Close releases resources in reverse order of acquisition.
func (app *App) Close() error {
	var first error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	app.closers = nil
	return first
}

// Loader picks the classifier backend from model.backend.
func Loader(cfg *config.Config) appanalysis.Loader {
	m := cfg.Model
	switch m.Backend {
	case "tfserving":
		return func(ctx context.Context) (domain.Model, []domain.Label, error) {
			labels, err := ai.LoadLabelFile(m.Labels)
			if err != nil {
				return nil, nil, err
			}
			return tfserving.NewClient(m.ServingURL, m.ServingModel), labels, nil
		}
	case "openai":
		key, model := cfg.OpenAI.APIKey, cfg.OpenAI.Model
		return func(ctx context.Context) (domain.Model, []domain.Label, error) {
			labels, err := ai.LoadLabelFile(m.Labels)
			if err != nil {
				return nil, nil, err
			}
			return openaiclient.NewClient(key, model, labels), labels, nil
		}
	}
	return func(ctx context.Context) (domain.Model, []domain.Label, error) {
		model, labels, err := onnx.Open(ctx, onnx.Options{
			ModelPath:      m.Path,
			LabelsPath:     m.Labels,
			RuntimeLibrary: m.RuntimeLibrary,
			InputName:      m.InputName,
			OutputName:     m.OutputName,
		})
		if err != nil {
			return nil, nil, err
		}
		return model, labels, nil
	}
}

// Migrate applies the SQL schema for the configured history backend.
func Migrate(cfg *config.Config) error {
	u, err := cfg.MigrateURL()
	if err != nil {
		return err
	}
	return migrations.Up(migrations.Dialect(cfg.History.Backend), u)
}
