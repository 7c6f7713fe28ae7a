package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bryanwahyu/tidyroom/internal/bootstrap"
	"github.com/bryanwahyu/tidyroom/internal/config"
	"github.com/bryanwahyu/tidyroom/internal/infra/charts"
	"github.com/bryanwahyu/tidyroom/internal/infra/httpserver"
)

func main() {
	// load config (CONFIG_PATH, default config.yaml)
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// SQL backends: make sure the schema exists before serving
	if cfg.History.Backend == "mysql" || cfg.History.Backend == "postgres" {
		if err := bootstrap.Migrate(cfg); err != nil {
			log.Fatalf("migrate error: %v", err)
		}
	}

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{Archive: true, Watch: true})
	if err != nil {
		log.Fatalf("init error: %v", err)
	}
	defer app.Close()

	// load the model now so the first upload doesn't pay for it
	if err := app.Models.Check(ctx); err != nil {
		log.Printf("model preload failed, will retry on first request: %v", err)
	}

	renderer := charts.New()
	if cfg.Charts.FontPath != "" {
		f, err := charts.LoadFont(cfg.Charts.FontPath)
		if err != nil {
			log.Fatalf("chart font error: %v", err)
		}
		renderer.Font = f
	}

	// init router
	mux := chi.NewRouter()
	mux.Mount("/", httpserver.NewRouter(app.Service, httpserver.Options{
		MaxUploadBytes: cfg.MaxUploadBytes(),
		CORSOrigins:    cfg.Server.CORSOrigins,
		Checkers:       app.Checkers,
		Charts:         renderer,
	}))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s history=%s model=%s", addr, cfg.History.Backend, cfg.Model.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
