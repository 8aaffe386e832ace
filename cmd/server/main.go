package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"energy_dashboard/internal/cache"
	"energy_dashboard/internal/config"
	"energy_dashboard/internal/dashboard"
	"energy_dashboard/internal/database"
	"energy_dashboard/internal/observability/metrics"
	"energy_dashboard/internal/profile"
	"energy_dashboard/internal/provider"
	"energy_dashboard/internal/stats"
	"energy_dashboard/internal/ws"
)

const maxUploadBytes = 32 << 20

func main() {
	configPath := flag.String("config", config.DefaultConfigPath(), "path to YAML config file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	frontendDir := flag.String("frontend-dir", "", "directory containing frontend build (overrides config)")
	dbPath := flag.String("db", "", "sqlite database path (overrides config)")
	userID := flag.String("user", "", "user profile to show (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyOverrides(cfg, *addr, *frontendDir, *dbPath, *userID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.GetDBPath())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	metrics.Init(prometheus.DefaultRegisterer)

	// Set up WebSocket hub and dashboard state
	hub := ws.NewHub()
	state := dashboard.NewState(ws.NewBridge(hub), dashboard.WithFlatRate(cfg.FlatRate))
	defer state.Close()

	effects := buildEffects(cfg, db, state)
	go effects.Run(ctx)

	mux := newMux(effects, hub)

	// Serve frontend static files
	if _, err := os.Stat(cfg.GetFrontendDir()); err == nil {
		log.Printf("Serving frontend from %s", cfg.GetFrontendDir())
		mux.Handle("/", http.FileServer(http.Dir(cfg.GetFrontendDir())))
	}

	srv := &http.Server{Addr: cfg.GetAddr(), Handler: mux}
	go func() {
		<-ctx.Done()
		state.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Starting server on %s", cfg.GetAddr())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// applyOverrides copies non-empty flag values over the file config.
func applyOverrides(cfg *config.Config, addr, frontendDir, dbPath, userID string) {
	if addr != "" {
		cfg.Addr = addr
	}
	if frontendDir != "" {
		cfg.FrontendDir = frontendDir
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if userID != "" {
		cfg.UserID = userID
	}
}

// newCache picks the cache backend named in the config.
func newCache(cfg *config.Config, db *database.DB) *cache.Cache {
	backend := cache.NewBackend(cfg.GetCacheBackend(), cfg.GetCacheDir(), db.Conn())

	var opts []cache.Option
	if cfg.Cache.Key != "" {
		opts = append(opts, cache.WithKey(cfg.Cache.Key))
	}
	if cfg.Cache.MaxRecords > 0 {
		opts = append(opts, cache.WithMaxRecords(cfg.Cache.MaxRecords))
	}
	return cache.New(backend, opts...)
}

// buildEffects wires the cache, profile store and every configured provider.
func buildEffects(cfg *config.Config, db *database.DB, state *dashboard.State) *dashboard.Effects {
	e := &dashboard.Effects{
		State:    state,
		Cache:    newCache(cfg, db),
		UserID:   cfg.UserID,
		Profiles: profile.NewSQLiteStore(db.Conn()),
	}

	if cfg.Location.Enabled {
		e.Location = &dashboard.Location{
			Latitude:  cfg.Location.Latitude,
			Longitude: cfg.Location.Longitude,
		}
	}
	if cfg.Weather.Enabled() {
		e.Weather = provider.NewWeatherClient(cfg.Weather.URL, cfg.Weather.Token,
			&http.Client{Timeout: cfg.Weather.GetTimeout()})
	}
	if cfg.Tariff.Enabled() {
		e.Tariffs = provider.NewTariffClient(cfg.Tariff.URL, cfg.Tariff.Token,
			&http.Client{Timeout: cfg.Tariff.GetTimeout()})
	}
	if cfg.Discom.Enabled() {
		e.Discoms = provider.NewDiscomClient(cfg.Discom.URL, cfg.Discom.Token,
			&http.Client{Timeout: cfg.Discom.GetTimeout()})
	}
	return e
}

// newMux registers the API routes. The static frontend is mounted by main.
func newMux(effects *dashboard.Effects, hub *ws.Hub) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/dashboard", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, effects.State.Snapshot())
	})
	mux.HandleFunc("POST /api/upload", uploadHandler(effects))
	mux.Handle("/ws", ws.NewHandler(hub, effects))
	return mux
}

type uploadResponse struct {
	FileName string        `json:"file_name"`
	Stats    stats.Summary `json:"stats"`
	Warning  string        `json:"warning,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// uploadHandler accepts a multipart form with the CSV in field "file".
func uploadHandler(effects *dashboard.Effects) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		file, header, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("reading form file: %v", err)})
			return
		}
		defer file.Close()

		summary, err := effects.Upload(r.Context(), "http", header.Filename, file)
		resp := uploadResponse{FileName: header.Filename, Stats: summary}
		switch {
		case errors.Is(err, dashboard.ErrNotCached):
			log.Printf("Upload of %s: %v", header.Filename, err)
			resp.Warning = err.Error()
		case err != nil:
			log.Printf("Upload of %s failed: %v", header.Filename, err)
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}
