package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/pumpsight/pumpsight/internal/alerts"
	"github.com/pumpsight/pumpsight/internal/api"
	"github.com/pumpsight/pumpsight/internal/auth"
	"github.com/pumpsight/pumpsight/internal/chart"
	"github.com/pumpsight/pumpsight/internal/config"
	"github.com/pumpsight/pumpsight/internal/metrics"
	"github.com/pumpsight/pumpsight/internal/store"
	"github.com/pumpsight/pumpsight/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	uiDir := flag.String("ui-dir", "", "serve the React UI static files from this directory (e.g. ui/dist); leave empty to disable")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("pumpsight-server starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"auth_mode", cfg.Server.Auth.Mode,
		"scenario_ttl", cfg.Server.ScenarioTTL,
		"presets", len(cfg.Presets),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Scenario store with background TTL eviction.
	st := store.New(cfg.Server.ScenarioTTL)
	go st.Run(ctx)

	// Alerts engine evaluates rules after every simulation run.
	alertEngine := alerts.New(cfg.Alerts)

	// Config holder for hot-reload. The API reads coefficients and presets
	// through this on every request.
	var cfgMu sync.RWMutex
	currentCfg := cfg
	currentConfig := func() *config.Config {
		cfgMu.RLock()
		defer cfgMu.RUnlock()
		return currentCfg
	}

	// Watch config file for hot-reload. Coefficients, presets and alert rules
	// apply immediately; port, TTL and auth changes need a restart.
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			cfgMu.Lock()
			currentCfg = updated
			cfgMu.Unlock()
			alertEngine.SetRules(updated.Alerts)
			slog.Info("config hot-reloaded",
				"presets", len(updated.Presets),
				"alert_rules", len(updated.Alerts.Rules),
			)
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	// WebSocket hub broadcasts the scenario list to UI clients.
	hub := ws.New(st, cfg.Server.BroadcastInterval)
	go hub.Run(ctx)

	// REST API with optional API key authentication middleware.
	apiHandler := api.New(st, alertEngine, chart.New(chart.DefaultConfig()), currentConfig)

	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", auth.APIKeyMiddleware(
		cfg.Server.Auth.Mode,
		cfg.Server.Auth.EffectiveHeader(),
		cfg.Server.Auth.Key(),
		apiHandler,
	))
	httpMux.Handle("/ws/stream", hub)
	httpMux.Handle("/metrics", metrics.Handler(st.Count, hub.Count))

	// Optional: serve the pre-built React UI from a local directory.
	// Usage:  ./bin/pumpsight-server -config config.yaml -ui-dir ui/dist
	// The "/" catch-all serves index.html for any unknown path (SPA routing).
	if *uiDir != "" {
		fs := http.FileServer(http.Dir(*uiDir))
		httpMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			// SPA fallback: if the requested file doesn't exist, serve index.html.
			path := *uiDir + r.URL.Path
			if _, err := os.Stat(path); os.IsNotExist(err) {
				http.ServeFile(w, r, *uiDir+"/index.html")
				return
			}
			fs.ServeHTTP(w, r)
		})
		slog.Info("serving UI static files", "dir", *uiDir)
	}

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: httpMux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("pumpsight-server shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}
