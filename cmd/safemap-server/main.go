// Command safemap-server serves the safemap HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andreiashu/safemap"
	"github.com/andreiashu/safemap/internal/config"
	"github.com/andreiashu/safemap/internal/httpapi"
	"github.com/andreiashu/safemap/internal/logger"
	"github.com/andreiashu/safemap/internal/metrics"
	"github.com/andreiashu/safemap/internal/prefs"
)

func main() {
	cfg := config.Load()
	l := logger.Setup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fallback, err := safemap.ParseCityKey(cfg.DefaultCity)
	if err != nil {
		l.Error("invalid_default_city", "city", cfg.DefaultCity, "err", err)
		os.Exit(1)
	}

	var store safemap.PreferenceStore = &prefs.Memory{}
	if cfg.Prefs == config.PrefsRedis {
		store = prefs.Open(ctx, l, cfg.RedisAddr(), cfg.RedisPass, cfg.RedisDB)
	}

	atlas := safemap.NewAtlas(
		safemap.WithLogger(l),
		safemap.WithPreferences(store),
		safemap.WithObserver(metrics.Observer{}),
	)
	source := safemap.DirSource(cfg.DataDir)
	if _, err := atlas.Restore(ctx, source, fallback); err != nil {
		l.Error("initial_load_failed", "err", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewRouter(httpapi.NewHandlers(atlas, source, store, l)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	l.Info("listening", "addr", cfg.Addr, "data_dir", cfg.DataDir, "prefs", cfg.Prefs)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("server_failed", "err", err)
		os.Exit(1)
	}
}
