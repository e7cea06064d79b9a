// Command korloc-server serves the location index over HTTP.
//
// Configuration comes from the environment, optionally seeded from .env;
// see internal/config for the variables.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andreiashu/korloc"
	"github.com/andreiashu/korloc/internal/api"
	"github.com/andreiashu/korloc/internal/config"
	"github.com/andreiashu/korloc/internal/logger"
	"github.com/andreiashu/korloc/internal/metrics"
)

func main() {
	dotenvErr := config.LoadDotenv(".env")
	l := logger.Setup()
	if dotenvErr != nil {
		l.Error("config_error", "err", dotenvErr)
		os.Exit(1)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		l.Error("config_error", "err", err)
		os.Exit(1)
	}

	coords, err := coordinatesFor(cfg)
	if err != nil {
		l.Error("coordinates_load_error", "err", err)
		os.Exit(1)
	}
	idx := korloc.New(
		korloc.WithLogger(l),
		korloc.WithObserver(metrics.BuildObserver{}),
		korloc.WithSource(sourceFor(cfg, l)),
		korloc.WithCoordinates(coords),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go warmUp(ctx, idx, l)

	server := api.New(idx, api.Options{
		Logger:          l,
		SearchLimit:     cfg.SearchLimit,
		NearestCache:    cfg.NearestCache,
		NearestCacheTTL: cfg.NearestCacheTTL,
	})
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			l.Error("shutdown_error", "err", err)
		}
	}()

	l.Info("server_listen", "addr", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("server_error", "err", err)
		os.Exit(1)
	}
	l.Info("server_stopped")
}

func sourceFor(cfg config.Config, l *slog.Logger) korloc.Source {
	switch {
	case cfg.DataFile != "":
		l.Debug("config_data_file", "path", cfg.DataFile)
		return korloc.FileSource(cfg.DataFile)
	case cfg.DataURL != "":
		l.Debug("config_data_url", "url", cfg.DataURL)
		return korloc.HTTPSource{URL: cfg.DataURL, Client: &http.Client{Timeout: cfg.HTTPTimeout}}
	default:
		return korloc.EmbeddedSource()
	}
}

func coordinatesFor(cfg config.Config) (korloc.CoordinateTable, error) {
	if cfg.CoordinatesFile == "" {
		return korloc.EmbeddedCoordinates()
	}
	fh, err := os.Open(cfg.CoordinatesFile)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return korloc.LoadCoordinates(fh)
}

// warmUp builds the index in the background, retrying with backoff until it
// succeeds or ctx ends. Lookups by id also trigger a build on their own.
func warmUp(ctx context.Context, idx *korloc.Index, l *slog.Logger) {
	backoff := time.Second
	for {
		err := idx.EnsureBuilt(ctx)
		if err == nil {
			return
		}
		l.Warn("index_warmup_retry", "err", err, "backoff", backoff.String())
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, time.Minute)
	}
}
