// Command reelfeed runs the feed client headlessly: it loads the
// catalog, walks the feed like a viewer would and drives the player
// pool, logging every transition. Useful for soak-testing the client
// core against a live catalog without a UI.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reelfeed/reelfeed/internal/catalog"
	"github.com/reelfeed/reelfeed/internal/config"
	"github.com/reelfeed/reelfeed/internal/coordinator"
	"github.com/reelfeed/reelfeed/internal/feed"
	"github.com/reelfeed/reelfeed/internal/flagstore"
	xlog "github.com/reelfeed/reelfeed/internal/log"
	"github.com/reelfeed/reelfeed/internal/player"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "reelfeed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  = flag.String("config", "", "path to YAML config (optional; env and defaults apply)")
		items       = flag.Int("items", 12, "number of feed items to walk before exiting (0 = until signalled)")
		dwell       = flag.Duration("dwell", 2*time.Second, "simulated watch time per item")
		metricsAddr = flag.String("metrics-addr", "", "listen address for /metrics (empty = disabled)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	xlog.Configure(xlog.Config{Level: cfg.LogLevel})
	log := xlog.WithComponent("main")
	log.Info().
		Str(xlog.FieldBaseURL, cfg.BaseURL).
		Str(xlog.FieldQuery, cfg.Query).
		Int("max_resident", cfg.MaxResident).
		Msg("starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: *metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("metrics server failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	store, err := flagstore.Open(filepath.Join(cfg.DataDir, "reelfeed.db"))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	cache := feed.NewRecordCache()
	client := catalog.NewClient(catalog.Config{
		BaseURL:         cfg.BaseURL,
		APIKey:          cfg.APIKey,
		RequestTimeout:  cfg.RequestTimeout,
		ResourceTimeout: cfg.ResourceTimeout,
		RateLimit:       cfg.RateLimit,
		RateBurst:       cfg.RateBurst,
	})
	seq := feed.NewSequence(client, store, cache, cfg.Query, cfg.PerPage)

	pool := player.NewPool(player.NewProbeDriver(cfg.RequestTimeout), cfg.MaxResident)
	defer pool.Close()

	coord := coordinator.New(seq, pool, coordinator.Config{BufferPoll: cfg.BufferPoll})
	defer coord.Stop()

	if err := seq.LoadFirstPage(ctx); err != nil {
		return err
	}
	if seq.Len() == 0 {
		return fmt.Errorf("catalog returned no videos for %q", cfg.Query)
	}

	// Walk the feed the way a viewer scrolls it.
	for i := 0; *items == 0 || i < *items; i++ {
		if i >= seq.Len() {
			log.Info().Int(xlog.FieldIndex, i).Msg("feed exhausted")
			break
		}
		if err := coord.VisibleIndexChanged(ctx, i); err != nil {
			log.Warn().Err(err).Int(xlog.FieldIndex, i).Msg("scroll step failed")
		}
		if rec, ok := seq.RecordAt(i); ok {
			log.Info().
				Int(xlog.FieldIndex, i).
				Int64(xlog.FieldVideoID, rec.ID).
				Str("author", rec.Author.Username).
				Msg("watching")
		}
		select {
		case <-ctx.Done():
			log.Info().Msg("signalled, shutting down")
			return nil
		case <-time.After(*dwell):
		}
	}

	pool.PauseAll()
	log.Info().Int("residents", len(pool.Residents())).Msg("walk complete")
	return nil
}
