// cmd/web/main.go
//
// sqltag demo service – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load env vars (jail-wide file → .env fallback).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Load config (YAML + env overlays, Vault-resolved DSN).
//
//  4. Build the comment Composer from the configured component list and
//     open the database pool through the tagging connector.
//
//  5. Start the background-job runner (note purge) with its own tag scope
//     per run, plus an hourly submit ticker.
//
//  6. Build the chi router: request-info enrichment → query-tag scope →
//     controllers; expose Prometheus /metrics.
//
//  7. Serve with hardened timeouts; drain on SIGINT/SIGTERM.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanizio/sqltag/internal/config"
	"github.com/yanizio/sqltag/internal/database"
	"github.com/yanizio/sqltag/internal/job"
	"github.com/yanizio/sqltag/internal/logger"
	"github.com/yanizio/sqltag/internal/middleware"
	"github.com/yanizio/sqltag/internal/note"
	"github.com/yanizio/sqltag/internal/requestinfo"
	"github.com/yanizio/sqltag/internal/server"
	"github.com/yanizio/sqltag/internal/sqltag"
)

const (
	serverEnvPath = "/usr/local/etc/sqltag/global.env"
	purgeEvery    = time.Hour
	purgeAfter    = 30 * 24 * time.Hour
)

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	rootDir, _ := os.Getwd()
	logOut, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	//
	// ── 1.  Config ──────────────────────────────────────────────────────
	//
	cfg, err := config.Load()
	if err != nil {
		logOut.Fatalf("load config: %v", err)
	}

	// GeoLite2 is optional; without it request logs carry IP only.
	geoPath := filepath.Join(cfg.Paths.Root, "conf", "GeoLite2-City.mmdb")
	if err := requestinfo.InitGeo(geoPath); err != nil {
		logOut.Infow("geo lookups disabled", "file", geoPath, "err", err)
	}

	//
	// ── 2.  Comment composer + tagged DB pool ───────────────────────────
	//
	var comp *sqltag.Composer
	if cfg.QueryTags.Enabled {
		sqltag.SetApplication(cfg.QueryTags.Application)
		comp, err = sqltag.NewComposer(sqltag.Options{
			Components: cfg.QueryTags.Components,
			Cache:      cfg.QueryTags.Cache,
			Prepend:    cfg.QueryTags.Prepend,
		})
		if err != nil {
			logOut.Fatalf("build composer: %v", err)
		}
	}

	db, err := database.Open(cfg.Database.DSN, comp)
	if err != nil {
		logOut.Fatalf("connect DB: %v", err)
	}
	defer db.Close()
	logOut.Infow("db online", "tagged", comp != nil)

	//
	// ── 3.  Background jobs ─────────────────────────────────────────────
	//
	runner := job.NewRunner(2, 64, cfg.QueryTags.TagJobs)
	_ = runner.Register("note-purge", func(ctx context.Context) error {
		n, err := note.Purge(ctx, db, purgeAfter)
		if err != nil {
			return err
		}
		logOut.Infow("notes purged", "rows", n)
		return nil
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	runner.Start(ctx)

	go func() {
		tick := time.NewTicker(purgeEvery)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				_ = runner.Submit("note-purge")
			}
		}
	}()

	//
	// ── 4.  Router ──────────────────────────────────────────────────────
	//
	r := chi.NewRouter()
	r.Use(requestinfo.Enrich)
	r.Use(middleware.QueryTags(cfg.QueryTags.Application, cfg.QueryTags.TagActions))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		// Health probes should not pollute the slow-query log with tags.
		if err := db.PingContext(sqltag.Skip(r.Context())); err != nil {
			http.Error(w, "db unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	notes := r.With(middleware.Controller("notes"))
	notes.Get("/notes", func(w http.ResponseWriter, r *http.Request) {
		rows, err := note.Recent(r.Context(), db, 20)
		if err != nil {
			logOut.Errorw("list notes", "err", err)
			http.Error(w, "query error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, rows)
	})
	notes.Get("/notes/{slug}", func(w http.ResponseWriter, r *http.Request) {
		var rec *note.Record
		err := sqltag.WithAnnotation(r.Context(), "notes-show", func(ctx context.Context) error {
			var err error
			rec, err = note.BySlug(ctx, db, chi.URLParam(r, "slug"))
			return err
		})
		if err != nil {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, rec)
	})

	//
	// ── 5.  Serve + graceful drain ──────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, r)
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logOut.Fatalf("http server: %v", err)
	}

	if err := runner.Close(); err != nil {
		logOut.Errorw("job runner drain", "err", err)
	}
	logOut.Infow("bye")
}

// writeJSON is the tiny response helper every demo handler shares.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
	}
}
