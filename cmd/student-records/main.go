// main is the entry point of the student-records service.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Open the durable slot (SQLite, or in-memory when no path is set)
//  4. Open the record store: load the slot, or seed it when empty
//  5. Register all HTTP routes
//  6. Start the HTTP server in a separate goroutine
//  7. Block until an OS signal (Ctrl+C / kill) arrives, then shut down
//
// RUNNING THE SERVER:
//
//	go run ./cmd/student-records --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/student-records
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/http/handlers/student"
	"github.com/aanand-mishra/student-records/internal/records"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/storage/memory"
	"github.com/aanand-mishra/student-records/internal/storage/sqlite"
)

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting student-records",
		slog.String("env", cfg.Env),
		slog.String("version", "1.0.0"),
	)

	// ── Durable slot ──────────────────────────────────────────────────────
	// Everything after this point only sees the storage.Slot interface.
	slot, err := openSlot(cfg, log)
	if err != nil {
		log.Error("failed to initialise storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// ── Record store ──────────────────────────────────────────────────────
	opts := []records.Option{records.WithLogger(log)}
	if cfg.IDScheme == config.IDSchemeUUID {
		opts = append(opts, records.WithIDs(records.UUIDs()))
	}
	if cfg.SeedFile != "" {
		seed, err := records.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			log.Error("failed to read seed file",
				slog.String("path", cfg.SeedFile),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
		opts = append(opts, records.WithSeed(seed))
	}

	store, err := records.Open(slot, opts...)
	if err != nil {
		log.Error("failed to open record store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	log.Info("record store ready",
		slog.String("slot", cfg.SlotKey),
		slog.Int("records", store.Stats().Total))

	// ── HTTP ──────────────────────────────────────────────────────────────
	router := http.NewServeMux()
	student.Register(router, store)

	server := &http.Server{
		Addr:    cfg.HTTPServer.Addr,
		Handler: router,

		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		// ListenAndServe returns http.ErrServerClosed once Shutdown is called.
		if err := server.ListenAndServe(); err != nil &&
			err != http.ErrServerClosed {
			log.Error("server encountered an error",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

func openSlot(cfg *config.Config, log *slog.Logger) (storage.Slot, error) {
	if cfg.StoragePath == "" {
		log.Warn("storage_path not set, records will not survive a restart")
		return memory.New(), nil
	}

	db, err := sqlite.New(cfg)
	if err != nil {
		return nil, err
	}
	log.Info("storage initialised", slog.String("path", cfg.StoragePath))
	return db, nil
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	default:
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}
}
