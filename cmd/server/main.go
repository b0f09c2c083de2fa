/*
main.go - Application entry point

STARTUP SEQUENCE:
  1. Parse configuration from environment
  2. Configure structured logging
  3. Open SQLite store and load the persisted state
  4. Wire the domain registries into the API handler
  5. Start the HTTP server with graceful shutdown

ENVIRONMENT:
  PORT       HTTP server port (default: 8080)
  DB_PATH    SQLite database path (default: homeledger.db),
             ":memory:" for a throwaway database
  LOG_LEVEL  debug, info, warn, error (default: info)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM the server stops accepting connections, waits up
  to 30s for active requests, then closes the database.
*/
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/warp/homeledger/api"
	"github.com/warp/homeledger/logging"
	"github.com/warp/homeledger/store/sqlite"
)

type config struct {
	Port   int    `env:"PORT" envDefault:"8080"`
	DBPath string `env:"DB_PATH" envDefault:"homeledger.db"`
}

func main() {
	logging.Setup()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		slog.Error("parse config", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		slog.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	state, err := db.Load()
	if err != nil {
		slog.Error("load state", "error", err)
		os.Exit(1)
	}
	users, tree, reg, err := state.Restore()
	if err != nil {
		slog.Error("restore state", "error", err)
		os.Exit(1)
	}
	slog.Info("state loaded",
		"database", cfg.DBPath,
		"users", len(state.Users),
		"todos", len(state.Todos),
		"expenses", len(state.Expenses),
		"balances", len(state.Balances),
	)

	handler := api.NewHandler(users, tree, reg, db)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
