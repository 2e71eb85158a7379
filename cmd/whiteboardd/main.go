// Command whiteboardd runs the shared-list server: a REST API over a
// todo store plus a WebSocket channel pushing every mutation to all
// connected clients.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joe5saia/family-whiteboard/config"
	"github.com/joe5saia/family-whiteboard/internal/version"
	"github.com/joe5saia/family-whiteboard/server"
	"github.com/joe5saia/family-whiteboard/server/ws"
	"github.com/joe5saia/family-whiteboard/todo"
)

var (
	configPath = flag.String("config", "", "path to YAML config file")
	addr       = flag.String("addr", "", "listen address override")
)

func main() {
	flag.Parse()

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))

	logger.Info("starting whiteboardd",
		"version", version.Version,
		"commit", version.Commit,
		"store", cfg.Store.Driver,
	)

	var store todo.Store
	switch cfg.Store.Driver {
	case config.DriverMemory:
		store = todo.NewMemoryStore()
	default:
		sqlStore, err := todo.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			log.Fatalf("Failed to open store: %v", err)
		}
		defer sqlStore.Close()
		store = sqlStore
	}

	hub := ws.NewHub(cfg.Server.WSBuffer, logger)
	svc := todo.NewService(store, hub, logger)

	srv := server.New(*cfg, version.Version, logger)
	srv.SetTodoService(svc)
	srv.SetHub(hub)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("Server failed: %v", err)
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		logger.Error("server stop error", "error", err)
	}
	logger.Info("shutdown complete")
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
