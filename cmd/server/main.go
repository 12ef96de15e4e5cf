package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/garazh/internal/auth"
	"github.com/JonMunkholm/garazh/internal/config"
	"github.com/JonMunkholm/garazh/internal/core"
	"github.com/JonMunkholm/garazh/internal/logging"
	"github.com/JonMunkholm/garazh/internal/storage/filestore"
	"github.com/JonMunkholm/garazh/internal/storage/postgres"
	"github.com/JonMunkholm/garazh/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration", "config", cfg.String())

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			slog.Warn("closing backend", "error", err)
		}
	}()

	loc, err := cfg.Garage.Location()
	if err != nil {
		return fmt.Errorf("time zone: %w", err)
	}
	service := core.NewService(backend,
		core.WithLocation(loc),
		core.WithResetTimeout(cfg.Garage.ResetTimeout),
	)
	// Retry the initial load until the backend answers or a signal arrives.
	loadCtx, stopLoad := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	err = service.LoadWithRetry(loadCtx, core.RetryPolicy{
		Initial: cfg.Garage.LoadRetryInitial,
		Max:     cfg.Garage.LoadRetryMax,
	})
	stopLoad()
	if err != nil {
		return fmt.Errorf("load garage data: %w", err)
	}

	gate, err := auth.NewGate(auth.Config{
		Username:     cfg.Auth.Username,
		Password:     cfg.Auth.Password,
		PasswordHash: cfg.Auth.PasswordHash,
		Secret:       cfg.Auth.SessionSecret,
		TTL:          cfg.Auth.SessionTTL,
	})
	if err != nil {
		return err
	}
	if cfg.Auth.SessionSecret == "" {
		slog.Warn("SESSION_SECRET not set; sessions end when the server restarts")
	}

	server := web.NewServer(service, gate, cfg)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	slog.Info("server stopped")
	return nil
}

// openBackend builds the configured storage backend. There is no fallback:
// a backend that cannot be opened stops the server.
func openBackend(ctx context.Context, cfg *config.Config) (core.Backend, error) {
	switch cfg.Storage.Backend {
	case config.BackendFile:
		store, err := filestore.Open(cfg.Storage.FilePath)
		if err != nil {
			return nil, err
		}
		slog.Info("using file storage", "path", store.Path())
		return store, nil

	case config.BackendPostgres:
		if cfg.Database.Migrate {
			if err := postgres.Migrate(cfg.Database.URL); err != nil {
				return nil, err
			}
		}
		pool, err := postgres.Connect(ctx, cfg.Database.URL, postgres.PoolOptions{
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		})
		if err != nil {
			return nil, err
		}
		return postgres.New(pool), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}
