// Package main provides the entry point for the Loopline admin backend.
// The backend serves the authenticated admin API consumed by the SDK and
// the terminal console.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/loopline-app/loopline-admin/internal/api"
	"github.com/loopline-app/loopline-admin/internal/auth"
	"github.com/loopline-app/loopline-admin/internal/config"
	"github.com/loopline-app/loopline-admin/internal/logging"
	"github.com/loopline-app/loopline-admin/internal/store"
	"github.com/loopline-app/loopline-admin/internal/watcher"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func init() {
	logging.SetupBaseLogger()
}

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Configure File Path")
	flag.Parse()

	wd, err := os.Getwd()
	if err != nil {
		log.Errorf("failed to get working directory: %v", err)
		return
	}

	// Load environment variables from .env if present.
	if errLoad := godotenv.Load(filepath.Join(wd, ".env")); errLoad != nil {
		if !errors.Is(errLoad, os.ErrNotExist) {
			log.WithError(errLoad).Warn("failed to load .env file")
		}
	}

	if configPath == "" {
		configPath = filepath.Join(wd, "config.yaml")
	}
	cfg, err := config.LoadConfigOptional(configPath, true)
	if err != nil {
		log.Errorf("failed to load config: %v", err)
		return
	}

	if err = logging.ConfigureLogOutput(filepath.Join(wd, "logs"), cfg.LoggingToFile, cfg.LogsMaxTotalSizeMB); err != nil {
		log.Errorf("failed to configure log output: %v", err)
		return
	}
	logging.SetDebug(cfg.Debug)

	log.Infof("Loopline Admin Version: %s, Commit: %s, BuiltAt: %s", Version, Commit, BuildDate)

	if cfg.Auth.JWTSecret == "" {
		log.Error("auth.jwt-secret is required, refusing to start")
		return
	}

	st, err := openStore(cfg)
	if err != nil {
		log.Errorf("failed to open store: %v", err)
		return
	}
	defer func() {
		_ = st.Close()
	}()

	if err = seedAdmin(cfg, st); err != nil {
		log.Errorf("failed to seed administrator: %v", err)
		return
	}

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL, st)
	server := api.NewServer(cfg, st, tokens)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Hot reload only touches the knobs that are safe to flip at runtime.
	configWatcher, err := watcher.NewWatcher(configPath, func(updated *config.Config) {
		logging.SetDebug(updated.Debug)
		log.Info("configuration reloaded")
	})
	if err != nil {
		log.Warnf("config watcher disabled: %v", err)
	} else {
		if err = configWatcher.Start(ctx); err != nil {
			log.Warnf("config watcher failed to start: %v", err)
		}
		defer func() {
			_ = configWatcher.Stop()
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err = <-errCh:
		if err != nil {
			log.Errorf("server stopped: %v", err)
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err = server.Shutdown(shutdownCtx); err != nil {
			log.Errorf("graceful shutdown failed: %v", err)
		}
	}
}

// openStore selects the PostgreSQL-backed store when a DSN is configured and
// falls back to the in-memory store otherwise.
func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.PostgresDSN == "" {
		log.Warn("postgres-dsn not configured, using in-memory store; data will not survive a restart")
		return store.NewMemoryStore(), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	pg, err := store.NewPostgresStore(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if err = pg.EnsureSchema(ctx); err != nil {
		_ = pg.Close()
		return nil, err
	}
	log.Info("postgres-backed store enabled")
	return pg, nil
}

// seedAdmin creates the bootstrap administrator on first run. An existing
// account with the same email is left untouched.
func seedAdmin(cfg *config.Config, st store.Store) error {
	if cfg.Auth.SeedAdminEmail == "" || cfg.Auth.SeedAdminPassword == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := st.AdminByEmail(ctx, cfg.Auth.SeedAdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(cfg.Auth.SeedAdminPassword)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}
	admin := &store.Admin{
		ID:           uuid.NewString(),
		Email:        cfg.Auth.SeedAdminEmail,
		Name:         "Administrator",
		Role:         "admin",
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err = st.CreateAdmin(ctx, admin); err != nil {
		return err
	}
	log.Infof("seeded administrator account %s", admin.Email)
	return nil
}
