package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/iudanet/otagate/internal/config"
	"github.com/iudanet/otagate/internal/firmware"
	"github.com/iudanet/otagate/internal/keystore"
	"github.com/iudanet/otagate/internal/server"
	"github.com/iudanet/otagate/internal/server/storage"
	"github.com/iudanet/otagate/internal/server/storage/boltdb"
	"github.com/iudanet/otagate/internal/server/storage/memory"
	"github.com/iudanet/otagate/internal/server/storage/sqlite"
	"github.com/iudanet/otagate/internal/session"
	"github.com/iudanet/otagate/internal/timesync"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// exitRestart - код выхода после обновления прошивки; супервизор перезапускает процесс
const exitRestart = 3

// restartDelay дает ответу на /doupdate дойти до клиента
const restartDelay = 100 * time.Millisecond

func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if cfg.ShowVersion {
		printVersion()
		os.Exit(0)
	}

	logger := cfg.NewLogger(os.Stderr)

	restart, err := run(cfg, logger)
	if err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
	if restart {
		logger.Info("Restarting into new firmware image")
		os.Exit(exitRestart)
	}
}

func run(cfg *config.Config, logger *slog.Logger) (bool, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Инициализируем хранилище
	store, err := openStorage(ctx, cfg)
	if err != nil {
		return false, err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage", "error", err)
		}
	}()

	keys := keystore.New(store, keystore.DefaultCapacity)
	sessions := session.NewManager(session.HexTokenGenerator{}, session.WithIdleTimeout(cfg.SessionTimeout))

	clock := timesync.NewSynchronizer(
		timesync.NewHTTPDateSource(cfg.TimeURL, cfg.SyncTimeout),
		logger,
		timesync.WithInterval(cfg.SyncInterval),
		timesync.WithRecorder(store),
		timesync.WithDSTFromLocal(cfg.DSTLocal),
	)
	if err := clock.Restore(ctx); err != nil {
		logger.Warn("Failed to restore last sync time", "error", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var restarting atomic.Bool
	restarter := &firmware.DelayedRestarter{
		Delay: restartDelay,
		Fn: func() {
			restarting.Store(true)
			cancel()
		},
	}

	router := server.NewRouter(server.Deps{
		Logger:       logger,
		Sessions:     sessions,
		Store:        keys,
		Clock:        clock,
		Flasher:      firmware.NewFileFlasher(filepath.Join(cfg.DataDir, "firmware"), cfg.MaxImage),
		Restarter:    restarter,
		PasswordHash: cfg.PasswordHash,
		Version:      Version,
		StorageName:  cfg.Storage,
		MaxLine:      cfg.MaxLine,
	})

	srv := server.New(logger, router,
		server.WithSyncer(clock),
		server.WithMaxLine(cfg.MaxLine),
	)

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return false, fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}

	logger.Info("Starting otagate",
		"version", Version,
		"addr", ln.Addr().String(),
		"storage", cfg.Storage,
		"data_dir", cfg.DataDir,
	)

	if err := srv.Serve(ctx, ln); err != nil {
		return false, err
	}
	return restarting.Load(), nil
}

func openStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	if cfg.Storage == config.StorageMemory {
		return memory.New(), nil
	}

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	switch cfg.Storage {
	case config.StorageBolt:
		return boltdb.New(ctx, filepath.Join(cfg.DataDir, "otagate.db"))
	case config.StorageSQLite:
		return sqlite.New(ctx, filepath.Join(cfg.DataDir, "otagate.sqlite"))
	default:
		return nil, errors.New("unknown storage " + cfg.Storage)
	}
}

func printVersion() {
	fmt.Printf("otagate\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
