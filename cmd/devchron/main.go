package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"devchron/internal/config"
	"devchron/internal/logging"
	"devchron/internal/mood"
	"devchron/internal/storage"
	"devchron/internal/task"
	"devchron/internal/ui"
)

type backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

func main() {
	if err := run(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run() error {
	configPath := config.ResolveConfigPath()
	firstLaunch := false
	if _, err := os.Stat(configPath); err != nil {
		firstLaunch = errors.Is(err, os.ErrNotExist)
	}
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logging.SetDebug(logging.DebugEnabled() || cfg.Debug)
	logFile, err := tea.LogToFile(cfg.LogPath, config.AppName)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	ctx := context.Background()
	kv, err := openBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer kv.Close()

	store := task.NewStore(kv, task.WithKey(cfg.Storage.TasksKey))
	if err := store.Initialize(ctx); err != nil {
		if !errors.Is(err, task.ErrLoad) {
			store.Close(ctx)
			return fmt.Errorf("failed to load tasks: %w", err)
		}
		logging.Error("main", "starting with an empty task list: %v", err)
	}

	runErr := ui.Run(store, mood.NewStore(kv), cfg, configPath, firstLaunch)

	closeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	closeErr := store.Close(closeCtx)
	if closeErr != nil {
		logging.Error("main", "final save: %v", closeErr)
		closeErr = fmt.Errorf("failed to save tasks: %w", closeErr)
	}

	if runErr != nil {
		return errors.Join(fmt.Errorf("error running program: %w", runErr), closeErr)
	}
	return closeErr
}

func openBackend(ctx context.Context, cfg config.Config) (backend, error) {
	switch cfg.Storage.Backend {
	case config.BackendRedis:
		logging.Info("main", "using redis at %s", cfg.Storage.RedisAddr)
		return storage.OpenRedis(ctx, storage.RedisOptions{
			Addr:     cfg.Storage.RedisAddr,
			Password: cfg.Storage.RedisPassword,
			DB:       cfg.Storage.RedisDB,
			Prefix:   cfg.Storage.RedisPrefix,
		})
	case config.BackendMemory:
		logging.Info("main", "using in-memory storage, nothing will be kept")
		return storage.NewMemory(), nil
	default:
		logging.Info("main", "using sqlite at %s", cfg.DBPath)
		return storage.Open(cfg.DBPath)
	}
}
