package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devchron/internal/config"
)

func TestRunReturnsConfigError(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	path := config.ResolveConfigPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("[storage]\nbackend = \"floppy\"\n"), 0o644))

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestRunReturnsStorageError(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	path := config.ResolveConfigPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	body := "[storage]\nbackend = \"redis\"\nredis_addr = \"" + addr + "\"\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open storage")
	assert.FileExists(t, filepath.Join(filepath.Dir(path), config.DefaultLogName))
}

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()

	cfg := config.Default()
	cfg.DBPath = filepath.Join(t.TempDir(), "devchron.db")
	kv, err := openBackend(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, "k", "v"))
	require.NoError(t, kv.Close())

	cfg.Storage.Backend = config.BackendMemory
	kv, err = openBackend(ctx, cfg)
	require.NoError(t, err)
	_, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, kv.Close())

	mr := miniredis.RunT(t)
	cfg.Storage.Backend = config.BackendRedis
	cfg.Storage.RedisAddr = mr.Addr()
	kv, err = openBackend(ctx, cfg)
	require.NoError(t, err)
	defer kv.Close()
	require.NoError(t, kv.Set(ctx, "k", "v"))
	assert.True(t, mr.Exists(cfg.Storage.RedisPrefix+"k"))
}
