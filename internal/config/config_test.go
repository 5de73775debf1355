package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreate_WritesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", DefaultConfigFileName)

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, filepath.Join(dir, "sub", DefaultDBName), cfg.DBPath)
	assert.Equal(t, filepath.Join(dir, "sub", DefaultLogName), cfg.LogPath)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, DefaultTasksKey, cfg.Storage.TasksKey)
	assert.Equal(t, "sd", cfg.Keys.SortDue)

	again, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadOrCreate_PartialFileGetsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(`
db_path = "/var/lib/devchron/tasks.db"
default_filter = "pending"

[keys]
quit = "x"
`), 0o644))

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/devchron/tasks.db", cfg.DBPath)
	assert.Equal(t, "pending", cfg.DefaultFilter)
	assert.Equal(t, "due", cfg.DefaultSort)
	assert.Equal(t, DefaultUpcomingCount, cfg.UpcomingCount)
	assert.Equal(t, "x", cfg.Keys.Quit)
	assert.Equal(t, "a", cfg.Keys.Add)
	assert.Equal(t, "tab", cfg.Keys.SwitchView)
}

func TestLoadOrCreate_Redis(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(`
[storage]
backend = "redis"
redis_addr = "localhost:6379"
redis_db = 2
`), 0o644))

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "localhost:6379", cfg.Storage.RedisAddr)
	assert.Equal(t, 2, cfg.Storage.RedisDB)
	assert.Equal(t, DefaultTasksKey, cfg.Storage.TasksKey)
}

func TestLoadOrCreate_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad toml":      "db_path = ",
		"bad backend":   "[storage]\nbackend = \"floppy\"\n",
		"redis no addr": "[storage]\nbackend = \"redis\"\n",
		"negative":      "upcoming_count = -1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultConfigFileName)
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := LoadOrCreate(path)
			assert.Error(t, err)
		})
	}
}

func TestResolveKeepsFileDSN(t *testing.T) {
	cfg := Default()
	cfg.DBPath = "file:memdb?mode=memory"
	got := cfg.resolve("/etc/devchron")
	assert.Equal(t, "file:memdb?mode=memory", got.DBPath)
	assert.Equal(t, filepath.Join("/etc/devchron", DefaultLogName), got.LogPath)
}

func TestResolveConfigPath(t *testing.T) {
	p := ResolveConfigPath()
	assert.Equal(t, DefaultConfigFileName, filepath.Base(p))
}
