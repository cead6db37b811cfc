package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, BackendBadger, cfg.Backend)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, 1000, cfg.CacheCapacity)
	assert.Equal(t, 4, cfg.DecodeWorkers)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ratatosk.yaml")
	content := `
data_dir: /var/lib/ratatosk
backend: memory
cache_capacity: 50
decode_workers: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/ratatosk", cfg.DataDir)
	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, 50, cfg.CacheCapacity)
	assert.Equal(t, 2, cfg.DecodeWorkers)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: [not: closed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ratatosk.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: badger\ncache_capacity: 10\n"), 0o644))

	t.Setenv("RATATOSK_BACKEND", "memory")
	t.Setenv("RATATOSK_CACHE_CAPACITY", "77")
	t.Setenv("RATATOSK_IN_MEMORY", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, 77, cfg.CacheCapacity)
	assert.True(t, cfg.InMemory)
}

func TestValidate(t *testing.T) {
	t.Run("unknown backend", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Backend = "postgres"
		assert.Error(t, cfg.Validate())
	})

	t.Run("badger needs data dir", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.DataDir = ""
		assert.Error(t, cfg.Validate())

		cfg.InMemory = true
		assert.NoError(t, cfg.Validate())
	})

	t.Run("cache capacity bound", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.CacheCapacity = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("decode workers bound", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.DecodeWorkers = 0
		assert.Error(t, cfg.Validate())
	})
}
