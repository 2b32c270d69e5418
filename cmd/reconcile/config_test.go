package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err, "explicit missing path is an error")
	assert.Nil(t, cfg)

	// The default path missing is fine.
	wd, _ := os.Getwd()
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })

	cfg, err = loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, ".reconcile/reconcile.db", cfg.Storage.Path)
	assert.Equal(t, "resumes", cfg.Bucket.Name)
	assert.Equal(t, 0.7, cfg.Match.Threshold)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  path: /tmp/custom.db
bucket:
  url: https://example.supabase.co
  name: docs
pipeline:
  poll_interval: 30s
  max_concurrent: 8
match:
  threshold: 0.8
`), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.db", cfg.Storage.Path)
	assert.Equal(t, "docs", cfg.Bucket.Name)
	assert.Equal(t, 0.8, cfg.Match.Threshold)

	pc, err := cfg.pipelineConfig()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, pc.PollInterval)
	assert.Equal(t, 8, pc.MaxConcurrent)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: [broken"), 0o644))

	_, err := loadConfig(path)
	assert.Error(t, err)
}
