package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "./data", cfg.StoragePath)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.Debug)
	assert.Equal(t, 3, cfg.JobMaxRetries)
	assert.Equal(t, 4, cfg.WorkerConcurrency)
	assert.Equal(t, 60*time.Second, cfg.ScheduleTickInterval)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_PATH", "/mnt/goes")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DEBUG", "true")
	t.Setenv("WORKER_CONCURRENCY", "8")

	cfg := Load()
	assert.Equal(t, "/mnt/goes", cfg.StoragePath)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 8, cfg.WorkerConcurrency)
}
