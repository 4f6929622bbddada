package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Feed.UserID = "USR042"
	cfg.Tracking.RedisAddr = "localhost:6379"
	cfg.Banner.ReappearAfterDismiss = true

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "USR042", got.Feed.UserID)
	assert.Equal(t, cfg.Feed.Endpoint, got.Feed.Endpoint)
	assert.Equal(t, 5, got.Feed.TopK)
	assert.Equal(t, 15*time.Second, got.Feed.Timeout)
	assert.Equal(t, "localhost:6379", got.Tracking.RedisAddr)
	assert.Equal(t, 30*time.Second, got.Banner.AutoDismiss)
	assert.True(t, got.Banner.ReappearAfterDismiss)
	assert.InDelta(t, 50, got.Banner.SwipeThreshold, 0.001)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, "USR001", cfg.Feed.UserID)
	assert.Equal(t, 5, cfg.Feed.TopK)
	assert.Equal(t, 3*time.Second, cfg.Banner.InitialDelay)
	assert.Equal(t, 30*time.Second, cfg.Banner.AutoDismiss)
	assert.Equal(t, 60*time.Second, cfg.Banner.Reappear)
	assert.Equal(t, "flexible-savings", cfg.Banner.OfferID)
	assert.False(t, cfg.Banner.ReappearAfterDismiss)
	assert.Empty(t, cfg.Tracking.RedisAddr)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadOrDefault_Missing(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("feed:\n  top_k: 3\nbanner:\n  auto_dismiss: 5s\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Feed.TopK)
	assert.Equal(t, "USR001", cfg.Feed.UserID)
	assert.Equal(t, 5*time.Second, cfg.Banner.AutoDismiss)
	assert.Equal(t, 60*time.Second, cfg.Banner.Reappear)
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "user_id: USR001")
	assert.Contains(t, contents, "auto_dismiss: 30s")
	assert.Contains(t, contents, "reappear: 1m0s")
	assert.NotContains(t, contents, "redis_addr")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("OMNIS_FEED_ENDPOINT", "http://feed.test/recommend")
	t.Setenv("OMNIS_FEED_TOP_K", "8")
	t.Setenv("OMNIS_FEED_TIMEOUT", "2s")
	t.Setenv("OMNIS_REDIS_ADDR", "redis:6379")

	cfg := Default()
	require.NoError(t, ApplyEnv(cfg))

	assert.Equal(t, "http://feed.test/recommend", cfg.Feed.Endpoint)
	assert.Equal(t, 8, cfg.Feed.TopK)
	assert.Equal(t, 2*time.Second, cfg.Feed.Timeout)
	assert.Equal(t, "redis:6379", cfg.Tracking.RedisAddr)
}

func TestApplyEnv_BadNumber(t *testing.T) {
	t.Setenv("OMNIS_FEED_TOP_K", "many")

	err := ApplyEnv(Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OMNIS_FEED_TOP_K")
}
