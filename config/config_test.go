package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"ROOT_DIRECTORY", "MEDIA_STORAGE_PATH", "THUMBNAILS_SUBDIR", "THUMBNAIL_MAX_SIZE",
		"THUMBNAIL_QUEUE_SIZE", "NUM_THUMBNAIL_WORKERS", "MAGICK_BINARY", "FFMPEG_BINARY",
		"PORT", "ALLOWED_ORIGINS", "DB_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Empty(t, cfg.RootDirectory)
	assert.Equal(t, 800, cfg.ThumbnailMaxSize)
	assert.Equal(t, 4, cfg.NumThumbnailWorkers)
	assert.Equal(t, 200, cfg.ThumbnailQueueSize)
	assert.Equal(t, "magick", cfg.MagickBinary)
	assert.Equal(t, "ffmpeg", cfg.FFmpegBinary)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, "warn", cfg.DBLogLevel)
	assert.True(t, filepath.IsAbs(cfg.ThumbnailsPath))
	assert.Equal(t, DefaultThumbnailsSubDir, filepath.Base(cfg.ThumbnailsPath))
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ROOT_DIRECTORY", dir)
	t.Setenv("THUMBNAIL_MAX_SIZE", "400")
	t.Setenv("NUM_THUMBNAIL_WORKERS", "not-a-number")
	t.Setenv("ALLOWED_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("DB_LOG_LEVEL", "INFO")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.RootDirectory)
	assert.Equal(t, 400, cfg.ThumbnailMaxSize)
	assert.Equal(t, 4, cfg.NumThumbnailWorkers, "invalid values fall back to the default")
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, "info", cfg.DBLogLevel)
}
