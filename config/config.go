package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	DefaultThumbnailsSubDir = "thumbnails"
	DefaultPort             = "8080"
)

const (
	defaultThumbnailQueueSize  = 200
	defaultNumThumbnailWorkers = 4
	defaultThumbnailMaxSize    = 800
)

type Config struct {
	// folder opened on startup, empty means wait for an open command
	RootDirectory string

	// media storage configuration
	MediaStoragePath string // primary root for generated assets
	ThumbnailsPath   string // full-calculated path for thumbnails

	// thumbnail generation settings
	ThumbnailMaxSize int
	MagickBinary     string
	FFmpegBinary     string

	// worker settings
	ThumbnailQueueSize  int
	NumThumbnailWorkers int

	// http settings
	Port           string
	AllowedOrigins []string

	// gorm logger level: silent, error, warn or info
	DBLogLevel string
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvListOrDefault(envVar string, defaultVal []string) []string {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(valStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}

func LoadConfig() (Config, error) {
	var absRoot string
	if root := os.Getenv("ROOT_DIRECTORY"); root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return Config{}, fmt.Errorf("failed to get absolute path for root directory '%s': %w", root, err)
		}
		absRoot = abs
	}

	mediaStorage := getEnvOrDefault("MEDIA_STORAGE_PATH", filepath.Join(".", "media_storage"))
	absMediaStorage, err := filepath.Abs(mediaStorage)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for media storage '%s': %w", mediaStorage, err)
	}

	thumbSubDir := getEnvOrDefault("THUMBNAILS_SUBDIR", DefaultThumbnailsSubDir)
	absThumbnailsPath := filepath.Join(absMediaStorage, thumbSubDir)

	cfg := Config{
		RootDirectory:       absRoot,
		MediaStoragePath:    absMediaStorage,
		ThumbnailsPath:      absThumbnailsPath,
		ThumbnailMaxSize:    getEnvIntOrDefault("THUMBNAIL_MAX_SIZE", defaultThumbnailMaxSize),
		MagickBinary:        getEnvOrDefault("MAGICK_BINARY", "magick"),
		FFmpegBinary:        getEnvOrDefault("FFMPEG_BINARY", "ffmpeg"),
		ThumbnailQueueSize:  getEnvIntOrDefault("THUMBNAIL_QUEUE_SIZE", defaultThumbnailQueueSize),
		NumThumbnailWorkers: getEnvIntOrDefault("NUM_THUMBNAIL_WORKERS", defaultNumThumbnailWorkers),
		Port:                getEnvOrDefault("PORT", DefaultPort),
		AllowedOrigins:      getEnvListOrDefault("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173", "tauri://localhost"}),
		DBLogLevel:          strings.ToLower(getEnvOrDefault("DB_LOG_LEVEL", "warn")),
	}

	return cfg, nil
}
