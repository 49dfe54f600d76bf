package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Partitioning defaults
	DefaultMinPartition int
	DefaultMaxPartition int

	// URL sources
	FetchTimeout time.Duration

	// Job state
	JobTTL time.Duration

	// Latency stats window
	StatsWindow time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("DOCPART_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		DefaultMinPartition: envInt("DEFAULT_MIN_PARTITION", 0),
		DefaultMaxPartition: envInt("DEFAULT_MAX_PARTITION", 1500),

		FetchTimeout: envDuration("FETCH_TIMEOUT", 30*time.Second),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.DefaultMinPartition < 0 {
		cfg.DefaultMinPartition = 0
	}
	if cfg.DefaultMaxPartition < 0 {
		cfg.DefaultMaxPartition = 0
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("DOCPART_API_KEY is required")
	}
	if c.DefaultMinPartition > 0 && c.DefaultMaxPartition > 0 && c.DefaultMinPartition > c.DefaultMaxPartition {
		return fmt.Errorf("DEFAULT_MIN_PARTITION %d exceeds DEFAULT_MAX_PARTITION %d", c.DefaultMinPartition, c.DefaultMaxPartition)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
