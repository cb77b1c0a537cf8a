package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hsaccess/hsapatcher/patcher"
	"github.com/joho/godotenv"
)

func init() {
	// A missing .env is the normal case; the process environment is used as is.
	_ = godotenv.Load()
}

type Config struct {
	Channel       string
	LogLevel      slog.Level
	HeaderTimeout time.Duration
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
	S3Region      string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Channel:     getEnv("HSAPATCHER_CHANNEL", patcher.DefaultChannel),
		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
	}

	timeout := getEnv("HSAPATCHER_HEADER_TIMEOUT", patcher.DefaultHeaderTimeout.String())
	d, err := time.ParseDuration(timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid HSAPATCHER_HEADER_TIMEOUT %q: %w", timeout, err)
	}
	if d <= 0 {
		return nil, fmt.Errorf("HSAPATCHER_HEADER_TIMEOUT must be positive, got %q", timeout)
	}
	cfg.HeaderTimeout = d

	level := getEnv("HSAPATCHER_LOG_LEVEL", "info")
	if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid HSAPATCHER_LOG_LEVEL %q: %w", level, err)
	}

	return cfg, nil
}

// Fetcher builds the download client for this configuration.
func (c *Config) Fetcher() *patcher.Fetcher {
	return &patcher.Fetcher{
		Client: patcher.NewHTTPClient(c.HeaderTimeout),
		S3: patcher.NewS3Client(patcher.S3Config{
			Endpoint:  c.S3Endpoint,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Region:    c.S3Region,
		}),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
