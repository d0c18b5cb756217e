package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override persisted settings
const (
	EnvDownloadDir = "YTB_DIR"
	EnvCookie      = "YTB_COOKIE"
	EnvFFmpegPath  = "YTB_FFMPEG"
	EnvMaxRateKBps = "YTB_MAX_RATE"
)

// LoadEnv loads variables from the given dotenv files into the process
// environment. Missing files are skipped; existing variables are kept.
func LoadEnv(files ...string) error {
	for _, file := range files {
		if _, err := os.Stat(file); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", file, err)
		}
	}
	return nil
}

// ApplyEnv overrides opts with values present in the environment
func ApplyEnv(opts *Options) error {
	opts.DownloadPath = getEnv(EnvDownloadDir, opts.DownloadPath)
	opts.Cookie = getEnv(EnvCookie, opts.Cookie)
	opts.FFmpegPath = getEnv(EnvFFmpegPath, opts.FFmpegPath)

	if raw, ok := os.LookupEnv(EnvMaxRateKBps); ok && raw != "" {
		rate, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxRateKBps, err)
		}
		opts.MaxRateKBps = clampRate(rate)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
