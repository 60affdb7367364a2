// Package config loads CLI-boundary defaults and project definition files.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds engine defaults that a CLI invocation can override with flags.
type Config struct {
	DefaultSeed  int64
	DefaultBPM   int
	OutputDir    string
	SplitExports bool
}

// Load reads a .env file if present, then resolves defaults from the
// environment. A missing .env file is not an error: env vars or the
// hardcoded fallbacks below still apply.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "no .env file found, using environment variables")
	}

	return &Config{
		DefaultSeed:  getEnvInt64("TONECRAFT_SEED", 1),
		DefaultBPM:   getEnvInt("TONECRAFT_BPM", 120),
		OutputDir:    getEnvString("TONECRAFT_OUTPUT_DIR", "."),
		SplitExports: getEnvString("TONECRAFT_SPLIT_EXPORTS", "false") == "true",
	}
}

func getEnvString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
