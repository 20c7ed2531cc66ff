// Package config loads runtime settings from an optional dotenv file and
// the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/accountkit/internal/auth"
)

// Config holds all configuration for the server.
type Config struct {
	Port       int    // PORT
	DBPath     string // DB_PATH, a file path or ":memory:"
	LogLevel   string // LOG_LEVEL
	BcryptCost int    // BCRYPT_COST

	// AllowedOrigins is CORS_ALLOWED_ORIGINS split on commas.
	AllowedOrigins []string
}

// Load reads the dotenv file at path (if any) into the environment and
// builds a Config from it. Variables already set in the environment win
// over the file. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: loading %s: %w", path, err)
		}
	}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("config: invalid PORT: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("config: PORT %d out of range", port)
	}

	cost, err := strconv.Atoi(getEnv("BCRYPT_COST", strconv.Itoa(auth.DefaultCost)))
	if err != nil {
		return nil, fmt.Errorf("config: invalid BCRYPT_COST: %w", err)
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("config: BCRYPT_COST %d outside [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	return &Config{
		Port:       port,
		DBPath:     getEnv("DB_PATH", "data/accountkit.db"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		BcryptCost: cost,

		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}, nil
}

// getEnv returns the value of key, or fallback when it is unset or empty.
func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
