// Package main is the entry point for the accountkit server.
//
// MAIN PACKAGE IN GO:
// The main package should be kept minimal. Its job is to:
// 1. Read configuration (dotenv file + env vars)
// 2. Create dependencies (logger, data directory)
// 3. Start the application
//
// All actual logic lives in imported packages (internal/server, internal/service, etc.).
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/sakif/accountkit/internal/config"
	"github.com/sakif/accountkit/internal/logger"
	"github.com/sakif/accountkit/internal/server"
)

func main() {
	envFile := flag.String("c", ".env", "path to a dotenv file (optional)")
	flag.Parse()

	if err := run(*envFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run returns instead of exiting so the deferred Sync flushes buffered
// log entries on every path.
func run(envFile string) error {
	// === 1. READ CONFIGURATION ===
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	// === 2. SET UP LOGGING ===
	// ReplaceGlobals lets the response helpers log through zap.L().
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	// === 3. DATABASE DIRECTORY ===
	// os.MkdirAll creates all parent directories if needed (like `mkdir -p`).
	if cfg.DBPath != ":memory:" {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			log.Error("failed to create database directory", zap.String("dir", dbDir), zap.Error(err))
			return fmt.Errorf("creating database directory: %w", err)
		}
	}

	// === 4. CREATE AND START THE SERVER ===
	srv, err := server.New(*cfg, log)
	if err != nil {
		log.Error("failed to create server", zap.Error(err))
		return err
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		log.Error("server error", zap.Error(err))
		return err
	}
	return nil
}
