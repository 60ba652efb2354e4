package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/artisans-asylum/artisans-scripts/internal/cli"
	"github.com/artisans-asylum/artisans-scripts/internal/config"
	"github.com/artisans-asylum/artisans-scripts/internal/logger"
)

// version is overridden at build time with -ldflags
var version = "dev"

func main() {
	// A local .env may carry NEXUDUS_EMAIL / NEXUDUS_PASSWORD and friends.
	// Missing file is fine.
	_ = godotenv.Load()

	cfg := config.Load()

	logCfg := logger.Config{
		Level:     cfg.LogLevel,
		Component: "artisans",
	}
	if cfg.Debug {
		logCfg.Level = "debug"
		if dir, err := config.Dir(); err == nil {
			logCfg.LogDir = filepath.Join(dir, "logs")
		}
	}
	if err := logger.Init(logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	rootCmd := cli.NewRootCmd(&cfg, version)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
