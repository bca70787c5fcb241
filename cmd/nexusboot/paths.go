package main

import (
	"fmt"
	"os"
	"path/filepath"

	"nexusboot/pkg/config"
	"nexusboot/pkg/eventlog"
)

// Paths holds the resolved nexusboot state file paths.
type Paths struct {
	Home       string // ~/.nexusboot or NEXUSBOOT_HOME
	ConfigPath string // NEXUSBOOT_CONFIG or the first config.{toml,yaml,yml} in Home; may be empty
	DBPath     string // events.db or NEXUSBOOT_DB_PATH
}

// ResolvePaths returns all nexusboot paths, respecting env var overrides.
// Environment variables:
//   - NEXUSBOOT_HOME: base directory for all state (default: ~/.nexusboot)
//   - NEXUSBOOT_CONFIG: config file (default: discovered in $NEXUSBOOT_HOME)
//   - NEXUSBOOT_DB_PATH: run journal (default: $NEXUSBOOT_HOME/events.db)
func ResolvePaths() (*Paths, error) {
	home, err := resolveHome()
	if err != nil {
		return nil, err
	}

	cfgPath := os.Getenv("NEXUSBOOT_CONFIG")
	if cfgPath == "" {
		cfgPath = config.Discover(home)
	}

	return &Paths{
		Home:       home,
		ConfigPath: cfgPath,
		DBPath:     resolvePathWithEnv("NEXUSBOOT_DB_PATH", home, eventlog.DBFile),
	}, nil
}

func resolveHome() (string, error) {
	if v := os.Getenv("NEXUSBOOT_HOME"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, eventlog.HomeDir), nil
}

// resolvePathWithEnv returns the path from envKey if set, otherwise joins base + suffix.
func resolvePathWithEnv(envKey, base, suffix string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return filepath.Join(base, suffix)
}
