// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/roelvg/fleetpulse-tui/internal/battery"
)

// Config holds the application configuration.
type Config struct {
	DatabasePath           string
	DevicesPath            string
	APIBaseURL             string
	APIToken               string
	StatusRefreshInterval  time.Duration
	RetentionSweepInterval time.Duration
	Battery                battery.Config
}

// Default values
const (
	defaultStatusRefreshInterval  = 60 * time.Second
	defaultRetentionSweepInterval = 6 * time.Hour
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		DatabasePath:           getEnvString("DATABASE_PATH", getDefaultDatabasePath()),
		DevicesPath:            getEnvString("DEVICES_PATH", getDefaultDevicesPath()),
		APIBaseURL:             getEnvString("FLEET_API_URL", ""),
		APIToken:               getEnvString("FLEET_API_TOKEN", ""),
		StatusRefreshInterval:  getEnvDuration("STATUS_REFRESH_INTERVAL", defaultStatusRefreshInterval),
		RetentionSweepInterval: getEnvDuration("RETENTION_SWEEP_INTERVAL", defaultRetentionSweepInterval),
		Battery:                loadBatteryConfig(),
	}

	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("FLEET_API_URL is required (set via env or .env file)")
	}

	// Ensure database directory exists
	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}

	// Ensure devices registry directory exists
	if err := ensureDir(filepath.Dir(cfg.DevicesPath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadBatteryConfig reads the analyzer tunables from the environment,
// falling back to the package defaults.
func loadBatteryConfig() battery.Config {
	def := battery.DefaultConfig()
	return battery.Config{
		ChargeJumpThreshold: getEnvFloat("CHARGE_JUMP_THRESHOLD", def.ChargeJumpThreshold),
		StaleAfter:          getEnvDays("STALE_AFTER_DAYS", def.StaleAfter),
		MaxHorizon:          getEnvDays("FORECAST_HORIZON_DAYS", def.MaxHorizon),
	}
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "fleetpulse", ".env"),
			filepath.Join(home, ".fleetpulse", ".env"),
		)
	}

	// Parent directory (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(cwd), ".env"))
	}

	return paths
}

// getDefaultDatabasePath returns the default path for the SQLite cache.
func getDefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "fleetpulse.db"
	}
	return filepath.Join(home, ".config", "fleetpulse", "fleetpulse.db")
}

// getDefaultDevicesPath returns the default path for the devices registry file.
func getDefaultDevicesPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "devices.json"
	}
	return filepath.Join(home, ".config", "fleetpulse", "devices.json")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// getEnvDays retrieves a whole-day count environment variable as a duration.
func getEnvDays(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if days, err := strconv.Atoi(value); err == nil && days > 0 {
			return time.Duration(days) * 24 * time.Hour
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns the default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
