// Package db manages the local SQLite cache of device status and battery
// reading history.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Import modernc.org/sqlite as a blank import to register the driver
	_ "modernc.org/sqlite"
)

// DB wraps the SQL database connection with application-specific methods.
// All timestamps are stored as INTEGER epoch milliseconds, matching the
// fleet API wire format.
type DB struct {
	*sql.DB
	path string
}

// New creates a new database connection and initializes the schema.
func New(path string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.PingContext(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{
		DB:   sqlDB,
		path: path,
	}

	if err := db.configure(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	if err := db.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// configure sets up database pragmas for optimal performance.
func (db *DB) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-64000", // 64MB cache
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(context.Background(), pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	return nil
}

func (db *DB) createSchema() error {
	if err := db.createDeviceStatusTable(); err != nil {
		return err
	}
	if err := db.createBatteryReadingsTable(); err != nil {
		return err
	}
	return db.createRetentionEventsTable()
}

func (db *DB) createDeviceStatusTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS device_status (
		device_id TEXT PRIMARY KEY,
		percent_charged REAL NOT NULL DEFAULT 0,
		battery_voltage REAL,
		is_charging INTEGER NOT NULL DEFAULT 0,
		online INTEGER NOT NULL DEFAULT 0,
		firmware TEXT NOT NULL DEFAULT '',
		last_error TEXT NOT NULL DEFAULT '',
		last_seen INTEGER,
		last_updated INTEGER NOT NULL
	)`
	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create device_status table: %w", err)
	}
	return nil
}

func (db *DB) createBatteryReadingsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS battery_readings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		device_id TEXT NOT NULL,
		percent_charged REAL NOT NULL,
		battery_voltage REAL,
		timestamp INTEGER NOT NULL,
		UNIQUE(device_id, timestamp)
	)`
	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create battery_readings table: %w", err)
	}

	index := `
	CREATE INDEX IF NOT EXISTS idx_battery_readings_device_time
	ON battery_readings(device_id, timestamp)`
	if _, err := db.ExecContext(context.Background(), index); err != nil {
		return fmt.Errorf("failed to create battery_readings index: %w", err)
	}
	return nil
}

func (db *DB) createRetentionEventsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS retention_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		device_id TEXT NOT NULL,
		reason TEXT NOT NULL,
		rows_deleted INTEGER NOT NULL DEFAULT 0,
		timestamp INTEGER NOT NULL
	)`
	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create retention_events table: %w", err)
	}
	return nil
}
