package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roelvg/fleetpulse-tui/internal/models"
)

// UpsertDeviceStatus stores the latest remote status for a device,
// replacing any previous row.
func (db *DB) UpsertDeviceStatus(status *models.DeviceStatus) error {
	var lastSeen any
	if !status.LastSeen.IsZero() {
		lastSeen = status.LastSeen.UnixMilli()
	}

	_, err := db.ExecContext(context.Background(), `
		INSERT INTO device_status
		(device_id, percent_charged, battery_voltage, is_charging, online,
		 firmware, last_error, last_seen, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(device_id) DO UPDATE SET
			percent_charged = excluded.percent_charged,
			battery_voltage = excluded.battery_voltage,
			is_charging = excluded.is_charging,
			online = excluded.online,
			firmware = excluded.firmware,
			last_error = excluded.last_error,
			last_seen = excluded.last_seen,
			last_updated = excluded.last_updated`,
		status.DeviceID, status.PercentCharged, status.BatteryVoltage,
		status.IsCharging, status.Online, status.Firmware, status.Error,
		lastSeen, status.LastUpdated.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to upsert device status: %w", err)
	}
	return nil
}

// GetDeviceStatus returns the cached status for a device, or nil if the
// device has never been fetched.
func (db *DB) GetDeviceStatus(deviceID string) (*models.DeviceStatus, error) {
	row := db.QueryRowContext(context.Background(), `
		SELECT device_id, percent_charged, battery_voltage, is_charging,
		       online, firmware, last_error, last_seen, last_updated
		FROM device_status
		WHERE device_id = ?`, deviceID)

	status, err := scanDeviceStatus(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return status, err
}

// GetAllDeviceStatuses returns the cached status for every known device,
// keyed by device ID.
func (db *DB) GetAllDeviceStatuses() (map[string]*models.DeviceStatus, error) {
	rows, err := db.QueryContext(context.Background(), `
		SELECT device_id, percent_charged, battery_voltage, is_charging,
		       online, firmware, last_error, last_seen, last_updated
		FROM device_status`)
	if err != nil {
		return nil, fmt.Errorf("failed to query device statuses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	statuses := make(map[string]*models.DeviceStatus)
	for rows.Next() {
		status, err := scanDeviceStatus(rows)
		if err != nil {
			return nil, err
		}
		statuses[status.DeviceID] = status
	}
	return statuses, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeviceStatus(row rowScanner) (*models.DeviceStatus, error) {
	var status models.DeviceStatus
	var voltage sql.NullFloat64
	var lastSeen sql.NullInt64
	var lastUpdated int64

	err := row.Scan(&status.DeviceID, &status.PercentCharged, &voltage,
		&status.IsCharging, &status.Online, &status.Firmware, &status.Error,
		&lastSeen, &lastUpdated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan device status: %w", err)
	}

	if voltage.Valid {
		status.BatteryVoltage = voltage.Float64
	}
	if lastSeen.Valid {
		status.LastSeen = time.UnixMilli(lastSeen.Int64)
	}
	status.LastUpdated = time.UnixMilli(lastUpdated)
	return &status, nil
}
