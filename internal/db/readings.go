package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roelvg/fleetpulse-tui/internal/models"
)

// InsertBatteryReadings stores a batch of readings for a device. Readings
// that duplicate an already-cached (device, timestamp) pair are ignored, so
// re-fetching an overlapping history window is safe. Returns the number of
// rows actually inserted.
func (db *DB) InsertBatteryReadings(readings []models.BatteryReading) (int, error) {
	if len(readings) == 0 {
		return 0, nil
	}

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(context.Background(), `
		INSERT OR IGNORE INTO battery_readings
		(device_id, percent_charged, battery_voltage, timestamp)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	inserted := 0
	for _, r := range readings {
		var voltage any
		if r.BatteryVoltage != nil {
			voltage = *r.BatteryVoltage
		}
		res, err := stmt.ExecContext(context.Background(),
			r.DeviceID, r.PercentCharged, voltage, r.Timestamp)
		if err != nil {
			return 0, fmt.Errorf("failed to insert reading: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit readings: %w", err)
	}
	return inserted, nil
}

// GetBatteryReadings returns all cached readings for a device ordered by
// ascending timestamp.
func (db *DB) GetBatteryReadings(deviceID string) ([]models.BatteryReading, error) {
	return db.queryReadings(`
		SELECT device_id, percent_charged, battery_voltage, timestamp
		FROM battery_readings
		WHERE device_id = ?
		ORDER BY timestamp ASC`, deviceID)
}

// GetBatteryReadingsSince returns readings at or after the given instant,
// ordered by ascending timestamp.
func (db *DB) GetBatteryReadingsSince(deviceID string, since time.Time) ([]models.BatteryReading, error) {
	return db.queryReadings(`
		SELECT device_id, percent_charged, battery_voltage, timestamp
		FROM battery_readings
		WHERE device_id = ? AND timestamp >= ?
		ORDER BY timestamp ASC`, deviceID, since.UnixMilli())
}

func (db *DB) queryReadings(query string, args ...any) ([]models.BatteryReading, error) {
	rows, err := db.QueryContext(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var readings []models.BatteryReading
	for rows.Next() {
		var r models.BatteryReading
		var voltage sql.NullFloat64
		if err := rows.Scan(&r.DeviceID, &r.PercentCharged, &voltage, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		if voltage.Valid {
			v := voltage.Float64
			r.BatteryVoltage = &v
		}
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

// CountBatteryReadings returns the number of cached readings for a device.
func (db *DB) CountBatteryReadings(deviceID string) (int, error) {
	var count int
	err := db.QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM battery_readings WHERE device_id = ?`,
		deviceID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count readings: %w", err)
	}
	return count, nil
}

// DeleteBatteryHistory removes all cached readings for a device and returns
// the number of rows deleted. This is the deletion side of the analyzer's
// "should clear history" verdict.
func (db *DB) DeleteBatteryHistory(deviceID string) (int, error) {
	res, err := db.ExecContext(context.Background(),
		`DELETE FROM battery_readings WHERE device_id = ?`, deviceID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete battery history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return int(n), nil
}
