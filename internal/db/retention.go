package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roelvg/fleetpulse-tui/internal/models"
)

// InsertRetentionEvent records one history purge for the audit view.
func (db *DB) InsertRetentionEvent(event models.RetentionEvent) error {
	_, err := db.ExecContext(context.Background(), `
		INSERT INTO retention_events (device_id, reason, rows_deleted, timestamp)
		VALUES (?, ?, ?, ?)`,
		event.DeviceID, event.Reason, event.RowsDeleted, event.Timestamp.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert retention event: %w", err)
	}
	return nil
}

// GetRetentionEvents returns the most recent retention events for a device,
// newest first. A limit of 0 means no limit.
func (db *DB) GetRetentionEvents(deviceID string, limit int) ([]models.RetentionEvent, error) {
	query := `
		SELECT device_id, reason, rows_deleted, timestamp
		FROM retention_events
		WHERE device_id = ?
		ORDER BY timestamp DESC`
	args := []any{deviceID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.QueryContext(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query retention events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []models.RetentionEvent
	for rows.Next() {
		var e models.RetentionEvent
		var ts int64
		if err := rows.Scan(&e.DeviceID, &e.Reason, &e.RowsDeleted, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan retention event: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts)
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetHistoryStats summarizes the cached reading history for a device within
// the given time range. Returns stats with a zero ReadingCount when the
// cache holds nothing for the range.
func (db *DB) GetHistoryStats(deviceID string, timeRange models.TimeRange) (*models.HistoryStats, error) {
	stats := &models.HistoryStats{
		DeviceID:  deviceID,
		TimeRange: timeRange,
	}

	query := `
		SELECT COUNT(*), MIN(timestamp), MAX(timestamp),
		       MIN(percent_charged), MAX(percent_charged)
		FROM battery_readings
		WHERE device_id = ?`
	args := []any{deviceID}
	if days := timeRange.Days(); days > 0 {
		query += " AND timestamp >= ?"
		cutoff := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
		args = append(args, cutoff.UnixMilli())
	}

	var firstTs, lastTs sql.NullInt64
	var minPct, maxPct sql.NullFloat64
	err := db.QueryRowContext(context.Background(), query, args...).
		Scan(&stats.ReadingCount, &firstTs, &lastTs, &minPct, &maxPct)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query history stats: %w", err)
	}

	if stats.ReadingCount == 0 {
		return stats, nil
	}

	stats.FirstSample = time.UnixMilli(firstTs.Int64)
	stats.LastSample = time.UnixMilli(lastTs.Int64)
	stats.MinPercent = minPct.Float64
	stats.MaxPercent = maxPct.Float64
	stats.AvgDrainPerDay = db.avgDrainPerDay(deviceID, firstTs.Int64, lastTs.Int64)

	return stats, nil
}

// avgDrainPerDay computes the net percentage drop per day between the first
// and last reading of the range. Charging within the range can make the net
// change non-positive; that reports as 0 (unknown).
func (db *DB) avgDrainPerDay(deviceID string, firstTs, lastTs int64) float64 {
	spanMs := lastTs - firstTs
	if spanMs <= 0 {
		return 0
	}

	var firstPct, lastPct float64
	err := db.QueryRowContext(context.Background(), `
		SELECT percent_charged FROM battery_readings
		WHERE device_id = ? AND timestamp = ?`, deviceID, firstTs).Scan(&firstPct)
	if err != nil {
		return 0
	}
	err = db.QueryRowContext(context.Background(), `
		SELECT percent_charged FROM battery_readings
		WHERE device_id = ? AND timestamp = ?`, deviceID, lastTs).Scan(&lastPct)
	if err != nil {
		return 0
	}

	drop := firstPct - lastPct
	if drop <= 0 {
		return 0
	}
	days := float64(spanMs) / float64(24*time.Hour/time.Millisecond)
	return drop / days
}
