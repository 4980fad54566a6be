// Package models defines data structures and domain types.
package models

import "time"

// TimeRange represents the selected history time range.
type TimeRange int

const (
	// TimeRange24Hours shows data from the last 24 hours.
	TimeRange24Hours TimeRange = iota
	// TimeRange7Days shows data from the last 7 days.
	TimeRange7Days
	// TimeRange30Days shows data from the last 30 days.
	TimeRange30Days
	// TimeRangeAllTime shows all available historical data.
	TimeRangeAllTime
)

// String returns the display name for a time range.
func (t TimeRange) String() string {
	switch t {
	case TimeRange24Hours:
		return "24 Hours"
	case TimeRange7Days:
		return "7 Days"
	case TimeRange30Days:
		return "30 Days"
	case TimeRangeAllTime:
		return "All Time"
	default:
		return "Unknown"
	}
}

// Days returns the number of days for the time range (0 = unlimited).
func (t TimeRange) Days() int {
	switch t {
	case TimeRange24Hours:
		return 1
	case TimeRange7Days:
		return 7
	case TimeRange30Days:
		return 30
	case TimeRangeAllTime:
		return 0
	default:
		return 30
	}
}

// Next cycles to the next time range.
func (t TimeRange) Next() TimeRange {
	return (t + 1) % 4
}

// HistoryStats summarizes the cached reading history for one device.
type HistoryStats struct {
	FirstSample    time.Time
	LastSample     time.Time
	DeviceID       string
	ReadingCount   int
	MinPercent     float64
	MaxPercent     float64
	AvgDrainPerDay float64 // average drop in percent per day over the range, 0 if unknown
	TimeRange      TimeRange
}

// HasData returns true if the device has any cached readings.
func (h *HistoryStats) HasData() bool {
	return h != nil && h.ReadingCount > 0
}

// SpanDays returns the number of whole days between the first and last sample.
func (h *HistoryStats) SpanDays() int {
	if h == nil || h.FirstSample.IsZero() || h.LastSample.IsZero() {
		return 0
	}
	return int(h.LastSample.Sub(h.FirstSample).Hours() / 24)
}

// RetentionEvent records one history purge performed by the retention sweep.
type RetentionEvent struct {
	Timestamp   time.Time
	DeviceID    string
	Reason      string
	RowsDeleted int
}
