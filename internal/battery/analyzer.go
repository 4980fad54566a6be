package battery

import (
	"sort"
	"time"

	"github.com/roelvg/fleetpulse-tui/internal/models"
)

// ClearReason explains why a device's reading history should be cleared.
type ClearReason int

const (
	// ClearReasonNone means the history is healthy and should be kept.
	ClearReasonNone ClearReason = iota
	// ClearReasonCharging means a charging event invalidated the drainage history.
	ClearReasonCharging
	// ClearReasonStale means the oldest reading exceeds the retention horizon.
	ClearReasonStale
	// ClearReasonBoth means both conditions apply.
	ClearReasonBoth
)

// String returns the display name for a clear reason.
func (r ClearReason) String() string {
	switch r {
	case ClearReasonNone:
		return "none"
	case ClearReasonCharging:
		return "charging detected"
	case ClearReasonStale:
		return "stale data"
	case ClearReasonBoth:
		return "charging detected, stale data"
	default:
		return "unknown"
	}
}

// sortReadings returns a new slice ordered by ascending timestamp. The sort
// is stable, so readings with equal timestamps keep their relative input
// order. The input slice is never modified.
func sortReadings(readings []models.BatteryReading) []models.BatteryReading {
	sorted := make([]models.BatteryReading, len(readings))
	copy(sorted, readings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})
	return sorted
}

// HasChargingEvent reports whether any pair of chronologically consecutive
// readings shows a percentage jump strictly greater than the charge jump
// threshold. Input order does not matter; readings are sorted internally.
func (a *Analyzer) HasChargingEvent(readings []models.BatteryReading) bool {
	if len(readings) < 2 {
		return false
	}
	sorted := sortReadings(readings)
	for i := 0; i < len(sorted)-1; i++ {
		delta := sorted[i+1].PercentCharged - sorted[i].PercentCharged
		if delta > a.cfg.ChargeJumpThreshold {
			return true
		}
	}
	return false
}

// HasStaleData reports whether the oldest reading is strictly older than
// the retention horizon relative to now. An empty history is never stale.
func (a *Analyzer) HasStaleData(readings []models.BatteryReading, now time.Time) bool {
	if len(readings) == 0 {
		return false
	}
	oldest := readings[0].Timestamp
	for _, r := range readings[1:] {
		if r.Timestamp < oldest {
			oldest = r.Timestamp
		}
	}
	age := now.UnixMilli() - oldest
	return age > a.cfg.StaleAfter.Milliseconds()
}

// ShouldClearHistory reports whether the cached history for a device should
// be discarded, either because a charging event corrupted the drainage trend
// or because the data has aged out. The analyzer only signals; deletion is
// the caller's job.
func (a *Analyzer) ShouldClearHistory(readings []models.BatteryReading, now time.Time) bool {
	return a.HasChargingEvent(readings) || a.HasStaleData(readings, now)
}

// ClearHistoryReason combines the two detectors into a single reason code.
func (a *Analyzer) ClearHistoryReason(readings []models.BatteryReading, now time.Time) ClearReason {
	charging := a.HasChargingEvent(readings)
	stale := a.HasStaleData(readings, now)
	switch {
	case charging && stale:
		return ClearReasonBoth
	case charging:
		return ClearReasonCharging
	case stale:
		return ClearReasonStale
	default:
		return ClearReasonNone
	}
}
