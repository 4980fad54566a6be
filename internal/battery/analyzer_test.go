package battery

import (
	"testing"
	"time"

	"github.com/roelvg/fleetpulse-tui/internal/models"
)

func reading(ts time.Time, percent float64) models.BatteryReading {
	return models.BatteryReading{
		DeviceID:       "dev-1",
		PercentCharged: percent,
		Timestamp:      ts.UnixMilli(),
	}
}

func defaultAnalyzer() *Analyzer {
	return NewAnalyzer(DefaultConfig())
}

func TestNewAnalyzer_ZeroConfigFallsBack(t *testing.T) {
	a := NewAnalyzer(Config{})
	cfg := a.Config()
	if cfg.ChargeJumpThreshold != DefaultChargeJumpThreshold {
		t.Errorf("ChargeJumpThreshold = %v, want %v", cfg.ChargeJumpThreshold, DefaultChargeJumpThreshold)
	}
	if cfg.StaleAfter != DefaultStaleAfter {
		t.Errorf("StaleAfter = %v, want %v", cfg.StaleAfter, DefaultStaleAfter)
	}
	if cfg.MaxHorizon != DefaultMaxHorizon {
		t.Errorf("MaxHorizon = %v, want %v", cfg.MaxHorizon, DefaultMaxHorizon)
	}
}

func TestSortReadings_DoesNotMutateInput(t *testing.T) {
	now := time.Now()
	input := []models.BatteryReading{
		reading(now, 60),
		reading(now.Add(-2*time.Hour), 80),
		reading(now.Add(-time.Hour), 70),
	}
	first := input[0]

	sorted := sortReadings(input)

	if input[0] != first {
		t.Error("sortReadings mutated its input")
	}
	for i := 0; i < len(sorted)-1; i++ {
		if sorted[i].Timestamp > sorted[i+1].Timestamp {
			t.Errorf("sorted[%d].Timestamp > sorted[%d].Timestamp", i, i+1)
		}
	}
}

func TestSortReadings_StableOnEqualTimestamps(t *testing.T) {
	ts := time.Now()
	input := []models.BatteryReading{
		reading(ts, 10),
		reading(ts, 20),
		reading(ts, 30),
	}
	sorted := sortReadings(input)
	for i, want := range []float64{10, 20, 30} {
		if sorted[i].PercentCharged != want {
			t.Errorf("sorted[%d].PercentCharged = %v, want %v (tie order not preserved)",
				i, sorted[i].PercentCharged, want)
		}
	}
}

func TestHasChargingEvent(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name     string
		readings []models.BatteryReading
		want     bool
	}{
		{"empty", nil, false},
		{"single reading", []models.BatteryReading{reading(now, 80)}, false},
		{
			"steady drain",
			[]models.BatteryReading{
				reading(now.Add(-2*time.Hour), 80),
				reading(now.Add(-time.Hour), 70),
				reading(now, 60),
			},
			false,
		},
		{
			"jump of exactly threshold is not an event",
			[]models.BatteryReading{
				reading(now.Add(-time.Hour), 30),
				reading(now, 80),
			},
			false,
		},
		{
			"jump just above threshold is an event",
			[]models.BatteryReading{
				reading(now.Add(-time.Hour), 30),
				reading(now, 80.0001),
			},
			true,
		},
		{
			"large drop is never an event",
			[]models.BatteryReading{
				reading(now.Add(-time.Hour), 90),
				reading(now, 10),
			},
			false,
		},
		{
			"jump mid-history",
			[]models.BatteryReading{
				reading(now.Add(-3*time.Hour), 80),
				reading(now.Add(-2*time.Hour), 20),
				reading(now.Add(-time.Hour), 95),
				reading(now, 90),
			},
			true,
		},
	}
	a := defaultAnalyzer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.HasChargingEvent(tt.readings); got != tt.want {
				t.Errorf("HasChargingEvent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasChargingEvent_OrderIndependent(t *testing.T) {
	now := time.Now()
	// 20 -> 95 is only a jump when the readings are in chronological order.
	chronological := []models.BatteryReading{
		reading(now.Add(-2*time.Hour), 20),
		reading(now.Add(-time.Hour), 95),
		reading(now, 90),
	}
	scrambled := []models.BatteryReading{chronological[2], chronological[0], chronological[1]}
	reversed := []models.BatteryReading{chronological[2], chronological[1], chronological[0]}

	a := defaultAnalyzer()
	for _, perm := range [][]models.BatteryReading{chronological, scrambled, reversed} {
		if !a.HasChargingEvent(perm) {
			t.Errorf("HasChargingEvent() = false for permutation %v, want true", perm)
		}
	}
}

func TestHasStaleData(t *testing.T) {
	now := time.Now()
	retention := DefaultStaleAfter

	tests := []struct {
		name     string
		readings []models.BatteryReading
		want     bool
	}{
		{"empty", nil, false},
		{
			"fresh data",
			[]models.BatteryReading{reading(now.Add(-24*time.Hour), 80)},
			false,
		},
		{
			"exactly at retention horizon is not stale",
			[]models.BatteryReading{reading(now.Add(-retention), 80)},
			false,
		},
		{
			"one millisecond past the horizon is stale",
			[]models.BatteryReading{reading(now.Add(-retention-time.Millisecond), 80)},
			true,
		},
		{
			"oldest reading found regardless of order",
			[]models.BatteryReading{
				reading(now, 60),
				reading(now.Add(-retention-time.Hour), 95),
				reading(now.Add(-time.Hour), 70),
			},
			true,
		},
	}
	a := defaultAnalyzer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.HasStaleData(tt.readings, now); got != tt.want {
				t.Errorf("HasStaleData() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldClearHistory(t *testing.T) {
	now := time.Now()
	a := defaultAnalyzer()

	if a.ShouldClearHistory(nil, now) {
		t.Error("ShouldClearHistory(empty) = true, want false")
	}

	withJump := []models.BatteryReading{
		reading(now.Add(-time.Hour), 20),
		reading(now, 95),
	}
	if !a.ShouldClearHistory(withJump, now) {
		t.Error("ShouldClearHistory(charging event) = false, want true")
	}

	stale := []models.BatteryReading{reading(now.Add(-200*24*time.Hour), 80)}
	if !a.ShouldClearHistory(stale, now) {
		t.Error("ShouldClearHistory(stale) = false, want true")
	}
}

func TestClearHistoryReason_TruthTable(t *testing.T) {
	now := time.Now()
	old := now.Add(-200 * 24 * time.Hour)

	tests := []struct {
		name     string
		readings []models.BatteryReading
		want     ClearReason
	}{
		{
			"no charging, no staleness",
			[]models.BatteryReading{
				reading(now.Add(-2*time.Hour), 80),
				reading(now, 75),
			},
			ClearReasonNone,
		},
		{
			"charging only",
			[]models.BatteryReading{
				reading(now.Add(-2*time.Hour), 20),
				reading(now, 95),
			},
			ClearReasonCharging,
		},
		{
			"stale only",
			[]models.BatteryReading{
				reading(old, 90),
				reading(now, 60),
			},
			ClearReasonStale,
		},
		{
			"charging and stale",
			[]models.BatteryReading{
				reading(old, 20),
				reading(now, 95),
			},
			ClearReasonBoth,
		},
	}
	a := defaultAnalyzer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.ClearHistoryReason(tt.readings, now); got != tt.want {
				t.Errorf("ClearHistoryReason() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClearReason_String(t *testing.T) {
	tests := []struct {
		reason ClearReason
		want   string
	}{
		{ClearReasonNone, "none"},
		{ClearReasonCharging, "charging detected"},
		{ClearReasonStale, "stale data"},
		{ClearReasonBoth, "charging detected, stale data"},
		{ClearReason(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.reason.String(); got != tt.want {
			t.Errorf("ClearReason(%d).String() = %q, want %q", tt.reason, got, tt.want)
		}
	}
}

func TestClearHistoryReason_OrderIndependent(t *testing.T) {
	now := time.Now()
	chronological := []models.BatteryReading{
		reading(now.Add(-200*24*time.Hour), 20),
		reading(now.Add(-time.Hour), 95),
		reading(now, 90),
	}
	scrambled := []models.BatteryReading{chronological[1], chronological[2], chronological[0]}

	a := defaultAnalyzer()
	if got, want := a.ClearHistoryReason(scrambled, now), ClearReasonBoth; got != want {
		t.Errorf("ClearHistoryReason(scrambled) = %v, want %v", got, want)
	}
}
