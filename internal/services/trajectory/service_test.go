package trajectory

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roelvg/fleetpulse-tui/internal/battery"
	"github.com/roelvg/fleetpulse-tui/internal/db"
	"github.com/roelvg/fleetpulse-tui/internal/models"
)

type staticProvider struct {
	devices []models.Device
}

func (p *staticProvider) GetDevices() []models.Device {
	return p.devices
}

func newTestService(t *testing.T, devices ...models.Device) *Service {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("db.New() failed: %v", err)
	}
	t.Cleanup(func() {
		if err := database.Close(); err != nil {
			t.Logf("db close failed: %v", err)
		}
	})

	cfg := DefaultConfig()
	cfg.SweepInterval = time.Hour

	svc := New(database, battery.NewAnalyzer(battery.Config{}), &staticProvider{devices: devices}, cfg)
	t.Cleanup(func() {
		if err := svc.Close(); err != nil {
			t.Logf("Close() failed: %v", err)
		}
	})
	return svc
}

func reading(deviceID string, ts time.Time, percent float64) models.BatteryReading {
	return models.BatteryReading{
		DeviceID:       deviceID,
		Timestamp:      ts.UnixMilli(),
		PercentCharged: percent,
	}
}

func TestRecordReadings_ProducesForecast(t *testing.T) {
	svc := newTestService(t)
	now := time.Now()

	// Steady 1% per day drain from 60%.
	readings := []models.BatteryReading{
		reading("dev-1", now.Add(-48*time.Hour), 62),
		reading("dev-1", now.Add(-24*time.Hour), 61),
		reading("dev-1", now, 60),
	}

	report, err := svc.RecordReadings("dev-1", readings)
	if err != nil {
		t.Fatalf("RecordReadings() error = %v", err)
	}

	if !report.HasForecast() {
		t.Fatal("HasForecast() = false, want true")
	}
	if report.ReadingCount != 3 {
		t.Errorf("ReadingCount = %d, want 3", report.ReadingCount)
	}
	if report.TimeRemaining == "" {
		t.Error("TimeRemaining should be set when a forecast exists")
	}

	// About 60 days left at 1% per day.
	remaining := time.Until(report.Prediction.DepletionTime)
	if remaining < 58*24*time.Hour || remaining > 62*24*time.Hour {
		t.Errorf("depletion in %v, want about 60 days", remaining)
	}

	cached := svc.GetReport("dev-1")
	if cached == nil {
		t.Fatal("GetReport() returned nil after RecordReadings")
	}
}

func TestRecordReadings_NoForecastForSparseHistory(t *testing.T) {
	svc := newTestService(t)
	now := time.Now()

	report, err := svc.RecordReadings("dev-1", []models.BatteryReading{
		reading("dev-1", now, 50),
	})
	if err != nil {
		t.Fatalf("RecordReadings() error = %v", err)
	}

	if report.HasForecast() {
		t.Error("HasForecast() = true for a single reading, want false")
	}
	if report.TimeRemaining != "" {
		t.Errorf("TimeRemaining = %q, want empty", report.TimeRemaining)
	}
}

func TestRecordReadings_EmitsForecastEvent(t *testing.T) {
	svc := newTestService(t)
	now := time.Now()

	if _, err := svc.RecordReadings("dev-1", []models.BatteryReading{
		reading("dev-1", now, 50),
	}); err != nil {
		t.Fatalf("RecordReadings() error = %v", err)
	}

	select {
	case event := <-svc.Events():
		if event.Type != EventForecastUpdated {
			t.Errorf("event type = %v, want EventForecastUpdated", event.Type)
		}
		if event.Report == nil {
			t.Error("event.Report should not be nil")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for EventForecastUpdated")
	}
}

func TestSweepDevice_KeepsHealthyHistory(t *testing.T) {
	svc := newTestService(t)
	now := time.Now()

	if _, err := svc.RecordReadings("dev-1", []models.BatteryReading{
		reading("dev-1", now.Add(-24*time.Hour), 80),
		reading("dev-1", now, 79),
	}); err != nil {
		t.Fatalf("RecordReadings() error = %v", err)
	}

	retention, err := svc.SweepDevice("dev-1")
	if err != nil {
		t.Fatalf("SweepDevice() error = %v", err)
	}
	if retention != nil {
		t.Errorf("SweepDevice() cleared healthy history: %+v", retention)
	}
}

func TestSweepDevice_ClearsOnChargingEvent(t *testing.T) {
	svc := newTestService(t)
	now := time.Now()

	// 20 -> 90 jump exceeds the charge threshold.
	if _, err := svc.RecordReadings("dev-1", []models.BatteryReading{
		reading("dev-1", now.Add(-48*time.Hour), 20),
		reading("dev-1", now.Add(-24*time.Hour), 90),
		reading("dev-1", now, 88),
	}); err != nil {
		t.Fatalf("RecordReadings() error = %v", err)
	}

	retention, err := svc.SweepDevice("dev-1")
	if err != nil {
		t.Fatalf("SweepDevice() error = %v", err)
	}
	if retention == nil {
		t.Fatal("SweepDevice() should clear history after a charging event")
	}
	if retention.Reason != "charging detected" {
		t.Errorf("Reason = %q, want %q", retention.Reason, "charging detected")
	}
	if retention.RowsDeleted != 3 {
		t.Errorf("RowsDeleted = %d, want 3", retention.RowsDeleted)
	}

	// Cached report is invalidated.
	if svc.GetReport("dev-1") != nil {
		t.Error("GetReport() should return nil after history clear")
	}
}

func TestSweepDevice_ClearsStaleHistory(t *testing.T) {
	svc := newTestService(t)
	now := time.Now()

	if _, err := svc.RecordReadings("dev-1", []models.BatteryReading{
		reading("dev-1", now.Add(-200*24*time.Hour), 90),
		reading("dev-1", now.Add(-199*24*time.Hour), 89),
	}); err != nil {
		t.Fatalf("RecordReadings() error = %v", err)
	}

	retention, err := svc.SweepDevice("dev-1")
	if err != nil {
		t.Fatalf("SweepDevice() error = %v", err)
	}
	if retention == nil {
		t.Fatal("SweepDevice() should clear stale history")
	}
	if retention.Reason != "stale data" {
		t.Errorf("Reason = %q, want %q", retention.Reason, "stale data")
	}
}

func TestSweepDevice_EmitsHistoryClearedEvent(t *testing.T) {
	svc := newTestService(t)
	now := time.Now()

	if _, err := svc.RecordReadings("dev-1", []models.BatteryReading{
		reading("dev-1", now.Add(-48*time.Hour), 20),
		reading("dev-1", now, 90),
	}); err != nil {
		t.Fatalf("RecordReadings() error = %v", err)
	}

	if _, err := svc.SweepDevice("dev-1"); err != nil {
		t.Fatalf("SweepDevice() error = %v", err)
	}

	deadline := time.After(time.Second)
	for {
		select {
		case event := <-svc.Events():
			if event.Type != EventHistoryCleared {
				continue
			}
			if event.Retention == nil {
				t.Fatal("event.Retention should not be nil")
			}
			if event.Retention.DeviceID != "dev-1" {
				t.Errorf("retention device = %q, want %q", event.Retention.DeviceID, "dev-1")
			}
			return
		case <-deadline:
			t.Fatal("timeout waiting for EventHistoryCleared")
		}
	}
}

func TestRunSweep_CoversAllDevices(t *testing.T) {
	svc := newTestService(t,
		models.Device{ID: "dev-1"},
		models.Device{ID: "dev-2"},
	)
	now := time.Now()

	// dev-1 has a charging event, dev-2 is healthy.
	if _, err := svc.RecordReadings("dev-1", []models.BatteryReading{
		reading("dev-1", now.Add(-48*time.Hour), 10),
		reading("dev-1", now, 95),
	}); err != nil {
		t.Fatalf("RecordReadings(dev-1) error = %v", err)
	}
	if _, err := svc.RecordReadings("dev-2", []models.BatteryReading{
		reading("dev-2", now.Add(-24*time.Hour), 70),
		reading("dev-2", now, 69),
	}); err != nil {
		t.Fatalf("RecordReadings(dev-2) error = %v", err)
	}

	svc.RunSweep()

	if got := svc.GetReport("dev-1"); got != nil {
		t.Error("dev-1 report should be invalidated by the sweep")
	}
	if got := svc.GetReport("dev-2"); got == nil {
		t.Error("dev-2 report should survive the sweep")
	}
}

func TestGetAllReports(t *testing.T) {
	svc := newTestService(t)
	now := time.Now()

	if _, err := svc.RecordReadings("dev-1", []models.BatteryReading{reading("dev-1", now, 50)}); err != nil {
		t.Fatalf("RecordReadings() error = %v", err)
	}
	if _, err := svc.RecordReadings("dev-2", []models.BatteryReading{reading("dev-2", now, 40)}); err != nil {
		t.Fatalf("RecordReadings() error = %v", err)
	}

	all := svc.GetAllReports()
	if len(all) != 2 {
		t.Errorf("GetAllReports() len = %d, want 2", len(all))
	}
}
