package dashboard

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/roelvg/fleetpulse-tui/internal/app"
	"github.com/roelvg/fleetpulse-tui/internal/models"
	"github.com/roelvg/fleetpulse-tui/internal/battery"
	"github.com/roelvg/fleetpulse-tui/internal/services/trajectory"
)

func testDevices() []models.DeviceWithStatus {
	return []models.DeviceWithStatus{
		{
			Device: models.Device{ID: "dev-1", Name: "Front Gate Sensor", Kind: "sensor"},
			Status: &models.DeviceStatus{
				DeviceID:       "dev-1",
				PercentCharged: 72,
				BatteryVoltage: 3.9,
				Online:         true,
				LastSeen:       time.Now().Add(-5 * time.Minute),
			},
			IsSelected: true,
		},
	}
}

func TestNew(t *testing.T) {
	state := app.NewState()
	m := New(state)
	if m == nil {
		t.Fatal("New returned nil")
	}
}

func TestModel_Init(t *testing.T) {
	state := app.NewState()
	m := New(state)
	if m.Init() == nil {
		t.Error("Init returned nil")
	}
}

func TestModel_Update(t *testing.T) {
	state := app.NewState()
	m := New(state)

	// Test nil msg
	updated, cmd := m.Update(nil)
	if updated == nil {
		t.Error("Update returned nil model")
	}
	_ = cmd
}

func TestModel_View(t *testing.T) {
	state := app.NewState()
	state.SetLoading("initial", false)
	m := New(state)

	// View with no data
	view := m.View()
	if view == "" {
		t.Error("View returned empty string")
	}

	state.SetDevices(testDevices())

	// Need to set size to ensure rendering
	m.SetSize(80, 24)

	view = m.View()
	if !strings.Contains(view, "Front Gate Sensor") {
		t.Logf("View content: %q", view)
		t.Error("View should contain device name")
	}
	if !strings.Contains(strings.ToLower(view), "battery") {
		t.Logf("View content: %q", view)
		t.Error("View should contain battery label")
	}
}

func TestModel_View_Forecast(t *testing.T) {
	state := app.NewState()
	state.SetLoading("initial", false)
	state.SetDevices(testDevices())
	state.SetReport("dev-1", &trajectory.Report{
		DeviceID:      "dev-1",
		TimeRemaining: "2 months, 3 weeks, 4 days",
		Prediction: &battery.Prediction{
			DepletionTime:   time.Now().Add(87 * 24 * time.Hour),
			DrainRatePerDay: 1.2,
			DataPoints:      40,
		},
	})

	m := New(state)
	m.SetSize(100, 30)

	view := m.View()
	if !strings.Contains(view, "2 months, 3 weeks, 4 days") {
		t.Logf("View content: %q", view)
		t.Error("View should contain the forecast clause")
	}
	if !strings.Contains(view, "SAFE") {
		t.Error("View should contain the forecast badge")
	}
}

func TestModel_View_Offline(t *testing.T) {
	state := app.NewState()
	state.SetLoading("initial", false)
	state.SetDevices([]models.DeviceWithStatus{
		{
			Device: models.Device{ID: "dev-2", Name: "Shed Camera"},
			Status: &models.DeviceStatus{
				DeviceID: "dev-2",
				Online:   false,
				LastSeen: time.Now().Add(-3 * time.Hour),
			},
		},
	})

	m := New(state)
	m.SetSize(80, 24)

	view := m.View()
	if !strings.Contains(view, "OFFLINE") {
		t.Error("View should mark offline devices")
	}
}

func TestModel_View_Error(t *testing.T) {
	state := app.NewState()
	state.SetLoading("initial", false)
	state.SetDevices([]models.DeviceWithStatus{
		{
			Device: models.Device{ID: "dev-3", Name: "Pond Pump"},
			Status: &models.DeviceStatus{
				DeviceID: "dev-3",
				Error:    "device not found on remote API",
			},
		},
	})

	m := New(state)
	m.SetSize(80, 24)

	view := m.View()
	if !strings.Contains(view, "device not found") {
		t.Error("View should show the device error")
	}
}

func TestForecastBadge(t *testing.T) {
	tests := []struct {
		name      string
		remaining time.Duration
		want      string
	}{
		{"depleted", -time.Hour, "DEPLETED"},
		{"critical", 24 * time.Hour, "CRITICAL"},
		{"warning", 5 * 24 * time.Hour, "WARNING"},
		{"safe", 30 * 24 * time.Hour, "SAFE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := &trajectory.Report{
				Prediction: &battery.Prediction{DepletionTime: time.Now().Add(tt.remaining)},
			}
			got := forecastBadge(report)
			if !strings.Contains(got, tt.want) {
				t.Errorf("forecastBadge = %q, want substring %q", got, tt.want)
			}
		})
	}
}

func TestFormatLastSeen(t *testing.T) {
	if got := formatLastSeen(time.Time{}); got != "never" {
		t.Errorf("formatLastSeen(zero) = %q, want never", got)
	}
	if got := formatLastSeen(time.Now()); got != "just now" {
		t.Errorf("formatLastSeen(now) = %q, want just now", got)
	}
	if got := formatLastSeen(time.Now().Add(-30 * time.Minute)); got != "30m ago" {
		t.Errorf("formatLastSeen = %q, want 30m ago", got)
	}
	if got := formatLastSeen(time.Now().Add(-49 * time.Hour)); got != "2d ago" {
		t.Errorf("formatLastSeen = %q, want 2d ago", got)
	}
}

func TestModel_Animation(t *testing.T) {
	state := app.NewState()
	state.SetDevices(testDevices())
	m := New(state)

	animating, _ := m.syncAnimationTargets(time.Now())
	if !animating {
		t.Error("new target should start an animation")
	}

	// After the easing duration the bar settles on the target
	m.stepAnimations(time.Now().Add(2 * time.Second))
	anim := m.animations["dev-1"]
	if anim == nil {
		t.Fatal("animation state missing for dev-1")
	}
	if anim.CurrentPercent != 72 {
		t.Errorf("CurrentPercent = %f, want 72", anim.CurrentPercent)
	}
}

func TestModel_SetSize(t *testing.T) {
	state := app.NewState()
	m := New(state)
	m.SetSize(100, 50)
}

func TestModel_Help(t *testing.T) {
	state := app.NewState()
	m := New(state)
	if len(m.ShortHelp()) == 0 {
		t.Error("ShortHelp empty")
	}
	if len(m.FullHelp()) == 0 {
		t.Error("FullHelp empty")
	}
}

func TestModel_KeyBindings(t *testing.T) {
	state := app.NewState()
	state.SetDevices(append(testDevices(), models.DeviceWithStatus{
		Device: models.Device{ID: "dev-2", Name: "Shed Camera"},
	}))
	m := New(state)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.selectedIndex != 1 {
		t.Errorf("selectedIndex = %d, want 1 after down", m.selectedIndex)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.selectedIndex != 0 {
		t.Errorf("selectedIndex = %d, want 0 after up", m.selectedIndex)
	}
	m.Update(tea.KeyMsg{Runes: []rune{'G'}, Type: tea.KeyRunes})
	if m.selectedIndex != 1 {
		t.Errorf("selectedIndex = %d, want 1 after G", m.selectedIndex)
	}
	m.Update(tea.KeyMsg{Runes: []rune{'g'}, Type: tea.KeyRunes})
	if m.selectedIndex != 0 {
		t.Errorf("selectedIndex = %d, want 0 after g", m.selectedIndex)
	}
}
