package app

import (
	"testing"
	"time"

	"github.com/roelvg/fleetpulse-tui/internal/models"
	"github.com/roelvg/fleetpulse-tui/internal/services"
	"github.com/roelvg/fleetpulse-tui/internal/services/trajectory"
)

func TestNewState(t *testing.T) {
	s := NewState()
	if s == nil {
		t.Fatal("NewState returned nil")
	}
	if len(s.Devices) != 0 {
		t.Error("Devices should be empty")
	}
	if s.Loading.Initial != true {
		t.Error("Initial loading should be true")
	}
}

func TestState_SetLoading(t *testing.T) {
	s := NewState()

	s.SetLoading("devices", true)
	if !s.Loading.Devices {
		t.Error("Devices loading should be true")
	}
	if !s.AnyLoading() {
		t.Error("AnyLoading should be true")
	}

	s.SetLoading("devices", false)
	// Initial is still true
	if !s.AnyLoading() {
		t.Error("AnyLoading should be true (Initial is true)")
	}

	s.SetLoading("initial", false)
	if s.AnyLoading() {
		t.Error("AnyLoading should be false")
	}

	resources := s.GetLoadingResources()
	if len(resources) != 0 {
		t.Errorf("GetLoadingResources should be empty, got %v", resources)
	}

	s.SetLoading("status", true)
	resources = s.GetLoadingResources()
	if len(resources) != 1 || resources[0] != "status" {
		t.Errorf("GetLoadingResources should contain status, got %v", resources)
	}
}

func TestState_Devices(t *testing.T) {
	s := NewState()

	devices := []models.DeviceWithStatus{
		{Device: models.Device{ID: "dev-1", Name: "Gateway"}},
		{Device: models.Device{ID: "dev-2", Name: "Sensor"}, IsSelected: true},
	}

	s.SetDevices(devices)

	if s.GetDeviceCount() != 2 {
		t.Errorf("GetDeviceCount = %d, want 2", s.GetDeviceCount())
	}

	selected := s.GetSelectedDevice()
	if selected == nil {
		t.Fatal("GetSelectedDevice returned nil")
	}
	if selected.Device.ID != "dev-2" {
		t.Errorf("selected device = %s, want dev-2", selected.Device.ID)
	}

	gotDevices := s.GetDevices()
	if len(gotDevices) != 2 {
		t.Errorf("GetDevices returned %d items", len(gotDevices))
	}
}

func TestState_SetDevices_ClampsIndex(t *testing.T) {
	s := NewState()
	s.SetSelectedDeviceIndex(4)

	s.SetDevices([]models.DeviceWithStatus{
		{Device: models.Device{ID: "dev-1"}},
	})

	if s.GetSelectedDeviceIndex() != 0 {
		t.Errorf("index = %d, want 0 after shrink", s.GetSelectedDeviceIndex())
	}
}

func TestState_Notifications(t *testing.T) {
	s := NewState()

	id := s.AddNotification(NotificationInfo, "test", time.Minute)
	if id == "" {
		t.Error("AddNotification returned empty ID")
	}

	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Errorf("GetNotifications len = %d, want 1", len(notifs))
	}
	if notifs[0].Message != "test" {
		t.Errorf("Notification message = %s, want test", notifs[0].Message)
	}

	s.RemoveNotification(id)
	if len(s.GetNotifications()) != 0 {
		t.Error("Notification should be removed")
	}
}

func TestState_ClearExpiredNotifications(t *testing.T) {
	s := NewState()

	// Expired
	s.notifications = append(s.notifications, Notification{
		ID:        "expired",
		CreatedAt: time.Now().Add(-2 * time.Minute),
		Duration:  time.Minute,
	})

	// Active
	s.notifications = append(s.notifications, Notification{
		ID:        "active",
		CreatedAt: time.Now(),
		Duration:  time.Minute,
	})

	s.ClearExpiredNotifications()

	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(notifs))
	}
	if notifs[0].ID != "active" {
		t.Errorf("Expected active notification, got %s", notifs[0].ID)
	}
}

func TestState_LoadingNotification(t *testing.T) {
	s := NewState()

	s.SetLoadingNotification("loading...")
	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Errorf("Expected 1 notification, got %d", len(notifs))
	}
	if notifs[0].ID != LoadingNotificationID {
		t.Errorf("Expected ID %s, got %s", LoadingNotificationID, notifs[0].ID)
	}
	if notifs[0].Message != "loading..." {
		t.Errorf("Expected message loading..., got %s", notifs[0].Message)
	}

	// Update message
	s.SetLoadingNotification("still loading...")
	notifs = s.GetNotifications()
	if len(notifs) != 1 {
		t.Errorf("Expected 1 notification after update")
	}
	if notifs[0].Message != "still loading..." {
		t.Errorf("Expected message still loading..., got %s", notifs[0].Message)
	}

	s.ClearLoadingNotification()
	if len(s.GetNotifications()) != 0 {
		t.Error("Loading notification should be cleared")
	}
}

func TestState_Stats(t *testing.T) {
	s := NewState()
	stats := services.StatsEvent{DeviceCount: 10}

	s.SetStats(stats)
	got := s.GetStats()
	if got == nil {
		t.Fatal("GetStats returned nil")
	}
	if got.DeviceCount != 10 {
		t.Errorf("DeviceCount = %d, want 10", got.DeviceCount)
	}
}

func TestState_Reports(t *testing.T) {
	s := NewState()
	report := &trajectory.Report{DeviceID: "dev-1", TimeRemaining: "3 days"}

	s.SetReport("dev-1", report)

	got := s.GetReport("dev-1")
	if got != report {
		t.Errorf("GetReport = %v, want %v", got, report)
	}

	all := s.GetReports()
	if len(all) != 1 {
		t.Errorf("GetReports len = %d, want 1", len(all))
	}

	s.SetReport("dev-1", nil)
	if s.GetReport("dev-1") != nil {
		t.Error("nil report should clear the entry")
	}
}

func TestState_SelectedDeviceIndex(t *testing.T) {
	s := NewState()

	s.SetSelectedDeviceIndex(5)
	if s.GetSelectedDeviceIndex() != 5 {
		t.Errorf("GetSelectedDeviceIndex = %d, want 5", s.GetSelectedDeviceIndex())
	}
}

func TestState_LastUpdated(t *testing.T) {
	s := NewState()

	if s.TimeSinceUpdate() != 0 {
		t.Error("TimeSinceUpdate should be 0 before first update")
	}

	before := s.LastUpdated
	time.Sleep(time.Millisecond)
	s.SetDevices(nil)

	if !s.GetLastUpdated().After(before) {
		t.Error("LastUpdated should be updated")
	}
	if s.TimeSinceUpdate() == 0 {
		t.Error("TimeSinceUpdate should be > 0")
	}
}

func TestNotificationType_String(t *testing.T) {
	tests := []struct {
		t    NotificationType
		want string
	}{
		{NotificationSuccess, "success"},
		{NotificationError, "error"},
		{NotificationWarning, "warning"},
		{NotificationInfo, "info"},
		{NotificationType(999), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
