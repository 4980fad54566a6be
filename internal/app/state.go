// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"sync"
	"time"

	"github.com/roelvg/fleetpulse-tui/internal/models"
	"github.com/roelvg/fleetpulse-tui/internal/services"
	"github.com/roelvg/fleetpulse-tui/internal/services/trajectory"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Initial bool
	Devices bool
	Status  bool
	Stats   bool
}

// State holds the shared application state consumed by all tabs.
type State struct {
	mu sync.RWMutex

	Devices             []models.DeviceWithStatus
	SelectedDevice      *models.DeviceWithStatus
	Stats               *services.StatsEvent
	Reports             map[string]*trajectory.Report
	SelectedDeviceIndex int

	Loading LoadingState

	LastUpdated time.Time

	notifications   []Notification
	notificationSeq int
}

func NewState() *State {
	return &State{
		Devices:             make([]models.DeviceWithStatus, 0),
		Reports:             make(map[string]*trajectory.Report),
		SelectedDeviceIndex: 0,
		notifications:       make([]Notification, 0),
		Loading: LoadingState{
			Initial: true,
		},
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case "initial":
		s.Loading.Initial = loading
	case "devices":
		s.Loading.Devices = loading
	case "status":
		s.Loading.Status = loading
	case "stats":
		s.Loading.Stats = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Loading.Initial ||
		s.Loading.Devices ||
		s.Loading.Status ||
		s.Loading.Stats
}

// IsInitialLoading returns true if initial data is still loading.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial
}

// GetLoadingResources returns a list of currently loading resources.
func (s *State) GetLoadingResources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var resources []string
	if s.Loading.Initial {
		resources = append(resources, "initial")
	}
	if s.Loading.Devices {
		resources = append(resources, "devices")
	}
	if s.Loading.Status {
		resources = append(resources, "status")
	}
	if s.Loading.Stats {
		resources = append(resources, "stats")
	}
	return resources
}

// SetDevices updates the device list and finds the selected device.
func (s *State) SetDevices(devices []models.DeviceWithStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Devices = devices
	s.LastUpdated = time.Now()

	// Re-resolve the selected device
	s.SelectedDevice = nil
	for i := range devices {
		if devices[i].IsSelected {
			s.SelectedDevice = &devices[i]
			break
		}
	}

	if s.SelectedDeviceIndex >= len(devices) {
		s.SelectedDeviceIndex = 0
	}
}

// GetDevices returns a copy of the device list.
func (s *State) GetDevices() []models.DeviceWithStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	devices := make([]models.DeviceWithStatus, len(s.Devices))
	copy(devices, s.Devices)
	return devices
}

// GetDeviceCount returns the number of devices.
func (s *State) GetDeviceCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.Devices)
}

// GetSelectedDevice returns the device marked as selected in the registry.
func (s *State) GetSelectedDevice() *models.DeviceWithStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.SelectedDevice
}

// SetStats updates the statistics.
func (s *State) SetStats(stats services.StatsEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Stats = &stats
}

// GetStats returns the current statistics.
func (s *State) GetStats() *services.StatsEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Stats
}

// SetReport stores the depletion report for a device. A nil report clears it.
func (s *State) SetReport(deviceID string, report *trajectory.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Reports == nil {
		s.Reports = make(map[string]*trajectory.Report)
	}
	if report == nil {
		delete(s.Reports, deviceID)
		return
	}
	s.Reports[deviceID] = report
}

// GetReport returns the depletion report for a device, or nil.
func (s *State) GetReport(deviceID string) *trajectory.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Reports == nil {
		return nil
	}
	return s.Reports[deviceID]
}

// GetReports returns a copy of all depletion reports keyed by device ID.
func (s *State) GetReports() map[string]*trajectory.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Reports == nil {
		return nil
	}
	result := make(map[string]*trajectory.Report, len(s.Reports))
	for k, v := range s.Reports {
		result[k] = v
	}
	return result
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := time.Now().Format("20060102150405") + "-" + string(rune('A'+s.notificationSeq%26))

	notification := Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	}

	s.notifications = append(s.notifications, notification)

	// Keep only the last 10 notifications
	if len(s.notifications) > 10 {
		s.notifications = s.notifications[len(s.notifications)-10:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Clear expired inline when reading
	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}

	return active
}

// ClearAllNotifications removes all notifications.
func (s *State) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = make([]Notification, 0)
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  0,
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// GetLastUpdated returns the last time the state was updated.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastUpdated
}

// TimeSinceUpdate returns the duration since the last update.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.LastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.LastUpdated)
}

// GetSelectedDeviceIndex returns the currently highlighted device index.
func (s *State) GetSelectedDeviceIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.SelectedDeviceIndex
}

// SetSelectedDeviceIndex updates the highlighted device index.
func (s *State) SetSelectedDeviceIndex(idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SelectedDeviceIndex = idx
}
