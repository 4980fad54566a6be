package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/roelvg/fleetpulse-tui/internal/models"
	"github.com/roelvg/fleetpulse-tui/internal/services"
	"github.com/roelvg/fleetpulse-tui/internal/services/trajectory"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// WindowSizeMsg is sent when the terminal window is resized.
type WindowSizeMsg struct {
	Width  int
	Height int
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// InitialLoadCompleteMsg signals that initial data loading is complete.
type InitialLoadCompleteMsg struct{}

// DevicesLoadedMsg contains the loaded device fleet.
type DevicesLoadedMsg struct {
	Devices []models.DeviceWithStatus
	Stats   services.StatsEvent
}

// StatusRefreshedMsg contains a refreshed status for a single device.
type StatusRefreshedMsg struct {
	DeviceID string
	Status   *models.DeviceStatus
	Error    error
}

// StatsLoadedMsg contains loaded statistics.
type StatsLoadedMsg struct {
	Stats services.StatsEvent
}

// SelectDeviceMsg requests selecting a different device.
type SelectDeviceMsg struct {
	DeviceID string
}

// SelectDeviceResultMsg contains the result of a device selection.
type SelectDeviceResultMsg struct {
	DeviceID string
	Success  bool
	Error    error
}

// AddDeviceMsg requests adding a device to the registry.
type AddDeviceMsg struct {
	Device models.Device
}

// AddDeviceResultMsg contains the result of adding a device.
type AddDeviceResultMsg struct {
	DeviceID string
	Success  bool
	Error    error
}

// RemoveDeviceMsg requests removal of a device from the registry.
type RemoveDeviceMsg struct {
	DeviceID string
}

// RemoveDeviceResultMsg contains the result of a device removal.
type RemoveDeviceResultMsg struct {
	DeviceID string
	Success  bool
	Error    error
}

// RefreshMsg requests a refresh of data.
type RefreshMsg struct {
	Resource string // "all", "devices", "status", "stats"
}

// RefreshDeviceMsg requests a status refresh for a specific device.
type RefreshDeviceMsg struct {
	DeviceID string
}

// SweepCompletedMsg signals that a retention sweep has finished.
type SweepCompletedMsg struct{}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearNotificationsMsg requests clearing all notifications.
type ClearNotificationsMsg struct{}

// NotificationAddedMsg confirms a notification was added.
type NotificationAddedMsg struct {
	ID string
}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// DevicesChangedEventMsg wraps a devices changed event.
type DevicesChangedEventMsg struct {
	Event services.DevicesChangedEvent
}

type StatusUpdatedEventMsg struct {
	Event services.StatusUpdatedEvent
}

type ForecastUpdatedMsg struct {
	DeviceID string
	Report   *trajectory.Report
}

// HistoryClearedMsg signals that a device's reading history was purged.
type HistoryClearedMsg struct {
	DeviceID  string
	Retention *models.RetentionEvent
}

// ErrorEventMsg wraps an error event from services.
type ErrorEventMsg struct {
	Event services.ErrorEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// QuitMsg requests the application to quit.
type QuitMsg struct{}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// DelayedMsg wraps a message to be sent after a delay.
type DelayedMsg struct {
	Delay time.Duration
	Msg   tea.Msg
}

// BatchMsg contains multiple messages to be processed.
type BatchMsg struct {
	Messages []tea.Msg
}

// SelectedDeviceChangedMsg signals that the highlighted device in the UI has changed.
type SelectedDeviceChangedMsg struct {
	Index    int
	DeviceID string
}
