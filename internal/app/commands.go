package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/roelvg/fleetpulse-tui/internal/models"
	"github.com/roelvg/fleetpulse-tui/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// loadInitialData returns a command that loads all initial data.
func loadInitialData(mgr *services.Manager) tea.Cmd {
	return tea.Batch(
		loadDevicesCmd(mgr),
		loadStatsCmd(mgr),
	)
}

// loadDevicesCmd returns a command that loads devices with their cached status.
func loadDevicesCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		devices := mgr.GetDevicesWithStatus()
		stats := mgr.GetStats()

		return DevicesLoadedMsg{
			Devices: devices,
			Stats:   stats,
		}
	}
}

// loadStatsCmd returns a command that loads statistics.
func loadStatsCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		stats := mgr.GetStats()
		return StatsLoadedMsg{Stats: stats}
	}
}

// refreshDeviceCmd returns a command that refreshes status for a specific device.
func refreshDeviceCmd(mgr *services.Manager, deviceID string) tea.Cmd {
	return func() tea.Msg {
		status, err := mgr.RefreshDevice(deviceID)
		return StatusRefreshedMsg{
			DeviceID: deviceID,
			Status:   status,
			Error:    err,
		}
	}
}

// refreshAllStatusCmd returns a command that refreshes status for the whole fleet.
func refreshAllStatusCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		mgr.RefreshStatus()
		devices := mgr.GetDevicesWithStatus()
		stats := mgr.GetStats()
		return DevicesLoadedMsg{
			Devices: devices,
			Stats:   stats,
		}
	}
}

// runSweepCmd returns a command that runs a retention sweep over the fleet.
func runSweepCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		mgr.RunRetentionSweep()
		return SweepCompletedMsg{}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// WaitForServiceEvent is the public version for use in models.
func WaitForServiceEvent(ch <-chan services.ServiceEvent) tea.Cmd {
	return services.WaitForEvent(ch)
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

// selectDeviceCmd returns a command that selects a device in the registry.
func selectDeviceCmd(mgr *services.Manager, deviceID string) tea.Cmd {
	return func() tea.Msg {
		err := mgr.Registry().SetSelectedDevice(deviceID)
		return SelectDeviceResultMsg{
			DeviceID: deviceID,
			Success:  err == nil,
			Error:    err,
		}
	}
}

// addDeviceCmd returns a command that adds a device to the registry.
func addDeviceCmd(mgr *services.Manager, device models.Device) tea.Cmd {
	return func() tea.Msg {
		err := mgr.Registry().AddDevice(device)
		return AddDeviceResultMsg{
			DeviceID: device.ID,
			Success:  err == nil,
			Error:    err,
		}
	}
}

// removeDeviceCmd returns a command that removes a device from the registry.
func removeDeviceCmd(mgr *services.Manager, deviceID string) tea.Cmd {
	return func() tea.Msg {
		err := mgr.Registry().RemoveDevice(deviceID)
		return RemoveDeviceResultMsg{
			DeviceID: deviceID,
			Success:  err == nil,
			Error:    err,
		}
	}
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationSuccess,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationError,
			Message:  message,
			Duration: LongNotificationDuration,
		}
	}
}

// notifyWarningCmd returns a command that adds a warning notification.
func notifyWarningCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationWarning,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationInfo,
			Message:  message,
			Duration: QuickNotificationDuration,
		}
	}
}

// delayedCmd returns a command that sends a message after a delay.
func delayedCmd(delay time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return msg
	})
}

// batchCmds combines multiple commands into one.
func batchCmds(cmds ...tea.Cmd) tea.Cmd {
	return tea.Batch(cmds...)
}

// quitCmd returns a command that quits the application.
func quitCmd() tea.Cmd {
	return tea.Quit
}

// Commands provides a public interface to the command functions.
type Commands struct {
	manager *services.Manager
}

// NewCommands creates a new Commands instance.
func NewCommands(mgr *services.Manager) *Commands {
	return &Commands{manager: mgr}
}

// Tick returns a tick command with the specified interval.
func (c *Commands) Tick(interval time.Duration) tea.Cmd {
	return tickCmd(interval)
}

// DefaultTick returns a tick command with the default interval.
func (c *Commands) DefaultTick() tea.Cmd {
	return defaultTickCmd()
}

// LoadInitialData returns a command that loads all initial data.
func (c *Commands) LoadInitialData() tea.Cmd {
	return loadInitialData(c.manager)
}

// LoadDevices returns a command that loads the device fleet.
func (c *Commands) LoadDevices() tea.Cmd {
	return loadDevicesCmd(c.manager)
}

// LoadStats returns a command that loads statistics.
func (c *Commands) LoadStats() tea.Cmd {
	return loadStatsCmd(c.manager)
}

// RefreshDevice returns a command that refreshes status for a device.
func (c *Commands) RefreshDevice(deviceID string) tea.Cmd {
	return refreshDeviceCmd(c.manager, deviceID)
}

// RefreshAllStatus returns a command that refreshes status for the whole fleet.
func (c *Commands) RefreshAllStatus() tea.Cmd {
	return refreshAllStatusCmd(c.manager)
}

// RunRetentionSweep returns a command that runs a retention sweep.
func (c *Commands) RunRetentionSweep() tea.Cmd {
	return runSweepCmd(c.manager)
}

// SubscribeToServices returns a command that subscribes to service events.
func (c *Commands) SubscribeToServices() tea.Cmd {
	return subscribeToServicesCmd(c.manager)
}

// SelectDevice returns a command that selects a device.
func (c *Commands) SelectDevice(deviceID string) tea.Cmd {
	return selectDeviceCmd(c.manager, deviceID)
}

// AddDevice returns a command that adds a device to the registry.
func (c *Commands) AddDevice(device models.Device) tea.Cmd {
	return addDeviceCmd(c.manager, device)
}

// RemoveDevice returns a command that removes a device.
func (c *Commands) RemoveDevice(deviceID string) tea.Cmd {
	return removeDeviceCmd(c.manager, deviceID)
}

// NotifySuccess returns a command that adds a success notification.
func (c *Commands) NotifySuccess(message string) tea.Cmd {
	return notifySuccessCmd(message)
}

// NotifyError returns a command that adds an error notification.
func (c *Commands) NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}

// NotifyWarning returns a command that adds a warning notification.
func (c *Commands) NotifyWarning(message string) tea.Cmd {
	return notifyWarningCmd(message)
}

// NotifyInfo returns a command that adds an info notification.
func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}

// ClearNotification returns a command that removes a notification after a delay.
func (c *Commands) ClearNotification(id string, delay time.Duration) tea.Cmd {
	return clearNotificationCmd(id, delay)
}

// Quit returns a command that quits the application.
func (c *Commands) Quit() tea.Cmd {
	return quitCmd()
}

// Delayed returns a command that sends a message after a delay.
func (c *Commands) Delayed(delay time.Duration, msg tea.Msg) tea.Cmd {
	return delayedCmd(delay, msg)
}

// Batch combines multiple commands into one.
func (c *Commands) Batch(cmds ...tea.Cmd) tea.Cmd {
	return batchCmds(cmds...)
}
