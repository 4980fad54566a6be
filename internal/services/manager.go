// Package services provides service orchestration for the TUI.
package services

import (
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/roelvg/fleetpulse-tui/internal/battery"
	"github.com/roelvg/fleetpulse-tui/internal/config"
	"github.com/roelvg/fleetpulse-tui/internal/db"
	"github.com/roelvg/fleetpulse-tui/internal/logger"
	"github.com/roelvg/fleetpulse-tui/internal/models"
	"github.com/roelvg/fleetpulse-tui/internal/services/registry"
	"github.com/roelvg/fleetpulse-tui/internal/services/status"
	"github.com/roelvg/fleetpulse-tui/internal/services/trajectory"
)

// Notification thresholds.
const (
	criticalBatteryPercent = 10.0
	imminentDepletion      = 3 * 24 * time.Hour
)

type (
	// DevicesChangedEvent is emitted when the device registry changes.
	DevicesChangedEvent struct {
		Devices        []models.Device
		SelectedDevice *models.Device
	}

	// StatusUpdatedEvent is emitted when a device status is refreshed.
	StatusUpdatedEvent struct {
		DeviceID string
		Status   *models.DeviceStatus
	}

	// ForecastUpdatedEvent is emitted when a device forecast is recomputed.
	ForecastUpdatedEvent struct {
		DeviceID string
		Report   *trajectory.Report
	}

	// HistoryClearedEvent is emitted when a device's reading history is purged.
	HistoryClearedEvent struct {
		DeviceID  string
		Retention *models.RetentionEvent
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}

	// StatsEvent is emitted when global statistics change.
	StatsEvent struct {
		DeviceCount    int
		OnlineDevices  int
		CachedReadings int
		ErrorDevices   int
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (DevicesChangedEvent) isServiceEvent()  {}
func (StatusUpdatedEvent) isServiceEvent()   {}
func (ForecastUpdatedEvent) isServiceEvent() {}
func (HistoryClearedEvent) isServiceEvent()  {}
func (ErrorEvent) isServiceEvent()           {}
func (StatsEvent) isServiceEvent()           {}

// Manager orchestrates services and event routing.
type Manager struct {
	mu               sync.RWMutex
	registry         *registry.Service
	status           *status.Service
	trajectory       *trajectory.Service
	database         *db.DB
	eventChan        chan ServiceEvent
	stopChan         chan struct{}
	subscribers      []chan<- ServiceEvent
	previousStatuses map[string]*models.DeviceStatus
	notifiedForecast map[string]bool
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		eventChan:        make(chan ServiceEvent, 100),
		stopChan:         make(chan struct{}),
		previousStatuses: make(map[string]*models.DeviceStatus),
		notifiedForecast: make(map[string]bool),
	}

	var err error
	m.registry, err = registry.New(cfg.DevicesPath)
	if err != nil {
		return nil, err
	}

	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	analyzer := battery.NewAnalyzer(cfg.Battery)

	trajectoryConfig := trajectory.DefaultConfig()
	trajectoryConfig.SweepInterval = cfg.RetentionSweepInterval
	m.trajectory = trajectory.New(m.database, analyzer, m.registry, trajectoryConfig)

	statusConfig := status.DefaultConfig()
	statusConfig.PollInterval = cfg.StatusRefreshInterval
	client := status.NewClient(cfg.APIBaseURL, cfg.APIToken)
	m.status = status.New(m.registry, client, statusConfig)

	go m.routeEvents()

	return m, nil
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.registry.Events():
			m.handleRegistryEvent(event)

		case event := <-m.status.Events():
			m.handleStatusEvent(event)

		case event := <-m.trajectory.Events():
			m.handleTrajectoryEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

// handleRegistryEvent converts and broadcasts registry events.
func (m *Manager) handleRegistryEvent(event registry.Event) {
	switch event.Type {
	case registry.EventDevicesLoaded, registry.EventDevicesChanged,
		registry.EventDeviceAdded, registry.EventDeviceUpdated,
		registry.EventDeviceRemoved, registry.EventSelectedDeviceChanged:

		m.broadcast(DevicesChangedEvent{
			Devices:        m.registry.GetDevices(),
			SelectedDevice: m.registry.GetSelectedDevice(),
		})

	case registry.EventError:
		m.broadcast(ErrorEvent{
			Service: "registry",
			Error:   event.Error,
		})
	}
}

func (m *Manager) handleStatusEvent(event status.Event) {
	switch event.Type {
	case status.EventStatusUpdated:
		m.broadcast(StatusUpdatedEvent{
			DeviceID: event.DeviceID,
			Status:   event.Status,
		})

		if event.Status != nil {
			if err := m.database.UpsertDeviceStatus(event.Status); err != nil {
				logger.Error("failed to cache device status", "device", event.DeviceID, "error", err)
			}
			m.checkBatteryNotification(event.DeviceID, event.Status)
		}

		if m.trajectory != nil {
			go func(deviceID string, readings []models.BatteryReading) {
				if _, err := m.trajectory.RecordReadings(deviceID, readings); err != nil {
					logger.Error("failed to update forecast", "device", deviceID, "error", err)
				}
			}(event.DeviceID, event.Readings)
		}

	case status.EventStatusError:
		m.broadcast(ErrorEvent{
			Service: "status",
			Error:   event.Error,
		})
	}
}

func (m *Manager) handleTrajectoryEvent(event trajectory.Event) {
	switch event.Type {
	case trajectory.EventForecastUpdated:
		m.broadcast(ForecastUpdatedEvent{
			DeviceID: event.DeviceID,
			Report:   event.Report,
		})
		if event.Report != nil {
			m.checkForecastNotification(event.DeviceID, event.Report)
		}

	case trajectory.EventHistoryCleared:
		m.broadcast(HistoryClearedEvent{
			DeviceID:  event.DeviceID,
			Retention: event.Retention,
		})

	case trajectory.EventError:
		m.broadcast(ErrorEvent{
			Service: "trajectory",
			Error:   event.Error,
		})
	}
}

// checkBatteryNotification fires a desktop notification when a device battery
// crosses the critical threshold downwards.
func (m *Manager) checkBatteryNotification(deviceID string, newStatus *models.DeviceStatus) {
	m.mu.Lock()
	oldStatus, exists := m.previousStatuses[deviceID]
	m.previousStatuses[deviceID] = newStatus
	m.mu.Unlock()

	if !exists || newStatus.Error != "" {
		return
	}

	if newStatus.PercentCharged < criticalBatteryPercent &&
		oldStatus.PercentCharged >= criticalBatteryPercent {
		name := deviceID
		if dev := m.registry.GetDevice(deviceID); dev != nil {
			name = dev.DisplayName()
		}
		title := fmt.Sprintf("Critical Battery: %s", name)
		body := fmt.Sprintf("Battery is below %.0f%% (%.1f%%)", criticalBatteryPercent, newStatus.PercentCharged)
		_ = beeep.Notify(title, body, "")
	}
}

// checkForecastNotification fires a desktop notification once per device when
// the depletion forecast drops below three days.
func (m *Manager) checkForecastNotification(deviceID string, report *trajectory.Report) {
	if !report.HasForecast() {
		m.mu.Lock()
		delete(m.notifiedForecast, deviceID)
		m.mu.Unlock()
		return
	}

	remaining := time.Until(report.Prediction.DepletionTime)

	m.mu.Lock()
	notified := m.notifiedForecast[deviceID]
	imminent := remaining > 0 && remaining < imminentDepletion
	if imminent {
		m.notifiedForecast[deviceID] = true
	} else {
		delete(m.notifiedForecast, deviceID)
	}
	m.mu.Unlock()

	if !imminent || notified {
		return
	}

	name := deviceID
	if dev := m.registry.GetDevice(deviceID); dev != nil {
		name = dev.DisplayName()
	}
	title := fmt.Sprintf("Battery Depleting Soon: %s", name)
	body := fmt.Sprintf("Estimated depletion in %s", report.TimeRemaining)
	_ = beeep.Notify(title, body, "")
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	// Send to main event channel
	select {
	case m.eventChan <- event:
	default:
	}

	// Send to subscribers
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return waitForEvent(ch)
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// GetDevicesWithStatus returns all devices with their cached status.
func (m *Manager) GetDevicesWithStatus() []models.DeviceWithStatus {
	devices := m.registry.GetDevices()
	statuses := m.status.GetAllStatuses()
	selectedID := m.registry.GetSelectedDeviceID()

	result := make([]models.DeviceWithStatus, len(devices))
	for i, dev := range devices {
		result[i] = models.DeviceWithStatus{
			Device:     dev,
			Status:     statuses[dev.ID],
			IsSelected: dev.ID == selectedID,
		}
	}
	return result
}

// RefreshStatus forces a refresh of status for all devices.
func (m *Manager) RefreshStatus() {
	m.status.RefreshAll()
}

// RefreshDevice forces a refresh of status for a specific device.
func (m *Manager) RefreshDevice(deviceID string) (*models.DeviceStatus, error) {
	return m.status.RefreshDevice(deviceID)
}

// RunRetentionSweep forces a retention sweep over all devices.
func (m *Manager) RunRetentionSweep() {
	m.trajectory.RunSweep()
}

// GetStats returns aggregated statistics.
func (m *Manager) GetStats() StatsEvent {
	statusStats := m.status.GetStats()

	cached := 0
	for _, dev := range m.registry.GetDevices() {
		if n, err := m.database.CountBatteryReadings(dev.ID); err == nil {
			cached += n
		}
	}

	return StatsEvent{
		DeviceCount:    m.registry.Count(),
		OnlineDevices:  statusStats.OnlineDevices,
		CachedReadings: cached,
		ErrorDevices:   statusStats.ErrorDevices,
	}
}

// Registry returns the registry service.
func (m *Manager) Registry() *registry.Service {
	return m.registry
}

// Status returns the status service.
func (m *Manager) Status() *status.Service {
	return m.status
}

// Trajectory returns the trajectory service.
func (m *Manager) Trajectory() *trajectory.Service {
	return m.trajectory
}

// GetAllReports returns all cached forecast reports.
func (m *Manager) GetAllReports() map[string]*trajectory.Report {
	if m.trajectory == nil {
		return nil
	}
	return m.trajectory.GetAllReports()
}

// GetDeviceHistory retrieves cached history statistics for a device.
func (m *Manager) GetDeviceHistory(deviceID string, timeRange models.TimeRange) (*models.HistoryStats, error) {
	if m.database == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	return m.database.GetHistoryStats(deviceID, timeRange)
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	close(m.stopChan)

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	var errs []error

	if err := m.registry.Close(); err != nil {
		errs = append(errs, err)
	}

	if err := m.status.Close(); err != nil {
		errs = append(errs, err)
	}

	if err := m.trajectory.Close(); err != nil {
		errs = append(errs, err)
	}

	if m.database != nil {
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// InitialState returns the initial state of all services for TUI initialization.
func (m *Manager) InitialState() ([]models.DeviceWithStatus, StatsEvent) {
	devices := m.GetDevicesWithStatus()
	stats := m.GetStats()

	return devices, stats
}
