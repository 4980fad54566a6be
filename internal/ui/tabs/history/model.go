// Package history provides the history tab for viewing cached battery readings.
package history

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/roelvg/fleetpulse-tui/internal/app"
	"github.com/roelvg/fleetpulse-tui/internal/models"
	"github.com/roelvg/fleetpulse-tui/internal/services"
)

const retentionEventLimit = 5

// keyMap defines the key bindings specific to the history tab.
type keyMap struct {
	ToggleRange key.Binding
	Refresh     key.Binding
	Up          key.Binding
	Down        key.Binding
}

// defaultKeyMap returns the default key bindings for the history tab.
func defaultKeyMap() keyMap {
	return keyMap{
		ToggleRange: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle time range"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// historyLoadedMsg is sent when history data is loaded.
type historyLoadedMsg struct {
	stats     *models.HistoryStats
	readings  []models.BatteryReading
	retention []models.RetentionEvent
	device    string
}

// historyErrorMsg is sent when there's an error loading history.
type historyErrorMsg struct {
	err string
}

// Model represents the history tab state.
type Model struct {
	state    *app.State
	services *services.Manager
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model

	// Current view state
	timeRange   models.TimeRange
	stats       *models.HistoryStats
	readings    []models.BatteryReading
	retention   []models.RetentionEvent
	deviceName  string
	loading     bool
	lastRefresh time.Time
	errorMsg    string
}

// New creates a new history model.
func New(state *app.State, svc *services.Manager) *Model {
	return &Model{
		state:     state,
		services:  svc,
		keys:      defaultKeyMap(),
		viewport:  viewport.New(0, 0),
		timeRange: models.TimeRange30Days,
	}
}

// Init initializes the history tab.
func (m *Model) Init() tea.Cmd {
	return m.loadHistoryCmd()
}

// selectedDevice resolves the device the history view should show, preferring
// the device highlighted on the dashboard.
func (m *Model) selectedDevice() *models.Device {
	devices := m.state.GetDevices()
	if len(devices) == 0 {
		return nil
	}

	selectedIdx := m.state.GetSelectedDeviceIndex()
	if selectedIdx >= 0 && selectedIdx < len(devices) {
		return &devices[selectedIdx].Device
	}

	for i := range devices {
		if devices[i].IsSelected {
			return &devices[i].Device
		}
	}
	return &devices[0].Device
}

// loadHistoryCmd creates a command to load history data.
func (m *Model) loadHistoryCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services == nil {
			return historyErrorMsg{err: "Services not initialized"}
		}

		device := m.selectedDevice()
		if device == nil {
			return historyErrorMsg{err: "No devices registered"}
		}

		stats, err := m.services.GetDeviceHistory(device.ID, m.timeRange)
		if err != nil {
			return historyErrorMsg{err: err.Error()}
		}

		database := m.services.Database()

		var readings []models.BatteryReading
		if days := m.timeRange.Days(); days > 0 {
			since := time.Now().AddDate(0, 0, -days)
			readings, err = database.GetBatteryReadingsSince(device.ID, since)
		} else {
			readings, err = database.GetBatteryReadings(device.ID)
		}
		if err != nil {
			return historyErrorMsg{err: err.Error()}
		}

		retention, err := database.GetRetentionEvents(device.ID, retentionEventLimit)
		if err != nil {
			return historyErrorMsg{err: err.Error()}
		}

		return historyLoadedMsg{
			stats:     stats,
			readings:  readings,
			retention: retention,
			device:    device.DisplayName(),
		}
	}
}

// Update handles messages for the history tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case historyLoadedMsg:
		m.stats = msg.stats
		m.readings = msg.readings
		m.retention = msg.retention
		m.deviceName = msg.device
		m.loading = false
		m.lastRefresh = time.Now()
		m.errorMsg = ""

	case historyErrorMsg:
		m.loading = false
		m.errorMsg = msg.err
		cmds = append(cmds, func() tea.Msg {
			return app.AddNotificationMsg{
				Type:     app.NotificationError,
				Message:  fmt.Sprintf("History error: %s", msg.err),
				Duration: app.LongNotificationDuration,
			}
		})

	case app.DevicesLoadedMsg:
		return m.handleDevicesLoaded()

	case app.HistoryClearedMsg:
		// Cached readings were purged, reload whatever remains
		if !m.loading {
			m.loading = true
			cmds = append(cmds, m.loadHistoryCmd())
		}

	case app.TabSwitchMsg:
		if msg.Tab == app.TabHistory {
			return m.handleDevicesLoaded()
		}

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case app.SelectedDeviceChangedMsg:
		// Selected device changed from Dashboard - reload history
		if !m.loading {
			m.loading = true
			cmds = append(cmds, m.loadHistoryCmd())
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleDevicesLoaded() (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd
	// If we have no history data yet (e.g. initial load failed), try again
	if m.stats == nil {
		m.loading = true
		cmds = append(cmds, m.loadHistoryCmd())
		return m, tea.Batch(cmds...)
	}

	if !m.loading {
		// Check if the highlighted device changed
		if device := m.selectedDevice(); device != nil && device.ID != m.stats.DeviceID {
			m.loading = true
			cmds = append(cmds, m.loadHistoryCmd())
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd
	switch {
	case key.Matches(msg, m.keys.ToggleRange):
		m.timeRange = m.timeRange.Next()
		m.loading = true
		cmds = append(cmds, m.loadHistoryCmd())

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		cmds = append(cmds, m.loadHistoryCmd())

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// SetSize sets the available size for the history tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.ToggleRange,
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleRange, m.keys.Refresh},
		{m.keys.Up, m.keys.Down},
	}
}
