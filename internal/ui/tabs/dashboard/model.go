// Package dashboard provides the main fleet overview tab for FleetPulse.
package dashboard

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/roelvg/fleetpulse-tui/internal/app"
	"github.com/roelvg/fleetpulse-tui/internal/models"
	"github.com/roelvg/fleetpulse-tui/internal/ui/components"
)

type animationTickMsg time.Time

func animationTickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*40, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// keyMap defines the key bindings specific to the dashboard tab.
type keyMap struct {
	NextDevice  key.Binding
	PrevDevice  key.Binding
	FirstDevice key.Binding
	LastDevice  key.Binding
	Refresh     key.Binding
}

// defaultKeyMap returns the default key bindings for the dashboard tab.
func defaultKeyMap() keyMap {
	return keyMap{
		NextDevice: key.NewBinding(
			key.WithKeys("n", "j", "down"),
			key.WithHelp("j/n", "next device"),
		),
		PrevDevice: key.NewBinding(
			key.WithKeys("p", "k", "up"),
			key.WithHelp("k/p", "prev device"),
		),
		FirstDevice: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "first device"),
		),
		LastDevice: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "last device"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// AnimationState tracks the state of an animation.
type AnimationState struct {
	StartTime      time.Time
	CurrentPercent float64
	TargetPercent  float64
	StartPercent   float64
}

// Model represents the dashboard tab state.
type Model struct {
	state          *app.State
	animations     map[string]*AnimationState
	spinner        components.LoadingSpinner
	keys           keyMap
	viewport       viewport.Model
	batteryBar     components.BatteryBar
	width          int
	height         int
	selectedIndex  int
	animationFrame int
}

// New creates a new dashboard model.
func New(state *app.State) *Model {
	return &Model{
		state:         state,
		spinner:       components.NewSpinner("Loading devices..."),
		batteryBar:    components.NewBatteryBar(),
		keys:          defaultKeyMap(),
		selectedIndex: 0,
		viewport:      viewport.New(0, 0),
		animations:    make(map[string]*AnimationState),
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Init(), animationTickCmd())
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case animationTickMsg:
		cmds = append(cmds, m.handleAnimationTick(msg))

	case app.StartLoadingMsg:
		cmds = append(cmds, animationTickCmd())

	case app.DevicesLoadedMsg, app.StatusRefreshedMsg, app.RefreshMsg:
		m.syncAnimationTargets(time.Now())
		cmds = append(cmds, animationTickCmd())

	case app.ForecastUpdatedMsg:
		m.state.SetReport(msg.DeviceID, msg.Report)

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleAnimationTick(msg animationTickMsg) tea.Cmd {
	m.animationFrame++
	now := time.Time(msg)

	animating, hasPendingData := m.syncAnimationTargets(now)
	m.stepAnimations(now)

	shouldTick := animating || m.state.AnyLoading() || m.state.IsInitialLoading() || hasPendingData
	if shouldTick {
		return animationTickCmd()
	}
	return nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	devices := m.state.GetDevices()
	deviceCount := len(devices)

	switch {
	case key.Matches(msg, m.keys.NextDevice):
		if deviceCount > 0 {
			m.selectedIndex = (m.selectedIndex + 1) % deviceCount
		}
	case key.Matches(msg, m.keys.PrevDevice):
		if deviceCount > 0 {
			m.selectedIndex = (m.selectedIndex - 1 + deviceCount) % deviceCount
		}
	case key.Matches(msg, m.keys.FirstDevice):
		if deviceCount > 0 {
			m.selectedIndex = 0
		}
	case key.Matches(msg, m.keys.LastDevice):
		if deviceCount > 0 {
			m.selectedIndex = deviceCount - 1
		}
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}

	return m.syncSelection(devices)
}

// syncSelection publishes the highlighted device so other tabs can follow it.
func (m *Model) syncSelection(devices []models.DeviceWithStatus) tea.Cmd {
	if m.selectedIndex < 0 || m.selectedIndex >= len(devices) {
		return nil
	}
	m.state.SetSelectedDeviceIndex(m.selectedIndex)
	index := m.selectedIndex
	deviceID := devices[index].Device.ID
	return func() tea.Msg {
		return app.SelectedDeviceChangedMsg{Index: index, DeviceID: deviceID}
	}
}

// SetSize sets the available size for the dashboard.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

func (m *Model) syncAnimationTargets(now time.Time) (animating, hasPendingData bool) {
	devices := m.state.GetDevices()

	for i := range devices {
		dev := &devices[i]
		if dev.Status == nil {
			hasPendingData = true
			continue
		}
		if dev.Status.Error != "" {
			continue
		}

		if m.updateAnimationState(dev.Device.ID, dev.Status.PercentCharged, now) {
			animating = true
		}
	}

	return animating, hasPendingData
}

func (m *Model) updateAnimationState(animKey string, target float64, now time.Time) bool {
	if target < 0 {
		return false
	}

	state, exists := m.animations[animKey]
	if !exists {
		state = &AnimationState{
			CurrentPercent: 0,
			StartPercent:   0,
			TargetPercent:  0,
			StartTime:      now,
		}
		m.animations[animKey] = state
	}

	if target != state.TargetPercent {
		state.StartPercent = state.CurrentPercent
		state.TargetPercent = target
		state.StartTime = now
	}

	return state.CurrentPercent != state.TargetPercent
}

func (m *Model) stepAnimations(now time.Time) {
	for _, state := range m.animations {
		if state.CurrentPercent != state.TargetPercent {
			elapsed := now.Sub(state.StartTime).Seconds()
			duration := 1.5

			if elapsed >= duration {
				state.CurrentPercent = state.TargetPercent
			} else {
				progress := elapsed / duration
				ease := 1.0 - (1.0-progress)*(1.0-progress)
				state.CurrentPercent = state.StartPercent + (state.TargetPercent-state.StartPercent)*ease
			}
		}
	}
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.NextDevice,
		m.keys.PrevDevice,
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.NextDevice, m.keys.PrevDevice},
		{m.keys.FirstDevice, m.keys.LastDevice},
		{m.keys.Refresh},
	}
}
