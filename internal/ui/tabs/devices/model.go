// Package devices provides the fleet registry management tab for FleetPulse.
package devices

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/roelvg/fleetpulse-tui/internal/app"
	"github.com/roelvg/fleetpulse-tui/internal/models"
	"github.com/roelvg/fleetpulse-tui/internal/ui/components"
	"github.com/roelvg/fleetpulse-tui/internal/ui/styles"
)

// formField represents which field is currently focused in the add form.
type formField int

const (
	fieldName formField = iota
	fieldDeviceID
	fieldKind
	fieldSubmit
	fieldCancel

	formFieldCount = 5
)

// keyMap defines the key bindings specific to the devices tab.
type keyMap struct {
	Enter   key.Binding
	Delete  key.Binding
	Add     key.Binding
	Refresh key.Binding
	Escape  key.Binding
}

// defaultKeyMap returns the default key bindings for the devices tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select device"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Add: key.NewBinding(
			key.WithKeys("n", "a"),
			key.WithHelp("n", "add device"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// Model represents the devices tab state.
type Model struct {
	state         *app.State
	table         table.Model
	width         int
	height        int
	adding        bool
	focusedField  formField
	nameInput     textinput.Model
	idInput       textinput.Model
	kindInput     textinput.Model
	spinner       components.LoadingSpinner
	keys          keyMap
	confirmDelete bool
	deleteID      string
	deleteName    string
	rowIDs        []string
}

// New creates a new devices model.
func New(state *app.State) *Model {
	nameInput := textinput.New()
	nameInput.Placeholder = "Front Gate Sensor"
	nameInput.CharLimit = 100
	nameInput.Width = 40

	idInput := textinput.New()
	idInput.Placeholder = "dev-0042"
	idInput.CharLimit = 64
	idInput.Width = 40

	kindInput := textinput.New()
	kindInput.Placeholder = "sensor"
	kindInput.CharLimit = 32
	kindInput.Width = 40

	t := table.New(
		table.WithColumns(deviceColumns(30)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Subtle).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Primary)
	s.Selected = s.Selected.
		Foreground(styles.TextPrimary).
		Background(styles.BgAccent).
		Bold(true)
	t.SetStyles(s)

	return &Model{
		state:        state,
		table:        t,
		nameInput:    nameInput,
		idInput:      idInput,
		kindInput:    kindInput,
		spinner:      components.NewSpinner("Loading devices..."),
		keys:         defaultKeyMap(),
		adding:       false,
		focusedField: fieldName,
	}
}

func deviceColumns(nameWidth int) []table.Column {
	return []table.Column{
		{Title: "Name", Width: nameWidth},
		{Title: "ID", Width: 14},
		{Title: "Kind", Width: 10},
		{Title: "Battery", Width: 8},
		{Title: "Status", Width: 12},
		{Title: "Last Seen", Width: 12},
	}
}

// Init initializes the devices tab.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the devices tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	// Handle form mode
	if m.adding {
		return m.updateAddForm(msg)
	}

	// Handle delete confirmation
	if m.confirmDelete {
		return m.updateDeleteConfirm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Enter):
			if id := m.selectedDeviceID(); id != "" {
				return m, func() tea.Msg {
					return app.SelectDeviceMsg{DeviceID: id}
				}
			}

		case key.Matches(msg, m.keys.Delete):
			if id := m.selectedDeviceID(); id != "" {
				m.confirmDelete = true
				m.deleteID = id
				m.deleteName = m.selectedDeviceName()
			}

		case key.Matches(msg, m.keys.Add):
			m.adding = true
			m.focusedField = fieldName
			m.nameInput.Focus()
			m.nameInput.SetValue("")
			m.idInput.SetValue("")
			m.kindInput.SetValue("")
			return m, textinput.Blink

		default:
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			cmds = append(cmds, cmd)
		}

	case app.DevicesLoadedMsg:
		m.updateTableData()
	}

	return m, tea.Batch(cmds...)
}

// selectedDeviceID returns the device ID of the highlighted table row.
func (m *Model) selectedDeviceID() string {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.rowIDs) {
		return ""
	}
	return m.rowIDs[cursor]
}

// selectedDeviceName returns the display name of the highlighted table row.
func (m *Model) selectedDeviceName() string {
	if row := m.table.SelectedRow(); len(row) > 0 {
		return row[0]
	}
	return ""
}

// updateAddForm handles the add device form.
func (m *Model) updateAddForm(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.closeForm()
			return m, nil

		case "tab", "down":
			m.focusedField = (m.focusedField + 1) % formFieldCount
			m.updateFormFocus()
			return m, textinput.Blink

		case "shift+tab", "up":
			m.focusedField = (m.focusedField - 1 + formFieldCount) % formFieldCount
			m.updateFormFocus()
			return m, textinput.Blink

		case "enter":
			switch m.focusedField {
			case fieldSubmit:
				id := strings.TrimSpace(m.idInput.Value())
				name := strings.TrimSpace(m.nameInput.Value())
				kind := strings.TrimSpace(m.kindInput.Value())
				if id != "" {
					m.closeForm()
					device := models.Device{
						ID:      id,
						Name:    name,
						Kind:    kind,
						AddedAt: time.Now(),
					}
					return m, func() tea.Msg {
						return app.AddDeviceMsg{Device: device}
					}
				}
			case fieldCancel:
				m.closeForm()
				return m, nil
			default:
				// Move to next field
				m.focusedField = (m.focusedField + 1) % formFieldCount
				m.updateFormFocus()
				return m, textinput.Blink
			}
		}
	}

	// Update the focused input
	var cmd tea.Cmd
	switch m.focusedField {
	case fieldName:
		m.nameInput, cmd = m.nameInput.Update(msg)
		cmds = append(cmds, cmd)
	case fieldDeviceID:
		m.idInput, cmd = m.idInput.Update(msg)
		cmds = append(cmds, cmd)
	case fieldKind:
		m.kindInput, cmd = m.kindInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) closeForm() {
	m.adding = false
	m.nameInput.Blur()
	m.idInput.Blur()
	m.kindInput.Blur()
}

// updateDeleteConfirm handles the delete confirmation.
func (m *Model) updateDeleteConfirm(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "y", "Y":
			m.confirmDelete = false
			id := m.deleteID
			m.deleteID = ""
			m.deleteName = ""
			return m, func() tea.Msg {
				return app.RemoveDeviceMsg{DeviceID: id}
			}
		case "n", "N", "esc":
			m.confirmDelete = false
			m.deleteID = ""
			m.deleteName = ""
			return m, nil
		}
	}
	return m, nil
}

// updateFormFocus updates which form field is focused.
func (m *Model) updateFormFocus() {
	m.nameInput.Blur()
	m.idInput.Blur()
	m.kindInput.Blur()

	switch m.focusedField {
	case fieldName:
		m.nameInput.Focus()
	case fieldDeviceID:
		m.idInput.Focus()
	case fieldKind:
		m.kindInput.Focus()
	}
}

// updateTableData updates the table with current fleet data.
func (m *Model) updateTableData() {
	devices := m.state.GetDevices()
	rows := make([]table.Row, 0, len(devices))
	ids := make([]string, 0, len(devices))

	for _, dev := range devices {
		battery := "-"
		status := "PENDING"
		lastSeen := "-"

		if dev.Status != nil {
			switch {
			case dev.Status.Error != "":
				status = "ERROR"
			case dev.Status.Online:
				status = "ONLINE"
				battery = fmt.Sprintf("%.0f%%", dev.Status.PercentCharged)
				if dev.Status.IsCharging {
					status = "CHARGING"
				}
			default:
				status = "OFFLINE"
				battery = fmt.Sprintf("%.0f%%", dev.Status.PercentCharged)
			}
			lastSeen = ageLabel(dev.Status.LastSeen)
		}

		if dev.IsSelected {
			status = "* " + status
		}

		kind := dev.Device.Kind
		if kind == "" {
			kind = "-"
		}

		rows = append(rows, table.Row{
			dev.Device.DisplayName(),
			dev.Device.ID,
			kind,
			battery,
			status,
			lastSeen,
		})
		ids = append(ids, dev.Device.ID)
	}

	m.table.SetRows(rows)
	m.rowIDs = ids
}

// ageLabel formats a timestamp as a short relative age.
func ageLabel(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	age := time.Since(t)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(age.Hours()/24))
	}
}

// SetSize sets the available size for the devices tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(max(height-10, 3))

	// Adjust the name column based on available width
	nameWidth := width - 66
	if nameWidth < 20 {
		nameWidth = 20
	}
	if nameWidth > 40 {
		nameWidth = 40
	}
	m.table.SetColumns(deviceColumns(nameWidth))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.adding {
		return []key.Binding{
			key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
			m.keys.Escape,
		}
	}
	return []key.Binding{
		m.keys.Enter,
		m.keys.Delete,
		m.keys.Add,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Enter, m.keys.Delete},
		{m.keys.Add, m.keys.Refresh},
	}
}
