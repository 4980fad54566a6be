package devices

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/roelvg/fleetpulse-tui/internal/app"
	"github.com/roelvg/fleetpulse-tui/internal/models"
)

func testState() *app.State {
	state := app.NewState()
	state.SetLoading("initial", false)
	state.SetDevices([]models.DeviceWithStatus{
		{
			Device: models.Device{ID: "dev-1", Name: "Front Gate Sensor", Kind: "sensor"},
			Status: &models.DeviceStatus{
				DeviceID:       "dev-1",
				PercentCharged: 72,
				Online:         true,
				LastSeen:       time.Now().Add(-5 * time.Minute),
			},
			IsSelected: true,
		},
		{
			Device: models.Device{ID: "dev-2", Name: "Yard Camera", Kind: "camera"},
			Status: &models.DeviceStatus{
				DeviceID:       "dev-2",
				PercentCharged: 31,
				Online:         false,
				LastSeen:       time.Now().Add(-3 * time.Hour),
			},
		},
	})
	return state
}

func keyRunes(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestNew(t *testing.T) {
	m := New(testState())
	if m == nil {
		t.Fatal("New returned nil")
	}
}

func TestModel_Init(t *testing.T) {
	m := New(testState())
	if cmd := m.Init(); cmd == nil {
		t.Error("Init should return the blink command")
	}
}

func TestModel_View(t *testing.T) {
	m := New(testState())
	m.SetSize(120, 40)

	_, _ = m.Update(app.DevicesLoadedMsg{})

	view := m.View()
	if !strings.Contains(view, "Fleet Registry") {
		t.Error("View should contain the title")
	}
	if !strings.Contains(view, "Front Gate Sensor") {
		t.Error("View should list registered devices")
	}
	if !strings.Contains(view, "2 devices registered") {
		t.Error("View should show the device count")
	}
}

func TestModel_View_Empty(t *testing.T) {
	state := app.NewState()
	state.SetLoading("initial", false)
	m := New(state)
	m.SetSize(100, 30)

	view := m.View()
	if !strings.Contains(view, "No Devices Registered") {
		t.Error("View should show the empty state")
	}
}

func TestModel_UpdateTableData(t *testing.T) {
	m := New(testState())
	m.updateTableData()

	if len(m.rowIDs) != 2 {
		t.Fatalf("rowIDs = %d, want 2", len(m.rowIDs))
	}
	if m.rowIDs[0] != "dev-1" {
		t.Errorf("rowIDs[0] = %q, want dev-1", m.rowIDs[0])
	}

	rows := m.table.Rows()
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if !strings.HasPrefix(rows[0][4], "* ") {
		t.Errorf("selected device status should be marked, got %q", rows[0][4])
	}
	if rows[1][4] != "OFFLINE" {
		t.Errorf("rows[1] status = %q, want OFFLINE", rows[1][4])
	}
	if rows[0][3] != "72%" {
		t.Errorf("rows[0] battery = %q, want 72%%", rows[0][3])
	}
}

func TestModel_SelectDevice(t *testing.T) {
	m := New(testState())
	m.updateTableData()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("Enter should produce a command")
	}

	msg := cmd()
	selectMsg, ok := msg.(app.SelectDeviceMsg)
	if !ok {
		t.Fatalf("cmd returned %T, want SelectDeviceMsg", msg)
	}
	if selectMsg.DeviceID != "dev-1" {
		t.Errorf("DeviceID = %q, want dev-1", selectMsg.DeviceID)
	}
}

func TestModel_DeleteFlow(t *testing.T) {
	m := New(testState())
	m.updateTableData()

	// Start delete confirmation
	_, _ = m.Update(keyRunes('d'))
	if !m.confirmDelete {
		t.Fatal("d should enter delete confirmation")
	}
	if m.deleteID != "dev-1" {
		t.Errorf("deleteID = %q, want dev-1", m.deleteID)
	}

	view := m.View()
	if !strings.Contains(view, "Delete Device?") {
		t.Error("View should show the delete confirmation")
	}

	// Confirm
	_, cmd := m.Update(keyRunes('y'))
	if m.confirmDelete {
		t.Error("confirmation should close after y")
	}
	if cmd == nil {
		t.Fatal("y should produce a command")
	}
	msg := cmd()
	removeMsg, ok := msg.(app.RemoveDeviceMsg)
	if !ok {
		t.Fatalf("cmd returned %T, want RemoveDeviceMsg", msg)
	}
	if removeMsg.DeviceID != "dev-1" {
		t.Errorf("DeviceID = %q, want dev-1", removeMsg.DeviceID)
	}
}

func TestModel_DeleteCancelled(t *testing.T) {
	m := New(testState())
	m.updateTableData()

	_, _ = m.Update(keyRunes('d'))
	_, cmd := m.Update(keyRunes('n'))
	if m.confirmDelete {
		t.Error("confirmation should close after n")
	}
	if cmd != nil {
		t.Error("cancel should not produce a command")
	}
}

func TestModel_AddFlow(t *testing.T) {
	m := New(testState())
	m.updateTableData()

	// Open form
	_, _ = m.Update(keyRunes('n'))
	if !m.adding {
		t.Fatal("n should open the add form")
	}

	view := m.View()
	if !strings.Contains(view, "Add New Device") {
		t.Error("View should show the add form")
	}

	// Fill in the device ID field
	m.focusedField = fieldDeviceID
	m.updateFormFocus()
	m.idInput.SetValue("dev-3")
	m.nameInput.SetValue("Shed Tracker")
	m.kindInput.SetValue("tracker")

	// Submit
	m.focusedField = fieldSubmit
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.adding {
		t.Error("form should close after submit")
	}
	if cmd == nil {
		t.Fatal("submit should produce a command")
	}
	msg := cmd()
	addMsg, ok := msg.(app.AddDeviceMsg)
	if !ok {
		t.Fatalf("cmd returned %T, want AddDeviceMsg", msg)
	}
	if addMsg.Device.ID != "dev-3" {
		t.Errorf("Device.ID = %q, want dev-3", addMsg.Device.ID)
	}
	if addMsg.Device.Name != "Shed Tracker" {
		t.Errorf("Device.Name = %q, want Shed Tracker", addMsg.Device.Name)
	}
	if addMsg.Device.AddedAt.IsZero() {
		t.Error("Device.AddedAt should be set")
	}
}

func TestModel_AddFlow_RequiresID(t *testing.T) {
	m := New(testState())

	_, _ = m.Update(keyRunes('n'))
	m.focusedField = fieldSubmit
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.adding {
		t.Error("form should stay open when the device ID is empty")
	}
}

func TestModel_AddFlow_Escape(t *testing.T) {
	m := New(testState())

	_, _ = m.Update(keyRunes('n'))
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.adding {
		t.Error("esc should close the add form")
	}
}

func TestAgeLabel(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero", time.Time{}, "never"},
		{"recent", time.Now().Add(-30 * time.Second), "just now"},
		{"minutes", time.Now().Add(-10 * time.Minute), "10m ago"},
		{"hours", time.Now().Add(-3 * time.Hour), "3h ago"},
		{"days", time.Now().Add(-48 * time.Hour), "2d ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ageLabel(tt.t); got != tt.want {
				t.Errorf("ageLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestModel_SetSize(t *testing.T) {
	m := New(testState())
	m.SetSize(120, 40)
	if m.width != 120 || m.height != 40 {
		t.Errorf("SetSize not applied: got %dx%d", m.width, m.height)
	}
}

func TestModel_Help(t *testing.T) {
	m := New(testState())
	if len(m.ShortHelp()) == 0 {
		t.Error("ShortHelp should not be empty")
	}

	m.adding = true
	if len(m.ShortHelp()) == 0 {
		t.Error("ShortHelp should not be empty in form mode")
	}

	if len(m.FullHelp()) == 0 {
		t.Error("FullHelp should not be empty")
	}
}
