package devices

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/roelvg/fleetpulse-tui/internal/ui/components"
	"github.com/roelvg/fleetpulse-tui/internal/ui/styles"
)

// View renders the devices tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return m.renderLoading()
	}

	var sections []string

	// Title
	sections = append(sections, m.renderTitle())

	// Main content area
	if m.adding {
		sections = append(sections, m.renderAddForm())
	} else if m.confirmDelete {
		sections = append(sections, m.renderDeleteConfirm())
		sections = append(sections, m.renderTable())
	} else {
		sections = append(sections, m.renderTable())
	}

	// Footer with shortcuts
	sections = append(sections, m.renderFooter())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

// renderLoading renders the loading state.
func (m *Model) renderLoading() string {
	return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
}

// renderTitle renders the devices tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Fleet Registry")

	deviceCount := m.state.GetDeviceCount()
	subtitle := styles.HelpStyle.Render(fmt.Sprintf("%d devices registered", deviceCount))

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// renderTable renders the devices table.
func (m *Model) renderTable() string {
	devices := m.state.GetDevices()

	if len(devices) == 0 {
		return m.renderEmptyState()
	}

	// Update table data
	m.updateTableData()

	cardWidth := m.width - 6
	if cardWidth < 60 {
		cardWidth = 60
	}

	return styles.CardStyle.Width(cardWidth).Render(m.table.View())
}

// renderEmptyState renders the empty state when no devices exist.
func (m *Model) renderEmptyState() string {
	cardWidth := m.width - 6
	if cardWidth < 40 {
		cardWidth = 40
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.SubTitleStyle.Render("No Devices Registered"),
		"",
		styles.HelpStyle.Render("Add devices to start monitoring battery health."),
		"",
		styles.InfoTextStyle.Render("Press 'n' to add a new device"),
		"",
	)

	return styles.CardStyle.Width(cardWidth).Render(content)
}

// renderAddForm renders the add device form.
func (m *Model) renderAddForm() string {
	cardWidth := m.width - 10
	if cardWidth < 50 {
		cardWidth = 50
	}
	if cardWidth > 80 {
		cardWidth = 80
	}

	var rows []string

	// Form title
	rows = append(rows, styles.CardTitleStyle.Render("Add New Device"))
	rows = append(rows, "")

	rows = append(rows, m.renderFormInput("Name:", fieldName, m.nameInput.View(), cardWidth)...)
	rows = append(rows, m.renderFormInput("Device ID:", fieldDeviceID, m.idInput.View(), cardWidth)...)
	rows = append(rows, m.renderFormInput("Kind:", fieldKind, m.kindInput.View(), cardWidth)...)

	// Buttons
	submitStyle := styles.ButtonInactiveStyle
	cancelStyle := styles.ButtonInactiveStyle

	if m.focusedField == fieldSubmit {
		submitStyle = styles.ButtonActiveStyle
	}
	if m.focusedField == fieldCancel {
		cancelStyle = styles.ButtonActiveStyle
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Center,
		submitStyle.Render(" Add Device "),
		"  ",
		cancelStyle.Render(" Cancel "),
	)
	rows = append(rows, buttons)
	rows = append(rows, "")

	// Help text
	rows = append(rows, styles.HelpStyle.Render("Tab: next field | Enter: submit | Esc: cancel"))

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)

	return styles.ModalContentStyle.Width(cardWidth).Render(content)
}

// renderFormInput renders a labeled input field with focus styling.
func (m *Model) renderFormInput(label string, field formField, inputView string, cardWidth int) []string {
	var rows []string

	if m.focusedField == field {
		rows = append(rows, styles.FocusedStyle.Render("> "+label))
	} else {
		rows = append(rows, styles.BlurredStyle.Render("  "+label))
	}

	inputStyle := styles.BlurredBorderStyle
	if m.focusedField == field {
		inputStyle = styles.FocusedBorderStyle
	}
	rows = append(rows, inputStyle.Width(cardWidth-10).Render(inputView))
	rows = append(rows, "")

	return rows
}

// renderDeleteConfirm renders the delete confirmation dialog.
func (m *Model) renderDeleteConfirm() string {
	cardWidth := 50

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.WarningTextStyle.Bold(true).Render("Delete Device?"),
		"",
		"Are you sure you want to delete:",
		styles.ErrorTextStyle.Render(fmt.Sprintf("%s (%s)", m.deleteName, m.deleteID)),
		"",
		"Cached battery history for this device is kept.",
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			styles.ButtonActiveStyle.Render(" (Y)es "),
			"  ",
			styles.ButtonInactiveStyle.Render(" (N)o "),
		),
		"",
	)

	return styles.CenterHorizontal(
		styles.ModalContentStyle.Width(cardWidth).Render(content),
		m.width,
	)
}

// renderFooter renders the footer with keyboard shortcuts.
func (m *Model) renderFooter() string {
	var shortcuts []string

	if m.adding {
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Tab") + " next",
			styles.HelpKeyStyle.Render("Enter") + " submit",
			styles.HelpKeyStyle.Render("Esc") + " cancel",
		}
	} else if m.confirmDelete {
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Y") + " confirm",
			styles.HelpKeyStyle.Render("N") + " cancel",
		}
	} else {
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Enter") + " select",
			styles.HelpKeyStyle.Render("d") + " delete",
			styles.HelpKeyStyle.Render("n") + " add",
			styles.HelpKeyStyle.Render("r") + " refresh",
		}
	}

	footer := ""
	for i, s := range shortcuts {
		if i > 0 {
			footer += styles.HelpSeparatorStyle.Render(" | ")
		}
		footer += s
	}

	return lipgloss.NewStyle().
		MarginTop(1).
		Foreground(styles.TextMuted).
		Render(footer)
}
