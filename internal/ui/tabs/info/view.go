package info

import (
	"fmt"
	"runtime"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/roelvg/fleetpulse-tui/internal/ui/styles"
	"github.com/roelvg/fleetpulse-tui/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	var sections []string

	// Title
	sections = append(sections, m.renderTitle())

	// Configuration card
	sections = append(sections, m.renderConfigCard())

	// Analyzer card
	sections = append(sections, m.renderAnalyzerCard())

	// About card
	sections = append(sections, m.renderAboutCard())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderTitle renders the info tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration and application information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// renderConfigCard renders the configuration paths card.
func (m *Model) renderConfigCard() string {
	cardWidth := m.cardWidth()

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Configuration"))
	rows = append(rows, "")

	if m.config != nil {
		rows = append(rows, m.renderConfigRow("Devices File", m.config.DevicesPath))
		rows = append(rows, m.renderConfigRow("Database", m.config.DatabasePath))
		rows = append(rows, m.renderConfigRow("Fleet API", m.config.APIBaseURL))
		rows = append(rows, m.renderConfigRow("API Token", maskToken(m.config.APIToken)))
		rows = append(rows, m.renderConfigRow("Status Refresh", m.config.StatusRefreshInterval.String()))
		rows = append(rows, m.renderConfigRow("Retention Sweep", m.config.RetentionSweepInterval.String()))
	} else {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderAnalyzerCard renders the battery analyzer tunables card.
func (m *Model) renderAnalyzerCard() string {
	cardWidth := m.cardWidth()

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Battery Analyzer"))
	rows = append(rows, "")

	if m.config != nil {
		b := m.config.Battery
		rows = append(rows, m.renderConfigRow("Charge Jump", fmt.Sprintf("%.1f%%", b.ChargeJumpThreshold)))
		rows = append(rows, m.renderConfigRow("Stale After", formatDays(b.StaleAfter)))
		rows = append(rows, m.renderConfigRow("Max Horizon", formatDays(b.MaxHorizon)))
	} else {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderConfigRow renders a configuration key-value row.
func (m *Model) renderConfigRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

// renderAboutCard renders the about/version information card.
func (m *Model) renderAboutCard() string {
	cardWidth := m.cardWidth()

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("About FleetPulse"))
	rows = append(rows, "")

	rows = append(rows, m.renderConfigRow("Version", version.GetVersion()))
	rows = append(rows, m.renderConfigRow("Build Date", version.GetDate()))
	rows = append(rows, m.renderConfigRow("Git Commit", version.GetCommit()))
	rows = append(rows, m.renderConfigRow("Go Version", runtime.Version()))
	rows = append(rows, m.renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)))
	rows = append(rows, "")

	deviceCount := m.state.GetDeviceCount()
	rows = append(rows, fmt.Sprintf("Devices: %s", styles.InfoTextStyle.Render(fmt.Sprintf("%d", deviceCount))))
	if stats := m.state.GetStats(); stats != nil {
		rows = append(rows, fmt.Sprintf("Cached readings: %s", styles.InfoTextStyle.Render(fmt.Sprintf("%d", stats.CachedReadings))))
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) cardWidth() int {
	cardWidth := m.width - 6
	if cardWidth < 50 {
		cardWidth = 50
	}
	if cardWidth > 80 {
		cardWidth = 80
	}
	return cardWidth
}

// maskToken hides a credential, keeping only a short prefix.
func maskToken(token string) string {
	if token == "" {
		return "not set"
	}
	if len(token) <= 6 {
		return "******"
	}
	return token[:4] + "..." + fmt.Sprintf("(%d chars)", len(token))
}

// formatDays renders a duration as a whole-day count.
func formatDays(d time.Duration) string {
	days := int(d / (24 * time.Hour))
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}
