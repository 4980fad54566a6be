package history

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/roelvg/fleetpulse-tui/internal/ui/components"
	"github.com/roelvg/fleetpulse-tui/internal/ui/styles"
)

// View renders the history tab.
func (m *Model) View() string {
	if m.loading {
		return m.renderLoading()
	}
	if m.errorMsg != "" {
		return m.renderError()
	}
	if m.stats == nil || !m.stats.HasData() {
		return m.renderEmpty()
	}

	var sections []string

	sections = append(sections,
		m.renderHeader(),
		m.renderBatteryChart(),
		m.renderStatsCard(),
		m.renderRetentionCard(),
	)

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderLoading() string {
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(styles.HelpStyle.Render("Loading history data..."))
}

func (m *Model) renderError() string {
	content := fmt.Sprintf("%s %s",
		styles.ErrorTextStyle.Render("Error:"),
		m.errorMsg,
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderEmpty() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("History"),
		"",
		styles.HelpStyle.Render("No cached readings available yet."),
		styles.HelpStyle.Render("Data will appear as battery readings are fetched."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderHeader() string {
	name := m.deviceName
	if len(name) > 40 {
		name = name[:37] + "..."
	}

	title := styles.TitleStyle.Render("History: " + name)

	// Time range indicator with toggle hint
	rangeStyle := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary)

	rangeIndicator := rangeStyle.Render(fmt.Sprintf("[t] %s", m.timeRange.String()))

	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", rangeIndicator)

	// Subtitle with data range
	var subtitle string
	if !m.stats.FirstSample.IsZero() {
		dataRange := fmt.Sprintf("Data: %s → %s (%d days)",
			m.stats.FirstSample.Format("Jan 2, 2006"),
			m.stats.LastSample.Format("Jan 2, 2006"),
			m.stats.SpanDays(),
		)
		subtitle = styles.HelpStyle.Render(dataRange)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, subtitle, "")
}

func (m *Model) renderBatteryChart() string {
	cardWidth := max(m.width-6, 40)

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("📈")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Battery Trajectory")), "")

	if len(m.readings) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No readings in this range"))
	} else {
		percents := make([]float64, len(m.readings))
		voltages := make([]float64, 0, len(m.readings))
		hasVoltage := true
		for i := range m.readings {
			percents[i] = m.readings[i].PercentCharged
			if m.readings[i].HasVoltage() {
				voltages = append(voltages, m.readings[i].Voltage())
			} else {
				hasVoltage = false
			}
		}

		chartWidth := max(cardWidth-12, 30)
		chartHeight := 8

		var chart string
		if hasVoltage && len(voltages) == len(percents) {
			chart = components.RenderDualLineChart(percents, voltages, chartWidth, chartHeight,
				fmt.Sprintf("%d readings - charge (green) vs voltage (blue)", len(percents)))
		} else {
			chart = components.RenderLineChart(percents, chartWidth, chartHeight, "Battery charge (%)")
		}

		// Indent the chart
		chartLines := strings.Split(chart, "\n")
		for _, line := range chartLines {
			rows = append(rows, "  "+line)
		}

		if hasVoltage && len(voltages) == len(percents) {
			rows = append(rows, "")
			legend := components.RenderLegend([]components.LegendItem{
				{Label: "Charge", Color: components.ChartBatteryColor},
				{Label: "Voltage", Color: components.ChartVoltageColor},
			})
			rows = append(rows, "  "+legend)
		}
	}

	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderStatsCard() string {
	cardWidth := max(m.width-6, 40)

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows = append(rows,
		fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Cache Statistics")),
		"",
	)

	label := lipgloss.NewStyle().Foreground(styles.TextSecondary).Width(16)
	value := lipgloss.NewStyle().Foreground(styles.TextPrimary).Bold(true)

	rows = append(rows, fmt.Sprintf("  %s %s",
		label.Render("Readings:"),
		value.Render(fmt.Sprintf("%d", m.stats.ReadingCount)),
	))
	rows = append(rows, fmt.Sprintf("  %s %s",
		label.Render("Charge range:"),
		value.Render(fmt.Sprintf("%.1f%% - %.1f%%", m.stats.MinPercent, m.stats.MaxPercent)),
	))

	drain := "unknown"
	if m.stats.AvgDrainPerDay > 0 {
		drain = fmt.Sprintf("%.2f%%/day", m.stats.AvgDrainPerDay)
	}
	rows = append(rows, fmt.Sprintf("  %s %s",
		label.Render("Avg drain:"),
		value.Render(drain),
	))

	if report := m.state.GetReport(m.stats.DeviceID); report.HasForecast() {
		rows = append(rows, fmt.Sprintf("  %s %s",
			label.Render("Depletes in:"),
			value.Render(report.TimeRemaining),
		))
	}

	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderRetentionCard() string {
	cardWidth := max(m.width-6, 40)

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("🗑")
	rows = append(rows,
		fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Retention Events")),
		"",
	)

	if len(m.retention) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No history purges recorded"))
	} else {
		for _, event := range m.retention {
			reason := styles.WarningTextStyle.Render(event.Reason)
			rows = append(rows, fmt.Sprintf("  %s  %s  %s",
				styles.HelpStyle.Render(event.Timestamp.Format("Jan 2 15:04")),
				reason,
				styles.HelpStyle.Render(fmt.Sprintf("(%d readings removed)", event.RowsDeleted)),
			))
		}
	}

	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
