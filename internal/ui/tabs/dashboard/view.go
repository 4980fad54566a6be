package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/roelvg/fleetpulse-tui/internal/models"
	"github.com/roelvg/fleetpulse-tui/internal/services/trajectory"
	"github.com/roelvg/fleetpulse-tui/internal/ui/components"
	"github.com/roelvg/fleetpulse-tui/internal/ui/styles"
)

// View renders the dashboard component.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return m.renderLoading()
	}

	var sections []string

	sections = append(sections, m.renderTitle())

	sections = append(sections, m.renderDeviceList())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderLoading renders the loading state.
func (m *Model) renderLoading() string {
	return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
}

// renderTitle renders the dashboard title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("FleetPulse")
	subtitle := styles.HelpStyle.Render("Remote device battery monitor")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// renderDeviceList renders the list of devices with their battery state.
func (m *Model) renderDeviceList() string {
	devices := m.state.GetDevices()

	cardWidth := max(m.width-6, 40)

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Device Fleet")))

	if len(devices) == 0 {
		rows = append(rows, "")
		emptyIcon := lipgloss.NewStyle().Foreground(styles.Subtle).Render("○")
		rows = append(rows, fmt.Sprintf("  %s %s", emptyIcon, styles.HelpStyle.Render("No devices registered")))
		rows = append(rows, "")
		rows = append(rows, styles.InfoTextStyle.Render("  ╰─▶ Add devices by editing devices.json"))

		return styles.CardStyle.Width(cardWidth).Render(
			lipgloss.JoinVertical(lipgloss.Left, rows...),
		)
	}

	dividerWidth := max(cardWidth-8, 20)
	divider := lipgloss.NewStyle().Foreground(styles.Subtle).Render(
		"  ├" + strings.Repeat("─", dividerWidth) + "┤",
	)

	rows = append(rows, "")

	for i, dev := range devices {
		deviceRow := m.renderDeviceRow(dev, i == m.selectedIndex, cardWidth-4)
		rows = append(rows, deviceRow)
		if i < len(devices)-1 {
			rows = append(rows, "")
			rows = append(rows, divider)
			rows = append(rows, "")
		}
	}

	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderDeviceRow(dev models.DeviceWithStatus, selected bool, width int) string {
	var lines []string

	lines = append(lines, m.renderDeviceHeader(dev, selected))
	lines = append(lines, "")

	contentWidth := max(width-4, 20)

	switch {
	case dev.Status == nil:
		lines = append(lines, m.renderDeviceLoading(contentWidth)...)
	case dev.Status.Error != "":
		lines = append(lines, m.renderDeviceError(dev, contentWidth)...)
	case !dev.Status.Online:
		lines = append(lines, m.renderDeviceOffline(dev, contentWidth)...)
	default:
		lines = append(lines, m.renderDeviceBattery(dev, contentWidth)...)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) renderDeviceHeader(dev models.DeviceWithStatus, selected bool) string {
	onlineIndicator := lipgloss.NewStyle().Foreground(styles.Subtle).Render("○ ")
	if dev.Status != nil && dev.Status.Online {
		onlineIndicator = styles.SuccessTextStyle.Render("● ")
	}

	selectionPrefix := "  "
	if selected {
		selectionPrefix = styles.FocusedStyle.Render("▸ ")
	}

	name := dev.Device.DisplayName()
	if len(name) > 35 {
		name = name[:32] + "..."
	}

	kind := dev.Device.Kind
	if kind == "" {
		kind = "device"
	}
	kindBadge := lipgloss.NewStyle().Foreground(styles.TextSecondary).Render("◇ " + kind)

	chargingBadge := ""
	if dev.Status != nil && dev.Status.IsCharging {
		chargingBadge = " " + styles.ChargingStyle.Render("⚡ CHARGING")
	}

	return fmt.Sprintf("%s%s%s %s%s",
		selectionPrefix,
		onlineIndicator,
		lipgloss.NewStyle().Bold(true).Render(name),
		kindBadge,
		chargingBadge,
	)
}

func (m *Model) renderDeviceBattery(dev models.DeviceWithStatus, width int) []string {
	var lines []string
	status := dev.Status

	batteryIcon := lipgloss.NewStyle().Foreground(styles.Battery).Render("▮")
	batteryLabel := lipgloss.NewStyle().Foreground(styles.Battery).Bold(true).Render("Battery")
	voltageStr := ""
	if status.BatteryVoltage > 0 {
		voltageStr = "  " + lipgloss.NewStyle().Foreground(styles.Voltage).Render(fmt.Sprintf("%.2fV", status.BatteryVoltage))
	}
	lines = append(lines, fmt.Sprintf("  %s %s%s", batteryIcon, batteryLabel, voltageStr))

	displayPercent := status.PercentCharged
	if anim, ok := m.animations[dev.Device.ID]; ok {
		displayPercent = anim.CurrentPercent
	}
	lines = append(lines, m.renderBatteryBar(displayPercent, width))

	lines = append(lines, "")
	lines = append(lines, m.renderForecastLine(dev.Device.ID, width)...)

	lastSeen := styles.HelpStyle.Render("  Last seen: " + formatLastSeen(status.LastSeen))
	lines = append(lines, lastSeen)

	return lines
}

const indentSpace = "    "

func (m *Model) renderBatteryBar(percent float64, width int) string {
	const (
		indentWidth  = 4
		percentWidth = 6
	)

	barWidth := max(width-indentWidth-percentWidth-4, 10)

	percentStr := styles.GetBatteryStyle(percent, false).
		Width(percentWidth).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.0f%%", percent))

	bar := components.RenderGradientBar(percent, barWidth)

	return lipgloss.JoinHorizontal(lipgloss.Left,
		indentSpace,
		bar,
		" ",
		percentStr,
	)
}

func (m *Model) renderForecastLine(deviceID string, width int) []string {
	var lines []string
	report := m.state.GetReport(deviceID)

	if !report.HasForecast() {
		lines = append(lines, styles.HelpStyle.Render("  Forecast: gathering data"))
		return lines
	}

	badge := forecastBadge(report)
	forecast := fmt.Sprintf("  Depletes in: %s", report.TimeRemaining)
	rate := styles.HelpStyle.Render(fmt.Sprintf("(%.1f%%/day)", report.Prediction.DrainRatePerDay))

	lines = append(lines, fmt.Sprintf("%s %s %s",
		lipgloss.NewStyle().Foreground(styles.TextPrimary).Render(forecast),
		rate,
		badge,
	))

	return lines
}

func forecastBadge(report *trajectory.Report) string {
	remaining := time.Until(report.Prediction.DepletionTime)

	switch {
	case remaining <= 0:
		return styles.ForecastCriticalStyle.Render("▲ DEPLETED")
	case remaining < 3*24*time.Hour:
		return styles.ForecastCriticalStyle.Render("▲ CRITICAL")
	case remaining < 7*24*time.Hour:
		return styles.ForecastWarningStyle.Render("▲ WARNING")
	default:
		return styles.ForecastSafeStyle.Render("● SAFE")
	}
}

func (m *Model) renderDeviceError(dev models.DeviceWithStatus, width int) []string {
	var lines []string

	errIcon := styles.ErrorTextStyle.Render("✗")
	errMsg := dev.Status.Error
	if len(errMsg) > width-8 && width > 11 {
		errMsg = errMsg[:width-11] + "..."
	}
	lines = append(lines, fmt.Sprintf("  %s %s", errIcon, styles.ErrorTextStyle.Render(errMsg)))
	lines = append(lines, styles.HelpStyle.Render("  Last seen: "+formatLastSeen(dev.Status.LastSeen)))

	return lines
}

func (m *Model) renderDeviceOffline(dev models.DeviceWithStatus, width int) []string {
	var lines []string

	barWidth := max(width-14, 10)
	lines = append(lines, indentSpace+m.batteryBar.ViewOffline("Battery", barWidth))
	lines = append(lines, styles.HelpStyle.Render("  Last seen: "+formatLastSeen(dev.Status.LastSeen)))

	return lines
}

func (m *Model) renderDeviceLoading(width int) []string {
	var lines []string

	batteryIcon := lipgloss.NewStyle().Foreground(styles.Battery).Render("▮")
	batteryLabel := lipgloss.NewStyle().Foreground(styles.Battery).Bold(true).Render("Battery")
	lines = append(lines, fmt.Sprintf("  %s %s", batteryIcon, batteryLabel))
	lines = append(lines, indentSpace+components.SimpleBatteryBarLoading("battery", max(width-8, 10), m.animationFrame))

	return lines
}

func formatLastSeen(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	elapsed := time.Since(t)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return fmt.Sprintf("%dm ago", int(elapsed.Minutes()))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(elapsed.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(elapsed.Hours()/24))
	}
}
