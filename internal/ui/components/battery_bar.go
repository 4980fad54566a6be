// Package components provides reusable UI components.
package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/roelvg/fleetpulse-tui/internal/logger"
	"github.com/roelvg/fleetpulse-tui/internal/ui/styles"
)

type AnimationTickMsg time.Time

func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*50, func(t time.Time) tea.Msg {
		return AnimationTickMsg(t)
	})
}

// BatteryBar renders a battery charge bar with label and percentage.
type BatteryBar struct {
	progress       progress.Model
	label          string
	percent        float64
	animationFrame int
	isAnimating    bool
	targetPercent  float64
	currentPercent float64
}

// NewBatteryBar creates a new battery bar with gradient colors.
func NewBatteryBar() BatteryBar {
	return NewBatteryBarWithWidth(30)
}

// NewBatteryBarWithWidth creates a battery bar with a specific width.
func NewBatteryBarWithWidth(width int) BatteryBar {
	p := progress.New(
		progress.WithScaledGradient("#ff6b6b", "#51cf66"),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)

	return BatteryBar{
		progress:       p,
		label:          "",
		percent:        0,
		animationFrame: 0,
		isAnimating:    false,
		targetPercent:  0,
		currentPercent: 0,
	}
}

// Init initializes the progress bar model.
func (b BatteryBar) Init() tea.Cmd {
	return nil
}

// Update handles progress bar animation messages.
func (b BatteryBar) Update(msg tea.Msg) (BatteryBar, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg.(type) {
	case AnimationTickMsg:
		if b.isAnimating {
			b.animationFrame++

			if b.currentPercent < b.targetPercent {
				step := (b.targetPercent - b.currentPercent) / 10
				if step < 0.5 {
					step = 0.5
				}
				b.currentPercent += step
				if b.currentPercent > b.targetPercent {
					b.currentPercent = b.targetPercent
				}
				cmds = append(cmds, animationTick())
			} else if b.currentPercent > b.targetPercent {
				step := (b.currentPercent - b.targetPercent) / 10
				if step < 0.5 {
					step = 0.5
				}
				b.currentPercent -= step
				if b.currentPercent < b.targetPercent {
					b.currentPercent = b.targetPercent
				}
				cmds = append(cmds, animationTick())
			} else {
				b.isAnimating = false
			}
		}
	}

	var cmd tea.Cmd
	model, cmd := b.progress.Update(msg)
	b.progress = model.(progress.Model)
	cmds = append(cmds, cmd)

	return b, tea.Batch(cmds...)
}

// SetPercent sets the current percentage.
func (b *BatteryBar) SetPercent(percent float64) tea.Cmd {
	b.percent = percent
	b.targetPercent = percent

	if !b.isAnimating {
		b.isAnimating = true
		b.animationFrame = 0
		return tea.Batch(
			b.progress.SetPercent(percent/100),
			animationTick(),
		)
	}

	return b.progress.SetPercent(percent / 100)
}

// SetLabel sets the bar label.
func (b *BatteryBar) SetLabel(label string) {
	b.label = label
}

// SetWidth sets the progress bar width.
func (b *BatteryBar) SetWidth(width int) {
	b.progress.Width = width
}

// View renders the battery bar with percentage and label.
func (b BatteryBar) View(percent float64, label string, width int) string {
	// Update the progress bar width
	barWidth := width - 30 // Reserve space for label and percentage
	if barWidth < 10 {
		barWidth = 10
	}
	b.progress.Width = barWidth

	// Render the progress bar
	bar := b.progress.ViewAs(percent / 100)

	// Format percentage with color
	percentStyle := styles.GetBatteryStyle(percent, false)
	percentStr := percentStyle.Width(6).Align(lipgloss.Right).Render(fmt.Sprintf("%.0f%%", percent))

	// Render label
	labelStyle := styles.ProgressLabelStyle
	labelStr := labelStyle.Width(15).Render(label)

	return lipgloss.JoinHorizontal(
		lipgloss.Center,
		labelStr,
		bar,
		" ",
		percentStr,
	)
}

// ViewCompact renders a compact version without label.
func (b BatteryBar) ViewCompact(percent float64, width int) string {
	barWidth := width - 8
	if barWidth < 5 {
		barWidth = 5
	}
	b.progress.Width = barWidth

	bar := b.progress.ViewAs(percent / 100)
	percentStyle := styles.GetBatteryStyle(percent, false)
	percentStr := percentStyle.Render(fmt.Sprintf("%.0f%%", percent))

	return lipgloss.JoinHorizontal(lipgloss.Center, bar, " ", percentStr)
}

// ViewOffline renders an offline device state.
func (b BatteryBar) ViewOffline(label string, width int) string {
	labelStyle := styles.ProgressLabelStyle
	labelStr := labelStyle.Width(15).Render(label)

	barWidth := width - 30
	if barWidth < 10 {
		barWidth = 10
	}

	// Render empty bar with offline indicator
	emptyBar := lipgloss.NewStyle().
		Foreground(styles.Subtle).
		Render(strings.Repeat("░", barWidth))

	statusStr := styles.OfflineStyle.
		Width(14).
		Align(lipgloss.Right).
		Render("OFFLINE")

	return lipgloss.JoinHorizontal(
		lipgloss.Center,
		labelStr,
		emptyBar,
		" ",
		statusStr,
	)
}

// RenderGradientBar renders just the bar part with gradient colors.
func RenderGradientBar(percent float64, width int) string {
	if width < 1 {
		return ""
	}

	filled := int(float64(width) * percent / 100)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	var barChars []string
	for i := 0; i < width; i++ {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor("#ff6b6b", "#51cf66", t)
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
			barChars = append(barChars, style.Render("█"))
		} else {
			style := lipgloss.NewStyle().Foreground(styles.Subtle)
			barChars = append(barChars, style.Render("░"))
		}
	}

	return strings.Join(barChars, "")
}

// SimpleBatteryBar renders a simple ASCII charge bar with gradient colors.
func SimpleBatteryBar(percent float64, label string, width int) string {
	labelWidth := len(label) + 1
	percentWidth := 6
	barWidth := width - labelWidth - percentWidth - 4

	if barWidth < 5 {
		barWidth = 5
	}

	bar := RenderGradientBar(percent, barWidth)

	labelStr := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Render(label)

	percentStr := styles.GetBatteryStyle(percent, false).
		Width(percentWidth).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.0f%%", percent))

	return fmt.Sprintf("%s [%s] %s", labelStr, bar, percentStr)
}

// SimpleBatteryBarLoading renders a shimmering placeholder bar while the
// first status fetch is in flight.
func SimpleBatteryBarLoading(label string, width int, frame int) string {
	const (
		indentWidth  = 4
		percentWidth = 6
		rateWidth    = 10
		badgeWidth   = 10
	)

	rightSideWidth := percentWidth + rateWidth + badgeWidth
	barWidth := width - indentWidth - rightSideWidth - 4
	if barWidth < 10 {
		barWidth = 10
	}

	accentColor := styles.Battery
	if strings.Contains(strings.ToLower(label), "total") {
		accentColor = styles.Primary
	}

	cycle := 120

	t := float64(frame%cycle) / float64(cycle)
	var p float64
	if t < 0.5 {
		p = t * 2
	} else {
		p = (1 - t) * 2
	}
	eased := p * p * (3 - 2*p)
	shimmerPos := int(eased * float64(barWidth))
	var barChars []string

	for i := 0; i < barWidth; i++ {
		dist := shimmerPos - i
		if dist < 0 {
			dist = -dist
		}

		var char string
		var style lipgloss.Style

		if dist < 3 {
			char = "▓"
			style = lipgloss.NewStyle().Foreground(accentColor)
		} else if dist < 5 {
			char = "▒"
			style = lipgloss.NewStyle().Foreground(styles.TextSecondary)
		} else {
			char = "░"
			style = lipgloss.NewStyle().Foreground(styles.BgLight)
		}

		barChars = append(barChars, style.Render(char))
	}

	bar := strings.Join(barChars, "")

	indent := "    "

	dots := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	dot := dots[(frame/2)%len(dots)]

	loadingStr := lipgloss.NewStyle().
		Width(percentWidth).
		Align(lipgloss.Right).
		Foreground(accentColor).
		Render(dot)

	rateStr := lipgloss.NewStyle().Width(rateWidth).Render("")
	badgeStr := lipgloss.NewStyle().Width(badgeWidth).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Left,
		indent,
		bar,
		" ",
		loadingStr,
		" ",
		rateStr,
		" ",
		badgeStr,
	)
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
