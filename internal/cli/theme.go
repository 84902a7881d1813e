package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	iconSparkle = "✨"
	iconDone    = "✅"
	iconTrophy  = "🏆"
	iconBolt    = "⚡"
	iconPaw     = "🐾"
	iconWarn    = "⚠️"
	iconError   = "🧨"
	iconIdea    = "💡"
	iconLock    = "🔒"
)

var (
	cPrimary = lipgloss.Color("#6C63FF")
	cGood    = lipgloss.Color("#2ECC71")
	cWarn    = lipgloss.Color("#F39C12")
	cBad     = lipgloss.Color("#E74C3C")
	cMuted   = lipgloss.Color("#666666")
	cGold    = lipgloss.Color("#F1C40F")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	h2Style    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	keyStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(cMuted)
	goodStyle  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	warnStyle  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	badStyle   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	goldStyle  = lipgloss.NewStyle().Bold(true).Foreground(cGold)
)

func heading(icon, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return titleStyle.Render(icon + title)
}

func labelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", keyStyle.Render(label+":"), value)
}

// bar renders a fixed-width meter for a 0..100 value.
func bar(value, width int) string {
	value = min(max(value, 0), 100)
	filled := value * width / 100
	return strings.Repeat("█", filled) + mutedStyle.Render(strings.Repeat("░", width-filled))
}
