package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// StatusInfo is what the bottom bar shows.
type StatusInfo struct {
	Text     string // Ranging/monitoring status line
	Ranging  bool
	Visible  int
	Tracked  int
	Window   time.Duration
	Alarm    bool
	Distance float64 // Alarm distance in meters
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, s StatusInfo) string {
	state := StyleStatusPaused.Render("[PAUSED]")
	if s.Ranging {
		state = StyleStatusActive.Render("[RANGING]")
	}

	info := fmt.Sprintf(" %s  Visible: %d  Tracked: %d  Window: %s  Alarm >%.1fm",
		s.Text, s.Visible, s.Tracked, s.Window, s.Distance)

	content := state + StyleStatusBar.Foreground(ColorGreen).Render(info)
	if s.Alarm {
		content += " " + StyleAlarm.Render("ALARM")
	}

	gap := width - 2 - lipgloss.Width(content)
	if gap < 0 {
		gap = 0
	}

	return StyleStatusBar.Width(width).Render(content + strings.Repeat(" ", gap))
}
