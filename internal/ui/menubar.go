package ui

import (
	"fmt"
	"strings"

	"beacon-alarm.klederson.com/internal/config"
	"github.com/charmbracelet/lipgloss"
)

// RenderMenuBar renders the top menu bar. The key labels flip with the
// current ranging and monitoring state, like the start/stop buttons they
// stand in for.
func RenderMenuBar(width int, adapter string, ranging, monitoring bool) string {
	title := fmt.Sprintf(" %s v%s ", config.AppName, config.AppVersion)

	rangeLabel := "Start ranging"
	if ranging {
		rangeLabel = "Stop ranging"
	}
	monitorLabel := "Start monitoring"
	if monitoring {
		monitorLabel = "Stop monitoring"
	}

	keys := []struct{ key, label string }{
		{"R", rangeLabel},
		{"M", monitorLabel},
		{"A", "Silence"},
		{"Q", "Quit"},
	}

	menu := ""
	for _, k := range keys {
		menu += "  " + StyleMenuKey.Render("["+k.key+"]") + StyleMenuLabel.Render(k.label)
	}

	adapterInfo := StyleMenuLabel.Render(fmt.Sprintf("Adapter: %s", adapter))

	left := StyleMenuKey.Render(title) + menu
	right := adapterInfo + " "

	gap := width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	return StyleMenuBar.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}
