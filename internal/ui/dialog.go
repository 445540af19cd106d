package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Dialog is a modal message box dismissed with enter or esc.
type Dialog struct {
	Title   string
	Message string
}

// RenderDialog draws d centered over a width x height area.
func RenderDialog(d Dialog, width, height int) string {
	bodyW := width / 2
	if bodyW < 30 {
		bodyW = 30
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		StyleDialogTitle.Render(d.Title),
		"",
		StyleDialogBody.Width(bodyW).Render(d.Message),
		"",
		StyleHelp.Render("[ENTER] OK"),
	)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, StyleDialog.Render(content))
}
