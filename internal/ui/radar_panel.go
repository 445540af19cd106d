package ui

// RenderRadarPanel frames the proximity scope. The scope itself is drawn by
// the radar package, which the app passes in already rendered.
func RenderRadarPanel(width, height int, scope, legend string) string {
	title := StylePanelTitle.Render("PROXIMITY")
	content := title + "\n" + scope + "\n" + legend
	return StylePanelBorder.Width(width - 2).Height(height - 2).Render(content)
}
