package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"beacon-alarm.klederson.com/internal/beacon"
	"github.com/charmbracelet/lipgloss"
)

// ListState is everything the beacon list panel needs besides the beacons.
type ListState struct {
	Cursor        int
	AlarmDistance float64
	History       []float64 // Distance samples of the beacon under the cursor
	Now           time.Time
}

// Cursor row style: black text on bright green = unmissable highlight
var cursorRowSty = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#000000")).
	Background(ColorMatrixGreen).
	Bold(true)

const linesPerBeacon = 4 // 3 content + 1 blank

// RenderBeaconList renders the scrollable beacon list, nearest first, with
// a signal footer for the beacon under the cursor. The title stays fixed at
// the top; only the entries scroll.
func RenderBeaconList(beacons []beacon.Beacon, width, height int, st ListState) string {
	innerW := width - 4
	if innerW < 20 {
		innerW = 20
	}

	title := StylePanelTitle.Render(fmt.Sprintf("BEACONS [%d]", len(beacons)))
	separator := StyleRule.Render(strings.Repeat("-", innerW))
	headerLines := []string{title, separator}

	var footerLines []string
	if len(beacons) > 0 && st.Cursor >= 0 && st.Cursor < len(beacons) {
		footerLines = renderSignalFooter(beacons[st.Cursor], innerW, st.History)
	}

	// Total inner height (excluding border top+bottom)
	innerH := height - 2
	minH := len(headerLines) + len(footerLines) + 1
	if innerH < minH {
		innerH = minH
	}
	entrySpace := innerH - len(headerLines) - len(footerLines)

	var entryLines []string
	if len(beacons) == 0 {
		entryLines = append(entryLines, "", StyleHelp.Render(" --"))
	} else {
		maxVisible := entrySpace / linesPerBeacon
		if maxVisible < 1 {
			maxVisible = 1
		}

		// Keep the cursor inside the viewport
		viewStart := 0
		if st.Cursor >= maxVisible {
			viewStart = st.Cursor - maxVisible + 1
		}

		for i := viewStart; i < len(beacons) && len(entryLines) < entrySpace; i++ {
			entry := renderBeaconEntry(beacons[i], innerW, i == st.Cursor, st.AlarmDistance, st.Now)
			for _, l := range entry {
				if len(entryLines) >= entrySpace {
					break
				}
				entryLines = append(entryLines, l)
			}
		}
	}

	for len(entryLines) < entrySpace {
		entryLines = append(entryLines, "")
	}
	if len(entryLines) > entrySpace {
		entryLines = entryLines[:entrySpace]
	}

	all := make([]string, 0, innerH)
	all = append(all, headerLines...)
	all = append(all, entryLines...)
	all = append(all, footerLines...)

	rendered := StylePanelBorder.Width(width - 2).Height(innerH).Render(strings.Join(all, "\n"))

	// lipgloss Height() only sets a minimum; clamp overflow ourselves.
	outLines := strings.Split(rendered, "\n")
	if len(outLines) > height {
		outLines = outLines[:height]
	}
	return strings.Join(outLines, "\n")
}

func renderBeaconEntry(b beacon.Beacon, maxW int, isCursor bool, alarmDistance float64, now time.Time) []string {
	far := b.Distance > alarmDistance

	name := b.DisplayName()
	nameMax := maxW - 12
	if nameMax < 4 {
		nameMax = 4
	}
	if len(name) > nameMax {
		name = name[:nameMax]
	}

	marker := " "
	if far {
		marker = "!"
	}

	cursor := "  "
	if isCursor {
		cursor = ">>"
	}

	mfr := b.Manufacturer
	if mfr == "" && b.CompanyID != 0 {
		mfr = fmt.Sprintf("0x%04X", b.CompanyID)
	}

	rssiStr := fmt.Sprintf("rssi: %ddBm", b.RSSI)
	distStr := fmt.Sprintf("est. distance: %.2fm", b.Distance)
	ageStr := formatAge(b.Age(now))

	if isCursor {
		raw1 := truncRaw(fmt.Sprintf("%s %s * %s  %s", cursor, marker, name, mfr), maxW)
		raw2 := truncRaw(fmt.Sprintf("      %s", b.ID), maxW)
		raw3 := truncRaw(fmt.Sprintf("      %s  %s  %s", rssiStr, distStr, ageStr), maxW)
		return []string{
			cursorRowSty.Render(raw1),
			cursorRowSty.Render(raw2),
			cursorRowSty.Render(raw3),
			"",
		}
	}

	markerSty := StyleBeaconMarker
	distSty := StyleBeaconDist
	if far {
		markerSty = StyleBeaconFar
		distSty = StyleBeaconFar
	}

	line1 := fmt.Sprintf("%s %s %s %s  %s", cursor, markerSty.Render(marker), StyleBeaconMarker.Render("*"),
		StyleBeaconName.Render(name), StyleHelp.Render(mfr))
	line2 := "      " + StyleBeaconID.Render(truncRaw(b.ID, maxW-6))
	line3 := fmt.Sprintf("      %s  %s  %s", StyleBeaconRSSI.Render(rssiStr), distSty.Render(distStr), StyleHelp.Render(ageStr))

	return []string{line1, line2, line3, ""}
}

func renderSignalFooter(b beacon.Beacon, innerW int, history []float64) []string {
	labelSty := lipgloss.NewStyle().Foreground(ColorMidGreen)

	barWidth := innerW - 20
	if barWidth < 10 {
		barWidth = 10
	}

	lines := []string{
		StyleRule.Render(strings.Repeat("-", innerW)),
		labelSty.Render(" Signal ") + renderSignalBar(float64(b.RSSI), barWidth) +
			StyleBeaconRSSI.Render(fmt.Sprintf(" %ddBm", b.RSSI)),
	}

	if len(history) > 0 {
		sparkW := innerW - 10
		if sparkW < 10 {
			sparkW = 10
		}
		lines = append(lines, labelSty.Render(" Dist   ")+
			lipgloss.NewStyle().Foreground(ColorGreen).Render(renderSparkline(history, sparkW)))
	}
	return lines
}

func renderSignalBar(rssi float64, width int) string {
	// Map RSSI -100..-30 to 0..width filled bars
	ratio := (rssi + 100.0) / 70.0
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(math.Round(ratio * float64(width)))

	filledPart := lipgloss.NewStyle().Foreground(ColorMatrixGreen).Render(strings.Repeat("|", filled))
	emptyPart := lipgloss.NewStyle().Foreground(ColorDimGreen).Render(strings.Repeat("-", width-filled))
	return StyleHelp.Render("[") + filledPart + emptyPart + StyleHelp.Render("]")
}

func renderSparkline(values []float64, width int) string {
	if len(values) == 0 {
		return ""
	}

	chars := []byte{'_', '.', '-', '~', '^'}

	// Take last `width` values
	if len(values) > width {
		values = values[len(values)-width:]
	}

	minV, maxV := values[0], values[0]
	for _, v := range values {
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}
	rng := maxV - minV
	if rng < 0.1 {
		rng = 0.1
	}

	var sb strings.Builder
	for _, v := range values {
		idx := int((v - minV) / rng * float64(len(chars)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(chars) {
			idx = len(chars) - 1
		}
		sb.WriteByte(chars[idx])
	}
	return sb.String()
}

// truncRaw pads or truncates a raw string to exactly w characters.
func truncRaw(s string, w int) string {
	if w < 0 {
		w = 0
	}
	if len(s) > w {
		return s[:w]
	}
	return s + strings.Repeat(" ", w-len(s))
}

func formatAge(d time.Duration) string {
	if d < time.Second {
		return "now"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm ago", int(d.Minutes()))
}
