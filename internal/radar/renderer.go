package radar

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"beacon-alarm.klederson.com/internal/beacon"
	"beacon-alarm.klederson.com/internal/config"
)

var (
	colorBright = lipgloss.Color("#00FF41")
	colorMid    = lipgloss.Color("#008F11")
	colorDim    = lipgloss.Color("#004A0A")
	colorBeacon = lipgloss.Color("#00FFAA")
	colorFar    = lipgloss.Color("#FFAA00")
	colorAlarm  = lipgloss.Color("#FF3300")

	styleCenter   = lipgloss.NewStyle().Foreground(colorBright).Bold(true)
	styleRing     = lipgloss.NewStyle().Foreground(colorMid)
	styleAlarmRng = lipgloss.NewStyle().Foreground(colorAlarm)
	styleDot      = lipgloss.NewStyle().Foreground(colorDim)
	styleNear     = lipgloss.NewStyle().Foreground(colorBeacon).Bold(true)
	styleFar      = lipgloss.NewStyle().Foreground(colorFar).Bold(true)
	styleSelected = lipgloss.NewStyle().Foreground(colorBright).Bold(true).Reverse(true)
	styleLabel    = lipgloss.NewStyle().Foreground(colorBeacon)
	styleLabelFar = lipgloss.NewStyle().Foreground(colorFar)
)

const maxLabelLen = 8

// Options controls what the scope shows.
type Options struct {
	Range         float64 // meters at the outer ring
	AlarmDistance float64 // drawn as its own ring
	Selected      string  // beacon ID to highlight
	Sweep         *Sweep
}

type blip struct {
	col, row int
	b        beacon.Beacon
	far      bool
	label    string
	labelCol int
	labelRow int
}

// Render draws the beacons on a width x height proximity scope. Beacons are
// placed by distance at a bearing derived from their ID.
func Render(width, height int, beacons []beacon.Beacon, opts Options) string {
	if width < 10 || height < 5 {
		return ""
	}

	g := newGrid(width, height)

	rings := make([]float64, config.RingCount)
	for i := range rings {
		rings[i] = g.radius * float64(i+1) / config.RingCount
	}
	alarmRing := -1.0
	if opts.AlarmDistance > 0 && opts.AlarmDistance < opts.Range {
		alarmRing = g.scale(opts.AlarmDistance, opts.Range)
	}

	blips := placeBlips(g, beacons, opts, width)

	// Label cells keyed by row*width+col
	type labelCell struct {
		blip int
		char int
	}
	labels := make(map[int]labelCell)
	at := make(map[int]int, len(blips))
	for i, bl := range blips {
		if bl.col >= 0 && bl.col < width {
			at[bl.row*width+bl.col] = i
		}
		for ci := 0; ci < len(bl.label) && bl.labelCol+ci < width; ci++ {
			labels[bl.labelRow*width+bl.labelCol+ci] = labelCell{blip: i, char: ci}
		}
	}

	var sb strings.Builder
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			if i, ok := at[row*width+col]; ok {
				sb.WriteString(renderBlip(blips[i], opts.Selected))
				continue
			}
			if lc, ok := labels[row*width+col]; ok {
				bl := blips[lc.blip]
				ch := string(bl.label[lc.char])
				if bl.far {
					sb.WriteString(styleLabelFar.Render(ch))
				} else {
					sb.WriteString(styleLabel.Render(ch))
				}
				continue
			}
			sb.WriteString(renderCell(g, col, row, rings, alarmRing, opts.Sweep))
		}
		if row < height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// placeBlips positions each beacon and its label, dropping labels that
// would overlap ones already placed.
func placeBlips(g grid, beacons []beacon.Beacon, opts Options, width int) []blip {
	type segment struct{ start, end int }
	occupied := make(map[int][]segment)
	free := func(row, start, end int) bool {
		for _, seg := range occupied[row] {
			if start < seg.end && end > seg.start {
				return false
			}
		}
		return true
	}

	blips := make([]blip, 0, len(beacons))
	for _, b := range beacons {
		col, row := g.place(g.scale(b.Distance, opts.Range), Bearing(b.ID))
		label := callsign(b)

		lc := col + 2
		if lc+len(label) >= width {
			lc = col - len(label) - 1
		}
		if lc < 0 {
			lc = 0
		}

		lr := row
		placed := false
		for _, r := range []int{row, row + 1, row - 1} {
			if free(r, lc, lc+len(label)) {
				lr = r
				placed = true
				break
			}
		}
		if !placed {
			label = ""
		}

		blips = append(blips, blip{
			col:      col,
			row:      row,
			b:        b,
			far:      opts.AlarmDistance > 0 && b.Distance > opts.AlarmDistance,
			label:    label,
			labelCol: lc,
			labelRow: lr,
		})
		occupied[row] = append(occupied[row], segment{col, col + 1})
		if label != "" {
			occupied[lr] = append(occupied[lr], segment{lc, lc + len(label)})
		}
	}
	return blips
}

func callsign(b beacon.Beacon) string {
	name := b.Name
	if name == "" {
		// Last two octets of the address
		name = b.ID
		if len(name) > 5 {
			name = name[len(name)-5:]
		}
	}
	if len(name) > maxLabelLen {
		name = name[:maxLabelLen]
	}
	return name
}

func renderCell(g grid, col, row int, rings []float64, alarmRing float64, sweep *Sweep) string {
	dist, angle := g.polar(col, row)
	if dist > g.radius+0.5 {
		return " "
	}
	if col == g.centerX && row == g.centerY {
		return styleCenter.Render("+")
	}
	if alarmRing >= 0 && math.Abs(dist-alarmRing) < 0.6 {
		return styleAlarmRng.Render(string(RingChar(angle)))
	}
	for _, r := range rings {
		if math.Abs(dist-r) < 0.8 {
			return sweepStyle(sweep, angle, styleRing).Render(string(RingChar(angle)))
		}
	}
	if col == g.centerX {
		return sweepStyle(sweep, angle, styleRing).Render("|")
	}
	if row == g.centerY {
		return sweepStyle(sweep, angle, styleRing).Render("-")
	}
	return sweepStyle(sweep, angle, styleDot).Render(".")
}

func renderBlip(bl blip, selected string) string {
	switch {
	case bl.b.ID == selected:
		return styleSelected.Render("@")
	case bl.far:
		return styleFar.Render("!")
	default:
		return styleNear.Render("*")
	}
}

// sweepStyle brightens cells under the sweep trail.
func sweepStyle(s *Sweep, angle float64, base lipgloss.Style) lipgloss.Style {
	intensity := s.Intensity(angle)
	switch {
	case intensity <= 0:
		return base
	case intensity > 0.8:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF41"))
	case intensity > 0.5:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#00CC33"))
	case intensity > 0.3:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA22"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#005511"))
	}
}

// RenderLegend produces the line under the scope.
func RenderLegend(width int, opts Options) string {
	legend := styleNear.Render("* near") + "  " +
		styleFar.Render("! beyond alarm") + "  " +
		styleSelected.Render("@") + styleLabel.Render(" selected") + "  " +
		styleRing.Render(fmt.Sprintf("%gm edge", opts.Range))

	pad := (width - lipgloss.Width(legend)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + legend
}
