package report

import (
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
)

const (
	// DefaultBarLength is the number of cells of the usage bar.
	DefaultBarLength = 20

	usedChar   = "█"
	unusedChar = "-"
)

// The renderer is pinned to basic ANSI colors so output does not depend on
// the terminal the report is written to.
var barRenderer = func() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.ANSI)
	return r
}()

var ratingStyles = map[Rating]lipgloss.Style{
	Good:     barRenderer.NewStyle().Foreground(lipgloss.Color("2")),
	Medium:   barRenderer.NewStyle().Foreground(lipgloss.Color("3")),
	Bad:      barRenderer.NewStyle().Foreground(lipgloss.Color("1")),
	Danger:   barRenderer.NewStyle().Foreground(lipgloss.Color("5")),
	NoRating: barRenderer.NewStyle().Foreground(lipgloss.Color("4")),
}

// BarWidth is the visible width of a bar of maxlen cells including the
// rating label.
func BarWidth(maxlen int) int {
	return maxlen + len("|| (") + len("medium") + len(")")
}

// RenderBar draws usage as maxlen cells followed by the rating label. A nil
// usage gives a blank bar of the same width. Colored and plain bars have the
// same visible width.
func RenderBar(usage *float64, rating Rating, maxlen int, color bool) string {
	width := BarWidth(maxlen)
	if usage == nil {
		blank := "|" + strings.Repeat(" ", maxlen) + "|"
		return blank + strings.Repeat(" ", width-len(blank))
	}

	pct := math.Max(0, math.Min(*usage, 100))
	usedLen := int(math.Round(float64(maxlen) * pct / 100))
	used := strings.Repeat(usedChar, usedLen)
	unused := strings.Repeat(unusedChar, maxlen-usedLen)
	label := rating.String()
	if color {
		style := ratingStyles[rating]
		used = style.Render(used)
		label = style.Render(label)
	}

	bar := "|" + used + unused + "| (" + label + ")"
	if pad := width - ansi.StringWidth(bar); pad > 0 {
		bar += strings.Repeat(" ", pad)
	}
	return bar
}
