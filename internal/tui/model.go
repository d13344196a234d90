package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"myresources/internal/report"
	"myresources/internal/torque"
)

type Options struct {
	Source string
	Jobs   []torque.Job
	States []string
	Color  bool
	Alerts bool
}

// Model is a scrollable view over one already computed report.
type Model struct {
	source string
	jobs   []torque.Job
	color  bool
	alerts bool

	// filters[0] is the filter the program was started with.
	filters   [][]string
	filterIdx int

	width  int
	height int
	offset int

	styles styles
}

type styles struct {
	title lipgloss.Style
	dim   lipgloss.Style
	chip  lipgloss.Style
	hdr   lipgloss.Style
	alert lipgloss.Style
}

const (
	viewportClipText = "…"
	headerLines      = 2
	tableHeaderLines = 2
	footerLines      = 1
)

func NewModel(opts Options) Model {
	filters := [][]string{opts.States}
	if len(opts.States) > 0 {
		filters = append(filters, nil)
	}
	for _, s := range torque.States {
		filters = append(filters, []string{s})
	}

	return Model{
		source:  opts.Source,
		jobs:    opts.Jobs,
		color:   opts.Color,
		alerts:  opts.Alerts,
		filters: filters,
		styles:  defaultStyles(!opts.Color),
	}
}

func defaultStyles(noColor bool) styles {
	if noColor {
		return styles{
			title: lipgloss.NewStyle().Bold(true),
			dim:   lipgloss.NewStyle(),
			chip:  lipgloss.NewStyle().Bold(true),
			hdr:   lipgloss.NewStyle().Bold(true),
			alert: lipgloss.NewStyle(),
		}
	}

	return styles{
		title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("24")).Padding(0, 1),
		dim:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		chip:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("238")).Padding(0, 1),
		hdr:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("109")),
		alert: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			m.offset--
		case "down", "j":
			m.offset++
		case "pgup":
			m.offset -= m.bodyHeight()
		case "pgdown", " ":
			m.offset += m.bodyHeight()
		case "home", "g":
			m.offset = 0
		case "end", "G":
			m.offset = len(m.bodyLines())
		case "a":
			m.alerts = !m.alerts
		case "s":
			m.filterIdx = (m.filterIdx + 1) % len(m.filters)
			m.offset = 0
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	m.offset = m.clampOffset(m.offset)
	return m, nil
}

func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return "initializing..."
	}

	lines := []string{m.renderHeader(), ""}
	for _, l := range strings.Split(report.Header(), "\n") {
		lines = append(lines, m.styles.hdr.Render(l))
	}

	body := m.bodyLines()
	height := m.bodyHeight()
	offset := m.clampOffset(m.offset)
	end := min(len(body), offset+height)
	visible := body[offset:end]
	if len(body) == 0 {
		visible = []string{m.styles.dim.Render("no jobs match " + m.filterLabel())}
	}
	lines = append(lines, visible...)
	for len(lines) < m.height-footerLines {
		lines = append(lines, "")
	}
	lines = append(lines, m.renderFooter(offset, end, len(body)))

	return clipToViewport(strings.Join(lines, "\n"), m.width, m.height)
}

func (m Model) renderHeader() string {
	alerts := "alerts: off"
	if m.alerts {
		alerts = "alerts: on"
	}
	return m.styles.title.Render(" MYRESOURCES ") + "  " +
		m.styles.dim.Render("source: ") + m.source + "  " +
		m.styles.chip.Render(fmt.Sprintf("jobs: %d", len(m.visibleJobs()))) + " " +
		m.styles.chip.Render("state: "+m.filterLabel()) + " " +
		m.styles.chip.Render(alerts)
}

func (m Model) renderFooter(from, to, total int) string {
	position := "0/0"
	if total > 0 {
		position = fmt.Sprintf("%d-%d/%d", from+1, to, total)
	}
	return m.styles.dim.Render("↑/↓ pgup/pgdn scroll  a alerts  s state  q quit  " + position)
}

func (m Model) filterLabel() string {
	states := m.filters[m.filterIdx]
	if len(states) == 0 {
		return "all"
	}
	return strings.Join(states, ",")
}

func (m Model) visibleJobs() []torque.Job {
	return torque.Filter{States: m.filters[m.filterIdx]}.Apply(m.jobs)
}

// bodyLines lays out every visible job the same way the console report
// does, each block followed by a blank line.
func (m Model) bodyLines() []string {
	var lines []string
	for _, job := range m.visibleJobs() {
		lines = append(lines, strings.Split(report.UsageLines(job, m.color), "\n")...)
		if m.alerts {
			for _, a := range report.Alerts(job) {
				lines = append(lines, m.styles.alert.Render(a))
			}
		}
		lines = append(lines, "")
	}
	return lines
}

func (m Model) bodyHeight() int {
	return max(1, m.height-headerLines-tableHeaderLines-footerLines)
}

func (m Model) clampOffset(offset int) int {
	limit := len(m.bodyLines()) - m.bodyHeight()
	if offset > limit {
		offset = limit
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

func truncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	return ansi.Truncate(s, maxRunes, "…")
}

func clipToViewport(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	clipped := len(lines) > height
	if len(lines) > height {
		lines = lines[:height]
	}
	if clipped && len(lines) > 0 {
		lines[len(lines)-1] = truncateRunes(viewportClipText, width)
	}
	for i := range lines {
		lines[i] = truncateRunes(lines[i], width)
		if pad := width - lipgloss.Width(lines[i]); pad > 0 {
			lines[i] += strings.Repeat(" ", pad)
		}
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}
