// Package ui renders build progress in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"mako/internal/buildpipeline"
)

const (
	maxRows     = 12 // older rows scroll away
	statusWidth = 12
	// module discovery fills this share of the bar; the whole-bundle
	// stages fill the rest
	discoveryShare = 0.7
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	rowStyles    = map[rowState]lipgloss.Style{
		rowQueued:  lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		rowWorking: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		rowDone:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		rowFailed:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
	// bundleShare maps a whole-bundle stage to the bar position it starts at.
	bundleShare = map[buildpipeline.Stage]float64{
		buildpipeline.StageGenerate: 0.75,
		buildpipeline.StageRender:   0.9,
		buildpipeline.StageWrite:    0.95,
		buildpipeline.StageRun:      0.95,
	}
)

type rowState uint8

const (
	rowQueued rowState = iota
	rowWorking
	rowDone
	rowFailed
)

// row is one module of the graph as the display knows it.
type row struct {
	path  string
	state rowState
	stage buildpipeline.Stage
}

func (r row) label() string {
	switch r.state {
	case rowDone:
		return "done"
	case rowFailed:
		return "error"
	case rowWorking:
		return stageLabel(r.stage)
	}
	return "queued"
}

// fraction is how far along the module is inside discovery.
func (r row) fraction() float64 {
	switch {
	case r.state == rowDone || r.state == rowFailed:
		return 1
	case r.stage == buildpipeline.StageResolve:
		return 0.6
	case r.stage == buildpipeline.StageParse:
		return 0.3
	}
	return 0
}

type progressModel struct {
	title   string
	events  <-chan buildpipeline.Event
	spinner spinner.Model
	bar     progress.Model

	rows   []row
	byPath map[string]int
	// stage is the last whole-bundle stage seen; empty during discovery
	stage  buildpipeline.Stage
	failed bool
	done   bool
	width  int
}

type (
	eventMsg  buildpipeline.Event
	closedMsg struct{}
)

// NewProgressModel returns a Bubble Tea model that renders pipeline
// progress. Modules are added as the builder discovers them; the model
// quits when events is closed.
func NewProgressModel(title string, events <-chan buildpipeline.Event) tea.Model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle))
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(76))
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		byPath:  make(map[string]int),
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

// next waits for one pipeline event.
func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		if ev, ok := <-m.events; ok {
			return eventMsg(ev)
		}
		return closedMsg{}
	}
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(buildpipeline.Event(msg)), m.next())
	case closedMsg:
		m.done = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) applyEvent(ev buildpipeline.Event) tea.Cmd {
	if ev.Status == buildpipeline.StatusError {
		m.failed = true
	}
	if ev.File == "" {
		if ev.Status == buildpipeline.StatusWorking {
			m.stage = ev.Stage
		}
		return m.bar.SetPercent(m.percent())
	}

	i, seen := m.byPath[ev.File]
	if !seen {
		i = len(m.rows)
		m.byPath[ev.File] = i
		m.rows = append(m.rows, row{path: ev.File})
	}
	r := &m.rows[i]
	r.stage = ev.Stage
	switch ev.Status {
	case buildpipeline.StatusQueued:
		r.state = rowQueued
	case buildpipeline.StatusWorking:
		r.state = rowWorking
	case buildpipeline.StatusDone:
		r.state = rowDone
	case buildpipeline.StatusError:
		r.state = rowFailed
	}
	return m.bar.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	if share, ok := bundleShare[m.stage]; ok {
		return share
	}
	if len(m.rows) == 0 {
		return 0
	}
	var sum float64
	for _, r := range m.rows {
		sum += r.fraction()
	}
	return discoveryShare * sum / float64(len(m.rows))
}

func (m *progressModel) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(m.header()))
	b.WriteString("\n\n")

	nameWidth := max(m.width-statusWidth-4, 20)
	rows := m.rows
	if hidden := len(rows) - maxRows; hidden > 0 {
		rows = rows[hidden:]
		fmt.Fprintf(&b, "  %*s %d more\n", statusWidth, "", hidden)
	}
	for _, r := range rows {
		status := rowStyles[r.state].Render(fmt.Sprintf("%*s", statusWidth, r.label()))
		fmt.Fprintf(&b, "  %s %s\n", status, truncate(r.path, nameWidth))
	}

	b.WriteString("\n")
	if m.done && !m.failed {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) header() string {
	h := fmt.Sprintf("%s: %d modules", m.title, len(m.rows))
	if label := stageLabel(m.stage); label != "" {
		h += " (" + label + ")"
	}
	switch {
	case m.done && m.failed:
		return "failed: " + h
	case m.done:
		return "done: " + h
	}
	return m.spinner.View() + " " + h
}

func stageLabel(stage buildpipeline.Stage) string {
	switch stage {
	case buildpipeline.StageLoad:
		return "loading"
	case buildpipeline.StageParse:
		return "parsing"
	case buildpipeline.StageResolve:
		return "resolving"
	case buildpipeline.StageGenerate:
		return "generating"
	case buildpipeline.StageRender:
		return "rendering"
	case buildpipeline.StageWrite:
		return "writing"
	case buildpipeline.StageRun:
		return "running"
	}
	return ""
}

// truncate cuts value to width display cells, marking the cut with "...".
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
