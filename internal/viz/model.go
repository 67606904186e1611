package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/hexgait/internal/dynamo"
	"github.com/san-kum/hexgait/internal/gait"
)

const (
	barWidth        = 36
	historyCapacity = 60
)

type frameMsg Frame

type doneMsg struct{}

// Model shows the most recent frame of a running loop.
type Model struct {
	params   gait.Params
	duration float64
	progress progress.Model
	frames   <-chan Frame
	frame   Frame
	history [dynamo.NumLegs][]float64
	pulses  int
	seen    bool
	done    bool
	paused  bool
}

// NewModel shows frames of a loop that runs for duration seconds.
func NewModel(params gait.Params, duration float64, frames <-chan Frame) Model {
	return Model{
		params:   params,
		duration: duration,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth)),
		frames:   frames,
	}
}

func (m Model) Init() tea.Cmd {
	return m.wait()
}

func (m Model) wait() tea.Cmd {
	frames := m.frames
	return func() tea.Msg {
		fr, ok := <-frames
		if !ok {
			return doneMsg{}
		}
		return frameMsg(fr)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "space":
			m.paused = !m.paused
		}
		return m, nil
	case frameMsg:
		if !m.paused {
			m.apply(Frame(msg))
		}
		return m, m.wait()
	case doneMsg:
		m.done = true
		return m, nil
	}
	return m, nil
}

func (m *Model) apply(fr Frame) {
	m.frame = fr
	m.seen = true
	for i := 0; i < dynamo.NumLegs; i++ {
		h := append(m.history[i], fr.Angles[i])
		if len(h) > historyCapacity {
			h = h[len(h)-historyCapacity:]
		}
		m.history[i] = h
		if fr.Pulse[i] {
			m.pulses++
		}
	}
}

// Progress is the share of the run shown so far, in [0, 1].
func (m Model) Progress() float64 {
	if m.done {
		return 1
	}
	if m.duration <= 0 {
		return 0
	}
	return math.Min(m.frame.Time/m.duration, 1)
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("hexgait · tripod gait"))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(m.params.String()))
	b.WriteString("\n\n")

	if !m.seen {
		b.WriteString(labelStyle.Render("waiting for the first tick..."))
		return panelStyle.Render(b.String())
	}

	fr := m.frame
	status := valueStyle.Render("walking")
	if fr.Standing {
		status = standingStyle.Render("standing")
	}
	fmt.Fprintf(&b, "%s %s   %s %s   %s %s\n\n",
		labelStyle.Render("t"), valueStyle.Render(fmt.Sprintf("%7.2fs", fr.Time)),
		labelStyle.Render("tick"), valueStyle.Render(fmt.Sprintf("%5d", fr.Index)),
		labelStyle.Render("state"), status,
	)

	for i := 0; i < dynamo.NumLegs; i++ {
		group := swingStyle.Render("swing ")
		if fr.Slow[i] {
			group = stanceStyle.Render("stance")
		}
		pulse := " "
		if fr.Pulse[i] {
			pulse = pulseStyle.Render("⚡")
		}
		fmt.Fprintf(&b, "leg %d %s %s %s %5.2f %s\n",
			i, group, pulse,
			AngleBar(fr.Angles[i], m.params.Offset, barWidth),
			fr.Angles[i],
			Sparkline(m.history[i], 0, dynamo.TwoPi, 24),
		)
	}

	fmt.Fprintf(&b, "\n%s %s\n", labelStyle.Render("pulses"), valueStyle.Render(fmt.Sprint(m.pulses)))
	fmt.Fprintf(&b, "%s\n", m.progress.ViewAs(m.Progress()))

	help := "space pause · q quit"
	if m.done {
		help = "run finished · q quit"
	} else if m.paused {
		help = "paused · space resume · q quit"
	}
	b.WriteString(helpStyle.Render(help))

	return lipgloss.JoinVertical(lipgloss.Left, panelStyle.Render(b.String()))
}
