package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/mdlab/internal/mdrun"
	"github.com/san-kum/mdlab/internal/stopsignal"
)

const (
	tickInterval    = 100 * time.Millisecond
	historyCapacity = 120
	graphHeight     = 10
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type tickMsg time.Time

type runDoneMsg struct {
	status mdrun.Status
}

// Model monitors a running session and doubles as an interactive signal
// adapter: the first quit keypress requests a graceful stop through the
// registry, the second an immediate one. The session itself runs in a
// separate goroutine; the model only reads Progress.
type Model struct {
	session *mdrun.Session
	reg     *stopsignal.Registry
	done    <-chan mdrun.Status

	name    string
	history []float64
	status  *mdrun.Status
	stops   int
}

func NewModel(name string, session *mdrun.Session, reg *stopsignal.Registry, done <-chan mdrun.Status) Model {
	return Model{
		session: session,
		reg:     reg,
		done:    done,
		name:    name,
		history: make([]float64, 0, historyCapacity),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.waitForRun())
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) waitForRun() tea.Cmd {
	return func() tea.Msg {
		return runDoneMsg{status: <-m.done}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.status != nil {
				return m, tea.Quit
			}
			m.stops++
			if m.stops == 1 {
				m.reg.Set(stopsignal.NextCheckpoint)
			} else {
				m.reg.Set(stopsignal.Immediate)
			}
		}
		return m, nil

	case tickMsg:
		if m.status != nil {
			return m, nil
		}
		_, _, etot := m.session.Progress()
		m.history = append(m.history, etot)
		if len(m.history) > historyCapacity {
			m.history = m.history[1:]
		}
		return m, m.tick()

	case runDoneMsg:
		m.status = &msg.status
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("mdlab · %s", m.name)))
	b.WriteString("\n")

	step, target, etot := m.session.Progress()
	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}
	row("step", fmt.Sprintf("%d / %d", step, target))
	row("energy", fmt.Sprintf("%.6f", etot))
	row("state", m.session.State().String())

	if cond := m.reg.Get(); cond != stopsignal.None && m.status == nil {
		b.WriteString(warnStyle.Render(fmt.Sprintf("stop requested (%s), waiting for step boundary", cond)))
		b.WriteString("\n")
	}

	if len(m.history) > 1 {
		b.WriteString(graphStyle.Render(asciigraph.Plot(m.history,
			asciigraph.Height(graphHeight),
			asciigraph.Caption("total energy"))))
		b.WriteString("\n")
	}

	if m.status != nil {
		b.WriteString("\n")
		if m.status.Success() {
			b.WriteString(valueStyle.Render(m.status.Message()))
		} else {
			b.WriteString(warnStyle.Render(m.status.Message()))
		}
		b.WriteString(helpStyle.Render("\npress q to exit"))
	} else {
		b.WriteString(helpStyle.Render("\nq: stop at next checkpoint · q twice: stop now"))
	}

	return b.String()
}

// Run launches the session's step loop in a goroutine and blocks on the
// monitor UI until the run finishes and the user exits.
func Run(name string, session *mdrun.Session, reg *stopsignal.Registry) (mdrun.Status, error) {
	done := make(chan mdrun.Status, 1)
	go func() {
		done <- session.Run()
	}()

	model := NewModel(name, session, reg, done)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return mdrun.Status{}, err
	}

	if m, ok := final.(Model); ok && m.status != nil {
		return *m.status, nil
	}
	// UI exited before the run finished (should not happen; quit is gated on
	// the done message). Wait for the session to stop.
	reg.Set(stopsignal.Immediate)
	return <-done, nil
}
