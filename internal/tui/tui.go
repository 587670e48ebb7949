// Package tui implements the optional --watch live dashboard
// (SPEC_FULL.md §10.4): a bubbletea program that polls a running
// Simulation's LiveStates and renders each node's cache lines with lipgloss
// styling; directory state is not shown. It is pure presentation: it never
// calls back into the coherence engine and has no effect on protocol
// decisions.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ehrlich-b/go-mesi/internal/protocol"
	"github.com/ehrlich-b/go-mesi/internal/reporter"
)

// simulation is the subset of *mesi.Simulation the dashboard needs. Kept
// as an interface so this package never imports the root package (which
// already depends on internal packages the dashboard itself would pull
// in, risking an import cycle) and so it stays unit-testable.
type simulation interface {
	Run(ctx context.Context) error
	LiveStates() []reporter.NodeState
	NumNodes() int
}

const tickInterval = 100 * time.Millisecond

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	nodeStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Margin(0, 1, 1, 0)
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	runStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

type tickMsg time.Time

type model struct {
	sim    simulation
	states []reporter.NodeState
	runErr error
	done   bool
}

// Run starts sim.Run in the background and blocks, rendering a live
// dashboard, until the simulation reaches quiescence or ctx is cancelled.
func Run(ctx context.Context, sim simulation) error {
	m := &model{sim: sim, states: make([]reporter.NodeState, sim.NumNodes())}
	p := tea.NewProgram(m)

	resultCh := make(chan error, 1)
	go func() {
		resultCh <- sim.Run(ctx)
	}()
	go func() {
		err := <-resultCh
		p.Send(simDoneMsg{err: err})
	}()

	_, err := p.Run()
	if err != nil {
		return err
	}
	return m.runErr
}

type simDoneMsg struct{ err error }

func (m *model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case tickMsg:
		m.states = m.sim.LiveStates()
		if m.done {
			return m, nil
		}
		return m, tick()
	case simDoneMsg:
		m.runErr = msg.err
		m.done = true
		m.states = m.sim.LiveStates()
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) View() string {
	var b strings.Builder
	status := runStyle.Render("running")
	if m.done {
		status = doneStyle.Render("quiesced")
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("meshsim — %d nodes — %s", len(m.states), status)))
	b.WriteString("\n\n")

	var row strings.Builder
	for _, state := range m.states {
		row.WriteString(nodeStyle.Render(fmt.Sprintf("node %d\n%s", int(state.ID), nodeTable(state).View())))
	}
	b.WriteString(row.String())
	b.WriteString("\npress q to quit\n")
	return b.String()
}

// nodeTable renders one node's resident cache lines as a bubbles table
// tall enough to show every line. View places one such table per node
// side by side, whatever the node count; nothing is paged or scrolled.
func nodeTable(state reporter.NodeState) table.Model {
	columns := []table.Column{
		{Title: "Line", Width: 4},
		{Title: "Addr", Width: 6},
		{Title: "Val", Width: 4},
		{Title: "State", Width: 9},
	}
	rows := make([]table.Row, len(state.Cache))
	for i, line := range state.Cache {
		addr, val, st := "-", "-", "-"
		if line.State != protocol.Invalid {
			addr = fmt.Sprintf("0x%02X", byte(line.Address))
			val = fmt.Sprintf("%d", line.Value)
			st = line.State.String()
		}
		rows[i] = table.Row{fmt.Sprintf("%d", i), addr, val, st}
	}
	return table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
	)
}
