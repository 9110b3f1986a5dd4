/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package inspect is a read-only bubbletea dashboard over a running VM: a
// class table that shows each class's Unknown -> ... -> Done progress, a
// view of the main thread's current frame stack, and a sparkline of how many
// classes have reached Done over time. Modeled on jdiag's internal/tui
// dashboard -- one polling Model driven by tea.Tick, not a push subscription
// -- since the core exposes no event stream of its own (spec §9).
package inspect

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/NimbleMarkets/ntcharts/sparkline"

	"jacobin/classloader"
	"jacobin/classpath"
	"jacobin/frame"
	"jacobin/jvm"
)

const pollInterval = 200 * time.Millisecond

// Config is what the CLI's `inspect` subcommand gathers from flags.
type Config struct {
	Classpath []string
	MainClass string
	UseMmap   bool
}

type tickMsg time.Time

type runDoneMsg struct{ err error }

// Model is the dashboard's bubbletea state. The VM itself runs on a
// separate goroutine (started from Init); Model only ever reads its
// Manager/Threads through the snapshot accessors, never mutates VM state.
type Model struct {
	cfg Config
	mgr *classloader.Manager
	vm  *jvm.VM

	classTable table.Model
	spark      sparkline.Model
	doneCounts []float64

	running bool
	runErr  error

	width, height int
}

// New builds a Model ready to run mainClass under cfg.Classpath.
func New(cfg Config) *Model {
	var reader classpath.Reader
	if cfg.UseMmap {
		reader = classpath.NewMmapFileReader(cfg.Classpath)
	} else {
		reader = classpath.NewDirReader(cfg.Classpath)
	}
	mgr := classloader.NewManager(reader)
	vm := jvm.NewVM(mgr)

	cols := []table.Column{
		{Title: "ID", Width: 4},
		{Title: "Class", Width: 32},
		{Title: "State", Width: 10},
	}
	t := table.New(table.WithColumns(cols), table.WithHeight(10))

	spark := sparkline.New(40, 4, sparkline.WithStyle(goodStyle))

	return &Model{
		cfg:        cfg,
		mgr:        mgr,
		vm:         vm,
		classTable: t,
		spark:      spark,
		running:    true,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.startRunCmd(), tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// startRunCmd launches RunMain on its own goroutine and reports completion
// as a tea.Msg. RunMain registers its thread with vm.Threads as soon as it
// creates it, well before it returns, so the TUI reads the live thread
// through vm.Threads.All() instead of waiting on this call's result.
func (m *Model) startRunCmd() tea.Cmd {
	return func() tea.Msg {
		th, err := m.vm.RunMain(m.cfg.MainClass, nil)
		if err == nil && th != nil && th.Fault != nil {
			err = th.Fault
		}
		return runDoneMsg{err: err}
	}
}

// currentThread returns the thread RunMain is driving, once it's been
// registered. Safe to call from the bubbletea event loop while
// startRunCmd's goroutine is still running, since ThreadManager guards its
// own state.
func (m *Model) currentThread() *frame.Thread {
	threads := m.vm.Threads.All()
	if len(threads) == 0 {
		return nil
	}
	return threads[len(threads)-1]
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		return m, nil

	case runDoneMsg:
		m.running = false
		m.runErr = msg.err
		return m, nil

	case tickMsg:
		m.refresh()
		if m.running {
			return m, tickCmd()
		}
		return m, nil
	}

	return m, nil
}

// refresh pulls a fresh class-table snapshot and pushes the current Done
// count onto the sparkline -- the "classes reaching Done over time" series
// the spec's inspector calls for.
func (m *Model) refresh() {
	snap := m.mgr.Snapshot()
	rows := make([]table.Row, 0, len(snap))
	doneCount := 0.0
	for _, c := range snap {
		rows = append(rows, table.Row{fmt.Sprintf("%d", c.ID), c.Name, c.State.String()})
		if c.State == classloader.Done {
			doneCount++
		}
	}
	m.classTable.SetRows(rows)
	m.spark.Push(doneCount)
	m.spark.Draw()
}

func (m *Model) View() string {
	header := titleStyle.Render(fmt.Sprintf(" jacobin inspect: %s ", m.cfg.MainClass))

	status := goodStyle.Render("running")
	if !m.running {
		if m.runErr != nil {
			status = warnStyle.Render(fmt.Sprintf("faulted: %v", m.runErr))
		} else {
			status = goodStyle.Render("completed")
		}
	}

	classPanel := panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		mutedStyle.Render("class table"), m.classTable.View()))

	framePanel := panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		mutedStyle.Render("frame stack"), m.renderFrames()))

	sparkPanel := panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		mutedStyle.Render("classes done over time"), m.spark.View()))

	body := lipgloss.JoinHorizontal(lipgloss.Top, classPanel, framePanel)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		status,
		body,
		sparkPanel,
		mutedStyle.Render("q: quit"),
	)
}

func (m *Model) renderFrames() string {
	th := m.currentThread()
	if th == nil {
		return mutedStyle.Render("(thread not started)")
	}
	frames := th.Frames()
	if len(frames) == 0 {
		return mutedStyle.Render(fmt.Sprintf("(empty, state=%s)", th.State))
	}
	var lines []string
	for i := len(frames) - 1; i >= 0; i-- {
		f := frames[i]
		lines = append(lines, fmt.Sprintf("#%d class=%d method=%d pc=%d depth=%d",
			len(frames)-1-i, f.ClassID, f.MethodIndex, f.PC, len(f.OperandStack)))
	}
	return strings.Join(lines, "\n")
}

// Start runs the dashboard to completion (until the user quits).
func Start(cfg Config) error {
	m := New(cfg)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
