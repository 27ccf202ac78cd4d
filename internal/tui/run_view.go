// Package tui provides the terminal user interface for Wayfind.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/wayfind/internal/session"
)

// SessionEventMsg wraps a session event for the TUI.
type SessionEventMsg struct {
	Event session.Event
}

// RunDoneMsg signals that the session loop has returned.
type RunDoneMsg struct {
	Summary session.Summary
}

// taskRow is one queue entry with its display state.
type taskRow struct {
	text   string
	status string // "pending", "running", "done"
	action string
	result string
}

// RunApp is the bubbletea model for a live agent session.
type RunApp struct {
	goal     string
	tasks    []taskRow
	spin     spinner.Model
	width    int
	height   int
	quitting bool
	done     bool
	doneMsg  string
	summary  session.Summary

	// Styles
	headerStyle  lipgloss.Style
	goalStyle    lipgloss.Style
	pendingStyle lipgloss.Style
	runningStyle lipgloss.Style
	doneStyle    lipgloss.Style
	actionStyle  lipgloss.Style
	resultStyle  lipgloss.Style
	footerStyle  lipgloss.Style
}

// NewRunApp creates a RunApp for the given goal.
func NewRunApp(goal string) *RunApp {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &RunApp{
		goal:  goal,
		tasks: make([]taskRow, 0),
		spin:  sp,

		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("238")).
			MarginBottom(1),

		goalStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true),

		pendingStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),

		runningStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true),

		doneStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")),

		actionStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("45")),

		resultStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")),

		footerStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
	}
}

// Init implements tea.Model.
func (a *RunApp) Init() tea.Cmd {
	return a.spin.Tick
}

// Update implements tea.Model.
func (a *RunApp) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			a.quitting = true
			return a, tea.Quit
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case SessionEventMsg:
		a.handleSessionEvent(msg.Event)

	case RunDoneMsg:
		a.done = true
		a.summary = msg.Summary
		a.doneMsg = msg.Summary.StopReason
		// Stay on screen so the user can read the final state
	}

	return a, nil
}

// handleSessionEvent updates the task list from one loop event.
func (a *RunApp) handleSessionEvent(ev session.Event) {
	switch ev.Type {
	case session.EventTasksCreated:
		for _, t := range ev.Tasks {
			a.tasks = append(a.tasks, taskRow{text: t, status: "pending"})
		}

	case session.EventTaskStarted:
		if row := a.findTask(ev.Task); row != nil {
			row.status = "running"
		}

	case session.EventTaskAnalyzed:
		if row := a.findTask(ev.Task); row != nil {
			row.action = ev.Action
		}

	case session.EventTaskCompleted:
		if row := a.findTask(ev.Task); row != nil {
			row.status = "done"
			row.result = ev.Result
		}

	case session.EventSessionDone:
		a.done = true
		a.doneMsg = ev.Message
	}
}

// findTask returns the first non-done row matching text, newest state wins.
func (a *RunApp) findTask(text string) *taskRow {
	for i := range a.tasks {
		if a.tasks[i].text == text && a.tasks[i].status != "done" {
			return &a.tasks[i]
		}
	}
	return nil
}

// View implements tea.Model.
func (a *RunApp) View() string {
	if a.quitting {
		return "Session stopped.\n"
	}

	var b strings.Builder

	b.WriteString(a.headerStyle.Render("Wayfind"))
	b.WriteString("\n")
	b.WriteString(a.pendingStyle.Render("Goal: "))
	b.WriteString(a.goalStyle.Render(a.goal))
	b.WriteString("\n\n")

	if len(a.tasks) == 0 {
		b.WriteString(a.spin.View())
		b.WriteString(" planning tasks...\n")
	}

	for _, row := range a.tasks {
		switch row.status {
		case "running":
			b.WriteString("  ")
			b.WriteString(a.spin.View())
			b.WriteString(" ")
			b.WriteString(a.runningStyle.Render(row.text))
			if row.action != "" {
				b.WriteString(a.actionStyle.Render(fmt.Sprintf("  [%s]", row.action)))
			}
			b.WriteString("\n")
		case "done":
			b.WriteString("  ")
			b.WriteString(a.doneStyle.Render("✓ " + row.text))
			b.WriteString("\n")
			if row.result != "" {
				b.WriteString(a.resultStyle.Render(indent(truncateLines(row.result, 6), "      ")))
				b.WriteString("\n")
			}
		default:
			b.WriteString("  ")
			b.WriteString(a.pendingStyle.Render("○ " + row.text))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if a.done {
		b.WriteString(a.doneStyle.Render(fmt.Sprintf("Session finished: %s.", a.doneMsg)))
		b.WriteString(a.footerStyle.Render(" Press q to exit"))
	} else {
		b.WriteString(a.footerStyle.Render("Press q to stop"))
	}
	b.WriteString("\n")

	return b.String()
}

// indent prefixes every line of s.
func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// truncateLines keeps the first max lines of s.
func truncateLines(s string, max int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= max {
		return s
	}
	return strings.Join(lines[:max], "\n") + "\n..."
}

// NewRunProgram creates a Bubbletea program for a session run. Send
// session events to it via ForwardEvents or p.Send.
func NewRunProgram(goal string) (*tea.Program, *RunApp) {
	app := NewRunApp(goal)
	p := tea.NewProgram(app, tea.WithAltScreen())
	return p, app
}

// ForwardEvents pumps session events into the program until the channel
// closes. Run it in its own goroutine alongside the session driver.
func ForwardEvents(p *tea.Program, events <-chan session.Event) {
	for ev := range events {
		p.Send(SessionEventMsg{Event: ev})
	}
}
