package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"vkprofiler/pkg/collector"
)

// EventMsg carries a collector progress event
type EventMsg collector.Event

// PhaseMsg announces the step the run is in
type PhaseMsg string

// LogMsg adds a line to the activity log
type LogMsg struct {
	Level   string
	Message string
}

// DoneMsg ends the run
type DoneMsg struct {
	Err error
}

// Init starts the spinner
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = max(10, min(60, msg.Width-20))
		return m, nil

	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case EventMsg:
		m.applyEvent(collector.Event(msg))
		return m, nil

	case PhaseMsg:
		m.phase = string(msg)
		m.addLog("INFO", string(msg))
		return m, nil

	case LogMsg:
		m.addLog(msg.Level, msg.Message)
		return m, nil

	case DoneMsg:
		m.finished = true
		m.err = msg.Err
		if msg.Err != nil {
			m.phase = "Failed"
			m.addLog("ERROR", msg.Err.Error())
		} else {
			m.phase = "Done"
		}
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		if m.cancel != nil && !m.finished {
			m.cancel()
		}
		m.addLog("WARN", "Interrupted by user")
		return m, tea.Quit

	case "ctrl+l":
		m.logMessages = nil
		return m, nil
	}
	return m, nil
}
