package tui

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"vkprofiler/pkg/collector"
)

// TUI renders collection progress while the work runs on another goroutine
type TUI struct {
	program *tea.Program
}

// New creates a TUI for users. cancel is called when the user aborts.
func New(users []string, cancel func(), opts ...tea.ProgramOption) *TUI {
	return &TUI{program: tea.NewProgram(NewModel(users, cancel), opts...)}
}

// NewWithOutput creates a TUI drawing to w without reading keyboard input
func NewWithOutput(users []string, cancel func(), w io.Writer) *TUI {
	return New(users, cancel, tea.WithOutput(w), tea.WithInput(nil))
}

// Run blocks until Finish is called or the user quits
func (t *TUI) Run() error {
	_, err := t.program.Run()
	return err
}

// Observe forwards a collector event; it can be passed to
// collector.Collector.Observe.
func (t *TUI) Observe(e collector.Event) {
	t.program.Send(EventMsg(e))
}

// Phase announces the current step
func (t *TUI) Phase(format string, args ...interface{}) {
	t.program.Send(PhaseMsg(fmt.Sprintf(format, args...)))
}

// Log adds a line to the activity log
func (t *TUI) Log(level, format string, args ...interface{}) {
	t.program.Send(LogMsg{Level: level, Message: fmt.Sprintf(format, args...)})
}

// Finish ends the program, marking the run failed when err is set
func (t *TUI) Finish(err error) {
	t.program.Send(DoneMsg{Err: err})
}
