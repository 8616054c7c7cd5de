package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"vkprofiler/pkg/collector"
)

const maxLogMessages = 50

// UserState is the latest known progress of one user
type UserState struct {
	Name   string
	Stage  collector.Stage
	Posts  int
	Groups int
	Err    error
}

// LogMessage is a line of the activity log
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
}

// Model is the bubbletea model of a collection run
type Model struct {
	spinner  spinner.Model
	progress progress.Model

	users map[string]*UserState
	order []string
	phase string

	logMessages []LogMessage
	startTime   time.Time
	finished    bool
	err         error

	width  int
	height int

	// cancel aborts the run when the user quits early
	cancel func()
}

// NewModel creates a model tracking users in the given order
func NewModel(users []string, cancel func()) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(neonCyan)

	p := progress.New(progress.WithDefaultGradient())
	p.Width = 40

	m := &Model{
		spinner:   s,
		progress:  p,
		users:     make(map[string]*UserState, len(users)),
		phase:     "Starting",
		startTime: time.Now(),
		cancel:    cancel,
	}
	for _, name := range users {
		m.track(name)
	}
	return m
}

func (m *Model) track(name string) *UserState {
	if state, ok := m.users[name]; ok {
		return state
	}
	state := &UserState{Name: name, Stage: collector.StagePending}
	m.users[name] = state
	m.order = append(m.order, name)
	return state
}

// applyEvent records a collector event. Users not announced upfront are
// appended to the list.
func (m *Model) applyEvent(e collector.Event) {
	state := m.track(e.User)
	state.Stage = e.Stage
	state.Posts = e.Posts
	state.Groups = e.Groups
	state.Err = e.Err

	switch e.Stage {
	case collector.StageDone:
		m.addLog("SUCCESS", "Collected "+e.User)
	case collector.StageFailed:
		msg := "Skipped " + e.User
		if e.Err != nil {
			msg += ": " + e.Err.Error()
		}
		m.addLog("ERROR", msg)
	}
}

func (m *Model) addLog(level, message string) {
	m.logMessages = append(m.logMessages, LogMessage{
		Time:    time.Now(),
		Level:   level,
		Message: message,
	})
	if len(m.logMessages) > maxLogMessages {
		m.logMessages = m.logMessages[len(m.logMessages)-maxLogMessages:]
	}
}

// Users returns the tracked users in display order
func (m *Model) Users() []UserState {
	users := make([]UserState, 0, len(m.order))
	for _, name := range m.order {
		users = append(users, *m.users[name])
	}
	return users
}

// Completion is the share of users that reached a final stage
func (m *Model) Completion() float64 {
	if len(m.order) == 0 {
		return 0
	}
	var done int
	for _, state := range m.users {
		if state.Stage.Finished() {
			done++
		}
	}
	return float64(done) / float64(len(m.order))
}

// Err is the error the run finished with, if any
func (m *Model) Err() error {
	return m.err
}
