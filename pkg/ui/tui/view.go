package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"vkprofiler/pkg/collector"
)

const visibleLogs = 6

// View renders the run
func (m *Model) View() string {
	sections := []string{
		m.renderHeader(),
		m.renderUsersPanel(),
		m.renderLogsPanel(),
	}
	if !m.finished {
		sections = append(sections, helpStyle.Render("q: abort • ctrl+l: clear log"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func (m *Model) renderHeader() string {
	indicator := m.spinner.View()
	switch {
	case m.finished && m.err != nil:
		indicator = errorStyle.Render("✗")
	case m.finished:
		indicator = successStyle.Render("✓")
	}

	title := titleStyle.Render(" VKPROFILER ")
	phase := fmt.Sprintf("%s %s", indicator, phaseStyle.Render(m.phase))
	elapsed := fmt.Sprintf("%s %s", statsLabelStyle.Render("Elapsed:"), statsValueStyle.Render(formatDuration(time.Since(m.startTime))))

	return lipgloss.JoinVertical(lipgloss.Left,
		title+"  "+phase,
		m.progress.ViewAs(m.Completion())+"  "+elapsed,
	)
}

func (m *Model) renderUsersPanel() string {
	title := titleStyle.Render(" USERS ")

	if len(m.order) == 0 {
		return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, pendingStyle.Render("No users yet")))
	}

	lines := []string{title}
	for _, name := range m.order {
		lines = append(lines, m.renderUser(m.users[name]))
	}
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m *Model) renderUser(u *UserState) string {
	counts := fmt.Sprintf("%d posts • %d groups", u.Posts, u.Groups)

	switch u.Stage {
	case collector.StagePending:
		return pendingStyle.Render("• " + u.Name)
	case collector.StageDone:
		return successStyle.Render("✓ "+u.Name) + "  " + logMessageStyle.Render(counts)
	case collector.StageFailed:
		msg := "failed"
		if u.Err != nil {
			msg = u.Err.Error()
		}
		return errorStyle.Render("✗ "+u.Name) + "  " + logMessageStyle.Render(msg)
	default:
		return activeStyle.Render(m.spinner.View()+" "+u.Name) + "  " +
			statsValueStyle.Render(u.Stage.String()) + "  " + logMessageStyle.Render(counts)
	}
}

func (m *Model) renderLogsPanel() string {
	title := titleStyle.Render(" LOG ")

	start := max(0, len(m.logMessages)-visibleLogs)
	lines := []string{title}
	for _, log := range m.logMessages[start:] {
		timestamp := logTimestampStyle.Render(log.Time.Format("15:04:05"))
		level := lipgloss.NewStyle().Foreground(levelColor(log.Level)).Bold(true).Render(fmt.Sprintf("[%-7s]", log.Level))
		lines = append(lines, fmt.Sprintf("%s %s %s", timestamp, level, logMessageStyle.Render(truncate(log.Message, m.width-25))))
	}
	if len(lines) == 1 {
		lines = append(lines, pendingStyle.Render("No activity yet"))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

// truncate shortens s to width runes; width <= 0 means unknown
func truncate(s string, width int) string {
	runes := []rune(s)
	if width <= 3 || len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

// formatDuration formats a duration as mm:ss or hh:mm:ss
func formatDuration(d time.Duration) string {
	if d < 0 {
		return "00:00"
	}

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
