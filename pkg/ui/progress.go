package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"vkprofiler/pkg/collector"
)

const (
	ProgressBar   = "━"
	ProgressEmpty = "─"
	barWidth      = 20
)

// Progress prints a line for every collection event. It satisfies
// collector.Observer through its Observe method.
type Progress struct {
	mu        sync.Mutex
	w         io.Writer
	total     int
	collected int
	failed    int
	startTime time.Time
	color     bool
}

// NewProgress tracks total users, writing to w. color enables ANSI codes.
func NewProgress(w io.Writer, total int, color bool) *Progress {
	return &Progress{
		w:         w,
		total:     total,
		startTime: time.Now(),
		color:     color,
	}
}

// Observe reports one event
func (p *Progress) Observe(e collector.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e.Stage {
	case collector.StageDone:
		p.collected++
		fmt.Fprintf(p.w, "%s %s %s • %d posts • %d groups\n",
			p.paint(Green, "✓"), p.Bar(), p.paint(Cyan, e.User), e.Posts, e.Groups)
	case collector.StageFailed:
		p.failed++
		fmt.Fprintf(p.w, "%s %s %s • %v\n",
			p.paint(Red, "✗"), p.Bar(), p.paint(Cyan, e.User), e.Err)
	case collector.StageResolve:
		fmt.Fprintf(p.w, "%s %s\n", p.paint(Magenta, "→"), p.paint(Cyan, e.User))
	default:
		line := "  " + e.Stage.String()
		if e.Posts > 0 {
			line += fmt.Sprintf(" (%d posts so far)", e.Posts)
		}
		fmt.Fprintln(p.w, p.paint(Dim, line))
	}
}

// Bar renders finished users against the total
func (p *Progress) Bar() string {
	done := p.collected + p.failed
	filled := 0
	if p.total > 0 {
		filled = min(barWidth, done*barWidth/p.total)
	}
	return fmt.Sprintf("[%s%s] %d/%d",
		strings.Repeat(ProgressBar, filled),
		strings.Repeat(ProgressEmpty, barWidth-filled),
		done, p.total)
}

// Complete prints the collection summary
func (p *Progress) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "\n%s Collected %d of %d users in %s\n",
		p.paint(Green, "✓"), p.collected, p.total, formatDuration(time.Since(p.startTime)))
	if p.failed > 0 {
		fmt.Fprintf(p.w, "  %s %d users skipped\n", p.paint(Dim, "•"), p.failed)
	}
}

func (p *Progress) paint(c func(string) string, s string) string {
	if !p.color {
		return s
	}
	return c(s)
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
