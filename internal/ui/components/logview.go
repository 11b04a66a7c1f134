package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/ideate/internal/ui/theme"
)

// LogKind selects how a log line is styled.
type LogKind int

const (
	LogInfo LogKind = iota
	LogError
	LogSaved
)

type logLine struct {
	kind LogKind
	text string
}

// LogView is an append-only console that shows its most recent lines.
type LogView struct {
	lines []logLine
	limit int
}

// NewLogView keeps at most limit lines; older ones are dropped.
func NewLogView(limit int) LogView {
	return LogView{limit: limit}
}

// Append adds a line.
func (l *LogView) Append(kind LogKind, text string) {
	l.lines = append(l.lines, logLine{kind: kind, text: text})
	if l.limit > 0 && len(l.lines) > l.limit {
		l.lines = l.lines[len(l.lines)-l.limit:]
	}
}

// Len returns the number of retained lines.
func (l LogView) Len() int {
	return len(l.lines)
}

// Lines returns the retained text, oldest first.
func (l LogView) Lines() []string {
	out := make([]string, len(l.lines))
	for i, ln := range l.lines {
		out[i] = ln.text
	}
	return out
}

// View renders the last lines that fit in height rows, each cut to width.
func (l LogView) View(width, height int) string {
	if height <= 0 {
		return ""
	}
	start := max(len(l.lines)-height, 0)

	rows := make([]string, 0, height)
	for _, ln := range l.lines[start:] {
		rows = append(rows, styleFor(ln.kind).MaxWidth(width).Render(ln.text))
	}
	return lipgloss.NewStyle().Height(height).Render(strings.Join(rows, "\n"))
}

func styleFor(kind LogKind) lipgloss.Style {
	switch kind {
	case LogError:
		return theme.LogError
	case LogSaved:
		return theme.LogSaved
	default:
		return theme.LogInfo
	}
}
