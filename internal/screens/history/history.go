// Package history lists recorded runs inside the console.
package history

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/ideate/internal/screen"
	"github.com/abhisek/ideate/internal/store"
	"github.com/abhisek/ideate/internal/ui/layout"
	"github.com/abhisek/ideate/internal/ui/theme"
)

// listLimit is how many runs the screen loads.
const listLimit = 50

// Lister reads run history. store.RunRepo implements it.
type Lister interface {
	ListRuns(ctx context.Context, opts store.QueryOpts) ([]store.RunRecord, error)
}

type historyLoadedMsg struct {
	Runs []store.RunRecord
	Err  error
}

// HistoryScreen displays past runs, newest first.
type HistoryScreen struct {
	ctx      context.Context
	lister   Lister
	runs     []store.RunRecord
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(ctx context.Context, lister Lister) *HistoryScreen {
	return &HistoryScreen{
		ctx:      ctx,
		lister:   lister,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		runs, err := s.lister.ListRuns(s.ctx, store.QueryOpts{Limit: listLimit})
		return historyLoadedMsg{Runs: runs, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.runs = msg.Runs
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.runs)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.runs) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No runs yet.")
	}

	var b strings.Builder
	b.WriteString("\n")

	detail := lipgloss.NewStyle().Foreground(theme.TextDim)
	for i, run := range s.runs {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s%s  %-10s  %d/%d saved  %d failed  %s",
			prefix,
			run.StartedAt.Local().Format("Jan 02 15:04"),
			Status(run),
			run.Completed, run.BatchSize, run.Failed,
			clip(run.Prompt, 40))

		style := lipgloss.NewStyle().Foreground(statusColor(run))
		if i == s.selected {
			style = style.Bold(true)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(detail.Render("    Run:    " + run.ID))
			b.WriteString("\n")
			b.WriteString(detail.Render("    Model:  " + run.Model))
			b.WriteString("\n")
			b.WriteString(detail.Render("    Output: " + run.OutputDir))
			b.WriteString("\n")
			if run.ErrorMessage != "" {
				b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render("    Error:  " + run.ErrorMessage))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

// Status labels a run. Runs with no finish time are still going or
// belonged to a process that died.
func Status(r store.RunRecord) string {
	switch {
	case r.FinishedAt.IsZero():
		return "unfinished"
	case r.ErrorMessage != "":
		return "aborted"
	case r.Cancelled:
		return "cancelled"
	default:
		return "completed"
	}
}

func statusColor(r store.RunRecord) color.Color {
	switch Status(r) {
	case "completed":
		return theme.Text
	case "cancelled":
		return theme.Accent
	case "aborted":
		return theme.Error
	default:
		return theme.TextDim
	}
}

func clip(s string, n int) string {
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}
