// Package run shows a job's progress while it runs.
package run

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/ideate/internal/ideation"
	"github.com/abhisek/ideate/internal/screen"
	"github.com/abhisek/ideate/internal/ui/components"
	"github.com/abhisek/ideate/internal/ui/layout"
	"github.com/abhisek/ideate/internal/ui/theme"
)

// logLimit caps how many console lines are kept in memory.
const logLimit = 500

// Handle is the part of a started job the screen needs.
// *ideation.Run implements it.
type Handle interface {
	Events() <-chan ideation.Event
	Cancel()
}

// RunScreen implements screen.Screen for a running job.
type RunScreen struct {
	handle    Handle
	total     int
	outputDir string

	percent   int
	done      int
	saved     int
	failed    int
	lastTitle string
	stopping  bool
	summary   *ideation.Summary
	log       components.LogView
}

var _ screen.Screen = (*RunScreen)(nil)
var _ screen.KeyHintProvider = (*RunScreen)(nil)
var _ screen.Busy = (*RunScreen)(nil)

// New creates a RunScreen that consumes h's events.
func New(h Handle, total int, outputDir string) *RunScreen {
	return &RunScreen{
		handle:    h,
		total:     total,
		outputDir: outputDir,
		log:       components.NewLogView(logLimit),
	}
}

func (s *RunScreen) Init() tea.Cmd {
	return waitForEvent(s.handle.Events())
}

func (s *RunScreen) Title() string {
	return "Generating"
}

// Busy reports whether the job is still running.
func (s *RunScreen) Busy() bool {
	return s.summary == nil
}

func (s *RunScreen) KeyHints() []layout.KeyHint {
	if s.Busy() {
		if s.stopping {
			return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit now"}}
		}
		return []layout.KeyHint{
			{Key: "S", Description: "Stop"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "Esc", Description: "New job"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Summary returns the finished run's summary, or nil while running.
func (s *RunScreen) Summary() *ideation.Summary {
	return s.summary
}

// Log returns the console lines shown so far.
func (s *RunScreen) Log() []string {
	return s.log.Lines()
}

func (s *RunScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		s.apply(msg.event)
		return s, waitForEvent(s.handle.Events())

	case streamClosedMsg:
		return s, nil

	case tea.KeyMsg:
		if msg.String() == "s" && s.Busy() && !s.stopping {
			s.stopping = true
			s.handle.Cancel()
			s.log.Append(components.LogInfo, "Stopping after the current iteration...")
		}
	}
	return s, nil
}

func (s *RunScreen) apply(ev ideation.Event) {
	switch ev := ev.(type) {
	case ideation.LogEvent:
		s.log.Append(components.LogInfo, ev.Message)
	case ideation.ErrorEvent:
		s.log.Append(components.LogError, ev.Message)
	case ideation.ItemCompletedEvent:
		s.saved++
		s.lastTitle = ev.Title
		if s.lastTitle == "" {
			s.lastTitle = ev.Filename
		}
	case ideation.ProgressEvent:
		s.percent = ev.Percent
		s.done = ev.Done
	case ideation.FinishedEvent:
		sum := ev.Summary
		s.summary = &sum
		s.failed = sum.Failed
		s.log.Append(components.LogSaved, finishLine(sum))
	}
}

func finishLine(sum ideation.Summary) string {
	switch {
	case sum.Err != nil:
		return fmt.Sprintf("Run aborted: %d saved, %d failed.", sum.Completed, sum.Failed)
	case sum.Cancelled:
		return fmt.Sprintf("Run stopped: %d saved, %d failed.", sum.Completed, sum.Failed)
	default:
		return fmt.Sprintf("Run finished: %d saved, %d failed.", sum.Completed, sum.Failed)
	}
}

func (s *RunScreen) View(width, height int) string {
	inner := max(width-4, 10)

	bar := components.NewProgressBar(fmt.Sprintf("%d/%d", s.done, s.total), s.percent, inner).View()

	stats := theme.Label.Render("Saved ") + theme.LogSaved.Render(fmt.Sprint(s.saved)) +
		theme.Label.Render("   Failed ") + theme.LogError.Render(fmt.Sprint(s.failed)) +
		theme.Label.Render("   Output ") + theme.Body.Render(s.outputDir)

	last := theme.Hint.Render("Waiting for the first idea...")
	if s.lastTitle != "" {
		last = theme.Label.Render("Latest: ") + theme.Title.Render(s.lastTitle)
	}

	top := strings.Join([]string{bar, stats, last, ""}, "\n")
	logHeight := max(height-lipgloss.Height(top)-2, 1)
	console := theme.Card.Width(inner).Render(s.log.View(inner-4, logHeight))

	return lipgloss.NewStyle().Padding(1, 2, 0, 2).Render(top + "\n" + console)
}
