// Package prompt is the console's start screen: the user enters a prompt,
// a batch size and an output directory, then starts a job.
package prompt

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/ideate/internal/ideation"
	"github.com/abhisek/ideate/internal/router"
	"github.com/abhisek/ideate/internal/screen"
	runscreen "github.com/abhisek/ideate/internal/screens/run"
	"github.com/abhisek/ideate/internal/ui/components"
	"github.com/abhisek/ideate/internal/ui/layout"
	"github.com/abhisek/ideate/internal/ui/theme"
)

// Starter starts jobs. *ideation.Service implements it.
type Starter interface {
	Start(ctx context.Context, in ideation.StartInput) (*ideation.Run, error)
}

const (
	fieldPrompt = iota
	fieldBatch
	fieldDir
	numFields
)

// PromptScreen implements screen.Screen for job setup.
type PromptScreen struct {
	ctx     context.Context
	starter Starter

	fields   [numFields]components.TextInput
	focus    int
	starting bool
	errMsg   string
}

var _ screen.Screen = (*PromptScreen)(nil)
var _ screen.KeyHintProvider = (*PromptScreen)(nil)
var _ screen.Busy = (*PromptScreen)(nil)

// Defaults pre-fills the form.
type Defaults struct {
	Prompt    string
	BatchSize string
	OutputDir string
}

// New creates a PromptScreen. ctx bounds every job started from it.
func New(ctx context.Context, starter Starter, d Defaults) *PromptScreen {
	s := &PromptScreen{ctx: ctx, starter: starter}

	s.fields[fieldPrompt] = components.NewTextInput("Prompt", "Describe what to generate ideas about...", false, 0)
	s.fields[fieldBatch] = components.NewTextInput("Number of iterations", "10", true, 6)
	s.fields[fieldDir] = components.NewTextInput("Output directory", "ideas", false, 0)

	s.fields[fieldPrompt].SetValue(d.Prompt)
	s.fields[fieldBatch].SetValue(d.BatchSize)
	s.fields[fieldDir].SetValue(d.OutputDir)
	return s
}

func (s *PromptScreen) Init() tea.Cmd {
	return s.setFocus(fieldPrompt)
}

func (s *PromptScreen) Title() string {
	return "New Job"
}

func (s *PromptScreen) Busy() bool {
	return s.starting
}

func (s *PromptScreen) KeyHints() []layout.KeyHint {
	if s.starting {
		return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Start"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *PromptScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		s.starting = false
		s.errMsg = ""
		next := runscreen.New(msg.run, msg.input.BatchSize, msg.input.OutputDir)
		return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }

	case startFailedMsg:
		s.starting = false
		s.errMsg = msg.err.Error()
		return s, nil

	case tea.KeyMsg:
		if s.starting {
			return s, nil
		}
		switch msg.String() {
		case "tab", "down":
			return s, s.setFocus((s.focus + 1) % numFields)
		case "shift+tab", "up":
			return s, s.setFocus((s.focus + numFields - 1) % numFields)
		case "enter":
			return s, s.submit()
		}
	}

	var cmd tea.Cmd
	s.fields[s.focus], cmd = s.fields[s.focus].Update(msg)
	return s, cmd
}

func (s *PromptScreen) setFocus(i int) tea.Cmd {
	for j := range s.fields {
		s.fields[j].Blur()
	}
	s.focus = i
	return s.fields[i].Focus()
}

// Input returns the form's current values as a StartInput. It reports
// a user-facing message when the form is not ready.
func (s *PromptScreen) Input() (ideation.StartInput, string) {
	in := ideation.StartInput{
		Prompt:    strings.TrimSpace(s.fields[fieldPrompt].Value()),
		OutputDir: strings.TrimSpace(s.fields[fieldDir].Value()),
	}
	if in.Prompt == "" {
		return in, "Please enter a prompt."
	}
	n, err := s.fields[fieldBatch].NumericValue()
	if err != nil || n < 1 {
		return in, "Number of iterations must be a positive number."
	}
	in.BatchSize = n
	if in.OutputDir == "" {
		return in, "Please choose an output directory."
	}
	return in, ""
}

func (s *PromptScreen) submit() tea.Cmd {
	in, problem := s.Input()
	if problem != "" {
		s.errMsg = problem
		return nil
	}

	s.starting = true
	s.errMsg = ""
	ctx, starter := s.ctx, s.starter
	return func() tea.Msg {
		run, err := starter.Start(ctx, in)
		if err != nil {
			return startFailedMsg{err: err}
		}
		return startedMsg{run: run, input: in}
	}
}

func (s *PromptScreen) View(width, height int) string {
	inner := min(width-4, 100)

	var b strings.Builder
	for i := range s.fields {
		b.WriteString(s.fields[i].View(inner))
		b.WriteString("\n")
	}

	switch {
	case s.starting:
		b.WriteString(theme.Hint.Render("Checking the Ollama API..."))
	case s.errMsg != "":
		b.WriteString(theme.LogError.Width(inner).Render(s.errMsg))
	default:
		b.WriteString(theme.Hint.Render("Each idea is saved as a markdown file in the output directory."))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top,
		lipgloss.NewStyle().Padding(1, 2).Render(b.String()))
}
