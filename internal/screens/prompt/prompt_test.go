package prompt

import (
	"context"
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/ideate/internal/ideation"
	"github.com/abhisek/ideate/internal/router"
	runscreen "github.com/abhisek/ideate/internal/screens/run"
)

type fakeStarter struct {
	got ideation.StartInput
	run *ideation.Run
	err error
}

func (f *fakeStarter) Start(_ context.Context, in ideation.StartInput) (*ideation.Run, error) {
	f.got = in
	return f.run, f.err
}

func newScreen(st Starter, d Defaults) *PromptScreen {
	s := New(context.Background(), st, d)
	s.Init()
	return s
}

func TestPromptScreen_Title(t *testing.T) {
	s := newScreen(&fakeStarter{}, Defaults{})
	if s.Title() != "New Job" {
		t.Errorf("Title = %q, want %q", s.Title(), "New Job")
	}
}

func TestPromptScreen_Input(t *testing.T) {
	tests := []struct {
		name    string
		d       Defaults
		problem bool
	}{
		{"valid", Defaults{Prompt: "kites", BatchSize: "3", OutputDir: "ideas"}, false},
		{"no prompt", Defaults{Prompt: "  ", BatchSize: "3", OutputDir: "ideas"}, true},
		{"zero batch", Defaults{Prompt: "kites", BatchSize: "0", OutputDir: "ideas"}, true},
		{"empty batch", Defaults{Prompt: "kites", BatchSize: "", OutputDir: "ideas"}, true},
		{"no dir", Defaults{Prompt: "kites", BatchSize: "3", OutputDir: ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newScreen(&fakeStarter{}, tt.d)
			_, problem := s.Input()
			if (problem != "") != tt.problem {
				t.Fatalf("Input() problem = %q, want problem %v", problem, tt.problem)
			}
		})
	}
}

func TestPromptScreen_EnterStartsJob(t *testing.T) {
	st := &fakeStarter{}
	s := newScreen(st, Defaults{Prompt: "kites", BatchSize: "3", OutputDir: "ideas"})

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a start command on Enter")
	}
	if !s.Busy() {
		t.Fatal("expected screen busy while starting")
	}

	msg := cmd()
	if st.got.Prompt != "kites" || st.got.BatchSize != 3 || st.got.OutputDir != "ideas" {
		t.Fatalf("unexpected start input: %+v", st.got)
	}

	_, cmd = s.Update(msg)
	if cmd == nil {
		t.Fatal("expected a push command after start")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", cmd())
	}
	if _, ok := push.Screen.(*runscreen.RunScreen); !ok {
		t.Fatalf("expected run screen, got %T", push.Screen)
	}
	if s.Busy() {
		t.Fatal("expected screen idle after start")
	}
}

func TestPromptScreen_StartFailureShown(t *testing.T) {
	st := &fakeStarter{err: errors.New("could not reach Ollama API")}
	s := newScreen(st, Defaults{Prompt: "kites", BatchSize: "1", OutputDir: "ideas"})

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	s.Update(cmd())

	if s.errMsg != "could not reach Ollama API" {
		t.Fatalf("expected error shown, got %q", s.errMsg)
	}
	if s.Busy() {
		t.Fatal("expected screen idle after failure")
	}
}

func TestPromptScreen_InvalidFormDoesNotStart(t *testing.T) {
	st := &fakeStarter{}
	s := newScreen(st, Defaults{Prompt: "", BatchSize: "1", OutputDir: "ideas"})

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("expected no command for an invalid form")
	}
	if s.errMsg == "" {
		t.Fatal("expected a validation message")
	}
}

func TestPromptScreen_TabCyclesFocus(t *testing.T) {
	s := newScreen(&fakeStarter{}, Defaults{})

	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if s.focus != fieldBatch {
		t.Fatalf("expected focus on batch field, got %d", s.focus)
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if s.focus != fieldPrompt {
		t.Fatalf("expected focus to wrap to prompt, got %d", s.focus)
	}
	if !s.fields[fieldPrompt].Focused() || s.fields[fieldBatch].Focused() {
		t.Fatal("expected exactly the prompt field focused")
	}
}

func TestPromptScreen_View(t *testing.T) {
	s := newScreen(&fakeStarter{}, Defaults{Prompt: "kites", BatchSize: "3", OutputDir: "ideas"})
	if s.View(80, 24) == "" {
		t.Error("expected non-empty view")
	}
}
