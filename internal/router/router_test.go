package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/ideate/internal/screen"
)

// stubScreen is a minimal screen for testing.
type stubScreen struct {
	title   string
	initRan bool
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return s.title }
func (s *stubScreen) Title() string                           { return s.title }

func TestPush(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Push(s2)

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "second" {
		t.Errorf("expected active 'second', got %q", r.Active().Title())
	}
	if !s2.initRan {
		t.Error("expected Init() to run on pushed screen")
	}
}

func TestPop(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Push(s2)
	r.Pop()

	if r.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", r.Depth())
	}
	if r.Active().Title() != "first" {
		t.Errorf("expected active 'first', got %q", r.Active().Title())
	}
}

func TestPopNoopAtBottom(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	r.Pop()

	if r.Depth() != 1 {
		t.Errorf("expected depth 1 after pop at bottom, got %d", r.Depth())
	}
}

func TestReplace(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Replace(s2)

	if r.Depth() != 1 {
		t.Errorf("expected depth 1 after replace, got %d", r.Depth())
	}
	if r.Active().Title() != "second" {
		t.Errorf("expected active 'second', got %q", r.Active().Title())
	}
	if !s2.initRan {
		t.Error("expected Init() to run on replaced screen")
	}
}

func TestReplaceScreenMsg(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Update(ReplaceScreenMsg{Screen: s2})

	if r.Active().Title() != "second" {
		t.Errorf("expected active 'second', got %q", r.Active().Title())
	}
	if !s2.initRan {
		t.Error("expected Init() to run via ReplaceScreenMsg")
	}
}

func TestReplacePreservesStackDepth(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Push(s2)

	s3 := &stubScreen{title: "third"}
	r.Replace(s3)

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "third" {
		t.Errorf("expected active 'third', got %q", r.Active().Title())
	}
}

func TestUpdateForwardsToActive(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	if cmd := r.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); cmd != nil {
		t.Error("expected nil command from stub screen")
	}
	if r.View(80, 24) != "first" {
		t.Errorf("expected view 'first', got %q", r.View(80, 24))
	}
}

func TestPushPopMessages(t *testing.T) {
	r := New(&stubScreen{title: "first"})

	r.Update(PushScreenMsg{Screen: &stubScreen{title: "second"}})
	if r.Depth() != 2 {
		t.Fatalf("expected depth 2, got %d", r.Depth())
	}

	r.Update(PopScreenMsg{})
	if r.Active().Title() != "first" {
		t.Errorf("expected active 'first', got %q", r.Active().Title())
	}
}

// busyStub is a screen that can refuse to be left.
type busyStub struct {
	stubScreen
	busy bool
}

func (b *busyStub) Busy() bool { return b.busy }

func TestBusyScreenCannotBeLeft(t *testing.T) {
	r := New(&stubScreen{title: "prompt"})
	job := &busyStub{stubScreen: stubScreen{title: "job"}, busy: true}
	r.Push(job)

	if r.CanPop() {
		t.Error("expected CanPop false while busy")
	}
	r.Update(PopScreenMsg{})
	r.Update(ReplaceScreenMsg{Screen: &stubScreen{title: "other"}})
	if r.Active().Title() != "job" {
		t.Errorf("expected busy screen to stay active, got %q", r.Active().Title())
	}

	job.busy = false
	if !r.CanPop() {
		t.Error("expected CanPop true once idle")
	}
	r.Update(PopScreenMsg{})
	if r.Active().Title() != "prompt" {
		t.Errorf("expected active 'prompt', got %q", r.Active().Title())
	}
}
