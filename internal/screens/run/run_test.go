package run

import (
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/ideate/internal/ideation"
)

type fakeHandle struct {
	events    chan ideation.Event
	cancelled int
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{events: make(chan ideation.Event, 16)}
}

func (f *fakeHandle) Events() <-chan ideation.Event { return f.events }
func (f *fakeHandle) Cancel()                       { f.cancelled++ }

// feed sends ev through the screen the way the program loop would.
func feed(t *testing.T, s *RunScreen, h *fakeHandle, ev ideation.Event) tea.Cmd {
	t.Helper()
	h.events <- ev
	msg := waitForEvent(h.Events())()
	_, cmd := s.Update(msg)
	return cmd
}

func TestRunScreen_AppliesEvents(t *testing.T) {
	h := newFakeHandle()
	s := New(h, 2, "ideas")

	if s.Init() == nil {
		t.Fatal("expected Init to start waiting for events")
	}

	feed(t, s, h, ideation.LogEvent{Message: "Generating idea 1/2..."})
	feed(t, s, h, ideation.ItemCompletedEvent{Filename: "Kites.md", Title: "Kites"})
	feed(t, s, h, ideation.ProgressEvent{Percent: 50, Done: 1, Total: 2})
	feed(t, s, h, ideation.ErrorEvent{Message: "API Error: down"})
	cmd := feed(t, s, h, ideation.ProgressEvent{Percent: 100, Done: 2, Total: 2})
	if cmd == nil {
		t.Fatal("expected screen to keep waiting for events")
	}

	if s.saved != 1 || s.percent != 100 || s.done != 2 || s.lastTitle != "Kites" {
		t.Fatalf("unexpected state: saved=%d percent=%d done=%d title=%q", s.saved, s.percent, s.done, s.lastTitle)
	}
	if !s.Busy() {
		t.Fatal("expected screen busy before FinishedEvent")
	}

	feed(t, s, h, ideation.FinishedEvent{Summary: ideation.Summary{Total: 2, Completed: 1, Failed: 1}})
	if s.Busy() {
		t.Fatal("expected screen idle after FinishedEvent")
	}
	if s.Summary() == nil || s.Summary().Failed != 1 {
		t.Fatalf("unexpected summary: %+v", s.Summary())
	}

	log := strings.Join(s.Log(), "\n")
	for _, want := range []string{"Generating idea 1/2...", "API Error: down", "Run finished: 1 saved, 1 failed."} {
		if !strings.Contains(log, want) {
			t.Errorf("log missing %q:\n%s", want, log)
		}
	}
}

func TestRunScreen_StreamClosed(t *testing.T) {
	h := newFakeHandle()
	s := New(h, 1, "ideas")
	close(h.events)

	msg := waitForEvent(h.Events())()
	if _, ok := msg.(streamClosedMsg); !ok {
		t.Fatalf("expected streamClosedMsg, got %T", msg)
	}
	if _, cmd := s.Update(msg); cmd != nil {
		t.Fatal("expected no further command after stream closed")
	}
}

func TestRunScreen_StopKey(t *testing.T) {
	h := newFakeHandle()
	s := New(h, 3, "ideas")

	s.Update(tea.KeyPressMsg{Code: 's', Text: "s"})
	s.Update(tea.KeyPressMsg{Code: 's', Text: "s"})

	if h.cancelled != 1 {
		t.Fatalf("expected one cancel, got %d", h.cancelled)
	}
	if !s.stopping {
		t.Fatal("expected stopping state")
	}
	if len(s.KeyHints()) != 1 {
		t.Fatalf("expected only the quit hint while stopping, got %v", s.KeyHints())
	}
}

func TestRunScreen_StopIgnoredWhenFinished(t *testing.T) {
	h := newFakeHandle()
	s := New(h, 1, "ideas")
	feed(t, s, h, ideation.FinishedEvent{Summary: ideation.Summary{Err: errors.New("boom")}})

	s.Update(tea.KeyPressMsg{Code: 's', Text: "s"})
	if h.cancelled != 0 {
		t.Fatal("expected no cancel after finish")
	}
	if !strings.Contains(strings.Join(s.Log(), "\n"), "Run aborted") {
		t.Fatalf("expected abort line, got %v", s.Log())
	}
}

func TestRunScreen_View(t *testing.T) {
	h := newFakeHandle()
	s := New(h, 4, "out/ideas")
	feed(t, s, h, ideation.ProgressEvent{Percent: 25, Done: 1, Total: 4})

	view := s.View(80, 24)
	if !strings.Contains(view, "1/4") || !strings.Contains(view, "25%") || !strings.Contains(view, "out/ideas") {
		t.Errorf("unexpected view:\n%s", view)
	}
}
