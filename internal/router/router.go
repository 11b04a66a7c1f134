// Package router keeps the console's stack of screens.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/ideate/internal/screen"
)

// PushScreenMsg opens Screen on top of the current one.
type PushScreenMsg struct {
	Screen screen.Screen
}

// PopScreenMsg returns to the previous screen.
type PopScreenMsg struct{}

// ReplaceScreenMsg swaps the active screen for Screen.
type ReplaceScreenMsg struct {
	Screen screen.Screen
}

// Router owns a stack of screens. The bottom screen is never removed,
// and a screen that reports itself busy cannot be popped or replaced.
type Router struct {
	stack []screen.Screen
}

// New creates a Router whose root is root.
func New(root screen.Screen) *Router {
	return &Router{stack: []screen.Screen{root}}
}

// Push opens s and returns its Init command.
func (r *Router) Push(s screen.Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

// CanPop reports whether Pop would leave the active screen.
func (r *Router) CanPop() bool {
	return len(r.stack) > 1 && !r.activeBusy()
}

// Pop closes the active screen unless CanPop is false.
func (r *Router) Pop() tea.Cmd {
	if !r.CanPop() {
		return nil
	}
	r.stack[len(r.stack)-1] = nil
	r.stack = r.stack[:len(r.stack)-1]
	return nil
}

// Replace swaps the active screen for s unless the active screen is busy.
func (r *Router) Replace(s screen.Screen) tea.Cmd {
	if r.activeBusy() {
		return nil
	}
	r.stack[len(r.stack)-1] = s
	return s.Init()
}

// Active returns the top screen.
func (r *Router) Active() screen.Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

// Depth returns the number of open screens.
func (r *Router) Depth() int {
	return len(r.stack)
}

func (r *Router) activeBusy() bool {
	b, ok := r.Active().(screen.Busy)
	return ok && b.Busy()
}

// Update handles navigation messages and forwards everything else to the
// active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case PopScreenMsg:
		return r.Pop()
	case ReplaceScreenMsg:
		return r.Replace(msg.Screen)
	}

	active := r.Active()
	if active == nil {
		return nil
	}
	updated, cmd := active.Update(msg)
	r.stack[len(r.stack)-1] = updated
	return cmd
}

// View renders the active screen.
func (r *Router) View(width, height int) string {
	if active := r.Active(); active != nil {
		return active.View(width, height)
	}
	return ""
}
