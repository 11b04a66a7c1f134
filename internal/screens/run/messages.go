package run

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/ideate/internal/ideation"
)

// eventMsg carries one job event into the update loop.
type eventMsg struct {
	event ideation.Event
}

// streamClosedMsg is sent once the event channel is closed.
type streamClosedMsg struct{}

// waitForEvent blocks on the next event. The screen re-issues it after
// each event so the channel is always drained.
func waitForEvent(events <-chan ideation.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return streamClosedMsg{}
		}
		return eventMsg{event: ev}
	}
}
