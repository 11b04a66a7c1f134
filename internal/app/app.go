package app

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/ideate/internal/router"
	"github.com/abhisek/ideate/internal/screen"
	"github.com/abhisek/ideate/internal/screens/history"
	"github.com/abhisek/ideate/internal/screens/prompt"
	"github.com/abhisek/ideate/internal/ui/layout"
)

// Options configures the console.
type Options struct {
	Starter prompt.Starter
	// Model is shown in the header.
	Model    string
	Defaults prompt.Defaults
	// History enables the run history screen. Nil hides it.
	History history.Lister
	// Stopper, when set, is given up to ShutdownTimeout after the program
	// exits to finish the active run.
	Stopper Stopper
}

// Stopper finishes in-flight work before the console returns.
type Stopper interface {
	Shutdown(ctx context.Context) error
}

// ShutdownTimeout bounds how long Run waits for an active job on exit.
const ShutdownTimeout = 5 * time.Second

// AppModel is the root Bubble Tea model.
type AppModel struct {
	ctx     context.Context
	router  *router.Router
	model   string
	history history.Lister
	cancel  context.CancelFunc
	width   int
	height  int
}

// newAppModel creates a new AppModel with the prompt screen. cancel is
// called on quit so a running job stops with the program.
func newAppModel(ctx context.Context, cancel context.CancelFunc, opts Options) AppModel {
	return AppModel{
		ctx:     ctx,
		router:  router.New(prompt.New(ctx, opts.Starter, opts.Defaults)),
		model:   opts.Model,
		history: opts.History,
		cancel:  cancel,
	}
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case "esc":
			if m.router.CanPop() {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		case "ctrl+r":
			if m.history == nil || m.busy() {
				return m, nil
			}
			if _, ok := m.router.Active().(*history.HistoryScreen); ok {
				return m, nil
			}
			s := history.New(m.ctx, m.history)
			return m, func() tea.Msg { return router.PushScreenMsg{Screen: s} }
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// busy reports whether the active screen must not be left.
func (m AppModel) busy() bool {
	b, ok := m.router.Active().(screen.Busy)
	return ok && b.Busy()
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.model, m.width)

	footerHints := []layout.KeyHint{
		{Key: "Ctrl+C", Description: "Quit"},
	}
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	}
	if m.history != nil && m.router.Depth() == 1 {
		footerHints = append(footerHints, layout.KeyHint{Key: "Ctrl+R", Description: "History"})
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newAppModel(ctx, cancel, opts))
	_, err := p.Run()
	cancel()
	if opts.Stopper != nil {
		if serr := shutdown(opts.Stopper, ShutdownTimeout); serr != nil {
			fmt.Fprintln(os.Stderr, "Run still going at exit, its history entry may be incomplete:", serr)
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}

// shutdown gives s up to timeout to finish.
func shutdown(s Stopper, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.Shutdown(ctx)
}
