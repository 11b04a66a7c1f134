// Package layout draws the console chrome around the active screen.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/ideate/internal/ui/theme"
)

// The console needs room for the prompt form and a few log lines.
const (
	MinWidth  = 60
	MinHeight = 20
)

// KeyHint is one key binding shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

var bar = lipgloss.NewStyle().
	Background(theme.BgCard).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(theme.Border)

// IsTooSmall reports whether the terminal is below the minimum size.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks the user to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Text).
		Render(fmt.Sprintf("Terminal too small (%dx%d).\nResize to at least %dx%d.",
			width, height, MinWidth, MinHeight))
}

// RenderHeader draws the app name on the left, the screen title in the
// middle and status, usually the model, on the right.
func RenderHeader(title, status string, width int) string {
	name := theme.Title.Render(" ideate")
	mid := theme.Body.Render(title)
	right := lipgloss.NewStyle().Foreground(theme.Accent).Render(status + " ")

	inner := max(width-2, 0)
	nameW, midW, rightW := lipgloss.Width(name), lipgloss.Width(mid), lipgloss.Width(right)

	// Centre the title on the whole bar, not on the space left over.
	gapL := max((inner-midW)/2-nameW, 1)
	gapR := max(inner-nameW-gapL-midW-rightW, 1)

	line := name + strings.Repeat(" ", gapL) + mid + strings.Repeat(" ", gapR) + right
	return bar.Width(width).Render(line)
}

// RenderFooter draws the key hints.
func RenderFooter(hints []KeyHint, width int) string {
	keys := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = keys.Render(h.Key) + " " + theme.Label.Render(h.Description)
	}
	return bar.Width(width).Render(" " + strings.Join(parts, "   "))
}

// RenderFrame stacks header, content and footer, padding the content to
// fill the height between them.
func RenderFrame(header, content, footer string, width, height int) string {
	body := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().Width(width).Height(body).MaxHeight(body).Render(content),
		footer,
	)
}
