package components

import (
	"strconv"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/ideate/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with a label and focus styling.
type TextInput struct {
	Label       string
	Model       textinput.Model
	NumericOnly bool
}

// NewTextInput creates a new, unfocused text input.
func NewTextInput(label, placeholder string, numericOnly bool, charLimit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}

	return TextInput{
		Label:       label,
		Model:       ti,
		NumericOnly: numericOnly,
	}
}

// Focus focuses the input and returns the cursor blink command.
func (t *TextInput) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur removes focus.
func (t *TextInput) Blur() {
	t.Model.Blur()
}

// Focused reports whether the input has focus.
func (t TextInput) Focused() bool {
	return t.Model.Focused()
}

// Update handles messages.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if t.NumericOnly {
		if kmsg, ok := msg.(tea.KeyMsg); ok {
			key := kmsg.String()
			if len(key) == 1 {
				if key[0] < '0' || key[0] > '9' {
					return t, nil
				}
			}
		}
	}

	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the label above a bordered input.
func (t TextInput) View(width int) string {
	card := theme.Card
	if t.Focused() {
		card = theme.FocusedCard
	}
	t.Model.SetWidth(max(width-4, 1))

	return lipgloss.JoinVertical(lipgloss.Left,
		theme.Label.Render(t.Label),
		card.Width(width).Render(t.Model.View()),
	)
}

// SetValue replaces the input's content.
func (t *TextInput) SetValue(v string) {
	t.Model.SetValue(v)
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// NumericValue returns the input value as an integer.
func (t TextInput) NumericValue() (int, error) {
	return strconv.Atoi(t.Model.Value())
}
