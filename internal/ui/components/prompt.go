package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/qbank/internal/ui/theme"
)

// Prompt is a modal single-line question, used for file dialogs.
type Prompt struct {
	Title string
	Help  string
	Input TextInput
}

// NewPrompt creates a focused prompt prefilled with value.
func NewPrompt(title, help, value string) (Prompt, tea.Cmd) {
	in := NewTextInput("", "", false, 0)
	in.SetValue(value)
	in.Model.CursorEnd()
	cmd := in.Focus()
	return Prompt{Title: title, Help: help, Input: in}, cmd
}

// Update forwards input to the text field. It reports done when Enter or
// Esc was pressed, with ok false for Esc.
func (p Prompt) Update(msg tea.Msg) (Prompt, tea.Cmd, bool, bool) {
	if kmsg, isKey := msg.(tea.KeyMsg); isKey {
		switch kmsg.String() {
		case "enter":
			return p, nil, true, true
		case "esc":
			return p, nil, true, false
		}
	}
	var cmd tea.Cmd
	p.Input, cmd = p.Input.Update(msg)
	return p, cmd, false, false
}

// Value is the trimmed answer.
func (p Prompt) Value() string {
	return strings.TrimSpace(p.Input.Value())
}

// View renders the prompt box at the given width.
func (p Prompt) View(width int) string {
	w := width - 8
	if w > 72 {
		w = 72
	}
	if w < 20 {
		w = 20
	}
	p.Input.SetWidth(w - 6)

	var b strings.Builder
	b.WriteString(theme.Title.Render(p.Title))
	b.WriteString("\n\n")
	b.WriteString(p.Input.View())
	b.WriteString("\n\n")
	if p.Help != "" {
		b.WriteString(theme.Hint.Render(p.Help))
		b.WriteString("\n")
	}
	b.WriteString(theme.Hint.Render("Enter to confirm · Esc to cancel"))
	return theme.Overlay.Width(w).Render(b.String())
}
