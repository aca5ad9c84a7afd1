package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/qbank/internal/bank"
	"github.com/abhisek/qbank/internal/ui/theme"
)

// ChoiceList renders the five lettered answers of a question. It holds no
// input state; the session decides what is selected and revealed.
type ChoiceList struct {
	Choices  []string
	Selected string // letter, "" when unanswered
	Key      string // answer letter, shown only when Revealed
	Revealed bool
	Width    int
}

// View renders one line per choice.
func (c ChoiceList) View() string {
	var b strings.Builder
	for i, text := range c.Choices {
		if i >= len(bank.Letters) {
			break
		}
		letter := bank.Letters[i]
		prefix := "  "
		if letter == c.Selected {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s)  %s", prefix, letter, text)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case c.Revealed && letter == c.Key:
			style = theme.Correct
		case c.Revealed && letter == c.Selected:
			style = theme.Incorrect
		case c.Revealed:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case letter == c.Selected:
			style = theme.Selected
		}
		if c.Width > 0 {
			style = style.Width(c.Width)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
