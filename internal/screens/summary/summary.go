package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/qbank/internal/bank"
	"github.com/abhisek/qbank/internal/controller"
	"github.com/abhisek/qbank/internal/screen"
	"github.com/abhisek/qbank/internal/ui/layout"
	"github.com/abhisek/qbank/internal/ui/theme"
)

// SummaryScreen displays the score and misses of a submitted exam.
type SummaryScreen struct {
	env    *screen.Env
	offset int
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(env *screen.Env) *SummaryScreen {
	return &SummaryScreen{env: env}
}

func (s *SummaryScreen) Init() tea.Cmd {
	s.offset = 0
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Exam Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Enter", Description: "Home"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter":
			s.env.State.SetView(controller.ViewHome)
		case "up", "k":
			if s.offset > 0 {
				s.offset--
			}
		case "down", "j":
			s.offset++
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	cur := s.env.State.Session
	if cur == nil || cur.Summary() == nil {
		return ""
	}
	sum := cur.Summary()

	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render("Exam complete!"))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Render(fmt.Sprintf("Questions: %d        Correct: %d        Score: %d%%",
			sum.Total, sum.Correct, sum.Percent)))
	b.WriteString("\n\n")

	misses := cur.Misses()
	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(
		strings.Repeat("─", min(width-8, 60)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("Missed (%d)", len(misses)))))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n\n")

	if len(misses) == 0 {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Correct.Render("Nothing missed.")))
		return b.String()
	}

	if s.offset > len(misses)-1 {
		s.offset = len(misses) - 1
	}
	inner := min(width-8, 76)
	for _, m := range misses[s.offset:] {
		item, ok := bank.Find(s.env.State.Items, m.ID)
		if !ok {
			b.WriteString(theme.Hint.Render("  (question removed from the bank)"))
			b.WriteString("\n\n")
			continue
		}
		answer := "none"
		if m.Selected != nil {
			answer = *m.Selected
		}

		b.WriteString(lipgloss.NewStyle().Width(inner).PaddingLeft(2).Foreground(theme.Text).Bold(true).Render(item.Stem))
		b.WriteString("\n")
		b.WriteString("  " + theme.Incorrect.Render("Your answer: "+answer) +
			"   " + theme.Correct.Render("Correct: "+item.AnswerKey))
		b.WriteString("\n")
		if item.Explanation != "" {
			b.WriteString(lipgloss.NewStyle().Width(inner).PaddingLeft(2).Foreground(theme.TextDim).Render(item.Explanation))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}
