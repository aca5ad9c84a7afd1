package history

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/qbank/internal/screen"
	"github.com/abhisek/qbank/internal/session"
	"github.com/abhisek/qbank/internal/ui/layout"
	"github.com/abhisek/qbank/internal/ui/theme"
)

// HistoryScreen lists finished sessions, newest first.
type HistoryScreen struct {
	env      *screen.Env
	selected int
	expanded map[string]bool
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(env *screen.Env) *HistoryScreen {
	return &HistoryScreen{
		env:      env,
		expanded: make(map[string]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	s.selected = 0
	return nil
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

// records returns the history newest first.
func (s *HistoryScreen) records() []session.HistoryRecord {
	hist := s.env.State.History
	out := make([]session.HistoryRecord, len(hist))
	for i, rec := range hist {
		out[len(hist)-1-i] = rec
	}
	return out
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	recs := s.records()
	switch kmsg.String() {
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(recs)-1 {
			s.selected++
		}
	case "enter":
		if s.selected < len(recs) {
			id := recs[s.selected].SessionID
			s.expanded[id] = !s.expanded[id]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	recs := s.records()
	if len(recs) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No sessions yet. Start practicing!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, rec := range recs {
		dateStr := rec.EndedAt.Local().Format("Jan 02, 2006 15:04")
		dur := rec.EndedAt.Sub(rec.StartedAt)
		if dur < 0 {
			dur = 0
		}
		durationStr := fmt.Sprintf("%d:%02d", int(dur.Minutes()), int(dur.Seconds())%60)

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s%s  %-8s  %s  %d/%d correct  %d%%",
			prefix, dateStr, rec.Mode, durationStr, rec.Summary.Correct, rec.Summary.Total, rec.Summary.Percent)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[rec.SessionID] {
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().Foreground(theme.TextDim).Render(detailLine(rec))))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func detailLine(rec session.HistoryRecord) string {
	var unanswered, reviewed int
	for _, r := range rec.Results {
		if r.Selected == nil {
			unanswered++
		}
		if r.Reviewed {
			reviewed++
		}
	}
	missed := len(session.Misses(rec.Results))
	return fmt.Sprintf("    missed %d   unanswered %d   marked for review %d", missed, unanswered, reviewed)
}
