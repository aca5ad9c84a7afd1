package home

import (
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/qbank/internal/controller"
	"github.com/abhisek/qbank/internal/screen"
	"github.com/abhisek/qbank/internal/session"
	"github.com/abhisek/qbank/internal/ui/components"
	"github.com/abhisek/qbank/internal/ui/layout"
	"github.com/abhisek/qbank/internal/ui/theme"
)

// HomeScreen is the main menu.
type HomeScreen struct {
	env  *screen.Env
	menu components.Menu
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates the home screen.
func New(env *screen.Env) *HomeScreen {
	h := &HomeScreen{env: env}

	goTo := func(v controller.View) func() tea.Cmd {
		return func() tea.Cmd {
			env.State.SetView(v)
			return nil
		}
	}

	h.menu = components.NewMenu([]components.MenuItem{
		{Label: "Practice", Hint: "every question, answers shown as you go", Action: h.begin(session.ModePractice)},
		{Label: "Exam", Hint: fmt.Sprintf("up to %d questions, graded at the end", session.DefaultExamSize), Action: h.begin(session.ModeExam)},
		{Label: "Question Editor", Action: goTo(controller.ViewEditor)},
		{Label: "Import / Export", Action: goTo(controller.ViewImportExport)},
		{Label: "Settings", Action: goTo(controller.ViewSettings)},
		{Label: "History", Action: goTo(controller.ViewHistory)},
		{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	})
	return h
}

func (h *HomeScreen) begin(mode session.Mode) func() tea.Cmd {
	return func() tea.Cmd {
		if err := h.env.State.BeginSession(mode); err != nil {
			if errors.Is(err, session.ErrEmptyBank) {
				return screen.Alert("No questions yet. Import or create some in the editor.")
			}
			return screen.Alert(err.Error())
		}
		return nil
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	st := h.env.State
	var b strings.Builder

	b.WriteString(theme.Title.Render("Question Bank"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%d questions in bank", len(st.Items))))
	b.WriteString("\n")
	if st.LastSummary != nil {
		last := st.LastSummary
		b.WriteString(theme.Subtitle.Render(fmt.Sprintf("Last session: %d/%d correct (%d%%)",
			last.Correct, last.Total, last.Percent)))
		b.WriteString("\n")
	}
	if st.Err != "" {
		b.WriteString("\n")
		b.WriteString(theme.Alert.Render(st.Err))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(h.menu.View())

	if !layout.IsCompactHeight(height) && st.Info.DataPath != "" {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("Data: " + st.Info.DataPath))
	}

	card := theme.Card.Width(min(width-4, 72)).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
