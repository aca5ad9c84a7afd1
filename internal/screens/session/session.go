// Package session renders a practice or exam run.
package session

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/qbank/internal/bank"
	"github.com/abhisek/qbank/internal/screen"
	sess "github.com/abhisek/qbank/internal/session"
	"github.com/abhisek/qbank/internal/ui/layout"
)

// SessionScreen drives the active session in the controller state. The same
// screen serves practice and exam views.
type SessionScreen struct {
	env *screen.Env
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)

// New creates a SessionScreen.
func New(env *screen.Env) *SessionScreen {
	return &SessionScreen{env: env}
}

func (s *SessionScreen) Init() tea.Cmd {
	return nil
}

func (s *SessionScreen) Title() string {
	if cur := s.env.State.Session; cur != nil && cur.Mode == sess.ModeExam {
		return "Exam"
	}
	return "Practice"
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "1-5", Description: "Answer"},
		{Key: "j/k", Description: "Next/Prev"},
		{Key: "c", Description: "Confidence"},
		{Key: "r", Description: "Review"},
	}
	if cur := s.env.State.Session; cur != nil && cur.Mode == sess.ModeExam {
		return append(hints,
			layout.KeyHint{Key: "Enter", Description: "Submit"},
			layout.KeyHint{Key: "Esc", Description: "Abandon"},
		)
	}
	return append(hints,
		layout.KeyHint{Key: "Enter", Description: "Reveal"},
		layout.KeyHint{Key: "x", Description: "End"},
		layout.KeyHint{Key: "Esc", Description: "Abandon"},
	)
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	st := s.env.State
	if st.Session == nil {
		return s, nil
	}

	switch key := kmsg.String(); key {
	case "1", "2", "3", "4", "5":
		st.Select(bank.Letters[key[0]-'1'])
	case "down", "right", "j", "n":
		st.Move(1)
	case "up", "left", "k", "p":
		st.Move(-1)
	case "c":
		st.CycleConfidence()
	case "r":
		st.ToggleReview()
	case "enter":
		if rec, done := st.Confirm(); done {
			return s, s.env.AppendHistory(*rec)
		}
	case "x":
		if rec, done := st.Finish(); done {
			return s, s.env.AppendHistory(*rec)
		}
	}
	return s, nil
}
