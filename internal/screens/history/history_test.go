package history

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/qbank/internal/controller"
	"github.com/abhisek/qbank/internal/screen"
	"github.com/abhisek/qbank/internal/session"
)

func record(id string, mode session.Mode, correct, total int) session.HistoryRecord {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	results := make([]session.Result, total)
	for i := range results {
		results[i] = session.Result{ID: "q", Correct: i < correct, Confidence: 1}
	}
	return session.HistoryRecord{
		SessionID: id,
		Mode:      mode,
		StartedAt: start,
		EndedAt:   start.Add(90 * time.Second),
		Results:   results,
		Summary:   session.Summarize(results),
	}
}

func TestHistoryScreen_Empty(t *testing.T) {
	s := New(&screen.Env{State: controller.New()})
	if !strings.Contains(s.View(80, 24), "No sessions yet") {
		t.Error("expected empty-state message")
	}
}

func TestHistoryScreen_NewestFirst(t *testing.T) {
	st := controller.New()
	st.History = []session.HistoryRecord{
		record("old", session.ModePractice, 1, 2),
		record("new", session.ModeExam, 3, 4),
	}
	s := New(&screen.Env{State: st})

	view := s.View(100, 24)
	newIdx := strings.Index(view, "3/4 correct")
	oldIdx := strings.Index(view, "1/2 correct")
	if newIdx < 0 || oldIdx < 0 || newIdx > oldIdx {
		t.Errorf("expected newest record first, got %q", view)
	}
	if !strings.Contains(view, "1:30") {
		t.Error("expected duration 1:30")
	}
}

func TestHistoryScreen_Expand(t *testing.T) {
	st := controller.New()
	st.History = []session.HistoryRecord{record("a", session.ModeExam, 1, 3)}
	s := New(&screen.Env{State: st})

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !strings.Contains(s.View(100, 24), "missed 2") {
		t.Error("expected details after enter")
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if strings.Contains(s.View(100, 24), "missed 2") {
		t.Error("expected details collapsed after second enter")
	}
}

func TestHistoryScreen_SelectionBounds(t *testing.T) {
	st := controller.New()
	st.History = []session.HistoryRecord{record("a", session.ModeExam, 1, 1)}
	s := New(&screen.Env{State: st})

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	s.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if s.selected != 0 {
		t.Errorf("selected = %d, want 0", s.selected)
	}
}
