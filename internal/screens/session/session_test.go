package session

import (
	"math/rand/v2"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/qbank/internal/bank"
	"github.com/abhisek/qbank/internal/controller"
	"github.com/abhisek/qbank/internal/screen"
	sess "github.com/abhisek/qbank/internal/session"
)

func testEnv(t *testing.T, mode sess.Mode) *screen.Env {
	t.Helper()
	st := controller.New(sess.WithRand(rand.New(rand.NewPCG(1, 2))))
	st.Items = []bank.Item{
		bank.Normalize(bank.Item{ID: "q1", Stem: "First stem", Choices: []string{"a", "b", "c", "d", "e"}, AnswerKey: "B", Explanation: "Because B."}),
		bank.Normalize(bank.Item{ID: "q2", Stem: "Second stem", Choices: []string{"a", "b", "c", "d", "e"}, AnswerKey: "D"}),
	}
	if err := st.BeginSession(mode); err != nil {
		t.Fatalf("BeginSession: %v", err)
	}
	return &screen.Env{State: st}
}

func key(s string) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: rune(s[0]), Text: s}
}

func TestSessionScreen_Title(t *testing.T) {
	if got := New(testEnv(t, sess.ModePractice)).Title(); got != "Practice" {
		t.Errorf("Title = %q, want Practice", got)
	}
	if got := New(testEnv(t, sess.ModeExam)).Title(); got != "Exam" {
		t.Errorf("Title = %q, want Exam", got)
	}
}

func TestSessionScreen_SelectAndReveal(t *testing.T) {
	env := testEnv(t, sess.ModePractice)
	s := New(env)

	s.Update(key("2"))
	if got := env.State.Session.CurrentResponse().Selected; got != "B" {
		t.Fatalf("Selected = %q, want B", got)
	}

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil {
		t.Error("reveal should not produce a command")
	}
	if !env.State.Session.CurrentResponse().Revealed {
		t.Error("expected current question to be revealed")
	}

	view := s.View(100, 30)
	if !strings.Contains(view, "Correct!") && !strings.Contains(view, "Incorrect. Answer:") {
		t.Errorf("expected feedback in view, got %q", view)
	}
}

func TestSessionScreen_Navigation(t *testing.T) {
	env := testEnv(t, sess.ModePractice)
	s := New(env)
	first := env.State.Session.Current()

	s.Update(key("j"))
	if env.State.Session.Current() == first {
		t.Error("expected j to move to the next question")
	}
	s.Update(key("k"))
	if env.State.Session.Current() != first {
		t.Error("expected k to move back")
	}
	s.Update(key("k"))
	if env.State.Session.Index != 1 {
		t.Errorf("Index = %d, want wrap to 1", env.State.Session.Index)
	}
}

func TestSessionScreen_ConfidenceAndReview(t *testing.T) {
	env := testEnv(t, sess.ModeExam)
	s := New(env)

	s.Update(key("c"))
	s.Update(key("r"))
	resp := env.State.Session.CurrentResponse()
	if resp.Confidence != 2 {
		t.Errorf("Confidence = %d, want 2", resp.Confidence)
	}
	if !resp.Reviewed {
		t.Error("expected review flag")
	}
	if !strings.Contains(s.View(100, 30), "Review") {
		t.Error("expected review marker in view")
	}
}

func TestSessionScreen_ExamSubmit(t *testing.T) {
	env := testEnv(t, sess.ModeExam)
	s := New(env)

	s.Update(key("4"))
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command to save history after submit")
	}
	if env.State.View != controller.ViewSummary {
		t.Errorf("View = %v, want summary", env.State.View)
	}

	_, cmd = s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil {
		t.Error("a second submit must not save again")
	}
}

func TestSessionScreen_EndPractice(t *testing.T) {
	env := testEnv(t, sess.ModePractice)
	s := New(env)

	_, cmd := s.Update(key("x"))
	if cmd == nil {
		t.Fatal("expected a command to save history after ending practice")
	}
	if env.State.View != controller.ViewHome || env.State.Session != nil {
		t.Errorf("expected home with no session, got %v", env.State.View)
	}
}

func TestSessionScreen_MissingItem(t *testing.T) {
	env := testEnv(t, sess.ModePractice)
	env.State.Items = nil
	view := New(env).View(100, 30)
	if !strings.Contains(view, "no longer in the bank") {
		t.Errorf("expected missing item notice, got %q", view)
	}
}
