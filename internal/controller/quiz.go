package controller

import (
	"github.com/abhisek/qbank/internal/session"
)

// BeginSession starts a practice or exam run over the current bank and
// switches to its view.
func (s *State) BeginSession(mode session.Mode) error {
	sess, err := session.Begin(mode, s.Items, s.BankHash, s.sessionOpts...)
	if err != nil {
		return err
	}
	s.Session = sess
	if mode == session.ModeExam {
		s.View = ViewExam
	} else {
		s.View = ViewPractice
	}
	return nil
}

// Select chooses an answer for the current question.
func (s *State) Select(letter string) bool {
	if s.Session == nil {
		return false
	}
	return s.Session.SelectChoice(letter)
}

// Move steps through the questions, wrapping at both ends.
func (s *State) Move(step int) {
	if s.Session != nil {
		s.Session.Move(step)
	}
}

// CycleConfidence advances the current confidence 1, 2, 3, 1.
func (s *State) CycleConfidence() {
	if s.Session != nil {
		s.Session.CycleConfidence()
	}
}

// ToggleReview flips the review flag on the current question.
func (s *State) ToggleReview() {
	if s.Session != nil {
		s.Session.ToggleReview()
	}
}

// Confirm is the enter key: reveal in practice, submit in an exam. A
// submitted exam yields its history record once and moves to the summary.
func (s *State) Confirm() (*session.HistoryRecord, bool) {
	if s.Session == nil {
		return nil, false
	}
	if s.Session.Mode == session.ModePractice {
		s.Session.Reveal()
		return nil, false
	}
	rec, ok := s.Session.Submit()
	if ok {
		s.View = ViewSummary
	}
	return rec, ok
}

// Finish ends the session early: a practice run is ended and the UI returns
// home; an exam is submitted.
func (s *State) Finish() (*session.HistoryRecord, bool) {
	if s.Session == nil {
		return nil, false
	}
	if s.Session.Mode == session.ModeExam {
		return s.Confirm()
	}
	rec, ok := s.Session.End()
	if ok {
		s.Session = nil
		s.View = ViewHome
	}
	return rec, ok
}

// RecordSaved is applied once appendHistory has succeeded.
func (s *State) RecordSaved(rec session.HistoryRecord) {
	s.History = append(s.History, rec)
	summary := rec.Summary
	s.LastSummary = &summary
}
