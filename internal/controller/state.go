// Package controller holds the application state the UI renders. All
// mutation goes through the transition methods on State; none of them do
// I/O, the UI issues the matching bridge calls.
package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/qbank/internal/bank"
	"github.com/abhisek/qbank/internal/bridge"
	"github.com/abhisek/qbank/internal/session"
)

// View is the screen currently shown.
type View int

const (
	ViewHome View = iota
	ViewPractice
	ViewExam
	ViewSummary
	ViewEditor
	ViewImportExport
	ViewSettings
	ViewHistory
)

var viewNames = map[View]string{
	ViewHome:         "Home",
	ViewPractice:     "Practice",
	ViewExam:         "Exam",
	ViewSummary:      "Exam Summary",
	ViewEditor:       "Question Editor",
	ViewImportExport: "Import / Export",
	ViewSettings:     "Settings",
	ViewHistory:      "History",
}

func (v View) String() string {
	if n, ok := viewNames[v]; ok {
		return n
	}
	return fmt.Sprintf("View(%d)", int(v))
}

// ErrInvalidAnswerKey is returned when an edited item's answer key is not
// one of A-E.
var ErrInvalidAnswerKey = errors.New("answer key must be A-E")

// ErrNoSuchItem is returned when an edit targets an item that is gone.
var ErrNoSuchItem = errors.New("item not found")

// Editor is the question editor's selection and filter.
type Editor struct {
	Search     string
	SelectedID string
}

// State is the whole UI state. It is owned by the UI goroutine.
type State struct {
	View     View
	Items    []bank.Item
	ItemsRaw string
	BankHash string
	History  []session.HistoryRecord
	Info     bridge.StoreInfo
	Err      string

	Session      *session.Session
	Editor       Editor
	AutoSnapshot bool
	LastSummary  *session.Summary

	sessionOpts []session.Option
}

// New returns the state shown before the store has loaded.
func New(opts ...session.Option) *State {
	return &State{
		View:         ViewHome,
		Items:        []bank.Item{},
		ItemsRaw:     "[]",
		History:      []session.HistoryRecord{},
		AutoSnapshot: true,
		sessionOpts:  opts,
	}
}

// ApplyLoaded installs the documents read at startup. Unreadable history
// records are skipped; an unparsable bank is an error.
func (s *State) ApplyLoaded(info bridge.StoreInfo, itemsRaw, historyRaw string) error {
	s.Info = info
	s.AutoSnapshot = info.AutoSnapshots

	if strings.TrimSpace(itemsRaw) == "" {
		itemsRaw = "[]"
	}
	items, err := bank.ParseItems([]byte(itemsRaw))
	if err != nil {
		s.Err = "Failed to load data: " + err.Error()
		return fmt.Errorf("parse items: %w", err)
	}
	s.Items = items
	s.ItemsRaw = itemsRaw
	s.BankHash = bank.Fingerprint([]byte(itemsRaw))

	s.History = parseHistory(historyRaw)
	s.LastSummary = nil
	if n := len(s.History); n > 0 {
		summary := s.History[n-1].Summary
		s.LastSummary = &summary
	}
	s.Err = ""
	return nil
}

// LoadFailed records a startup failure.
func (s *State) LoadFailed(err error) {
	s.Err = "Failed to load data: " + err.Error()
}

func parseHistory(raw string) []session.HistoryRecord {
	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return []session.HistoryRecord{}
	}
	out := make([]session.HistoryRecord, 0, len(entries))
	for _, e := range entries {
		var rec session.HistoryRecord
		if err := json.Unmarshal(e, &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// SetView switches screens. Leaving practice or exam drops the session,
// except for the move from a submitted exam to its summary.
func (s *State) SetView(v View) {
	keep := v == s.View || (v == ViewSummary && s.View == ViewExam)
	if !keep && (s.View == ViewPractice || s.View == ViewExam || s.View == ViewSummary) {
		s.Session = nil
	}
	s.View = v
}

// SetAutoSnapshot mirrors the host preference after a successful toggle.
func (s *State) SetAutoSnapshot(on bool) {
	s.AutoSnapshot = on
	s.Info.AutoSnapshots = on
}
