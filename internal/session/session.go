// Package session implements the practice and exam state machine: question
// ordering, per-question responses, and grading into history records.
package session

import (
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/qbank/internal/bank"
)

// DefaultExamSize is the maximum number of questions in an exam.
const DefaultExamSize = 25

// ErrEmptyBank is returned by Begin when there are no items to ask.
var ErrEmptyBank = errors.New("no questions available; import or create items first")

// Mode selects the practice or exam rules.
type Mode string

const (
	ModePractice Mode = "practice"
	ModeExam     Mode = "exam"
)

// Phase is the lifecycle state of a session.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseActive
	PhaseEnded     // practice, after End
	PhaseSubmitted // exam, after Submit
)

func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhaseEnded:
		return "ended"
	case PhaseSubmitted:
		return "submitted"
	}
	return "not-started"
}

// Response is the learner's state for one question.
type Response struct {
	Selected   string // "" when unanswered
	Confidence int    // 1..3
	Reviewed   bool
	Revealed   bool  // practice only
	Correct    *bool // set by Reveal in practice
}

// Session is one practice or exam run. It is not safe for concurrent use;
// the UI goroutine owns it.
type Session struct {
	ID        string
	Mode      Mode
	Order     []string
	Index     int
	StartedAt time.Time
	Version   string

	phase     Phase
	responses map[string]*Response
	keys      map[string]string
	now       func() time.Time

	summary *Summary
	misses  []Result
}

type config struct {
	shuffle  func(n int, swap func(i, j int))
	now      func() time.Time
	examSize int
}

// Option configures Begin.
type Option func(*config)

// WithRand makes the question order deterministic.
func WithRand(r *rand.Rand) Option {
	return func(c *config) { c.shuffle = r.Shuffle }
}

// WithClock overrides time.Now for start and end stamps.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// WithExamSize overrides DefaultExamSize. Values below 1 are ignored.
func WithExamSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.examSize = n
		}
	}
}

// Begin starts a session over items. Practice asks every item in a uniform
// random order; an exam asks a random subset of at most the exam size.
func Begin(mode Mode, items []bank.Item, version string, opts ...Option) (*Session, error) {
	if len(items) == 0 {
		return nil, ErrEmptyBank
	}

	cfg := config{
		shuffle:  rand.Shuffle,
		now:      time.Now,
		examSize: DefaultExamSize,
	}
	for _, o := range opts {
		o(&cfg)
	}

	order := bank.IDs(items)
	cfg.shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	if mode == ModeExam && len(order) > cfg.examSize {
		order = order[:cfg.examSize]
	}

	return &Session{
		ID:        uuid.NewString(),
		Mode:      mode,
		Order:     order,
		StartedAt: cfg.now(),
		Version:   version,
		phase:     PhaseActive,
		responses: make(map[string]*Response, len(order)),
		keys:      bank.AnswerKeys(items),
		now:       cfg.now,
	}, nil
}

// Phase returns the lifecycle state.
func (s *Session) Phase() Phase {
	return s.phase
}

// Active reports whether mutations are still accepted.
func (s *Session) Active() bool {
	return s.phase == PhaseActive
}

// Len is the number of questions in the session.
func (s *Session) Len() int {
	return len(s.Order)
}

// Current returns the id of the question at Index.
func (s *Session) Current() string {
	if len(s.Order) == 0 {
		return ""
	}
	return s.Order[s.Index]
}

// Response returns a copy of the response for id. Unvisited questions read
// as unanswered with confidence 1.
func (s *Session) Response(id string) Response {
	if r, ok := s.responses[id]; ok {
		return *r
	}
	return Response{Confidence: 1}
}

// CurrentResponse is Response(Current()).
func (s *Session) CurrentResponse() Response {
	return s.Response(s.Current())
}

// Answered counts questions with a selection.
func (s *Session) Answered() int {
	n := 0
	for _, r := range s.responses {
		if r.Selected != "" {
			n++
		}
	}
	return n
}

func (s *Session) current() *Response {
	id := s.Current()
	r, ok := s.responses[id]
	if !ok {
		r = &Response{Confidence: 1}
		s.responses[id] = r
	}
	return r
}

// SelectChoice records letter (A-E, any case) for the current question.
// Invalid letters are ignored. In practice a selection after Reveal does
// not change the correctness already shown.
func (s *Session) SelectChoice(letter string) bool {
	if !s.Active() {
		return false
	}
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if !bank.ValidLetter(letter) {
		return false
	}
	s.current().Selected = letter
	return true
}

// Reveal grades the current practice question. It is a no-op in exams,
// without a selection, or once revealed.
func (s *Session) Reveal() bool {
	if !s.Active() || s.Mode != ModePractice {
		return false
	}
	r, ok := s.responses[s.Current()]
	if !ok || r.Selected == "" || r.Revealed {
		return false
	}
	correct := r.Selected == s.keys[s.Current()]
	r.Correct = &correct
	r.Revealed = true
	return true
}

// Move navigates circularly by step questions.
func (s *Session) Move(step int) {
	if !s.Active() || len(s.Order) == 0 {
		return
	}
	n := len(s.Order)
	s.Index = ((s.Index+step)%n + n) % n
}

// CycleConfidence advances the current confidence 1 -> 2 -> 3 -> 1.
func (s *Session) CycleConfidence() {
	if !s.Active() {
		return
	}
	r := s.current()
	r.Confidence = clampConfidence(r.Confidence)%3 + 1
}

// ToggleReview flips the review flag of the current question.
func (s *Session) ToggleReview() {
	if !s.Active() {
		return
	}
	r := s.current()
	r.Reviewed = !r.Reviewed
}

// End finishes a practice session. It returns the history record on the
// first call only.
func (s *Session) End() (*HistoryRecord, bool) {
	if !s.Active() || s.Mode != ModePractice {
		return nil, false
	}
	rec := s.record()
	s.phase = PhaseEnded
	return rec, true
}

// Submit finishes an exam and freezes its summary and misses. It returns
// the history record on the first call only.
func (s *Session) Submit() (*HistoryRecord, bool) {
	if !s.Active() || s.Mode != ModeExam {
		return nil, false
	}
	rec := s.record()
	summary := rec.Summary
	s.summary = &summary
	s.misses = Misses(rec.Results)
	s.phase = PhaseSubmitted
	return rec, true
}

// Summary is the frozen exam summary, nil before Submit.
func (s *Session) Summary() *Summary {
	return s.summary
}

// Misses are the incorrect results frozen by Submit.
func (s *Session) Misses() []Result {
	return s.misses
}

func clampConfidence(c int) int {
	if c < 1 {
		return 1
	}
	if c > 3 {
		return 3
	}
	return c
}
