package session

import (
	"math"
	"time"
)

// Result is the graded outcome for one question.
type Result struct {
	ID         string  `json:"id"`
	Selected   *string `json:"selected"`
	Correct    bool    `json:"correct"`
	Confidence int     `json:"confidence"`
	Reviewed   bool    `json:"reviewed"`
}

// Summary totals a session.
type Summary struct {
	Total   int `json:"total"`
	Correct int `json:"correct"`
	Percent int `json:"percent"`
}

// HistoryRecord is the persisted account of a finished session.
type HistoryRecord struct {
	SessionID     string    `json:"session_id"`
	StartedAt     time.Time `json:"started_at"`
	EndedAt       time.Time `json:"ended_at"`
	Mode          Mode      `json:"mode"`
	Version       string    `json:"version"`
	QuestionOrder []string  `json:"question_order"`
	Results       []Result  `json:"results"`
	Summary       Summary   `json:"summary"`
}

// Summarize counts correct results. Percent is rounded half away from
// zero and is 0 for an empty list.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Correct {
			s.Correct++
		}
	}
	if s.Total > 0 {
		s.Percent = int(math.Round(float64(s.Correct) * 100 / float64(s.Total)))
	}
	return s
}

// Misses filters the incorrect results.
func Misses(results []Result) []Result {
	out := []Result{}
	for _, r := range results {
		if !r.Correct {
			out = append(out, r)
		}
	}
	return out
}

// record grades every question in order. Unanswered questions are
// incorrect with confidence 1; an id missing from the bank is incorrect.
func (s *Session) record() *HistoryRecord {
	results := make([]Result, len(s.Order))
	for i, id := range s.Order {
		r := s.Response(id)
		res := Result{
			ID:         id,
			Confidence: clampConfidence(r.Confidence),
			Reviewed:   r.Reviewed,
		}
		if r.Selected != "" {
			sel := r.Selected
			res.Selected = &sel
			key, ok := s.keys[id]
			res.Correct = ok && sel == key
		}
		results[i] = res
	}

	order := make([]string, len(s.Order))
	copy(order, s.Order)

	return &HistoryRecord{
		SessionID:     s.ID,
		StartedAt:     s.StartedAt,
		EndedAt:       s.now(),
		Mode:          s.Mode,
		Version:       s.Version,
		QuestionOrder: order,
		Results:       results,
		Summary:       Summarize(results),
	}
}
