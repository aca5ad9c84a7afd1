package bridge

import (
	"context"
	"log/slog"
	"time"

	"github.com/abhisek/qbank/internal/store"
)

// Recorder persists journal entries.
type Recorder interface {
	Append(ctx context.Context, e store.JournalEntry) error
}

type journaled struct {
	inner  Handler
	rec    Recorder
	logger *slog.Logger
}

// WithJournal wraps a Handler so every handled call is recorded. Recording
// failures are logged and never fail the call.
func WithJournal(h Handler, rec Recorder, logger *slog.Logger) Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &journaled{inner: h, rec: rec, logger: logger}
}

func (j *journaled) Handle(ctx context.Context, req Request) Reply {
	start := time.Now()
	rep := j.inner.Handle(ctx, req)

	entry := store.JournalEntry{
		Timestamp: start,
		RequestID: req.ID,
		Action:    string(req.Action),
		Success:   rep.Success,
		Error:     rep.Error,
		LatencyMs: time.Since(start).Milliseconds(),
	}
	if err := j.rec.Append(context.WithoutCancel(ctx), entry); err != nil {
		j.logger.Warn("failed to journal bridge call", "action", req.Action, "error", err)
	}
	return rep
}
