package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const journalTable = "bridge_events"

// openDB is swapped in tests.
var openDB = sql.Open

// JournalEntry is one handled bridge call or scheduler tick.
type JournalEntry struct {
	Sequence  int64
	Timestamp time.Time
	RequestID string
	Action    string
	Success   bool
	Error     string
	LatencyMs int64
}

// Journal is an append-only SQLite log of bridge traffic. Appends are
// serialized by a mutex so sequence numbers follow call completion order.
type Journal struct {
	mu sync.Mutex
	db *sql.DB
}

// OpenJournal opens (or creates) the journal database at dsn.
func OpenJournal(dsn string) (*Journal, error) {
	db, err := openDB("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS ` + journalTable + ` (
		sequence INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp INTEGER NOT NULL,
		request_id TEXT NOT NULL DEFAULT '',
		action TEXT NOT NULL,
		success INTEGER NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		latency_ms INTEGER NOT NULL DEFAULT 0
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal table: %w", err)
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS bridge_events_action ON ` + journalTable + ` (action)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal index: %w", err)
	}

	return &Journal{db: db}, nil
}

// Append records one entry. A zero timestamp is stamped with the current
// time.
func (j *Journal) Append(ctx context.Context, e JournalEntry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(journalTable).
		Columns("timestamp", "request_id", "action", "success", "error", "latency_ms").
		Values(e.Timestamp.UnixMilli(), e.RequestID, e.Action, e.Success, e.Error, e.LatencyMs).
		Query()

	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := j.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}
	return nil
}

// JournalQuery filters Recent.
type JournalQuery struct {
	Limit      int    // max results (0 = 50)
	Action     string // exact action match, empty for all
	FailedOnly bool
}

// Recent returns the newest entries first.
func (j *Journal) Recent(ctx context.Context, q JournalQuery) ([]JournalEntry, error) {
	if q.Limit <= 0 {
		q.Limit = 50
	}

	b := entsql.Dialect(dialect.SQLite)
	sel := b.Select("sequence", "timestamp", "request_id", "action", "success", "error", "latency_ms").
		From(b.Table(journalTable))
	if q.Action != "" {
		sel.Where(entsql.EQ("action", q.Action))
	}
	if q.FailedOnly {
		sel.Where(entsql.EQ("success", false))
	}
	query, args := sel.OrderBy(entsql.Desc("sequence")).Limit(q.Limit).Query()

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var out []JournalEntry
	for rows.Next() {
		var (
			e  JournalEntry
			ms int64
		)
		if err := rows.Scan(&e.Sequence, &ms, &e.RequestID, &e.Action, &e.Success, &e.Error, &e.LatencyMs); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		e.Timestamp = time.UnixMilli(ms)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	return out, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// applyPragmas configures SQLite for a single local writer.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}
