package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Document and folder names under the data root.
const (
	ItemsFile    = "items.json"
	HistoryFile  = "history.json"
	SnapshotsDir = "snapshots"
	MediaDir     = "media"
	JournalFile  = "journal.db"
	LogFile      = "qbank.log"
)

// Store is the sandboxed document store. Reads go straight to disk; every
// mutation runs on a single writer goroutine in submission order.
type Store struct {
	root   string
	seed   []byte
	now    func() time.Time
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
	ops    chan op
	done   chan struct{}
}

type op struct {
	fn     func() error
	result chan error
}

// Option configures a Store.
type Option func(*Store)

// WithSeed sets the bank written to items.json on first bootstrap.
func WithSeed(seed []byte) Option {
	return func(s *Store) { s.seed = seed }
}

// WithClock overrides the clock used for snapshot stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger. A nil logger means slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Open creates the root directory if needed and starts the writer.
func Open(root string, opts ...Option) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve data root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create data root: %w", err)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolve data root: %w", err)
	}

	s := &Store{
		root: real,
		now:  time.Now,
		ops:  make(chan op, 64),
		done: make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	go s.run()
	return s, nil
}

// Root returns the resolved data root.
func (s *Store) Root() string {
	return s.root
}

// Close stops the writer after draining queued mutations.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.ops)
	s.mu.Unlock()

	<-s.done
	return nil
}

func (s *Store) run() {
	defer close(s.done)
	for o := range s.ops {
		o.result <- o.fn()
	}
}

// submit queues fn on the writer and waits for its result. If ctx ends
// after fn was queued, fn still runs but its result is discarded.
func (s *Store) submit(ctx context.Context, name string, fn func() error) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ioError("submit", name, ErrClosed)
	}
	o := op{fn: fn, result: make(chan error, 1)}
	select {
	case s.ops <- o:
	case <-ctx.Done():
		s.mu.RUnlock()
		return ctx.Err()
	}
	s.mu.RUnlock()

	select {
	case err := <-o.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Paths lists the absolute locations reported to the UI.
type Paths struct {
	Data      string
	Items     string
	History   string
	Snapshots string
	Journal   string
	Log       string
}

// Paths returns the absolute document locations.
func (s *Store) Paths() Paths {
	return Paths{
		Data:      s.root,
		Items:     filepath.Join(s.root, ItemsFile),
		History:   filepath.Join(s.root, HistoryFile),
		Snapshots: filepath.Join(s.root, SnapshotsDir),
		Journal:   filepath.Join(s.root, JournalFile),
		Log:       filepath.Join(s.root, LogFile),
	}
}

// DefaultDataDir resolves the data root in priority order:
// 1. QBANK_HOME environment variable
// 2. $XDG_DATA_HOME/qbank
// 3. ~/.local/share/qbank
func DefaultDataDir() (string, error) {
	if p := os.Getenv("QBANK_HOME"); p != "" {
		return p, nil
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "qbank"), nil
}
