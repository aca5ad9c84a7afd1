package config

import (
	"sync"
	"time"
)

// Preferences is the live, persisted view of the settings the UI can
// change at runtime.
type Preferences struct {
	mu        sync.Mutex
	cfg       Config
	save      func(enabled bool) error
	listeners []func(bool)
}

// NewPreferences wraps a loaded config. Toggles are written with
// SaveAutoSnapshots.
func NewPreferences(cfg Config) *Preferences {
	return &Preferences{cfg: cfg, save: SaveAutoSnapshots}
}

// Config returns a copy of the current settings.
func (p *Preferences) Config() Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}

func (p *Preferences) AutoSnapshots() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg.Snapshots.Auto
}

func (p *Preferences) SnapshotInterval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg.Snapshots.Interval
}

// SetAutoSnapshots persists the toggle and notifies listeners. If the
// config cannot be written the previous value is kept.
func (p *Preferences) SetAutoSnapshots(enabled bool) error {
	p.mu.Lock()
	if err := p.save(enabled); err != nil {
		p.mu.Unlock()
		return err
	}
	p.cfg.Snapshots.Auto = enabled
	listeners := append([]func(bool){}, p.listeners...)
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(enabled)
	}
	return nil
}

// OnAutoSnapshots registers fn to run after every successful toggle.
func (p *Preferences) OnAutoSnapshots(fn func(bool)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}
