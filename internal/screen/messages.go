package screen

import (
	"github.com/abhisek/qbank/internal/bridge"
	"github.com/abhisek/qbank/internal/session"
	"github.com/abhisek/qbank/internal/store"
)

// ImportFormat selects how an imported file is applied.
type ImportFormat int

const (
	ImportJSONMerge ImportFormat = iota
	ImportJSONReplace
	ImportCSV
)

// LoadedMsg carries the documents read at startup.
type LoadedMsg struct {
	Info    bridge.StoreInfo
	Items   string
	History string
	Err     error
}

// ItemsSavedMsg reports a write of items.json.
type ItemsSavedMsg struct {
	Raw string
	Err error
}

// HistorySavedMsg reports an appendHistory call.
type HistorySavedMsg struct {
	Record session.HistoryRecord
	Err    error
}

// SnapshotMsg reports a manual snapshot.
type SnapshotMsg struct {
	Files []string
	Err   error
	Quiet bool
}

// ImportedMsg carries the file picked for import.
type ImportedMsg struct {
	Format   ImportFormat
	Content  string
	Filename string
	Err      error
}

// ExportedMsg reports an export.
type ExportedMsg struct {
	Path string
	Err  error
}

// MediaCopiedMsg reports media copied for an item.
type MediaCopiedMsg struct {
	ItemID string
	Kind   store.MediaKind
	Files  []string
	Err    error
}

// AutoSnapshotsSetMsg reports a change of the auto-snapshot preference.
type AutoSnapshotsSetMsg struct {
	Enabled bool
	Err     error
}

// PushMsg is an unsolicited host message.
type PushMsg struct {
	Reply bridge.Reply
}

// ToastMsg asks the app to show a transient status line.
type ToastMsg struct {
	Text  string
	Error bool
}
