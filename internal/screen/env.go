package screen

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/qbank/internal/bank"
	"github.com/abhisek/qbank/internal/bridge"
	"github.com/abhisek/qbank/internal/controller"
	"github.com/abhisek/qbank/internal/session"
	"github.com/abhisek/qbank/internal/store"
)

// Env is shared by every screen: the controller state, owned by the UI
// goroutine, and the bridge client. Its command constructors run bridge
// calls off the UI goroutine and report back with messages; they never
// touch State.
type Env struct {
	State  *controller.State
	Client *bridge.Client
	Ctx    context.Context
}

func (e *Env) ctx() context.Context {
	if e.Ctx == nil {
		return context.Background()
	}
	return e.Ctx
}

// Load bootstraps the store and reads the bank and history.
func (e *Env) Load() tea.Cmd {
	return func() tea.Msg {
		ctx := e.ctx()
		info, err := e.Client.EnsureDataDirs(ctx)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		items, err := e.Client.ReadTextFile(ctx, store.ItemsFile)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		history, err := e.Client.ReadTextFile(ctx, store.HistoryFile)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		return LoadedMsg{Info: info, Items: items, History: history}
	}
}

// SaveItems writes the current bank. The encoding happens on the caller's
// goroutine so the command sees a consistent copy.
func (e *Env) SaveItems() tea.Cmd {
	raw, err := e.State.EncodeItems()
	if err != nil {
		return func() tea.Msg { return ItemsSavedMsg{Err: err} }
	}
	return func() tea.Msg {
		if err := e.Client.WriteTextFile(e.ctx(), store.ItemsFile, raw); err != nil {
			return ItemsSavedMsg{Err: err}
		}
		return ItemsSavedMsg{Raw: raw}
	}
}

// AppendHistory persists a finished session.
func (e *Env) AppendHistory(rec session.HistoryRecord) tea.Cmd {
	return func() tea.Msg {
		err := e.Client.AppendHistory(e.ctx(), rec)
		return HistorySavedMsg{Record: rec, Err: err}
	}
}

// SnapshotNow asks the host for a snapshot. Quiet snapshots only report
// failures.
func (e *Env) SnapshotNow(quiet bool) tea.Cmd {
	return func() tea.Msg {
		files, err := e.Client.SnapshotNow(e.ctx())
		return SnapshotMsg{Files: files, Err: err, Quiet: quiet}
	}
}

// Import asks the host to pick a file of the given format.
func (e *Env) Import(format ImportFormat) tea.Cmd {
	accept := ".json"
	if format == ImportCSV {
		accept = ".csv"
	}
	return func() tea.Msg {
		res, err := e.Client.ImportFile(e.ctx(), accept)
		return ImportedMsg{Format: format, Content: res.Content, Filename: res.Filename, Err: err}
	}
}

// Export asks the host for a save location and writes content there.
func (e *Env) Export(suggestedName, content string) tea.Cmd {
	return func() tea.Msg {
		path, err := e.Client.ExportFile(e.ctx(), suggestedName, content)
		return ExportedMsg{Path: path, Err: err}
	}
}

// ExportBank renders the bank in the requested format and exports it.
func (e *Env) ExportBank(csv bool) tea.Cmd {
	name, render := controller.ExportJSONName, e.State.ExportJSON
	if csv {
		name, render = controller.ExportCSVName, e.State.ExportCSV
	}
	content, err := render()
	if err != nil {
		return func() tea.Msg { return ExportedMsg{Err: fmt.Errorf("render export: %w", err)} }
	}
	return e.Export(name, content)
}

// CopyMedia asks the host to pick media and copy it in for an item.
func (e *Env) CopyMedia(itemID string, kind store.MediaKind) tea.Cmd {
	return func() tea.Msg {
		files, err := e.Client.CopyIntoMedia(e.ctx(), string(kind))
		return MediaCopiedMsg{ItemID: itemID, Kind: kind, Files: files, Err: err}
	}
}

// SetAutoSnapshots persists the auto-snapshot preference.
func (e *Env) SetAutoSnapshots(on bool) tea.Cmd {
	return func() tea.Msg {
		err := e.Client.SetAutoSnapshots(e.ctx(), on)
		return AutoSnapshotsSetMsg{Enabled: on, Err: err}
	}
}

// ListenPushes waits for the next host push.
func (e *Env) ListenPushes() tea.Cmd {
	pushes := e.Client.Pushes()
	return func() tea.Msg {
		rep, ok := <-pushes
		if !ok {
			return nil
		}
		return PushMsg{Reply: rep}
	}
}

// Toast returns a command showing text in the status line.
func Toast(text string) tea.Cmd {
	return func() tea.Msg { return ToastMsg{Text: text} }
}

// Alert returns a command showing an error in the status line.
func Alert(text string) tea.Cmd {
	return func() tea.Msg { return ToastMsg{Text: text, Error: true} }
}

// ItemLabel is a one-line description of an item for lists.
func ItemLabel(it bank.Item, width int) string {
	stem := it.Stem
	if width > 3 && len([]rune(stem)) > width {
		stem = string([]rune(stem)[:width-1]) + "…"
	}
	return stem
}
