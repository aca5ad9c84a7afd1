package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/abhisek/qbank/internal/store"
)

// Handler answers one request. Implementations must be safe for concurrent
// use; the server calls Handle from one goroutine per request.
type Handler interface {
	Handle(ctx context.Context, req Request) Reply
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, req Request) Reply

func (f HandlerFunc) Handle(ctx context.Context, req Request) Reply { return f(ctx, req) }

// DocumentStore is the persistent store as seen by the host.
type DocumentStore interface {
	Read(name string) (string, error)
	Write(ctx context.Context, name, content string) error
	AppendHistory(ctx context.Context, record json.RawMessage) error
	ListMedia(kind string) ([]string, error)
	CopyIntoMedia(ctx context.Context, kind string, sources []string) ([]string, error)
	Snapshot(ctx context.Context) ([]string, error)
	Bootstrap(ctx context.Context) error
	Paths() store.Paths
}

// Preferences holds the user settings the host reports and changes.
type Preferences interface {
	AutoSnapshots() bool
	SetAutoSnapshots(enabled bool) error
	SnapshotInterval() time.Duration
}

// Host serves the fixed action set against a store.
type Host struct {
	store   DocumentStore
	prefs   Preferences
	dialogs Dialogs
	logger  *slog.Logger
	routes  map[Action]route
}

type route func(ctx context.Context, payload json.RawMessage) (any, error)

// HostOption configures a Host.
type HostOption func(*Host)

// WithDialogs sets the file chooser collaborator. The default cancels
// every dialog.
func WithDialogs(d Dialogs) HostOption {
	return func(h *Host) { h.dialogs = d }
}

// WithPreferences sets the settings backend. The default keeps settings
// in memory with auto-snapshots enabled.
func WithPreferences(p Preferences) HostOption {
	return func(h *Host) { h.prefs = p }
}

// WithHostLogger sets the logger. A nil logger means slog.Default().
func WithHostLogger(l *slog.Logger) HostOption {
	return func(h *Host) { h.logger = l }
}

// NewHost builds a host over st.
func NewHost(st DocumentStore, opts ...HostOption) *Host {
	h := &Host{
		store:   st,
		prefs:   &MemoryPreferences{Auto: true, Interval: 10 * time.Minute},
		dialogs: NoDialogs{},
	}
	for _, o := range opts {
		o(h)
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}

	h.routes = map[Action]route{
		ActionEnsureDataDirs:   h.ensureDataDirs,
		ActionReadTextFile:     h.readTextFile,
		ActionWriteTextFile:    h.writeTextFile,
		ActionAppendHistory:    h.appendHistory,
		ActionListMedia:        h.listMedia,
		ActionCopyIntoMedia:    h.copyIntoMedia,
		ActionExportFile:       h.exportFile,
		ActionImportFile:       h.importFile,
		ActionSnapshotNow:      h.snapshotNow,
		ActionGetAppInfo:       h.getAppInfo,
		ActionSetAutoSnapshots: h.setAutoSnapshots,
	}
	return h
}

// Handle dispatches req to its action. Unknown actions fail with
// unknownAction.
func (h *Host) Handle(ctx context.Context, req Request) Reply {
	r, ok := h.routes[req.Action]
	if !ok {
		return Fail(req.ID, ErrUnknownAction)
	}
	out, err := r(ctx, req.Payload)
	if err != nil {
		if !IsCancelled(err) {
			h.logger.Warn("bridge call failed", "id", req.ID, "action", req.Action, "error", err)
		}
		return Fail(req.ID, err)
	}
	return Succeed(req.ID, out)
}

// Info reports the store locations and snapshot settings.
func (h *Host) Info() StoreInfo {
	p := h.store.Paths()
	return StoreInfo{
		DataPath:         p.Data,
		ItemsPath:        p.Items,
		HistoryPath:      p.History,
		SnapshotsPath:    p.Snapshots,
		AutoSnapshots:    h.prefs.AutoSnapshots(),
		SnapshotInterval: int64(h.prefs.SnapshotInterval() / time.Second),
	}
}

func (h *Host) ensureDataDirs(ctx context.Context, payload json.RawMessage) (any, error) {
	if err := decodeArgs(ActionEnsureDataDirs, payload, &NoArgs{}); err != nil {
		return nil, err
	}
	if err := h.store.Bootstrap(ctx); err != nil {
		return nil, err
	}
	return h.Info(), nil
}

func (h *Host) readTextFile(_ context.Context, payload json.RawMessage) (any, error) {
	var args PathArgs
	if err := decodeArgs(ActionReadTextFile, payload, &args); err != nil {
		return nil, err
	}
	content, err := h.store.Read(args.Path)
	if err != nil {
		return nil, err
	}
	return ContentReply{Content: content}, nil
}

func (h *Host) writeTextFile(ctx context.Context, payload json.RawMessage) (any, error) {
	var args WriteArgs
	if err := decodeArgs(ActionWriteTextFile, payload, &args); err != nil {
		return nil, err
	}
	if err := h.store.Write(ctx, args.Path, args.Content); err != nil {
		return nil, err
	}
	return OKReply{OK: true}, nil
}

func (h *Host) appendHistory(ctx context.Context, payload json.RawMessage) (any, error) {
	var args AppendHistoryArgs
	if err := decodeArgs(ActionAppendHistory, payload, &args); err != nil {
		return nil, err
	}
	if err := ValidateRecord(args.Record); err != nil {
		return nil, err
	}
	if err := h.store.AppendHistory(ctx, args.Record); err != nil {
		return nil, err
	}
	return OKReply{OK: true}, nil
}

func (h *Host) listMedia(_ context.Context, payload json.RawMessage) (any, error) {
	var args KindArgs
	if err := decodeArgs(ActionListMedia, payload, &args); err != nil {
		return nil, err
	}
	files, err := h.store.ListMedia(args.Kind)
	if err != nil {
		return nil, err
	}
	return FilesReply{Files: files}, nil
}

func (h *Host) copyIntoMedia(ctx context.Context, payload json.RawMessage) (any, error) {
	var args KindArgs
	if err := decodeArgs(ActionCopyIntoMedia, payload, &args); err != nil {
		return nil, err
	}
	if _, ok := store.ParseMediaKind(args.Kind); !ok {
		return nil, ErrInvalidPath
	}
	sources, err := h.dialogs.ChooseMedia(ctx, args.Kind)
	if err != nil {
		return nil, err
	}
	files, err := h.store.CopyIntoMedia(ctx, args.Kind, sources)
	if err != nil {
		return nil, err
	}
	return FilesReply{Files: files}, nil
}

func (h *Host) exportFile(ctx context.Context, payload json.RawMessage) (any, error) {
	var args ExportArgs
	if err := decodeArgs(ActionExportFile, payload, &args); err != nil {
		return nil, err
	}
	target, err := h.dialogs.ChooseSaveTarget(ctx, args.SuggestedName)
	if err != nil {
		return nil, err
	}
	if err := store.WriteFileAtomic(target, []byte(args.Content), 0o644); err != nil {
		return nil, &Error{Code: CodeIO, Detail: err.Error(), Err: err}
	}
	return PathReply{Path: target}, nil
}

func (h *Host) importFile(ctx context.Context, payload json.RawMessage) (any, error) {
	var args ImportArgs
	if err := decodeArgs(ActionImportFile, payload, &args); err != nil {
		return nil, err
	}
	path, err := h.dialogs.ChooseOpenFile(ctx, args.Accept)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &Error{Code: CodeNotFound, Err: err}
		}
		return nil, &Error{Code: CodeIO, Detail: err.Error(), Err: err}
	}
	return ImportReply{Content: string(data), Filename: filepath.Base(path)}, nil
}

func (h *Host) snapshotNow(ctx context.Context, payload json.RawMessage) (any, error) {
	if err := decodeArgs(ActionSnapshotNow, payload, &NoArgs{}); err != nil {
		return nil, err
	}
	files, err := h.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return FilesReply{Files: files}, nil
}

func (h *Host) getAppInfo(_ context.Context, payload json.RawMessage) (any, error) {
	if err := decodeArgs(ActionGetAppInfo, payload, &NoArgs{}); err != nil {
		return nil, err
	}
	return h.Info(), nil
}

func (h *Host) setAutoSnapshots(_ context.Context, payload json.RawMessage) (any, error) {
	var args AutoSnapshotArgs
	if err := decodeArgs(ActionSetAutoSnapshots, payload, &args); err != nil {
		return nil, err
	}
	if err := h.prefs.SetAutoSnapshots(args.Enabled); err != nil {
		return nil, &Error{Code: CodeIO, Detail: fmt.Sprintf("save preferences: %v", err), Err: err}
	}
	return OKReply{OK: true}, nil
}

// MemoryPreferences keeps settings in memory only.
type MemoryPreferences struct {
	mu       sync.Mutex
	Auto     bool
	Interval time.Duration
}

func (p *MemoryPreferences) AutoSnapshots() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Auto
}

func (p *MemoryPreferences) SetAutoSnapshots(enabled bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Auto = enabled
	return nil
}

func (p *MemoryPreferences) SnapshotInterval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Interval
}
