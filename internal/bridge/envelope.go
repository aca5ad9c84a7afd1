// Package bridge is the correlation-id request/reply channel between the UI
// and the host that owns the store. Messages are newline-delimited JSON.
package bridge

import (
	"encoding/json"
	"time"
)

// Action names a host operation.
type Action string

const (
	ActionEnsureDataDirs   Action = "ensureDataDirs"
	ActionReadTextFile     Action = "readTextFile"
	ActionWriteTextFile    Action = "writeTextFile"
	ActionAppendHistory    Action = "appendHistory"
	ActionListMedia        Action = "listMedia"
	ActionCopyIntoMedia    Action = "copyIntoMedia"
	ActionExportFile       Action = "exportFile"
	ActionImportFile       Action = "importFile"
	ActionSnapshotNow      Action = "snapshotNow"
	ActionGetAppInfo       Action = "getAppInfo"
	ActionSetAutoSnapshots Action = "setAutoSnapshots"
)

// Actions lists every supported action.
var Actions = []Action{
	ActionEnsureDataDirs, ActionReadTextFile, ActionWriteTextFile,
	ActionAppendHistory, ActionListMedia, ActionCopyIntoMedia,
	ActionExportFile, ActionImportFile, ActionSnapshotNow,
	ActionGetAppInfo, ActionSetAutoSnapshots,
}

// Request is the UI to host envelope.
type Request struct {
	ID      string          `json:"id"`
	Action  Action          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Reply is the host to UI envelope. Pushes have no ID.
type Reply struct {
	ID      string          `json:"id,omitempty"`
	Success bool            `json:"success"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// IsPush reports whether r is unsolicited.
func (r Reply) IsPush() bool {
	return r.ID == ""
}

// Succeed builds a success reply.
func Succeed(id string, payload any) Reply {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Fail(id, &Error{Code: CodeIO, Detail: "encode reply: " + err.Error()})
	}
	return Reply{ID: id, Success: true, Payload: raw}
}

// Fail builds a failure reply from any error.
func Fail(id string, err error) Reply {
	return Reply{ID: id, Success: false, Error: toError(err).Error()}
}

// Reply payloads.
type (
	OKReply struct {
		OK bool `json:"ok"`
	}
	ContentReply struct {
		Content string `json:"content"`
	}
	FilesReply struct {
		Files []string `json:"files"`
	}
	PathReply struct {
		Path string `json:"path"`
	}
	ImportReply struct {
		Content  string `json:"content"`
		Filename string `json:"filename"`
	}
)

// StoreInfo describes where the host keeps its documents.
type StoreInfo struct {
	DataPath         string `json:"dataPath"`
	ItemsPath        string `json:"itemsPath"`
	HistoryPath      string `json:"historyPath"`
	SnapshotsPath    string `json:"snapshotsPath"`
	AutoSnapshots    bool   `json:"autoSnapshots"`
	SnapshotInterval int64  `json:"snapshotInterval"` // seconds
}

// Interval returns SnapshotInterval as a duration.
func (i StoreInfo) Interval() time.Duration {
	return time.Duration(i.SnapshotInterval) * time.Second
}

// PushTypeAutoSnapshot tags the scheduler's success push.
const PushTypeAutoSnapshot = "autosnapshot"

// Push is the payload of a success push.
type Push struct {
	Type  string   `json:"type"`
	Files []string `json:"files,omitempty"`
}
