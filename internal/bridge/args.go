package bridge

import (
	"bytes"
	"encoding/json"
)

// Request payloads, one per action that takes arguments.
type (
	PathArgs struct {
		Path string `json:"path"`
	}
	WriteArgs struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}
	AppendHistoryArgs struct {
		Record json.RawMessage `json:"record"`
	}
	KindArgs struct {
		Kind string `json:"kind"`
	}
	ExportArgs struct {
		SuggestedName string `json:"suggestedName"`
		Content       string `json:"content"`
	}
	ImportArgs struct {
		Accept []string `json:"accept,omitempty"`
	}
	AutoSnapshotArgs struct {
		Enabled bool `json:"enabled"`
	}
	NoArgs struct{}
)

// required lists the mandatory payload fields per action, in the order
// they are checked.
var required = map[Action][]string{
	ActionReadTextFile:     {"path"},
	ActionWriteTextFile:    {"path", "content"},
	ActionAppendHistory:    {"record"},
	ActionListMedia:        {"kind"},
	ActionCopyIntoMedia:    {"kind"},
	ActionExportFile:       {"suggestedName", "content"},
	ActionSetAutoSnapshots: {"enabled"},
}

// decodeArgs checks required fields (a JSON null counts as missing), then
// decodes strictly into dst so unknown fields and wrong types are
// rejected. A missing payload is treated as {}.
func decodeArgs(action Action, payload json.RawMessage, dst any) error {
	body := bytes.TrimSpace(payload)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		body = []byte("{}")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return invalidPayload("payload must be an object")
	}
	for _, name := range required[action] {
		v, ok := fields[name]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return missingField(name)
		}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return invalidPayload(err.Error())
	}
	return nil
}
