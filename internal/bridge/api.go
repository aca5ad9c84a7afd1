package bridge

import (
	"context"
	"encoding/json"
)

// EnsureDataDirs bootstraps the store and returns its info.
func (c *Client) EnsureDataDirs(ctx context.Context) (StoreInfo, error) {
	var info StoreInfo
	err := c.Call(ctx, ActionEnsureDataDirs, nil, &info)
	return info, err
}

// GetAppInfo returns the store info.
func (c *Client) GetAppInfo(ctx context.Context) (StoreInfo, error) {
	var info StoreInfo
	err := c.Call(ctx, ActionGetAppInfo, nil, &info)
	return info, err
}

// ReadTextFile returns a document under the data root.
func (c *Client) ReadTextFile(ctx context.Context, path string) (string, error) {
	var out ContentReply
	err := c.Call(ctx, ActionReadTextFile, PathArgs{Path: path}, &out)
	return out.Content, err
}

// WriteTextFile replaces a document under the data root.
func (c *Client) WriteTextFile(ctx context.Context, path, content string) error {
	return c.Call(ctx, ActionWriteTextFile, WriteArgs{Path: path, Content: content}, &OKReply{})
}

// AppendHistory appends one record, which is JSON-encoded first.
func (c *Client) AppendHistory(ctx context.Context, record any) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return invalidPayload(err.Error())
	}
	return c.Call(ctx, ActionAppendHistory, AppendHistoryArgs{Record: raw}, &OKReply{})
}

// ListMedia lists "images" or "audio".
func (c *Client) ListMedia(ctx context.Context, kind string) ([]string, error) {
	var out FilesReply
	err := c.Call(ctx, ActionListMedia, KindArgs{Kind: kind}, &out)
	return out.Files, err
}

// CopyIntoMedia asks the host to pick files and copy them in.
func (c *Client) CopyIntoMedia(ctx context.Context, kind string) ([]string, error) {
	var out FilesReply
	err := c.Call(ctx, ActionCopyIntoMedia, KindArgs{Kind: kind}, &out)
	return out.Files, err
}

// ExportFile asks the host for a save location and writes content there.
func (c *Client) ExportFile(ctx context.Context, suggestedName, content string) (string, error) {
	var out PathReply
	err := c.Call(ctx, ActionExportFile, ExportArgs{SuggestedName: suggestedName, Content: content}, &out)
	return out.Path, err
}

// ImportFile asks the host to pick a file and returns its contents.
func (c *Client) ImportFile(ctx context.Context, accept ...string) (ImportReply, error) {
	var out ImportReply
	err := c.Call(ctx, ActionImportFile, ImportArgs{Accept: accept}, &out)
	return out, err
}

// SnapshotNow writes a snapshot and returns the file names.
func (c *Client) SnapshotNow(ctx context.Context) ([]string, error) {
	var out FilesReply
	err := c.Call(ctx, ActionSnapshotNow, nil, &out)
	return out.Files, err
}

// SetAutoSnapshots toggles the scheduler preference.
func (c *Client) SetAutoSnapshots(ctx context.Context, enabled bool) error {
	return c.Call(ctx, ActionSetAutoSnapshots, AutoSnapshotArgs{Enabled: enabled}, &OKReply{})
}
