package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/abhisek/qbank/internal/bank"
)

// Read returns the full contents of a document under the root.
func (s *Store) Read(name string) (string, error) {
	path, err := s.resolve("read", name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", notFound("read", name, err)
		}
		return "", ioError("read", name, err)
	}
	return string(data), nil
}

// Write atomically replaces or creates a document, creating parent folders
// as needed.
func (s *Store) Write(ctx context.Context, name, content string) error {
	path, err := s.resolve("write", name)
	if err != nil {
		return err
	}
	return s.submit(ctx, name, func() error {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return ioError("write", name, err)
		}
		if err := WriteFileAtomic(path, []byte(content), 0o644); err != nil {
			return ioError("write", name, err)
		}
		return nil
	})
}

// AppendHistory adds one record to history.json. An unreadable or corrupt
// history document is treated as empty. Concurrent appends are applied in
// arrival order.
func (s *Store) AppendHistory(ctx context.Context, record json.RawMessage) error {
	if !json.Valid(record) {
		return ioError("append", HistoryFile, errors.New("record is not valid JSON"))
	}
	path := filepath.Join(s.root, HistoryFile)

	return s.submit(ctx, HistoryFile, func() error {
		records := s.loadHistory(path)
		records = append(records, record)

		out, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return ioError("append", HistoryFile, err)
		}
		if err := WriteFileAtomic(path, out, 0o644); err != nil {
			return ioError("append", HistoryFile, err)
		}
		return nil
	})
}

// History returns the raw history records. Missing or corrupt history reads
// as empty.
func (s *Store) History() []json.RawMessage {
	return s.loadHistory(filepath.Join(s.root, HistoryFile))
}

func (s *Store) loadHistory(path string) []json.RawMessage {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("read history", "error", err)
		}
		return []json.RawMessage{}
	}
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("history is corrupt, starting a new array", "error", err)
		return []json.RawMessage{}
	}
	if records == nil {
		records = []json.RawMessage{}
	}
	return records
}

// Fingerprint is the SHA-256 of items.json, or "" when it cannot be read.
func (s *Store) Fingerprint() string {
	data, err := os.ReadFile(filepath.Join(s.root, ItemsFile))
	if err != nil {
		return ""
	}
	return bank.Fingerprint(data)
}

// Bootstrap creates the folder tree and seed documents. Existing documents
// are never overwritten.
func (s *Store) Bootstrap(ctx context.Context) error {
	return s.submit(ctx, ".", func() error {
		dirs := []string{
			s.root,
			filepath.Join(s.root, MediaDir, string(MediaImages)),
			filepath.Join(s.root, MediaDir, string(MediaAudio)),
			filepath.Join(s.root, SnapshotsDir),
		}
		for _, d := range dirs {
			if err := os.MkdirAll(d, 0o755); err != nil {
				return ioError("bootstrap", d, err)
			}
		}

		seed := s.seed
		if len(seed) == 0 {
			seed = []byte("[]")
		}
		seeds := []struct {
			path string
			data []byte
		}{
			{filepath.Join(s.root, ItemsFile), seed},
			{filepath.Join(s.root, HistoryFile), []byte("[]")},
			{filepath.Join(s.root, MediaDir, string(MediaImages), "sample_cxr.png"), nil},
			{filepath.Join(s.root, MediaDir, string(MediaAudio), "sample_murmur.mp3"), nil},
		}
		for _, sd := range seeds {
			if _, err := os.Stat(sd.path); err == nil {
				continue
			} else if !errors.Is(err, fs.ErrNotExist) {
				return ioError("bootstrap", sd.path, err)
			}
			if err := WriteFileAtomic(sd.path, sd.data, 0o644); err != nil {
				return ioError("bootstrap", sd.path, err)
			}
		}
		return nil
	})
}
