package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// StampLayout formats snapshot stamps in local time.
const StampLayout = "20060102_150405"

var snapshotName = regexp.MustCompile(`^(items|history)_(\d{8}_\d{6})\.json$`)

// Snapshot copies items.json and history.json into the snapshots folder
// under the current stamp, replacing files with the same stamp. Missing
// documents are skipped. It returns the names written.
func (s *Store) Snapshot(ctx context.Context) ([]string, error) {
	var written []string
	err := s.submit(ctx, SnapshotsDir, func() error {
		dir := filepath.Join(s.root, SnapshotsDir)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return ioError("snapshot", SnapshotsDir, err)
		}

		stamp := s.now().Format(StampLayout)
		written = []string{}
		for _, doc := range []string{ItemsFile, HistoryFile} {
			src := filepath.Join(s.root, doc)
			if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
				continue
			}
			name := strings.TrimSuffix(doc, ".json") + "_" + stamp + ".json"
			if err := copyFileAtomic(src, filepath.Join(dir, name)); err != nil {
				return ioError("snapshot", name, err)
			}
			written = append(written, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return written, nil
}

// SnapshotStamps returns the distinct stamps present, oldest first.
func (s *Store) SnapshotStamps() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, SnapshotsDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, ioError("list snapshots", SnapshotsDir, err)
	}

	seen := make(map[string]bool)
	stamps := []string{}
	for _, e := range entries {
		m := snapshotName.FindStringSubmatch(e.Name())
		if m == nil || seen[m[2]] {
			continue
		}
		seen[m[2]] = true
		stamps = append(stamps, m[2])
	}
	sort.Strings(stamps)
	return stamps, nil
}

// PruneSnapshots removes every snapshot file except those belonging to the
// newest keep stamps. keep <= 0 keeps everything. It returns the names
// removed.
func (s *Store) PruneSnapshots(ctx context.Context, keep int) ([]string, error) {
	if keep <= 0 {
		return []string{}, nil
	}

	var removed []string
	err := s.submit(ctx, SnapshotsDir, func() error {
		stamps, err := s.SnapshotStamps()
		if err != nil {
			return err
		}
		removed = []string{}
		if len(stamps) <= keep {
			return nil
		}

		stale := make(map[string]bool)
		for _, st := range stamps[:len(stamps)-keep] {
			stale[st] = true
		}

		dir := filepath.Join(s.root, SnapshotsDir)
		entries, err := os.ReadDir(dir)
		if err != nil {
			return ioError("prune snapshots", SnapshotsDir, err)
		}
		for _, e := range entries {
			m := snapshotName.FindStringSubmatch(e.Name())
			if m == nil || !stale[m[2]] {
				continue
			}
			if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
				return ioError("prune snapshots", e.Name(), err)
			}
			removed = append(removed, e.Name())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
