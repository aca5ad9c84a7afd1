package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// MediaKind names a media subfolder.
type MediaKind string

const (
	MediaImages MediaKind = "images"
	MediaAudio  MediaKind = "audio"
)

// ParseMediaKind validates a kind string.
func ParseMediaKind(kind string) (MediaKind, bool) {
	switch MediaKind(kind) {
	case MediaImages, MediaAudio:
		return MediaKind(kind), true
	}
	return "", false
}

func (s *Store) mediaDir(k MediaKind) string {
	return filepath.Join(s.root, MediaDir, string(k))
}

// ListMedia returns the sorted file names in a media folder. A missing
// folder lists as empty.
func (s *Store) ListMedia(kind string) ([]string, error) {
	k, ok := ParseMediaKind(kind)
	if !ok {
		return nil, invalidPath("list media", kind)
	}

	entries, err := os.ReadDir(s.mediaDir(k))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, ioError("list media", kind, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// CopyIntoMedia copies external files into a media folder and returns the
// stored names in input order. A name already taken gets a short random
// suffix before the extension; a source that already is the stored file is
// not copied again.
func (s *Store) CopyIntoMedia(ctx context.Context, kind string, sources []string) ([]string, error) {
	k, ok := ParseMediaKind(kind)
	if !ok {
		return nil, invalidPath("copy media", kind)
	}
	dir := s.mediaDir(k)

	var names []string
	err := s.submit(ctx, kind, func() error {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return ioError("copy media", kind, err)
		}
		names = make([]string, 0, len(sources))
		for _, src := range sources {
			name, err := copyOne(dir, src)
			if err != nil {
				return err
			}
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

func copyOne(dir, src string) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", notFound("copy media", src, err)
		}
		return "", ioError("copy media", src, err)
	}
	if info.IsDir() {
		return "", ioError("copy media", src, errors.New("source is a directory"))
	}

	name := filepath.Base(src)
	for {
		existing, err := os.Stat(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
		if err != nil {
			return "", ioError("copy media", name, err)
		}
		if os.SameFile(info, existing) {
			return name, nil
		}
		name = suffixed(filepath.Base(src))
	}

	if err := copyFileAtomic(src, filepath.Join(dir, name)); err != nil {
		return "", ioError("copy media", src, err)
	}
	return name, nil
}

// suffixed turns "scan.png" into "scan_1a2b3c4d.png".
func suffixed(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return base + "_" + uuid.NewString()[:8] + ext
}
