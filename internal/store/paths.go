package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// resolve maps a root-relative name to an absolute path that is guaranteed
// to sit strictly inside the root, following any symlinks on the way.
func (s *Store) resolve(op, name string) (string, error) {
	if name == "" || filepath.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return "", invalidPath(op, name)
	}

	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", invalidPath(op, name)
	}

	real, err := evalExisting(filepath.Join(s.root, clean))
	if err != nil {
		return "", ioError(op, name, err)
	}
	if !within(s.root, real) {
		return "", invalidPath(op, name)
	}
	return real, nil
}

// evalExisting resolves symlinks in the deepest existing ancestor of path
// and re-attaches the components that do not exist yet.
func evalExisting(path string) (string, error) {
	var tail []string
	cur := path
	for {
		if _, err := os.Lstat(cur); err == nil {
			break
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		tail = append([]string{filepath.Base(cur)}, tail...)
		cur = parent
	}

	real, err := filepath.EvalSymlinks(cur)
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{real}, tail...)...), nil
}

// within reports whether path is strictly below root.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return !filepath.IsAbs(rel)
}
