package bridge

import (
	"context"
	"path/filepath"
	"strings"
)

// Dialogs is the file chooser collaborator behind copyIntoMedia,
// exportFile and importFile. Dismissal returns ErrCancelled.
type Dialogs interface {
	ChooseMedia(ctx context.Context, kind string) ([]string, error)
	ChooseSaveTarget(ctx context.Context, suggestedName string) (string, error)
	ChooseOpenFile(ctx context.Context, accept []string) (string, error)
}

// NoDialogs cancels every dialog. It backs headless hosts.
type NoDialogs struct{}

func (NoDialogs) ChooseMedia(context.Context, string) ([]string, error) {
	return nil, ErrCancelled
}

func (NoDialogs) ChooseSaveTarget(context.Context, string) (string, error) {
	return "", ErrCancelled
}

func (NoDialogs) ChooseOpenFile(context.Context, []string) (string, error) {
	return "", ErrCancelled
}

// FixedDialogs answers every dialog with preset paths, as when the paths
// come from command-line arguments. An empty answer cancels.
type FixedDialogs struct {
	Media    []string
	SavePath string
	OpenPath string
}

func (d FixedDialogs) ChooseMedia(context.Context, string) ([]string, error) {
	if len(d.Media) == 0 {
		return nil, ErrCancelled
	}
	return d.Media, nil
}

func (d FixedDialogs) ChooseSaveTarget(_ context.Context, suggestedName string) (string, error) {
	if d.SavePath == "" {
		return "", ErrCancelled
	}
	return d.SavePath, nil
}

func (d FixedDialogs) ChooseOpenFile(_ context.Context, accept []string) (string, error) {
	if d.OpenPath == "" {
		return "", ErrCancelled
	}
	if !Accepts(accept, d.OpenPath) {
		return "", invalidPayload("file type not accepted: " + filepath.Ext(d.OpenPath))
	}
	return d.OpenPath, nil
}

// Accepts reports whether path matches one of the extensions in accept
// (".json", "csv"). An empty list accepts everything.
func Accepts(accept []string, path string) bool {
	if len(accept) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, a := range accept {
		a = strings.ToLower(strings.TrimSpace(a))
		if !strings.HasPrefix(a, ".") {
			a = "." + a
		}
		if a == ext {
			return true
		}
	}
	return false
}
