package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/qbank/internal/bank"
	"github.com/abhisek/qbank/internal/bridge"
)

type promptAnswer struct {
	value string
	ok    bool
}

// promptRequestMsg asks the model to show a prompt. reply is buffered so
// answering never blocks the UI.
type promptRequestMsg struct {
	title string
	help  string
	value string
	reply chan promptAnswer
}

// PromptDialogs implements bridge.Dialogs with an in-app path prompt. Until
// a program is attached every dialog is cancelled.
type PromptDialogs struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

var _ bridge.Dialogs = (*PromptDialogs)(nil)

// NewPromptDialogs returns detached dialogs.
func NewPromptDialogs() *PromptDialogs {
	return &PromptDialogs{}
}

// Attach routes prompts to a running program. nil detaches.
func (d *PromptDialogs) Attach(send func(tea.Msg)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.send = send
}

func (d *PromptDialogs) ask(ctx context.Context, title, help, value string) (string, error) {
	d.mu.Lock()
	send := d.send
	d.mu.Unlock()
	if send == nil {
		return "", bridge.ErrCancelled
	}

	reply := make(chan promptAnswer, 1)
	send(promptRequestMsg{title: title, help: help, value: value, reply: reply})

	select {
	case a := <-reply:
		v := strings.TrimSpace(a.value)
		if !a.ok || v == "" {
			return "", bridge.ErrCancelled
		}
		return v, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (d *PromptDialogs) ChooseMedia(ctx context.Context, kind string) ([]string, error) {
	v, err := d.ask(ctx, fmt.Sprintf("Copy %s into the bank", kind), "Separate several paths with commas.", "")
	if err != nil {
		return nil, err
	}
	paths := bank.SplitList(v, ",")
	for i, p := range paths {
		paths[i] = expandHome(p)
	}
	return paths, nil
}

func (d *PromptDialogs) ChooseSaveTarget(ctx context.Context, suggestedName string) (string, error) {
	dir, err := os.UserHomeDir()
	if err != nil {
		dir = "."
	}
	v, err := d.ask(ctx, "Export to", "", filepath.Join(dir, suggestedName))
	if err != nil {
		return "", err
	}
	return expandHome(v), nil
}

func (d *PromptDialogs) ChooseOpenFile(ctx context.Context, accept []string) (string, error) {
	help := ""
	if len(accept) > 0 {
		help = "Accepts " + strings.Join(accept, ", ")
	}
	v, err := d.ask(ctx, "Import file", help, "")
	if err != nil {
		return "", err
	}
	return expandHome(v), nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
