package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/qbank/internal/bridge"
	"github.com/abhisek/qbank/internal/controller"
	"github.com/abhisek/qbank/internal/screen"
	"github.com/abhisek/qbank/internal/screens/editor"
	"github.com/abhisek/qbank/internal/screens/history"
	"github.com/abhisek/qbank/internal/screens/home"
	sessionscreen "github.com/abhisek/qbank/internal/screens/session"
	"github.com/abhisek/qbank/internal/screens/settings"
	"github.com/abhisek/qbank/internal/screens/summary"
	"github.com/abhisek/qbank/internal/screens/transfer"
	"github.com/abhisek/qbank/internal/ui/components"
	"github.com/abhisek/qbank/internal/ui/layout"
	"github.com/abhisek/qbank/internal/ui/theme"
)

const defaultToastTTL = 4 * time.Second

type clearToastMsg struct{ seq int }

// AppModel is the root Bubble Tea model. It shows the screen matching the
// controller view and is the only place bridge results are applied.
type AppModel struct {
	env     *screen.Env
	screens map[controller.View]screen.Screen
	view    controller.View

	// pending[0] is the prompt on screen.
	pending []promptRequestMsg
	prompt  components.Prompt

	toast      string
	toastError bool
	toastSeq   int
	toastTTL   time.Duration

	width  int
	height int
}

// New creates the root model over env.
func New(env *screen.Env) *AppModel {
	sess := sessionscreen.New(env)
	return &AppModel{
		env: env,
		screens: map[controller.View]screen.Screen{
			controller.ViewHome:         home.New(env),
			controller.ViewPractice:     sess,
			controller.ViewExam:         sess,
			controller.ViewSummary:      summary.New(env),
			controller.ViewEditor:       editor.New(env),
			controller.ViewImportExport: transfer.New(env),
			controller.ViewSettings:     settings.New(env),
			controller.ViewHistory:      history.New(env),
		},
		view:     env.State.View,
		toastTTL: defaultToastTTL,
	}
}

func (m *AppModel) active() screen.Screen {
	if s, ok := m.screens[m.view]; ok {
		return s
	}
	return m.screens[controller.ViewHome]
}

// syncView follows a view change made by a screen or a result.
func (m *AppModel) syncView() tea.Cmd {
	if m.env.State.View == m.view {
		return nil
	}
	m.view = m.env.State.View
	return m.active().Init()
}

func (m *AppModel) capturing() bool {
	c, ok := m.active().(screen.Capturer)
	return ok && c.Capturing()
}

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(m.env.Load(), m.env.ListenPushes(), m.active().Init())
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case promptRequestMsg:
		m.pending = append(m.pending, msg)
		if len(m.pending) == 1 {
			return m, m.openPrompt()
		}
		return m, nil

	case clearToastMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case screen.ToastMsg:
		return m, m.showToast(msg.Text, msg.Error)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if len(m.pending) > 0 {
			return m, m.updatePrompt(msg)
		}
		if msg.String() == "esc" && !m.capturing() {
			if m.env.State.View == controller.ViewHome {
				return m, nil
			}
			m.env.State.SetView(controller.ViewHome)
			return m, m.syncView()
		}
	}

	if cmd, ok := m.apply(msg); ok {
		return m, tea.Batch(cmd, m.syncView())
	}

	var promptCmd tea.Cmd
	if len(m.pending) > 0 {
		m.prompt, promptCmd, _, _ = m.prompt.Update(msg)
	}

	next, cmd := m.active().Update(msg)
	m.screens[m.view] = next
	return m, tea.Batch(promptCmd, cmd, m.syncView())
}

// apply folds a bridge result into the controller state.
func (m *AppModel) apply(msg tea.Msg) (tea.Cmd, bool) {
	st := m.env.State
	switch msg := msg.(type) {
	case screen.LoadedMsg:
		if msg.Err != nil {
			st.LoadFailed(msg.Err)
			return nil, true
		}
		if err := st.ApplyLoaded(msg.Info, msg.Items, msg.History); err != nil {
			return m.fail("Failed to load questions", err), true
		}
		return nil, true

	case screen.ItemsSavedMsg:
		if msg.Err != nil {
			return m.fail("Failed to save questions", msg.Err), true
		}
		st.ItemsSaved(msg.Raw)
		return nil, true

	case screen.HistorySavedMsg:
		if msg.Err != nil {
			return m.fail("Failed to save session", msg.Err), true
		}
		st.RecordSaved(msg.Record)
		sum := msg.Record.Summary
		return tea.Batch(
			m.showToast(fmt.Sprintf("Session saved. Correct: %d/%d", sum.Correct, sum.Total), false),
			m.env.SnapshotNow(true),
		), true

	case screen.SnapshotMsg:
		if msg.Err != nil {
			return m.fail("Snapshot failed", msg.Err), true
		}
		if msg.Quiet {
			return nil, true
		}
		return m.showToast("Snapshot saved: "+strings.Join(msg.Files, ", "), false), true

	case screen.ImportedMsg:
		if msg.Err != nil {
			return m.fail("Import failed", msg.Err), true
		}
		var n int
		var err error
		switch msg.Format {
		case screen.ImportCSV:
			n, err = st.ImportCSV(msg.Content)
		case screen.ImportJSONReplace:
			n, err = st.ImportJSON(msg.Content, false)
		default:
			n, err = st.ImportJSON(msg.Content, true)
		}
		if err != nil {
			return m.fail("Import failed", err), true
		}
		return tea.Batch(
			m.env.SaveItems(),
			m.showToast(fmt.Sprintf("Imported %d questions from %s", n, filepath.Base(msg.Filename)), false),
		), true

	case screen.ExportedMsg:
		if msg.Err != nil {
			return m.fail("Export failed", msg.Err), true
		}
		return m.showToast("Exported to "+msg.Path, false), true

	case screen.MediaCopiedMsg:
		if msg.Err != nil {
			return m.fail("Media copy failed", msg.Err), true
		}
		if len(msg.Files) == 0 {
			return nil, true
		}
		if !st.AttachMedia(msg.ItemID, msg.Kind, msg.Files[0]) {
			return m.showToast("The question was removed before the media arrived.", true), true
		}
		return tea.Batch(m.env.SaveItems(), m.showToast("Attached "+msg.Files[0], false)), true

	case screen.AutoSnapshotsSetMsg:
		if msg.Err != nil {
			return m.fail("Failed to change auto-snapshots", msg.Err), true
		}
		st.SetAutoSnapshot(msg.Enabled)
		if msg.Enabled {
			return m.showToast("Auto-snapshots enabled", false), true
		}
		return m.showToast("Auto-snapshots disabled", false), true

	case screen.PushMsg:
		return tea.Batch(m.push(msg.Reply), m.env.ListenPushes()), true
	}
	return nil, false
}

func (m *AppModel) push(rep bridge.Reply) tea.Cmd {
	if !rep.Success {
		return m.showToast(rep.Error, true)
	}
	var p bridge.Push
	if err := json.Unmarshal(rep.Payload, &p); err != nil || p.Type != bridge.PushTypeAutoSnapshot {
		return nil
	}
	return m.showToast("Auto-snapshot saved: "+strings.Join(p.Files, ", "), false)
}

// fail reports err unless the user dismissed a dialog.
func (m *AppModel) fail(what string, err error) tea.Cmd {
	if bridge.IsCancelled(err) || errors.Is(err, context.Canceled) {
		return nil
	}
	return m.showToast(what+": "+err.Error(), true)
}

func (m *AppModel) showToast(text string, isErr bool) tea.Cmd {
	m.toastSeq++
	m.toast = text
	m.toastError = isErr
	seq := m.toastSeq
	return tea.Tick(m.toastTTL, func(time.Time) tea.Msg { return clearToastMsg{seq: seq} })
}

func (m *AppModel) openPrompt() tea.Cmd {
	req := m.pending[0]
	var cmd tea.Cmd
	m.prompt, cmd = components.NewPrompt(req.title, req.help, req.value)
	return cmd
}

func (m *AppModel) updatePrompt(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	var done, ok bool
	m.prompt, cmd, done, ok = m.prompt.Update(msg)
	if !done {
		return cmd
	}
	m.pending[0].reply <- promptAnswer{value: m.prompt.Value(), ok: ok}
	m.pending = m.pending[1:]
	if len(m.pending) > 0 {
		return m.openPrompt()
	}
	return nil
}

func (m *AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the frame for the current size.
func (m *AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	st := m.env.State
	active := m.active()

	var lastPercent *int
	if st.LastSummary != nil {
		p := st.LastSummary.Percent
		lastPercent = &p
	}
	header := layout.RenderHeader(active.Title(), layout.HeaderStatus(len(st.Items), lastPercent), m.width)

	var footerHints []layout.KeyHint
	switch {
	case len(m.pending) > 0:
		footerHints = []layout.KeyHint{
			{Key: "Enter", Description: "Confirm"},
			{Key: "Esc", Description: "Cancel"},
		}
	default:
		if p, ok := active.(screen.KeyHintProvider); ok {
			footerHints = p.KeyHints()
		} else {
			footerHints = []layout.KeyHint{
				{Key: "Esc", Description: "Back"},
				{Key: "Ctrl+C", Description: "Quit"},
			}
		}
	}

	status := ""
	if m.toast != "" {
		if m.toastError {
			status = theme.Alert.Render(m.toast)
		} else {
			status = theme.Toast.Render(m.toast)
		}
	}
	footer := layout.RenderFooter(footerHints, status, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	var content string
	if len(m.pending) > 0 {
		content = lipgloss.Place(m.width, contentHeight, lipgloss.Center, lipgloss.Center, m.prompt.View(m.width))
	} else {
		content = active.View(m.width, contentHeight)
	}
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program and blocks until it exits or ctx ends.
// dialogs, when set, is attached to the running program.
func Run(ctx context.Context, env *screen.Env, dialogs *PromptDialogs) error {
	p := tea.NewProgram(New(env), tea.WithContext(ctx))
	if dialogs != nil {
		dialogs.Attach(p.Send)
		defer dialogs.Attach(nil)
	}
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
