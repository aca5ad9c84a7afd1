package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/qbank/internal/bank"
	"github.com/abhisek/qbank/internal/bridge"
	"github.com/abhisek/qbank/internal/controller"
	"github.com/abhisek/qbank/internal/screen"
	"github.com/abhisek/qbank/internal/session"
	"github.com/abhisek/qbank/internal/store"
)

const seed = `[{"id":"q1","stem":"Seeded","choices":["a","b","c","d","e"],"answer_key":"B"}]`

func testEnv(t *testing.T, dialogs bridge.Dialogs) (*screen.Env, *store.Store) {
	t.Helper()
	st, err := store.Open(t.TempDir(), store.WithSeed([]byte(seed)))
	require.NoError(t, err)

	host := bridge.NewHost(st, bridge.WithDialogs(dialogs))
	c, srv := bridge.Loopback(host, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	t.Cleanup(func() {
		c.Close()
		cancel()
		<-done
		st.Close()
	})
	return &screen.Env{State: controller.New(), Client: c, Ctx: ctx}, st
}

// loaded returns a model whose state holds the seeded bank.
func loaded(t *testing.T, dialogs bridge.Dialogs) (*AppModel, *screen.Env, *store.Store) {
	t.Helper()
	env, st := testEnv(t, dialogs)
	m := New(env)
	m.toastTTL = time.Millisecond
	m.Update(env.Load()())
	require.Empty(t, env.State.Err)
	return m, env, st
}

// drain runs cmd and everything it leads to. Toast expiry is ignored so the
// text stays observable.
func drain(t *testing.T, m *AppModel, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 50, "command chain did not settle")
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, clearToastMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			_, next := m.Update(msg)
			queue = append(queue, next)
		}
	}
}

func TestLoadAppliesDocuments(t *testing.T) {
	m, env, st := loaded(t, bridge.NoDialogs{})

	require.Len(t, env.State.Items, 1)
	assert.Equal(t, "Seeded", env.State.Items[0].Stem)
	assert.Equal(t, st.Root(), env.State.Info.DataPath)
	assert.Equal(t, bank.Fingerprint([]byte(seed)), env.State.BankHash)
	assert.Equal(t, controller.ViewHome, m.view)
}

func TestLoadFailureIsShown(t *testing.T) {
	env, _ := testEnv(t, bridge.NoDialogs{})
	m := New(env)
	m.Update(screen.LoadedMsg{Err: errors.New("disk gone")})
	assert.Equal(t, "Failed to load data: disk gone", env.State.Err)
}

func TestLoadUnreadableBankAlerts(t *testing.T) {
	env, _ := testEnv(t, bridge.NoDialogs{})
	m := New(env)
	m.Update(screen.LoadedMsg{Items: `{"not":"an array"}`, History: "[]"})

	assert.Contains(t, env.State.Err, "Failed to load data")
	assert.True(t, m.toastError)
	assert.Contains(t, m.toast, "Failed to load questions")
	assert.Empty(t, env.State.Items)
}

func TestEscReturnsHome(t *testing.T) {
	m, env, _ := loaded(t, bridge.NoDialogs{})
	env.State.SetView(controller.ViewSettings)
	m.syncView()

	m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Equal(t, controller.ViewHome, env.State.View)
	assert.Equal(t, controller.ViewHome, m.view)
}

func TestEscAbandonsSession(t *testing.T) {
	m, env, st := loaded(t, bridge.NoDialogs{})
	require.NoError(t, env.State.BeginSession(session.ModePractice))
	m.syncView()

	m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Nil(t, env.State.Session)
	assert.Empty(t, st.History(), "abandoning must not record history")
}

func TestEscCapturedByEditorSearch(t *testing.T) {
	m, env, _ := loaded(t, bridge.NoDialogs{})
	env.State.SetView(controller.ViewEditor)
	m.syncView()

	m.Update(tea.KeyPressMsg{Code: '/', Text: "/"})
	m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Equal(t, controller.ViewEditor, env.State.View, "first esc leaves search")

	m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Equal(t, controller.ViewHome, env.State.View)
}

func TestFinishedExamIsSavedAndSnapshotted(t *testing.T) {
	m, env, st := loaded(t, bridge.NoDialogs{})
	require.NoError(t, env.State.BeginSession(session.ModeExam))
	env.State.Select("B")
	rec, ok := env.State.Confirm()
	require.True(t, ok)

	drain(t, m, env.AppendHistory(*rec))

	assert.Len(t, env.State.History, 1)
	require.NotNil(t, env.State.LastSummary)
	assert.Equal(t, 100, env.State.LastSummary.Percent)
	assert.Len(t, st.History(), 1)
	assert.Equal(t, "Session saved. Correct: 1/1", m.toast)

	stamps, err := st.SnapshotStamps()
	require.NoError(t, err)
	assert.Len(t, stamps, 1)
}

func TestImportMergeSavesBank(t *testing.T) {
	file := filepath.Join(t.TempDir(), "new.json")
	content := `[{"id":"q2","stem":"Imported"}]`
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))

	m, env, st := loaded(t, bridge.FixedDialogs{OpenPath: file})
	drain(t, m, env.Import(screen.ImportJSONMerge))

	require.Len(t, env.State.Items, 2)
	assert.Equal(t, "Imported", env.State.Items[1].Stem)
	assert.Equal(t, "Imported 1 questions from new.json", m.toast)

	onDisk, err := st.Read(store.ItemsFile)
	require.NoError(t, err)
	assert.Contains(t, onDisk, "Imported")
	assert.Equal(t, bank.Fingerprint([]byte(onDisk)), env.State.BankHash)
}

func TestImportRejectsNonArray(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"id":"x"}`), 0o644))

	m, env, _ := loaded(t, bridge.FixedDialogs{OpenPath: file})
	drain(t, m, env.Import(screen.ImportJSONReplace))

	assert.Len(t, env.State.Items, 1)
	assert.True(t, m.toastError)
	assert.Contains(t, m.toast, bank.ErrNotArray.Error())
}

func TestCancelledDialogIsSilent(t *testing.T) {
	m, env, _ := loaded(t, bridge.NoDialogs{})
	drain(t, m, env.Import(screen.ImportCSV))
	drain(t, m, env.ExportBank(false))
	assert.Empty(t, m.toast)
}

func TestExportWritesFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out.csv")
	m, env, _ := loaded(t, bridge.FixedDialogs{SavePath: target})
	drain(t, m, env.ExportBank(true))

	assert.Equal(t, "Exported to "+target, m.toast)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "stem,A,B,C,D,E"))
}

func TestAutoSnapshotToggle(t *testing.T) {
	m, env, _ := loaded(t, bridge.NoDialogs{})
	drain(t, m, env.SetAutoSnapshots(false))
	assert.False(t, env.State.AutoSnapshot)
	assert.Equal(t, "Auto-snapshots disabled", m.toast)
}

func TestPushesBecomeToasts(t *testing.T) {
	env := &screen.Env{State: controller.New()}
	m := New(env)

	m.push(bridge.Succeed("", bridge.Push{Type: bridge.PushTypeAutoSnapshot, Files: []string{"items_1.json"}}))
	assert.Equal(t, "Auto-snapshot saved: items_1.json", m.toast)
	assert.False(t, m.toastError)

	m.push(bridge.Reply{Success: false, Error: "Auto-snapshot failed: disk full"})
	assert.Equal(t, "Auto-snapshot failed: disk full", m.toast)
	assert.True(t, m.toastError)
}

func TestToastExpires(t *testing.T) {
	m := New(&screen.Env{State: controller.New()})
	m.showToast("first", false)
	stale := m.toastSeq
	m.showToast("second", false)

	m.Update(clearToastMsg{seq: stale})
	assert.Equal(t, "second", m.toast)
	m.Update(clearToastMsg{seq: m.toastSeq})
	assert.Empty(t, m.toast)
}

func TestPromptDialogs(t *testing.T) {
	d := NewPromptDialogs()
	_, err := d.ChooseOpenFile(context.Background(), nil)
	require.True(t, bridge.IsCancelled(err), "detached dialogs cancel")

	requests := make(chan tea.Msg, 1)
	d.Attach(func(msg tea.Msg) { requests <- msg })
	m := New(&screen.Env{State: controller.New()})

	type result struct {
		path string
		err  error
	}
	ask := func() <-chan result {
		out := make(chan result, 1)
		go func() {
			p, err := d.ChooseOpenFile(context.Background(), []string{".json"})
			out <- result{p, err}
		}()
		return out
	}

	got := ask()
	m.Update(<-requests)
	require.Len(t, m.pending, 1)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Contains(t, m.render(), "Import file")
	for _, r := range "/tmp/bank.json" {
		m.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	res := <-got
	require.NoError(t, res.err)
	assert.Equal(t, "/tmp/bank.json", res.path)
	assert.Empty(t, m.pending)

	got = ask()
	m.Update(<-requests)
	m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	res = <-got
	assert.True(t, bridge.IsCancelled(res.err))
	assert.Equal(t, controller.ViewHome, m.env.State.View)
}

func TestPromptDialogsHonorContext(t *testing.T) {
	d := NewPromptDialogs()
	d.Attach(func(tea.Msg) {})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := d.ChooseSaveTarget(ctx, "x.json")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestViewSizes(t *testing.T) {
	m := New(&screen.Env{State: controller.New()})
	m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	assert.Contains(t, m.render(), "Terminal too small")

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Contains(t, m.render(), "Question Bank")
}
