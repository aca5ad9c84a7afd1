package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/qbank/internal/store"
)

func pipe(t *testing.T, h Handler) (*Client, *Server) {
	t.Helper()
	c, srv := Loopback(h, nil)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(context.Background()) }()

	t.Cleanup(func() {
		c.Close()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})
	return c, srv
}

// rawPeer connects a client to a bare connection the test drives by hand.
func rawPeer(t *testing.T) (*Client, *Conn) {
	t.Helper()
	a, b := net.Pipe()
	c := NewClient(NewConn(a))
	peer := NewConn(b)
	t.Cleanup(func() {
		peer.Close()
		c.Close()
	})
	return c, peer
}

// readAsync reads one message from conn in the background. net.Pipe
// writes block until the other end reads.
func readAsync(conn *Conn) <-chan []byte {
	out := make(chan []byte, 1)
	go func() {
		line, err := conn.ReadMessage()
		if err != nil {
			close(out)
			return
		}
		out <- line
	}()
	return out
}

func testHost(t *testing.T, opts ...HostOption) (*Host, *store.Store) {
	t.Helper()
	st, err := store.Open(t.TempDir(), store.WithSeed([]byte(`[{"id":"a"}]`)))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return NewHost(st, opts...), st
}

func validRecord() map[string]any {
	return map[string]any{
		"session_id":     "s1",
		"started_at":     "2024-01-01T00:00:00Z",
		"ended_at":       "2024-01-01T00:10:00Z",
		"mode":           "exam",
		"version":        "abc",
		"question_order": []string{"1", "2"},
		"results": []map[string]any{
			{"id": "1", "selected": "A", "correct": true, "confidence": 2, "reviewed": false},
			{"id": "2", "selected": nil, "correct": false, "confidence": 1, "reviewed": true},
		},
		"summary": map[string]any{"total": 2, "correct": 1, "percent": 50},
	}
}

func TestHostRoundTrip(t *testing.T) {
	h, st := testHost(t)
	c, _ := pipe(t, h)
	ctx := context.Background()

	info, err := c.EnsureDataDirs(ctx)
	require.NoError(t, err)
	assert.Equal(t, st.Root(), info.DataPath)
	assert.Equal(t, filepath.Join(st.Root(), "items.json"), info.ItemsPath)
	assert.True(t, info.AutoSnapshots)
	assert.Equal(t, 10*time.Minute, info.Interval())

	content, err := c.ReadTextFile(ctx, "items.json")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, content)

	require.NoError(t, c.WriteTextFile(ctx, "items.json", "[]"))
	content, err = c.ReadTextFile(ctx, "items.json")
	require.NoError(t, err)
	assert.Equal(t, "[]", content)

	require.NoError(t, c.AppendHistory(ctx, validRecord()))
	assert.Len(t, st.History(), 1)

	files, err := c.ListMedia(ctx, "audio")
	require.NoError(t, err)
	assert.Equal(t, []string{"sample_murmur.mp3"}, files)

	files, err = c.SnapshotNow(ctx)
	require.NoError(t, err)
	assert.Len(t, files, 2)

	require.NoError(t, c.SetAutoSnapshots(ctx, false))
	info, err = c.GetAppInfo(ctx)
	require.NoError(t, err)
	assert.False(t, info.AutoSnapshots)
}

func TestHostErrors(t *testing.T) {
	h, _ := testHost(t)
	c, _ := pipe(t, h)
	ctx := context.Background()

	tests := []struct {
		name    string
		action  Action
		payload any
		want    string
	}{
		{"unknown action", "deleteEverything", nil, "unknownAction"},
		{"missing path", ActionReadTextFile, map[string]any{}, "missingField:path"},
		{"null path", ActionReadTextFile, map[string]any{"path": nil}, "missingField:path"},
		{"missing content first field order", ActionWriteTextFile, map[string]any{}, "missingField:path"},
		{"missing content", ActionWriteTextFile, map[string]any{"path": "x"}, "missingField:content"},
		{"missing record", ActionAppendHistory, map[string]any{}, "missingField:record"},
		{"missing kind", ActionListMedia, map[string]any{}, "missingField:kind"},
		{"missing enabled", ActionSetAutoSnapshots, map[string]any{}, "missingField:enabled"},
		{"missing suggested name", ActionExportFile, map[string]any{"content": "x"}, "missingField:suggestedName"},
		{"unknown field", ActionReadTextFile, map[string]any{"path": "x", "mode": 1}, `invalidPayload:unknown field "mode"`},
		{"traversal", ActionReadTextFile, PathArgs{Path: "../etc/passwd"}, "invalidPath"},
		{"absolute", ActionWriteTextFile, WriteArgs{Path: "/tmp/x", Content: "x"}, "invalidPath"},
		{"not found", ActionReadTextFile, PathArgs{Path: "nope.json"}, "notFound"},
		{"bad kind", ActionListMedia, KindArgs{Kind: "video"}, "invalidPath"},
		{"bad copy kind", ActionCopyIntoMedia, KindArgs{Kind: "video"}, "invalidPath"},
		{"dialog dismissed", ActionCopyIntoMedia, KindArgs{Kind: "images"}, "cancelled"},
		{"export dismissed", ActionExportFile, ExportArgs{SuggestedName: "a.json", Content: "[]"}, "cancelled"},
		{"import dismissed", ActionImportFile, nil, "cancelled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Call(ctx, tt.action, tt.payload, nil)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())

			var be *Error
			require.True(t, errors.As(err, &be))
		})
	}
}

func TestHostCancelledIsDistinct(t *testing.T) {
	h, _ := testHost(t)
	c, _ := pipe(t, h)

	_, err := c.CopyIntoMedia(context.Background(), "images")
	assert.True(t, IsCancelled(err))

	_, err = c.ReadTextFile(context.Background(), "missing")
	assert.False(t, IsCancelled(err))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHostRejectsBadHistoryRecord(t *testing.T) {
	h, st := testHost(t)
	c, _ := pipe(t, h)
	ctx := context.Background()

	rec := validRecord()
	rec["summary"] = map[string]any{"total": 2, "correct": 1, "percent": 150}
	err := c.AppendHistory(ctx, rec)
	require.Error(t, err)
	assert.ErrorIs(t, err, &Error{Code: CodeInvalidPayload})

	rec = validRecord()
	rec["question_order"] = []string{"1"}
	err = c.AppendHistory(ctx, rec)
	assert.ErrorIs(t, err, &Error{Code: CodeInvalidPayload})

	err = c.AppendHistory(ctx, "not an object")
	assert.ErrorIs(t, err, &Error{Code: CodeInvalidPayload})

	assert.Empty(t, st.History())
}

func TestHostFixedDialogs(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "scan.png")
	require.NoError(t, os.WriteFile(src, []byte("png"), 0o644))
	in := filepath.Join(dir, "bank.csv")
	require.NoError(t, os.WriteFile(in, []byte("stem\nq\n"), 0o644))
	out := filepath.Join(dir, "export.json")

	h, _ := testHost(t, WithDialogs(FixedDialogs{Media: []string{src}, SavePath: out, OpenPath: in}))
	c, _ := pipe(t, h)
	ctx := context.Background()

	files, err := c.CopyIntoMedia(ctx, "images")
	require.NoError(t, err)
	assert.Equal(t, []string{"scan.png"}, files)

	path, err := c.ExportFile(ctx, "qbank_items.json", "[1]")
	require.NoError(t, err)
	assert.Equal(t, out, path)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "[1]", string(data))

	got, err := c.ImportFile(ctx, ".csv")
	require.NoError(t, err)
	assert.Equal(t, "bank.csv", got.Filename)
	assert.Equal(t, "stem\nq\n", got.Content)

	_, err = c.ImportFile(ctx, ".json")
	assert.ErrorIs(t, err, &Error{Code: CodeInvalidPayload})
}

func TestRepliesOutOfOrder(t *testing.T) {
	release := make(chan struct{})
	h := HandlerFunc(func(ctx context.Context, req Request) Reply {
		if req.Action == ActionReadTextFile {
			<-release
		}
		return Succeed(req.ID, ContentReply{Content: string(req.Action)})
	})
	c, _ := pipe(t, h)

	slow := c.Go(ActionReadTextFile, PathArgs{Path: "x"})
	fast := c.Go(ActionGetAppInfo, nil)

	select {
	case <-fast.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("fast call did not settle")
	}
	select {
	case <-slow.Done():
		t.Fatal("slow call settled before release")
	default:
	}

	close(release)
	raw, err := slow.Wait(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":"readTextFile"}`, string(raw))
	assert.NotEqual(t, slow.ID(), fast.ID())
	assert.Equal(t, 0, c.Pending())
}

func TestConcurrentCalls(t *testing.T) {
	h := HandlerFunc(func(ctx context.Context, req Request) Reply {
		var args PathArgs
		_ = json.Unmarshal(req.Payload, &args)
		return Succeed(req.ID, ContentReply{Content: args.Path})
	})
	c, _ := pipe(t, h)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			want := string(rune('a' + i%26))
			got, err := c.ReadTextFile(context.Background(), want)
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 0, c.Pending())
}

func TestSettleOnceAndStaleReply(t *testing.T) {
	c, peer := rawPeer(t)
	lines := readAsync(peer)

	f := c.Go(ActionGetAppInfo, nil)

	line := <-lines
	var req Request
	require.NoError(t, json.Unmarshal(line, &req))
	assert.Equal(t, "ui-1", req.ID)
	assert.JSONEq(t, `{}`, string(req.Payload))

	require.NoError(t, peer.WriteMessage(Succeed(req.ID, OKReply{OK: true})))
	raw, err := f.Wait(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(raw))

	assert.False(t, c.dispatch(Reply{ID: req.ID, Success: false, Error: "ioError:late"}))
	assert.False(t, c.dispatch(Reply{ID: "ui-999", Success: true}))

	raw, err = f.Result()
	require.NoError(t, err, "a duplicate reply must not resettle")
	assert.JSONEq(t, `{"ok":true}`, string(raw))
}

func TestCallContextForgetsPending(t *testing.T) {
	block := make(chan struct{})
	h := HandlerFunc(func(ctx context.Context, req Request) Reply {
		<-block
		return Succeed(req.ID, OKReply{OK: true})
	})
	c, _ := pipe(t, h)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.Call(ctx, ActionSnapshotNow, nil, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, c.Pending())

	close(block)
	_, err = c.GetAppInfo(context.Background())
	assert.NoError(t, err)
}

func TestUnansweredCallStaysPending(t *testing.T) {
	c, peer := rawPeer(t)
	lines := readAsync(peer)

	f := c.Go(ActionSnapshotNow, nil)
	<-lines

	select {
	case <-f.Done():
		t.Fatal("future settled without a reply")
	case <-time.After(20 * time.Millisecond):
	}
	assert.Equal(t, 1, c.Pending())

	require.NoError(t, c.Close())
	_, err := f.Wait(context.Background())
	assert.ErrorIs(t, err, ErrClosed)

	_, err = c.Go(ActionGetAppInfo, nil).Wait(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPushes(t *testing.T) {
	h, _ := testHost(t)
	c, srv := pipe(t, h)

	require.NoError(t, srv.Push(Push{Type: PushTypeAutoSnapshot, Files: []string{"items_x.json"}}))
	require.NoError(t, srv.PushFailure("Auto-snapshot failed: disk full"))

	first := <-c.Pushes()
	assert.True(t, first.IsPush())
	assert.True(t, first.Success)
	var p Push
	require.NoError(t, json.Unmarshal(first.Payload, &p))
	assert.Equal(t, PushTypeAutoSnapshot, p.Type)

	second := <-c.Pushes()
	assert.False(t, second.Success)
	assert.Equal(t, "Auto-snapshot failed: disk full", second.Error)
}

func TestMalformedEnvelopes(t *testing.T) {
	h, _ := testHost(t)
	a, b := net.Pipe()
	srv := NewServer(NewConn(b), h, nil)
	go srv.Serve(context.Background())
	peer := NewConn(a)
	t.Cleanup(func() { peer.Close() })

	go func() {
		_, _ = a.Write([]byte("this is not json\n"))
	}()
	line, err := peer.ReadMessage()
	require.NoError(t, err)
	var rep Reply
	require.NoError(t, json.Unmarshal(line, &rep))
	assert.True(t, rep.IsPush())
	assert.Equal(t, "invalidMessage", rep.Error)

	go func() {
		_ = peer.WriteMessage(map[string]any{"id": "x-1"})
	}()
	line, err = peer.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(line, &rep))
	assert.Equal(t, "x-1", rep.ID)
	assert.False(t, rep.Success)
	assert.Equal(t, "unknownAction", rep.Error)
}

type memRecorder struct {
	mu      sync.Mutex
	entries []store.JournalEntry
	err     error
}

func (m *memRecorder) Append(_ context.Context, e store.JournalEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return m.err
}

func TestWithJournal(t *testing.T) {
	h, _ := testHost(t)
	rec := &memRecorder{}
	c, _ := pipe(t, WithJournal(h, rec, nil))
	ctx := context.Background()

	_, err := c.GetAppInfo(ctx)
	require.NoError(t, err)
	_, err = c.ReadTextFile(ctx, "../x")
	require.Error(t, err)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.entries, 2)
	assert.Equal(t, "getAppInfo", rec.entries[0].Action)
	assert.True(t, rec.entries[0].Success)
	assert.Equal(t, "ui-1", rec.entries[0].RequestID)
	assert.Equal(t, "readTextFile", rec.entries[1].Action)
	assert.Equal(t, "invalidPath", rec.entries[1].Error)
}

func TestWithJournalFailureDoesNotFailCall(t *testing.T) {
	h, _ := testHost(t)
	c, _ := pipe(t, WithJournal(h, &memRecorder{err: errors.New("db locked")}, nil))

	_, err := c.GetAppInfo(context.Background())
	assert.NoError(t, err)
}

func TestJournalEndToEnd(t *testing.T) {
	h, st := testHost(t)
	j, err := store.OpenJournal(filepath.Join(st.Root(), store.JournalFile))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })

	c, _ := pipe(t, WithJournal(h, j, nil))
	_, err = c.EnsureDataDirs(context.Background())
	require.NoError(t, err)

	entries, err := j.Recent(context.Background(), store.JournalQuery{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ensureDataDirs", entries[0].Action)
}
