package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Future is the pending result of one call. It settles exactly once.
type Future struct {
	id     string
	action Action
	done   chan struct{}
	once   sync.Once

	payload json.RawMessage
	err     error
}

func newFuture(id string, action Action) *Future {
	return &Future{id: id, action: action, done: make(chan struct{})}
}

// ID is the correlation id sent with the request.
func (f *Future) ID() string { return f.id }

// Action is the requested action.
func (f *Future) Action() Action { return f.action }

// Done is closed when the future settles.
func (f *Future) Done() <-chan struct{} { return f.done }

// Result returns the reply payload or error. It must only be called after
// Done is closed.
func (f *Future) Result() (json.RawMessage, error) {
	return f.payload, f.err
}

// Wait blocks until the future settles or ctx ends. An unanswered call
// never settles on its own.
func (f *Future) Wait(ctx context.Context) (json.RawMessage, error) {
	select {
	case <-f.done:
		return f.payload, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *Future) settle(payload json.RawMessage, err error) bool {
	settled := false
	f.once.Do(func() {
		f.payload = payload
		f.err = err
		settled = true
		close(f.done)
	})
	return settled
}

// Client is the UI end of the bridge.
type Client struct {
	conn   *Conn
	logger *slog.Logger
	seq    atomic.Uint64

	mu      sync.Mutex
	pending map[string]*Future
	closed  bool

	pushes chan Reply
	done   chan struct{}
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientLogger sets the logger. A nil logger means slog.Default().
func WithClientLogger(l *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// WithPushBuffer sets how many pushes are held before new ones are dropped.
func WithPushBuffer(n int) ClientOption {
	return func(c *Client) { c.pushes = make(chan Reply, n) }
}

// NewClient starts reading replies from conn.
func NewClient(conn *Conn, opts ...ClientOption) *Client {
	c := &Client{
		conn:    conn,
		pending: make(map[string]*Future),
		pushes:  make(chan Reply, 16),
		done:    make(chan struct{}),
	}
	for _, o := range opts {
		o(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	go c.readLoop()
	return c
}

// Go sends a request and returns its future without waiting. A nil
// payload is sent as {}.
func (c *Client) Go(action Action, payload any) *Future {
	id := fmt.Sprintf("ui-%d", c.seq.Add(1))
	f := newFuture(id, action)

	raw := json.RawMessage("{}")
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			f.settle(nil, invalidPayload(err.Error()))
			return f
		}
		raw = b
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		f.settle(nil, ErrClosed)
		return f
	}
	c.pending[id] = f
	c.mu.Unlock()

	if err := c.conn.WriteMessage(Request{ID: id, Action: action, Payload: raw}); err != nil {
		c.forget(id)
		f.settle(nil, fmt.Errorf("send %s: %w", action, err))
	}
	return f
}

// Call sends a request and waits for the reply, decoding the success
// payload into out when out is non-nil. If ctx ends first the id is
// forgotten and a late reply is dropped as stale.
func (c *Client) Call(ctx context.Context, action Action, payload, out any) error {
	f := c.Go(action, payload)
	select {
	case <-f.Done():
	case <-ctx.Done():
		c.forget(f.id)
		return ctx.Err()
	}

	raw, err := f.Result()
	if err != nil {
		return err
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode %s reply: %w", action, err)
		}
	}
	return nil
}

// Pushes delivers unsolicited host messages. Delivery is best effort: a
// push arriving while the buffer is full is dropped. The channel is closed
// when the client stops reading.
func (c *Client) Pushes() <-chan Reply {
	return c.pushes
}

// Pending is the number of calls awaiting a reply.
func (c *Client) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Done is closed once the read loop has stopped.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close fails every pending call with ErrClosed and closes the connection.
func (c *Client) Close() error {
	c.failAll(ErrClosed)
	err := c.conn.Close()
	<-c.done
	return err
}

func (c *Client) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) failAll(err error) {
	c.mu.Lock()
	c.closed = true
	pending := c.pending
	c.pending = make(map[string]*Future)
	c.mu.Unlock()

	for _, f := range pending {
		f.settle(nil, err)
	}
}

func (c *Client) readLoop() {
	defer close(c.done)
	defer close(c.pushes)

	for {
		line, err := c.conn.ReadMessage()
		if err != nil {
			c.failAll(fmt.Errorf("%w: %v", ErrClosed, err))
			return
		}

		var rep Reply
		if err := json.Unmarshal(line, &rep); err != nil {
			c.logger.Warn("dropping malformed reply", "error", err)
			continue
		}
		c.dispatch(rep)
	}
}

// dispatch settles the future for rep, or queues rep as a push. It reports
// whether a pending future was settled.
func (c *Client) dispatch(rep Reply) bool {
	if rep.IsPush() {
		select {
		case c.pushes <- rep:
		default:
			c.logger.Warn("push buffer full, dropping push")
		}
		return false
	}

	c.mu.Lock()
	f, ok := c.pending[rep.ID]
	delete(c.pending, rep.ID)
	c.mu.Unlock()
	if !ok {
		c.logger.Debug("dropping reply with no pending call", "id", rep.ID)
		return false
	}

	if rep.Success {
		return f.settle(rep.Payload, nil)
	}
	return f.settle(nil, ParseError(rep.Error))
}
