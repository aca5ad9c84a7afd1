package bridge

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Conn frames JSON messages one per line over a byte stream. Writes are
// serialized so concurrent replies never interleave.
type Conn struct {
	r      *bufio.Reader
	w      io.Writer
	closer io.Closer

	wmu sync.Mutex
}

// NewConn wraps a duplex stream such as one end of net.Pipe.
func NewConn(rw io.ReadWriter) *Conn {
	c := &Conn{r: bufio.NewReader(rw), w: rw}
	if cl, ok := rw.(io.Closer); ok {
		c.closer = cl
	}
	return c
}

// NewStreamConn pairs separate read and write streams, like stdin/stdout.
// Close closes whichever of them implement io.Closer.
func NewStreamConn(r io.Reader, w io.Writer) *Conn {
	c := &Conn{r: bufio.NewReader(r), w: w}
	c.closer = multiCloser{r, w}
	return c
}

// ReadMessage returns the next non-blank line without its terminator.
func (c *Conn) ReadMessage() ([]byte, error) {
	for {
		line, err := c.r.ReadBytes('\n')
		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			return line, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// WriteMessage encodes v as a single line.
func (c *Conn) WriteMessage(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	data = append(data, '\n')

	c.wmu.Lock()
	defer c.wmu.Unlock()
	if _, err := c.w.Write(data); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// Close closes the underlying stream.
func (c *Conn) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

type multiCloser []any

func (m multiCloser) Close() error {
	var errs []error
	for _, v := range m {
		if cl, ok := v.(io.Closer); ok {
			errs = append(errs, cl.Close())
		}
	}
	return errors.Join(errs...)
}
