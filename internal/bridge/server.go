package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
)

// Server reads requests from a connection and answers each on its own
// goroutine, so replies may go out in any order.
type Server struct {
	conn    *Conn
	handler Handler
	logger  *slog.Logger

	wg sync.WaitGroup
}

// NewServer pairs a connection with a handler. A nil logger means
// slog.Default().
func NewServer(conn *Conn, handler Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{conn: conn, handler: handler, logger: logger}
}

// Serve handles requests until the connection closes or ctx ends, then
// waits for in-flight handlers. A clean close returns nil.
func (s *Server) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { _ = s.conn.Close() })
	defer stop()

	var readErr error
	for {
		line, err := s.conn.ReadMessage()
		if err != nil {
			if !closedErr(err) && ctx.Err() == nil {
				readErr = err
			}
			break
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil || req.ID == "" {
			s.logger.Warn("invalid bridge message", "error", err)
			s.send(Reply{Success: false, Error: string(CodeInvalidMessage)})
			continue
		}

		s.wg.Add(1)
		go func(req Request) {
			defer s.wg.Done()
			rep := s.handler.Handle(ctx, req)
			rep.ID = req.ID
			s.send(rep)
		}(req)
	}

	s.wg.Wait()
	return readErr
}

// Push sends an unsolicited success message.
func (s *Server) Push(payload any) error {
	rep := Succeed("", payload)
	return s.conn.WriteMessage(rep)
}

// PushFailure sends an unsolicited failure message.
func (s *Server) PushFailure(msg string) error {
	return s.conn.WriteMessage(Reply{Success: false, Error: msg})
}

func (s *Server) send(rep Reply) {
	if err := s.conn.WriteMessage(rep); err != nil {
		s.logger.Warn("send bridge reply", "id", rep.ID, "error", err)
	}
}

func closedErr(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, os.ErrClosed)
}
