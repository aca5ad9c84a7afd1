package bridge

import (
	"log/slog"
	"net"
)

// Loopback connects a client to a server for h over an in-memory pipe. The
// caller runs Serve and closes the client to stop it.
func Loopback(h Handler, logger *slog.Logger) (*Client, *Server) {
	a, b := net.Pipe()
	srv := NewServer(NewConn(b), h, logger)
	c := NewClient(NewConn(a), WithClientLogger(logger))
	return c, srv
}
