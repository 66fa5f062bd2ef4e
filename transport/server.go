// Package transport implements the TCP order intake: one accept loop,
// one goroutine per connection, newline-delimited JSON in, a plaintext
// ACK out. Ported from the original engine's tcpServerThread/
// handleClient, replacing its raw accept-loop-with-sleep polling with
// a blocking Accept and per-connection goroutine, and its fixed-size
// read buffer with bufio.Scanner's line framing.
package transport

import (
	"bufio"
	"context"
	"log/slog"
	"net"

	"github.com/rs/xid"
	"github.com/solstice-systems/matchcore"
	"github.com/solstice-systems/matchcore/protocol"
)

// Server accepts order submissions over TCP.
type Server struct {
	listener net.Listener
	engine   *match.Controller
	logger   *slog.Logger
}

// Listen binds addr (e.g. ":8080") and returns a Server ready to Serve.
func Listen(addr string, engine *match.Controller, logger *slog.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{listener: ln, engine: engine, logger: logger}, nil
}

// Addr returns the server's bound address.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// Serve accepts connections until ctx is done or Close is called.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		go s.handleConn(conn)
	}
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	return s.listener.Close()
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	connID := xid.New().String()
	log := s.logger.With(slog.String("conn", connID), slog.String("remote", conn.RemoteAddr().String()))
	log.Info("connection accepted")

	scanner := bufio.NewScanner(conn)
	writer := bufio.NewWriter(conn)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		decoded, err := protocol.DecodeLine(line)
		if err != nil {
			log.Warn("discarding malformed order", slog.String("error", err.Error()))
			continue
		}

		side := match.Buy
		if decoded.Side == protocol.SideSell {
			side = match.Sell
		}

		if _, err := s.engine.TrySubmit(side, decoded.Price, decoded.Quantity); err != nil {
			log.Warn("order rejected", slog.String("error", err.Error()))
			continue
		}

		if _, err := writer.WriteString("ACK: Order received\n"); err != nil {
			return
		}
		if err := writer.Flush(); err != nil {
			return
		}
	}

	log.Info("connection closed")
}
