// Package tcp implements the CoAP-over-TCP server (RFC 8323):
// per-connection CSM handshake, PING/PONG keepalive, RELEASE/ABORT
// teardown, and request routing identical to udp's except transport=TCP
// and no message-id/type framing. One goroutine is spawned per accepted
// connection, mirroring the listener pattern used by the UDP server.
package tcp

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/coapkit/coapkit/message"
	"github.com/coapkit/coapkit/middleware"
	"github.com/coapkit/coapkit/registry"
	"github.com/coapkit/coapkit/response"
	"github.com/coapkit/coapkit/router"
	"github.com/coapkit/coapkit/wire"
)

const defaultMaxMessageSize = 8388864 // CSM Max-Message-Size default

// Server binds a TCP listener and spawns one goroutine per accepted
// connection.
type Server struct {
	ln     net.Listener
	router *router.Router
	chain  *middleware.Chain
	log    *logrus.Entry

	maxMessageSize uint32

	mu       sync.Mutex
	conns    map[net.Conn]struct{}
	wg       sync.WaitGroup
	closing  bool
}

// Option configures a Server at construction.
type Option func(*Server)

// WithLogger attaches a logger for connection-level errors.
func WithLogger(log *logrus.Entry) Option {
	return func(s *Server) { s.log = log }
}

// WithMaxMessageSize overrides the CSM Max-Message-Size advertised to
// clients (default 8388864).
func WithMaxMessageSize(n uint32) Option {
	return func(s *Server) { s.maxMessageSize = n }
}

// New returns a Server listening on addr, ready for Serve.
func New(addr string, rt *router.Router, chain *middleware.Chain, opts ...Option) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s := &Server{
		ln:             ln,
		router:         rt,
		chain:          chain,
		maxMessageSize: defaultMaxMessageSize,
		conns:          make(map[net.Conn]struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// LocalAddr returns the listening address.
func (s *Server) LocalAddr() net.Addr { return s.ln.Addr() }

// Serve accepts connections until ctx is cancelled, which shuts the
// server down. Accept errors other than a closed listener are logged and
// the loop keeps accepting.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.Shutdown()
	}()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			if s.log != nil {
				s.log.WithError(err).Warn("tcp: accept error")
			}
			continue
		}
		s.mu.Lock()
		if s.closing {
			s.mu.Unlock()
			conn.Close()
			continue
		}
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

// Shutdown closes the listener and every open connection, waiting up to
// 5 seconds for handler goroutines to finish.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	s.closing = true
	_ = s.ln.Close()
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		if s.log != nil {
			s.log.Warn("tcp: connections did not close within grace window")
		}
	}
	return nil
}

func (s *Server) forget(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer s.forget(conn)
	defer conn.Close()

	if !s.handshake(conn) {
		return
	}

	for {
		msg, err := wire.DecodeTCP(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) && s.log != nil {
				s.log.WithError(err).Debug("tcp: connection closed")
			}
			return
		}
		msg.Transport = wire.TCP

		switch msg.Code {
		case registry.SignalingPing:
			pong := &wire.Message{Version: 1, Code: registry.SignalingPong, Token: msg.Token, Transport: wire.TCP}
			if err := s.write(conn, pong); err != nil {
				return
			}
		case registry.SignalingRelease, registry.SignalingAbort:
			return
		case registry.SignalingCSM, registry.SignalingPong:
			// ignore further CSM/PONG exchanges after the initial handshake
		default:
			s.dispatch(conn, msg)
		}
	}
}

// handshake performs the RFC 8323 §5.3 initial exchange: the first
// message from the client must be CSM, the server replies with its own
// CSM advertising Max-Message-Size and Block-Wise-Transfer.
func (s *Server) handshake(conn net.Conn) bool {
	msg, err := wire.DecodeTCP(conn)
	if err != nil {
		if s.log != nil {
			s.log.WithError(err).Debug("tcp: failed to read initial CSM")
		}
		return false
	}
	if msg.Code != registry.SignalingCSM {
		if s.log != nil {
			s.log.Warn("tcp: first message was not CSM, closing connection")
		}
		return false
	}

	csm := &wire.Message{Version: 1, Code: registry.SignalingCSM, Transport: wire.TCP}
	csm.AddOption(registry.SignalingOptionMaxMessageSize, wire.EncodeUint(s.maxMessageSize))
	csm.AddOption(registry.SignalingOptionBlockWiseTransfer, nil)
	return s.write(conn, csm) == nil
}

func (s *Server) write(conn net.Conn, msg *wire.Message) error {
	data, err := wire.EncodeTCP(msg)
	if err != nil {
		return err
	}
	_, err = conn.Write(data)
	return err
}

func (s *Server) dispatch(conn net.Conn, req *wire.Message) {
	inbound := message.NewInbound(req, conn.RemoteAddr().String())
	terminal := func(in *message.Inbound) (*message.Outbound, error) {
		entry, params, ok := s.router.Match(in.Method(), in.Path)
		if !ok {
			return nil, errNotFound
		}
		in.PathParams = params
		return entry.Handler(in)
	}

	var next middleware.Next = terminal
	if s.chain != nil {
		next = s.chain.Then(terminal)
	}

	out, err := next(inbound)
	if err != nil {
		var halted *response.Halted
		if errors.As(err, &halted) {
			out = halted.Resp
		} else {
			out = errorOutbound(err)
		}
	}
	if out == nil {
		return
	}

	resp := out.ToWire(req)
	if err := s.write(conn, resp); err != nil && s.log != nil {
		s.log.WithError(err).Warn("tcp: failed to send response")
	}
}
