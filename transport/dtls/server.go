// Package dtls is a thin CoAPS (CoAP-over-DTLS) adapter: it wraps a
// pion/dtls/v2 listener and feeds each accepted, already-decrypted
// connection's datagrams through the same decode/dispatch/encode pipeline
// the plain UDP server uses, since CoAP-over-DTLS keeps UDP's
// one-datagram-per-message framing (RFC 7252 §9, RFC 6347). It does not
// implement DTLS itself; all handshake and record-layer work is delegated
// to pion/dtls/v2.
package dtls

import (
	"context"
	"errors"
	"net"
	"sync"

	piondtls "github.com/pion/dtls/v2"
	"github.com/sirupsen/logrus"

	"github.com/coapkit/coapkit/message"
	"github.com/coapkit/coapkit/middleware"
	"github.com/coapkit/coapkit/observe"
	"github.com/coapkit/coapkit/response"
	"github.com/coapkit/coapkit/router"
	"github.com/coapkit/coapkit/wire"
)

const maxDatagramSize = 65507

// Server binds a DTLS listener and spawns one read loop per accepted
// peer connection.
type Server struct {
	ln       net.Listener
	router   *router.Router
	chain    *middleware.Chain
	observes *observe.Registry
	log      *logrus.Entry

	mu      sync.Mutex
	conns   map[net.Conn]struct{}
	wg      sync.WaitGroup
	closing bool
}

// Option configures a Server at construction.
type Option func(*Server)

// WithLogger attaches a logger for per-connection decode/dispatch errors.
func WithLogger(log *logrus.Entry) Option {
	return func(s *Server) { s.log = log }
}

// New binds a DTLS listener on addr using cfg (certificates, cipher
// suites, client auth policy) and returns a Server ready for Serve.
func New(addr string, cfg *piondtls.Config, rt *router.Router, chain *middleware.Chain, observes *observe.Registry, opts ...Option) (*Server, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	ln, err := piondtls.Listen("udp", udpAddr, cfg)
	if err != nil {
		return nil, err
	}
	s := &Server{
		ln:       ln,
		router:   rt,
		chain:    chain,
		observes: observes,
		conns:    make(map[net.Conn]struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// LocalAddr returns the bound address.
func (s *Server) LocalAddr() net.Addr { return s.ln.Addr() }

// Serve accepts DTLS peer connections until ctx is cancelled, then shuts
// down.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.Shutdown()
	}()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			s.mu.Lock()
			closing := s.closing
			s.mu.Unlock()
			if closing {
				return nil
			}
			if s.log != nil {
				s.log.WithError(err).Warn("dtls: accept error")
			}
			return err
		}

		s.mu.Lock()
		if s.closing {
			s.mu.Unlock()
			_ = conn.Close()
			continue
		}
		s.conns[conn] = struct{}{}
		s.wg.Add(1)
		s.mu.Unlock()

		go s.handleConn(conn)
	}
}

// Shutdown closes the listener and every open peer connection.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	s.closing = true
	_ = s.ln.Close()
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	if s.observes != nil {
		s.observes.StopAll()
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

	buf := make([]byte, maxDatagramSize)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) && s.log != nil {
				s.log.WithError(err).Debug("dtls: connection read error, closing")
			}
			return
		}

		data := make([]byte, n)
		copy(data, buf[:n])
		s.dispatch(conn, data)
	}
}

func (s *Server) dispatch(conn net.Conn, data []byte) {
	req, err := wire.DecodeUDP(data)
	if err != nil {
		if s.log != nil {
			s.log.WithError(err).Debug("dtls: malformed datagram, dropping")
		}
		return
	}
	req.Transport = wire.UDP

	inbound := message.NewInbound(req, conn.RemoteAddr().String())
	terminal := func(in *message.Inbound) (*message.Outbound, error) {
		entry, params, ok := s.router.Match(in.Method(), in.Path)
		if !ok {
			return nil, errNotFound
		}
		in.PathParams = params
		return entry.Handler(in)
	}

	var dispatch middleware.Next = terminal
	if s.chain != nil {
		dispatch = s.chain.Then(terminal)
	}

	out, err := dispatch(inbound)
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
	resp.Type = responseType(req)

	encoded, err := wire.EncodeUDP(resp)
	if err != nil {
		if s.log != nil {
			s.log.WithError(err).Warn("dtls: failed to encode response")
		}
		return
	}
	if _, err := conn.Write(encoded); err != nil && s.log != nil {
		s.log.WithError(err).Warn("dtls: failed to send response")
	}
}

func responseType(req *wire.Message) wire.Type {
	switch req.Type {
	case wire.Confirmable:
		return wire.Acknowledgement
	case wire.NonConfirmable:
		return wire.NonConfirmable
	default:
		return wire.Reset
	}
}
