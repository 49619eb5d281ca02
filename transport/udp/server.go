// Package udp implements the CoAP-over-UDP server. Each worker thread
// loops recv -> decode -> dispatch -> encode -> send; a CON request gets
// an ACK response echoing message ID and token, a NON request gets NON,
// anything else gets RST.
package udp

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/coapkit/coapkit/message"
	"github.com/coapkit/coapkit/middleware"
	"github.com/coapkit/coapkit/observe"
	"github.com/coapkit/coapkit/response"
	"github.com/coapkit/coapkit/router"
	"github.com/coapkit/coapkit/wire"
)

const maxDatagramSize = 65507

// Server binds one UDP socket and fans datagrams out to worker goroutines.
// A "worker process" maps to a worker goroutine group here, since a Go
// server has no analogue to forking OS processes for a single listening
// socket.
type Server struct {
	conn     *net.UDPConn
	router   *router.Router
	chain    *middleware.Chain
	observes *observe.Registry
	log      *logrus.Entry

	workers       int
	threadsPerWrk int

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// Option configures a Server at construction.
type Option func(*Server)

// WithWorkers sets how many worker goroutine groups run, each running
// threadsPerWorker dispatch loops. Defaults to 1/4.
func WithWorkers(workers, threadsPerWorker int) Option {
	return func(s *Server) {
		if workers > 0 {
			s.workers = workers
		}
		if threadsPerWorker > 0 {
			s.threadsPerWrk = threadsPerWorker
		}
	}
}

// WithLogger attaches a logger for per-datagram decode/dispatch errors.
func WithLogger(log *logrus.Entry) Option {
	return func(s *Server) { s.log = log }
}

// New returns a Server bound to addr, ready for Serve.
func New(addr string, rt *router.Router, chain *middleware.Chain, observes *observe.Registry, opts ...Option) (*Server, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, err
	}
	s := &Server{
		conn:          conn,
		router:        rt,
		chain:         chain,
		observes:      observes,
		workers:       1,
		threadsPerWrk: 4,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// LocalAddr returns the bound address.
func (s *Server) LocalAddr() net.Addr { return s.conn.LocalAddr() }

// Serve blocks, running workers*threadsPerWorker dispatch goroutines,
// until ctx is cancelled (SIGINT handling lives in the caller).
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for p := 0; p < s.workers; p++ {
		for t := 0; t < s.threadsPerWrk; t++ {
			s.wg.Add(1)
			go s.loop(ctx)
		}
	}

	<-ctx.Done()
	return s.Shutdown()
}

// Shutdown closes the socket, waits up to a 2-second grace window for
// in-flight workers, and stops every Observe subscription.
func (s *Server) Shutdown() error {
	if s.cancel != nil {
		s.cancel()
	}
	_ = s.conn.Close()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		if s.log != nil {
			s.log.Warn("udp: workers did not stop within grace window")
		}
	}

	if s.observes != nil {
		s.observes.StopAll()
	}
	return nil
}

func (s *Server) loop(ctx context.Context) {
	defer s.wg.Done()
	buf := make([]byte, maxDatagramSize)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, remote, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			if s.log != nil {
				s.log.WithError(err).Warn("udp: read error")
			}
			continue
		}

		data := make([]byte, n)
		copy(data, buf[:n])
		go s.handle(data, remote)
	}
}

func (s *Server) handle(data []byte, remote *net.UDPAddr) {
	req, err := wire.DecodeUDP(data)
	if err != nil {
		if s.log != nil {
			s.log.WithError(err).Debug("udp: malformed datagram, dropping")
		}
		return
	}
	req.Transport = wire.UDP

	inbound := message.NewInbound(req, remote.String())
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
			s.log.WithError(err).Warn("udp: failed to encode response")
		}
		return
	}
	if _, err := s.conn.WriteToUDP(encoded, remote); err != nil && s.log != nil {
		s.log.WithError(err).Warn("udp: failed to send response")
	}
}

// responseType derives the reply type from the request: CON->ACK,
// NON->NON, anything else (an ACK/RST sent to us, which should never
// reach a request handler) ->RST.
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
