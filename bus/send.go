package bus

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is returned by SendSync when no reply arrives before the
// deadline.
var ErrTimeout = errors.New("bus: timeout")

// ErrNoConsumer is returned by Send when address has no registered
// consumer to pick from.
var ErrNoConsumer = errors.New("bus: no consumer registered for address")

const replyConsumerGrace = 30 * time.Second

// Send delivers body to exactly one consumer registered on address,
// chosen by a per-address round-robin cursor. If
// replyHandler is non-nil, a unique reply address is allocated, a
// temporary consumer is registered for it, and the outgoing message's
// ReplyAddress header is set; the temporary consumer auto-unregisters
// after 30 seconds if unused.
func (b *Bus) Send(address string, body interface{}, replyHandler Handler) error {
	b.mu.Lock()
	var targets []*consumer
	for pattern, list := range b.consumers {
		if matches(pattern, address) {
			targets = append(targets, list...)
		}
	}
	if len(targets) == 0 {
		b.mu.Unlock()
		return ErrNoConsumer
	}
	cursor := b.cursors[address] % len(targets)
	b.cursors[address] = cursor + 1
	target := targets[cursor]
	b.mu.Unlock()

	msg := &Message{Address: address, Body: body, Scope: Local, Timestamp: time.Now()}

	var replyID string
	if replyHandler != nil {
		replyAddr := fmt.Sprintf("%s.reply.%s", address, newID())
		replyID = b.Consumer(replyAddr, true, replyHandler)
		msg.ReplyAddress = replyAddr
		time.AfterFunc(replyConsumerGrace, func() {
			b.Unregister(replyID)
		})
	}

	b.invoke(target.handler, msg)
	return nil
}

// invoke runs handler with msg, recovering panics and logging errors the
// same way Publish's asynchronous fan-out does.
func (b *Bus) invoke(handler Handler, msg *Message) {
	defer func() {
		if r := recover(); r != nil {
			b.logError("bus: handler panic", errFromRecover(r))
		}
	}()
	b.logError("bus: handler error", handler(msg))
}

// SendSync delivers body to address and blocks until a reply is published
// on the allocated reply address or timeout elapses, whichever comes
// first.
func (b *Bus) SendSync(ctx context.Context, address string, body interface{}, timeout time.Duration) (interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	replyCh := make(chan interface{}, 1)
	err := b.Send(address, body, func(msg *Message) error {
		select {
		case replyCh <- msg.Body:
		default:
		}
		return nil
	})
	// A missing consumer still waits out the deadline instead of failing
	// fast, so callers see a uniform ErrTimeout rather than racing on
	// whether a consumer happened to be registered yet.
	if err != nil && !errors.Is(err, ErrNoConsumer) {
		return nil, err
	}

	select {
	case reply := <-replyCh:
		return reply, nil
	case <-ctx.Done():
		return nil, ErrTimeout
	}
}

// Future resolves once SendAsync's reply arrives (or times out).
type Future struct {
	done chan struct{}
	val  interface{}
	err  error
}

// Wait blocks until the future resolves.
func (f *Future) Wait() (interface{}, error) {
	<-f.done
	return f.val, f.err
}

// SendAsync delivers body to address and returns a Future that resolves
// when the reply arrives, bounded by timeout.
func (b *Bus) SendAsync(address string, body interface{}, timeout time.Duration) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		v, err := b.SendSync(context.Background(), address, body, timeout)
		f.val, f.err = v, err
		close(f.done)
	}()
	return f
}
