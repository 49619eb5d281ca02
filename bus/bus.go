// Package bus implements an address-keyed event bus that backs both the
// Hooks package and the Observe registry's notification fan-out: a
// mutex-protected registration map dispatching to "go func() { ... }"
// handler goroutines, generalized from a single long-poll client to an
// address-keyed many-handler bus.
package bus

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Scope controls how far a publish propagates. Unknown scopes normalize
// to Local.
type Scope int

const (
	Local Scope = iota
	Cluster
	Global
)

// Handler processes one delivered message. Errors are caught and logged;
// they never propagate to the publisher.
type Handler func(msg *Message) error

// Message is one bus delivery.
type Message struct {
	Address      string
	Body         interface{}
	Headers      map[string]string
	Scope        Scope
	ReplyAddress string
	Timestamp    time.Time
}

type consumer struct {
	id        string
	address   string
	localOnly bool
	handler   Handler
}

type bufEntry struct {
	msg *Message
}

// ObserverBridge is the narrow dependency the bus uses to fan Global-scope
// publishes out to CoAP observers, breaking the Bus/Observe cycle the same
// way observe.Publisher does for the reverse direction.
type ObserverBridge interface {
	Notify(path string, value interface{}, contentFormat uint32) error
}

// Bus is a process-wide publish/subscribe/point-to-point/request-reply
// broker. All shared state is mutex-protected; delivery to handlers
// happens outside the lock.
type Bus struct {
	mu        sync.Mutex
	consumers map[string][]*consumer // address (or wildcard pattern) -> consumers, registration order
	cursors   map[string]int         // address -> round-robin cursor for send()

	bufMu      sync.Mutex
	buffers    map[string][]bufEntry
	bufCount   int
	bufTTL     time.Duration
	bufEnabled bool

	bridge        ObserverBridge
	bridgeFormat  uint32
	log           *logrus.Entry

	closed chan struct{}
}

// Option configures optional Bus behavior at construction.
type Option func(*Bus)

// WithBuffering enables the ring buffer used by Replay, bounded by count
// and ttl (defaults: 100 messages, 300s).
func WithBuffering(count int, ttl time.Duration) Option {
	return func(b *Bus) {
		b.bufEnabled = true
		b.bufCount = count
		b.bufTTL = ttl
	}
}

// WithObserverBridge wires the bus to an Observe registry so Global-scope
// publishes fan out to CoAP observers.
func WithObserverBridge(bridge ObserverBridge, contentFormat uint32) Option {
	return func(b *Bus) {
		b.bridge = bridge
		b.bridgeFormat = contentFormat
	}
}

// SetObserverBridge wires (or replaces) the Global-scope observer bridge
// after construction, for callers that build the Observe registry after
// the Bus (it depends on the Bus as a hooks publisher).
func (b *Bus) SetObserverBridge(bridge ObserverBridge, contentFormat uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bridge = bridge
	b.bridgeFormat = contentFormat
}

// WithLogger attaches a logger used for swallowed handler/hook errors.
func WithLogger(log *logrus.Entry) Option {
	return func(b *Bus) { b.log = log }
}

// New returns an empty Bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		consumers: make(map[string][]*consumer),
		cursors:   make(map[string]int),
		buffers:   make(map[string][]bufEntry),
		bufCount:  100,
		bufTTL:    300 * time.Second,
		closed:    make(chan struct{}),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

func normalizeScope(s Scope) Scope {
	switch s {
	case Local, Cluster, Global:
		return s
	default:
		return Local
	}
}

func (b *Bus) logError(context string, err error) {
	if err == nil {
		return
	}
	if b.log != nil {
		b.log.WithError(err).Warn(context)
	}
}

// splitAddress splits an address/pattern on '.'.
func splitAddress(addr string) []string { return strings.Split(addr, ".") }

// matches reports whether pattern (possibly containing '*' wildcard
// segments) matches address: same segment count required, '*' matches
// exactly one segment.
func matches(pattern, address string) bool {
	if pattern == address {
		return true
	}
	ps := splitAddress(pattern)
	as := splitAddress(address)
	if len(ps) != len(as) {
		return false
	}
	for i := range ps {
		if ps[i] != "*" && ps[i] != as[i] {
			return false
		}
	}
	return true
}

// Consumer registers handler against address (which may contain '*'
// wildcard segments) and returns a handler id usable with Unregister.
func (b *Bus) Consumer(address string, localOnly bool, handler Handler) string {
	id := uuid.NewString()
	c := &consumer{id: id, address: address, localOnly: localOnly, handler: handler}
	b.mu.Lock()
	b.consumers[address] = append(b.consumers[address], c)
	b.mu.Unlock()
	return id
}

// Unregister removes the consumer with the given id, if present.
func (b *Bus) Unregister(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for addr, list := range b.consumers {
		for i, c := range list {
			if c.id == id {
				b.consumers[addr] = append(list[:i], list[i+1:]...)
				if len(b.consumers[addr]) == 0 {
					delete(b.consumers, addr)
				}
				return
			}
		}
	}
}

func (b *Bus) matchingConsumers(address string) []*consumer {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []*consumer
	for pattern, list := range b.consumers {
		if matches(pattern, address) {
			out = append(out, list...)
		}
	}
	return out
}

// Publish delivers body to every consumer whose address/pattern matches
// address. Delivery happens asynchronously per handler;
// handler errors are logged and swallowed. Global scope also updates the
// observer bridge, if configured.
func (b *Bus) Publish(address string, body interface{}) {
	b.PublishScoped(address, body, nil, Local)
}

// PublishScoped is Publish with explicit headers and scope.
func (b *Bus) PublishScoped(address string, body interface{}, headers map[string]string, scope Scope) {
	scope = normalizeScope(scope)
	msg := &Message{Address: address, Body: body, Headers: headers, Scope: scope, Timestamp: time.Now()}

	if b.bufEnabled {
		b.appendBuffer(address, msg)
	}

	for _, c := range b.matchingConsumers(address) {
		c := c
		go b.invoke(c.handler, msg)
	}

	if scope == Global {
		b.mu.Lock()
		bridge, format := b.bridge, b.bridgeFormat
		b.mu.Unlock()
		if bridge != nil {
			_ = bridge.Notify(address, body, format)
		}
	}
}

type recoverErr struct{ v interface{} }

func (e recoverErr) Error() string { return "recovered: " + toString(e.v) }

func errFromRecover(v interface{}) error { return recoverErr{v} }

func toString(v interface{}) string {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	if s, ok := v.(string); ok {
		return s
	}
	return "panic"
}

func (b *Bus) appendBuffer(address string, msg *Message) {
	b.bufMu.Lock()
	defer b.bufMu.Unlock()
	buf := append(b.buffers[address], bufEntry{msg: msg})
	cutoff := time.Now().Add(-b.bufTTL)
	kept := buf[:0]
	for _, e := range buf {
		if e.msg.Timestamp.After(cutoff) {
			kept = append(kept, e)
		}
	}
	if len(kept) > b.bufCount {
		kept = kept[len(kept)-b.bufCount:]
	}
	b.buffers[address] = kept
}

// Replay returns buffered messages for address since (exclusive), first
// dropping entries older than the buffer TTL. Returns nil if buffering is
// disabled.
func (b *Bus) Replay(address string, since time.Time) []*Message {
	if !b.bufEnabled {
		return nil
	}
	b.bufMu.Lock()
	defer b.bufMu.Unlock()
	buf, ok := b.buffers[address]
	if !ok {
		return nil
	}
	cutoff := time.Now().Add(-b.bufTTL)
	kept := buf[:0]
	var out []*Message
	for _, e := range buf {
		if !e.msg.Timestamp.After(cutoff) {
			continue
		}
		kept = append(kept, e)
		if e.msg.Timestamp.After(since) {
			out = append(out, e.msg)
		}
	}
	b.buffers[address] = kept
	return out
}
