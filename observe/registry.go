// Package observe implements an RFC 7641 Observe registry: clients GET a
// resource with an Observe option to subscribe, and the server pushes
// NON-confirmable notifications as the resource changes. The
// registration/removal bookkeeping is adapted from HTTP long-polling to
// push notification delivery.
package observe

import (
	"math"
	"sync"
	"time"

	"github.com/coapkit/coapkit/codec"
	"github.com/coapkit/coapkit/wire"
)

// Deliver sends a built notification message to one subscriber. Transports
// supply this when they register a subscription (UDP: write to the remote
// addr; TCP: write to the owning connection). A nil Deliver means the
// subscriber is a local callback instead (Subscription.Local).
type Deliver func(*wire.Message) error

// Publisher is the narrow dependency the registry needs to emit lifecycle
// events, breaking the Router/Observe/EventBus cycle: the registry depends
// on this trait rather than a concrete bus.
type Publisher interface {
	Publish(address string, body interface{})
}

// Subscription is one client's registration against one path.
type Subscription struct {
	Token      []byte
	RemoteAddr string
	Transport  wire.Transport
	Accept     uint32
	Deliver    Deliver
	// Local, if set, is invoked directly with the new value instead of
	// building a wire notification.
	Local func(value interface{})
	// Delta, if non-nil, suppresses notifications unless the new value
	// differs from the last delivered value by at least Delta. Only
	// applies when both values are numeric.
	Delta *float64

	mu             sync.Mutex
	seq            uint32
	createdAt      time.Time
	lastNotifiedAt time.Time
	hasLastValue   bool
	lastValue      float64
}

func tokenKey(token []byte) string { return string(token) }

// Registry tracks active subscriptions per path.
type Registry struct {
	mu        sync.Mutex
	subs      map[string]map[string]*Subscription // path -> token -> subscription
	codecs    *codec.Registry
	publisher Publisher
}

// New returns an empty Registry using codecs to encode notification bodies.
// publisher may be nil, in which case lifecycle events are not emitted.
func New(codecs *codec.Registry, publisher Publisher) *Registry {
	return &Registry{
		subs:      make(map[string]map[string]*Subscription),
		codecs:    codecs,
		publisher: publisher,
	}
}

func (r *Registry) emit(event string, body map[string]interface{}) {
	if r.publisher == nil {
		return
	}
	r.publisher.Publish("hooks."+event, body)
}

// Subscribe registers sub against path, replacing any existing
// subscription from the same token, and emits observe_subscribed.
func (r *Registry) Subscribe(path string, sub *Subscription) {
	now := time.Now()
	sub.createdAt = now
	sub.seq = 0
	r.mu.Lock()
	if r.subs[path] == nil {
		r.subs[path] = make(map[string]*Subscription)
	}
	r.subs[path][tokenKey(sub.Token)] = sub
	r.mu.Unlock()

	r.emit("observe_subscribed", map[string]interface{}{"path": path, "token": sub.Token})
}

// Unsubscribe removes the first subscription matching token for path, if
// any, and emits observe_unsubscribed.
func (r *Registry) Unsubscribe(path string, token []byte) {
	r.mu.Lock()
	found := false
	if m, ok := r.subs[path]; ok {
		if _, ok := m[tokenKey(token)]; ok {
			found = true
			delete(m, tokenKey(token))
		}
		if len(m) == 0 {
			delete(r.subs, path)
		}
	}
	r.mu.Unlock()

	if found {
		r.emit("observe_unsubscribed", map[string]interface{}{"path": path, "token": token})
	}
}

// Count returns the number of active subscribers on path, for metrics.
func (r *Registry) Count(path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs[path])
}

func numeric(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Notify delivers newValue to every subscriber of path. Subscribers are
// snapshotted under the lock and delivered to outside of
// it, so a slow or blocking Deliver can't stall Subscribe/Unsubscribe
// calls on other paths. A subscription with Delta set only receives the
// update when it differs from its last delivered value by at least Delta.
func (r *Registry) Notify(path string, newValue interface{}, format uint32) error {
	r.emit("observe_notify_start", map[string]interface{}{"path": path})
	defer r.emit("observe_notify_end", map[string]interface{}{"path": path})

	r.mu.Lock()
	m := r.subs[path]
	snapshot := make([]*Subscription, 0, len(m))
	for _, s := range m {
		snapshot = append(snapshot, s)
	}
	r.mu.Unlock()

	newNum, isNumeric := numeric(newValue)

	var body []byte
	var encodeErr error
	for _, s := range snapshot {
		s.mu.Lock()
		deliver := true
		if s.Delta != nil && isNumeric && s.hasLastValue {
			deliver = math.Abs(s.lastValue-newNum) >= *s.Delta
		}
		if !deliver {
			s.mu.Unlock()
			continue
		}
		if isNumeric {
			s.lastValue = newNum
			s.hasLastValue = true
		}
		s.seq++
		seq := s.seq
		s.lastNotifiedAt = time.Now()
		s.mu.Unlock()

		if s.Local != nil {
			s.Local(newValue)
			continue
		}

		if body == nil && encodeErr == nil {
			body, encodeErr = r.codecs.Encode(format, newValue)
			if encodeErr != nil {
				return encodeErr
			}
		}

		msg := &wire.Message{
			Version:   1,
			Type:      wire.NonConfirmable,
			Token:     s.Token,
			Code:      uint32(2<<5 | 5), // 2.05 Content
			Transport: s.Transport,
			Payload:   body,
		}
		msg.AddOption(6 /* Observe */, wire.EncodeUint(seq&0x00FFFFFF))
		msg.AddOption(12 /* Content-Format */, wire.EncodeUint(format))
		if s.Deliver != nil {
			_ = s.Deliver(msg)
		}
	}
	return nil
}

// CleanupStale removes subscriptions with no local handler whose
// last_notified_at (falling back to created_at if never notified) is older
// than maxAge as of now, returning how many were removed. A subscription
// with a Local callback is in-process and is never swept.
func (r *Registry) CleanupStale(maxAge time.Duration, now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for path, m := range r.subs {
		for key, s := range m {
			if s.Local != nil {
				continue
			}
			s.mu.Lock()
			last := s.lastNotifiedAt
			if last.IsZero() {
				last = s.createdAt
			}
			stale := now.Sub(last) > maxAge
			s.mu.Unlock()
			if stale {
				delete(m, key)
				removed++
			}
		}
		if len(m) == 0 {
			delete(r.subs, path)
		}
	}
	return removed
}

// StopAll clears every subscription, for graceful shutdown.
func (r *Registry) StopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = make(map[string]map[string]*Subscription)
}
