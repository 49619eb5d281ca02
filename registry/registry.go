// Package registry implements the thread-safe, runtime-extensible constant
// tables that back CoAP codec and negotiation decisions: methods, response
// codes, options, content-formats and TCP signaling codes.
package registry

import (
	"fmt"
	"sort"
	"sync"
)

// Entry is a single numeric constant registration: a value with a
// human-readable name, an optional symbolic identifier, and an optional
// RFC reference. Value is the identity of an Entry.
type Entry struct {
	Value  uint32
	Name   string
	Symbol string
	RFC    string
}

// Registry is a mutex-protected value<->name table. Registration is
// idempotent on an exact duplicate and rejects a conflicting symbol for an
// already-registered value.
type Registry struct {
	mu        sync.RWMutex
	byValue   map[uint32]Entry
	byName    map[string]uint32
	bySymbol  map[string]uint32
	onRegister func(Entry)
}

// New creates an empty Registry. onRegister, if non-nil, is invoked
// (outside the lock) every time a new entry is accepted. The default
// registries in this package are built with a nil onRegister, so
// registering into them emits no event.
func New(onRegister func(Entry)) *Registry {
	return &Registry{
		byValue:    make(map[uint32]Entry),
		byName:     make(map[string]uint32),
		bySymbol:   make(map[string]uint32),
		onRegister: onRegister,
	}
}

// Register inserts value -> name (with optional symbol/rfc). A second
// registration of the same value with an identical name/symbol is a no-op.
// A second registration of the same value with a different symbol is an
// error.
func (r *Registry) Register(value uint32, name string, symbol, rfc string) error {
	r.mu.Lock()
	existing, ok := r.byValue[value]
	if ok {
		r.mu.Unlock()
		if existing.Name == name && existing.Symbol == symbol {
			return nil
		}
		return fmt.Errorf("registry: value %d already registered as %q (symbol %q), refusing to register %q (symbol %q)",
			value, existing.Name, existing.Symbol, name, symbol)
	}
	e := Entry{Value: value, Name: name, Symbol: symbol, RFC: rfc}
	r.byValue[value] = e
	r.byName[name] = value
	if symbol != "" {
		r.bySymbol[symbol] = value
	}
	r.mu.Unlock()

	if r.onRegister != nil {
		r.onRegister(e)
	}
	return nil
}

// MustRegister panics on error; used for baseline registrations that must
// never conflict.
func (r *Registry) MustRegister(value uint32, name, symbol, rfc string) {
	if err := r.Register(value, name, symbol, rfc); err != nil {
		panic(err)
	}
}

// NameFor returns the registered name for value, if any.
func (r *Registry) NameFor(value uint32) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byValue[value]
	return e.Name, ok
}

// ValueFor resolves either a registered name or symbol back to its value.
func (r *Registry) ValueFor(nameOrSymbol string) (uint32, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if v, ok := r.byName[nameOrSymbol]; ok {
		return v, true
	}
	v, ok := r.bySymbol[nameOrSymbol]
	return v, ok
}

// RFCFor returns the RFC reference recorded for value, if any.
func (r *Registry) RFCFor(value uint32) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byValue[value]
	if !ok || e.RFC == "" {
		return "", false
	}
	return e.RFC, true
}

// Lookup returns the full Entry for value.
func (r *Registry) Lookup(value uint32) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byValue[value]
	return e, ok
}

// Values returns a sorted snapshot of every registered value.
func (r *Registry) Values() []uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]uint32, 0, len(r.byValue))
	for v := range r.byValue {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// All returns a sorted snapshot of every registered Entry.
func (r *Registry) All() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.byValue))
	for _, e := range r.byValue {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}

// EachValue calls fn for every registered value, in ascending order. fn
// receives a snapshot Entry so callers can't mutate internal state.
func (r *Registry) EachValue(fn func(Entry)) {
	for _, e := range r.All() {
		fn(e)
	}
}
