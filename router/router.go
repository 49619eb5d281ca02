package router

import (
	"fmt"
	"sort"
	"sync"

	"github.com/coapkit/coapkit/registry"
)

// Router holds (method, path) -> Entry. Registration is exclusive;
// lookup prefers an exact key before scanning parameterized patterns.
type Router struct {
	mu      sync.RWMutex
	exact   map[string]*Entry   // "method|pattern" -> entry
	params  map[uint32][]*Entry // method -> parameterized entries, kept sorted by Pattern
}

// New returns an empty Router.
func New() *Router {
	return &Router{
		exact:  make(map[string]*Entry),
		params: make(map[uint32][]*Entry),
	}
}

func key(method uint32, pattern string) string {
	return fmt.Sprintf("%d|%s", method, pattern)
}

// ErrDuplicateRoute is returned by Register when (method, pattern) is
// already registered.
type ErrDuplicateRoute struct {
	Method  uint32
	Pattern string
}

func (e *ErrDuplicateRoute) Error() string {
	name, _ := registry.Methods.NameFor(e.Method)
	return fmt.Sprintf("router: duplicate route %s %s", name, e.Pattern)
}

// Register adds a route. (method, pattern) must be unique within the
// router.
func (r *Router) Register(method uint32, pattern string, h Handler, meta LinkMeta, receiver interface{}) error {
	pattern = normalizePattern(pattern)
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key(method, pattern)
	if _, ok := r.exact[k]; ok {
		return &ErrDuplicateRoute{Method: method, Pattern: pattern}
	}
	for _, e := range r.params[method] {
		if e.Pattern == pattern {
			return &ErrDuplicateRoute{Method: method, Pattern: pattern}
		}
	}

	e := &Entry{Method: method, Pattern: pattern, Handler: h, Meta: meta, Receiver: receiver}
	if isParametric(pattern) {
		r.params[method] = append(r.params[method], e)
		sort.Slice(r.params[method], func(i, j int) bool {
			return r.params[method][i].Pattern < r.params[method][j].Pattern
		})
	} else {
		r.exact[k] = e
	}
	return nil
}

// Observable registers path under the synthetic OBSERVE method bucket with
// the default observe metadata, then also wires it
// as a plain GET route so a non-observing client can still fetch the
// current value.
func (r *Router) Observable(path string, h Handler) error {
	meta := LinkMeta{Observable: true, ResourceType: "core#observable", Interface: "core.observe"}
	if err := r.Register(registry.MethodOBSERVE, path, h, meta, nil); err != nil {
		return err
	}
	return r.Register(registry.MethodGET, path, h, meta, nil)
}

// Match looks up the route for (method, path): exact match first, then the
// parameterized patterns in lexicographic pattern order for deterministic
// tie-breaking among multiple matching patterns.
func (r *Router) Match(method uint32, path string) (*Entry, map[string]string, bool) {
	path = normalizePattern(path)
	pathSegs := segments(path)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.exact[key(method, path)]; ok {
		return e, nil, true
	}
	for _, e := range r.params[method] {
		if params, ok := match(segments(e.Pattern), pathSegs); ok {
			return e, params, true
		}
	}
	return nil, nil, false
}

// Entries returns every registered route, for the Discovery component.
// path excludes the discovery route itself when skipDiscovery is true.
func (r *Router) Entries(skipDiscovery bool) []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Entry
	for _, e := range r.exact {
		if skipDiscovery && e.Pattern == "/.well-known/core" {
			continue
		}
		out = append(out, e)
	}
	for _, list := range r.params {
		out = append(out, list...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pattern != out[j].Pattern {
			return out[i].Pattern < out[j].Pattern
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// InstallDefaults registers the three built-in routes:
// GET /.well-known/core, GET /ping, POST /echo. Handlers are supplied by
// the caller (package app) to avoid router depending on discovery/response.
func (r *Router) InstallDefaults(discovery, ping, echo Handler) error {
	if err := r.Register(registry.MethodGET, "/.well-known/core", discovery,
		LinkMeta{ResourceType: "core.discovery"}, nil); err != nil {
		return err
	}
	if err := r.Register(registry.MethodGET, "/ping", ping,
		LinkMeta{ResourceType: "core.ping"}, nil); err != nil {
		return err
	}
	if err := r.Register(registry.MethodPOST, "/echo", echo,
		LinkMeta{ResourceType: "core.echo"}, nil); err != nil {
		return err
	}
	return nil
}

func normalizePattern(p string) string {
	segs := segments(p)
	if len(segs) == 0 {
		return "/"
	}
	out := "/"
	for i, s := range segs {
		if i > 0 {
			out += "/"
		}
		out += s
	}
	return out
}
