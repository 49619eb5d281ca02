// Package message builds the Inbound (parsed request) and Outbound
// (response to encode) views on top of the raw wire.Message, including
// URI reconstruction from Uri-Path/Uri-Query options.
package message

import (
	"net/url"
	"strings"

	"github.com/coapkit/coapkit/registry"
	"github.com/coapkit/coapkit/wire"
)

// PathFromOptions joins every Uri-Path option value with '/', producing a
// leading-slash path. Consecutive/trailing slashes are normalized away so
// that "/a//b" and "/a/b" reconstruct identically.
func PathFromOptions(m *wire.Message) string {
	var segs []string
	for _, v := range m.GetOptions(registry.OptionURIPath) {
		segs = append(segs, string(v))
	}
	return NormalizePath("/" + strings.Join(segs, "/"))
}

// NormalizePath collapses repeated slashes and strips a trailing slash
// (other than the root "/"), so routing can match on a canonical path.
func NormalizePath(p string) string {
	parts := strings.Split(p, "/")
	out := make([]string, 0, len(parts))
	for _, seg := range parts {
		if seg == "" {
			continue
		}
		out = append(out, seg)
	}
	if len(out) == 0 {
		return "/"
	}
	return "/" + strings.Join(out, "/")
}

// QueryFromOptions parses repeated Uri-Query option values ("k=v" or bare
// "flag") into a multimap, preserving wire order.
func QueryFromOptions(m *wire.Message) map[string][]string {
	q := make(map[string][]string)
	for _, v := range m.GetOptions(registry.OptionURIQuery) {
		s := string(v)
		if idx := strings.IndexByte(s, '='); idx >= 0 {
			k := s[:idx]
			val, _ := url.QueryUnescape(s[idx+1:])
			q[k] = append(q[k], val)
		} else {
			q[s] = append(q[s], "")
		}
	}
	return q
}

// PathOptions splits a path into Uri-Path option values, the inverse of
// PathFromOptions, for building an Outbound request representation (e.g.
// when the event bus needs to mirror a path onto a synthetic request).
func PathOptions(path string) []string {
	norm := NormalizePath(path)
	if norm == "/" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(norm, "/"), "/")
}
