// Package discovery builds the RFC 6690 application/link-format body for
// GET /.well-known/core from the router's route table.
package discovery

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coapkit/coapkit/router"
)

// Routes is the narrow router dependency discovery needs.
type Routes interface {
	Entries(skipDiscovery bool) []*router.Entry
}

// LinkFormat renders every non-discovery route's CoRE metadata as a
// comma-separated RFC 6690 link-format document.
func LinkFormat(routes Routes) string {
	entries := routes.Entries(true)
	seen := make(map[string]bool, len(entries))
	var links []string
	for _, e := range entries {
		if seen[e.Pattern] {
			continue
		}
		seen[e.Pattern] = true
		links = append(links, link(e.Pattern, e.Meta))
	}
	return strings.Join(links, ",")
}

func link(path string, meta router.LinkMeta) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<%s>", path)

	if meta.ResourceType != "" {
		fmt.Fprintf(&b, ";rt=%s", quote(meta.ResourceType))
	}
	if meta.Interface != "" {
		fmt.Fprintf(&b, ";if=%s", quote(meta.Interface))
	}
	if len(meta.ContentFormat) > 0 {
		parts := make([]string, len(meta.ContentFormat))
		for i, cf := range meta.ContentFormat {
			parts[i] = strconv.FormatUint(uint64(cf), 10)
		}
		fmt.Fprintf(&b, ";ct=%s", quote(strings.Join(parts, " ")))
	}
	if meta.Observable {
		b.WriteString(";obs")
	}
	if meta.MaxSize > 0 {
		fmt.Fprintf(&b, ";sz=%d", meta.MaxSize)
	}
	if meta.Title != "" {
		fmt.Fprintf(&b, ";title=%s", quote(meta.Title))
	}
	return b.String()
}

// quote wraps v in double quotes, escaping any embedded quote per RFC
// 6690's quoted-string attribute values (rt, if, ct, title).
func quote(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
}
