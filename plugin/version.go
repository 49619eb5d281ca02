package plugin

import (
	"strconv"
	"strings"
)

// compareVersions compares two dotted-numeric version strings (e.g.
// "1.2.0") and returns -1, 0, or 1. Missing trailing components compare
// as zero. No example repo in the retrieval pack pulls in a semver
// library, so this is a small stdlib comparator rather than a fabricated
// dependency (see DESIGN.md).
func compareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		av := versionPart(as, i)
		bv := versionPart(bs, i)
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

func versionPart(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	v, err := strconv.Atoi(parts[i])
	if err != nil {
		return 0
	}
	return v
}

// versionAtLeast reports whether v >= min.
func versionAtLeast(v, min string) bool {
	return compareVersions(v, min) >= 0
}
