package router

// match checks whether path (already normalized+split into segments)
// satisfies pattern segment-by-segment, preferring literal equality and
// capturing ":name" segments into params. Returns ok=false on any segment
// mismatch or differing segment count.
func match(patternSegs, pathSegs []string) (params map[string]string, ok bool) {
	if len(patternSegs) != len(pathSegs) {
		return nil, false
	}
	params = make(map[string]string, len(patternSegs))
	for i, ps := range patternSegs {
		if len(ps) > 0 && ps[0] == ':' {
			params[ps[1:]] = pathSegs[i]
			continue
		}
		if ps != pathSegs[i] {
			return nil, false
		}
	}
	return params, true
}
