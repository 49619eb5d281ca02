package response

import (
	"fmt"

	"github.com/tidwall/sjson"
)

// PatchJSON sets path within a JSON document to value using sjson's dotted
// path syntax, grounded on the same gjson/sjson rewrite used by the
// teacher's proxy to rewrite "next_batch"-style fields in a response body
// before relaying it.
func PatchJSON(body []byte, path string, value interface{}) ([]byte, error) {
	out, err := sjson.SetBytes(body, path, value)
	if err != nil {
		return nil, fmt.Errorf("response: patch json at %q: %w", path, err)
	}
	return out, nil
}

// DeleteJSON removes path from a JSON document.
func DeleteJSON(body []byte, path string) ([]byte, error) {
	out, err := sjson.DeleteBytes(body, path)
	if err != nil {
		return nil, fmt.Errorf("response: delete json at %q: %w", path, err)
	}
	return out, nil
}
