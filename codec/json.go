package codec

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/coapkit/coapkit/registry"
)

// jsonAPI uses jsoniter as a drop-in, faster replacement for the stdlib
// encoding/json, configured to match its exact marshaling behavior.
var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONCodec implements Codec for application/json (content-format 50).
type JSONCodec struct{}

// NewJSONCodec returns the baseline JSON codec.
func NewJSONCodec() *JSONCodec { return &JSONCodec{} }

func (JSONCodec) ContentFormat() uint32 { return registry.ContentFormatJSON }
func (JSONCodec) MIME() string          { return "application/json" }

func (JSONCodec) Encode(v interface{}) ([]byte, error) {
	if b, ok := v.([]byte); ok {
		return b, nil
	}
	return jsonAPI.Marshal(v)
}

func (JSONCodec) Decode(data []byte, v interface{}) error {
	return jsonAPI.Unmarshal(data, v)
}
