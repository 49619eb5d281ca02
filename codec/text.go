package codec

import (
	"fmt"

	"github.com/coapkit/coapkit/registry"
)

// TextCodec implements Codec for text/plain (content-format 0). Encode
// accepts []byte or string (or anything Stringer-like via fmt.Sprint);
// Decode requires v to be a *string or *[]byte.
type TextCodec struct{}

// NewTextCodec returns the baseline text/plain codec.
func NewTextCodec() *TextCodec { return &TextCodec{} }

func (TextCodec) ContentFormat() uint32 { return registry.ContentFormatTextPlain }
func (TextCodec) MIME() string          { return "text/plain;charset=utf-8" }

func (TextCodec) Encode(v interface{}) ([]byte, error) {
	switch t := v.(type) {
	case []byte:
		return t, nil
	case string:
		return []byte(t), nil
	default:
		return []byte(fmt.Sprint(v)), nil
	}
}

func (TextCodec) Decode(data []byte, v interface{}) error {
	switch t := v.(type) {
	case *string:
		*t = string(data)
	case *[]byte:
		*t = data
	default:
		return fmt.Errorf("text codec: Decode target must be *string or *[]byte, got %T", v)
	}
	return nil
}
