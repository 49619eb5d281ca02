package codec

import (
	"fmt"

	"github.com/coapkit/coapkit/registry"
)

// LinkFormatter is satisfied by any value that can render itself as an RFC
// 6690 link-format body.
type LinkFormatter interface {
	LinkFormat() string
}

// LinkFormatCodec implements Codec for application/link-format
// (content-format 40), RFC 6690, used by GET /.well-known/core.
type LinkFormatCodec struct{}

// NewLinkFormatCodec returns the baseline link-format codec.
func NewLinkFormatCodec() *LinkFormatCodec { return &LinkFormatCodec{} }

func (LinkFormatCodec) ContentFormat() uint32 { return registry.ContentFormatLinkFormat }
func (LinkFormatCodec) MIME() string          { return "application/link-format" }

func (LinkFormatCodec) Encode(v interface{}) ([]byte, error) {
	switch t := v.(type) {
	case []byte:
		return t, nil
	case string:
		return []byte(t), nil
	case LinkFormatter:
		return []byte(t.LinkFormat()), nil
	default:
		return nil, fmt.Errorf("link-format codec: cannot encode %T", v)
	}
}

func (LinkFormatCodec) Decode(data []byte, v interface{}) error {
	switch t := v.(type) {
	case *string:
		*t = string(data)
	case *[]byte:
		*t = data
	default:
		return fmt.Errorf("link-format codec: Decode target must be *string or *[]byte, got %T", v)
	}
	return nil
}
