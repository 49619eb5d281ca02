package codec

import (
	"fmt"

	cbor "github.com/fxamacker/cbor/v2"

	"github.com/coapkit/coapkit/registry"
)

// CBORCodec implements Codec for application/cbor (content-format 60)
// using fxamacker/cbor.
type CBORCodec struct {
	canonical bool
}

// NewCBORCodec returns the baseline CBOR codec. If canonical is true,
// Encode uses RFC 7049 §3.9 canonical encoding.
func NewCBORCodec(canonical ...bool) *CBORCodec {
	c := false
	if len(canonical) > 0 {
		c = canonical[0]
	}
	return &CBORCodec{canonical: c}
}

func (CBORCodec) ContentFormat() uint32 { return registry.ContentFormatCBOR }
func (CBORCodec) MIME() string          { return "application/cbor" }

func (c CBORCodec) Encode(v interface{}) ([]byte, error) {
	if b, ok := v.([]byte); ok {
		return b, nil
	}
	if !c.canonical {
		return cbor.Marshal(v)
	}
	mode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("cbor: building canonical encoder: %w", err)
	}
	return mode.Marshal(v)
}

func (CBORCodec) Decode(data []byte, v interface{}) error {
	return cbor.Unmarshal(data, v)
}
