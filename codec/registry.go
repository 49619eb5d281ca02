// Package codec implements a registry mapping a CoAP Content-Format code
// to a pluggable {encode, decode} pair, with JSON as the baseline and
// CBOR/text/link-format alongside it.
package codec

import (
	"fmt"
	"sync"
)

// Codec encodes and decodes payloads for one Content-Format code.
type Codec interface {
	ContentFormat() uint32
	MIME() string
	Encode(v interface{}) ([]byte, error)
	Decode(data []byte, v interface{}) error
}

// UnknownFormatError is returned when no Codec is registered for a
// requested Content-Format code.
type UnknownFormatError struct{ ContentFormat uint32 }

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("codec: unknown content-format %d", e.ContentFormat)
}

// EncodeError wraps a codec's own encode failure.
type EncodeError struct {
	ContentFormat uint32
	Err           error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("codec: encode failed for content-format %d: %s", e.ContentFormat, e.Err)
}
func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError wraps a codec's own decode failure.
type DecodeError struct {
	ContentFormat uint32
	Err           error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("codec: decode failed for content-format %d: %s", e.ContentFormat, e.Err)
}
func (e *DecodeError) Unwrap() error { return e.Err }

// Registry is a mutex-protected content-format -> Codec table.
type Registry struct {
	mu     sync.RWMutex
	codecs map[uint32]Codec
}

// NewRegistry returns an empty Registry. Use NewDefaultRegistry for one
// pre-populated with the baseline text/link-format/json/cbor codecs.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[uint32]Codec)}
}

// NewDefaultRegistry returns a Registry pre-populated with the baseline
// registrations: text/plain (0), application/link-format (40),
// application/json (50), application/cbor (60).
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewTextCodec())
	r.Register(NewLinkFormatCodec())
	r.Register(NewJSONCodec())
	r.Register(NewCBORCodec())
	return r
}

// Register installs (or replaces) the codec for its ContentFormat code.
// Plugins may call this at runtime to add e.g. a custom binary format.
func (r *Registry) Register(c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[c.ContentFormat()] = c
}

// Get returns the codec registered for format, if any.
func (r *Registry) Get(format uint32) (Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[format]
	return c, ok
}

// Supports reports whether format has a registered codec.
func (r *Registry) Supports(format uint32) bool {
	_, ok := r.Get(format)
	return ok
}

// Encode encodes v using the codec registered for format.
func (r *Registry) Encode(format uint32, v interface{}) ([]byte, error) {
	c, ok := r.Get(format)
	if !ok {
		return nil, &UnknownFormatError{ContentFormat: format}
	}
	b, err := c.Encode(v)
	if err != nil {
		return nil, &EncodeError{ContentFormat: format, Err: err}
	}
	return b, nil
}

// Decode decodes data using the codec registered for format, into v.
func (r *Registry) Decode(format uint32, data []byte, v interface{}) error {
	c, ok := r.Get(format)
	if !ok {
		return &UnknownFormatError{ContentFormat: format}
	}
	if err := c.Decode(data, v); err != nil {
		return &DecodeError{ContentFormat: format, Err: err}
	}
	return nil
}
