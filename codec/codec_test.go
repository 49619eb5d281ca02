package codec

import (
	"testing"

	"github.com/coapkit/coapkit/registry"
)

type payload struct {
	Message string `json:"message"`
}

func TestDefaultRegistryJSONRoundTrip(t *testing.T) {
	r := NewDefaultRegistry()
	b, err := r.Encode(registry.ContentFormatJSON, payload{Message: "hi"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var out payload
	if err := r.Decode(registry.ContentFormatJSON, b, &out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Message != "hi" {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestDefaultRegistryCBORRoundTrip(t *testing.T) {
	r := NewDefaultRegistry()
	b, err := r.Encode(registry.ContentFormatCBOR, payload{Message: "hi"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var out payload
	if err := r.Decode(registry.ContentFormatCBOR, b, &out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Message != "hi" {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestUnknownFormat(t *testing.T) {
	r := NewDefaultRegistry()
	if _, err := r.Encode(9999, "x"); err == nil {
		t.Fatalf("expected UnknownFormatError")
	}
	var target UnknownFormatError
	if _, err := r.Encode(9999, "x"); err != nil {
		if uerr, ok := err.(*UnknownFormatError); !ok {
			t.Fatalf("expected *UnknownFormatError, got %T", err)
		} else if uerr.ContentFormat != 9999 {
			t.Fatalf("wrong content format in error: %+v", uerr)
		}
	}
	_ = target
}

func TestTextCodecPassthrough(t *testing.T) {
	r := NewDefaultRegistry()
	b, err := r.Encode(registry.ContentFormatTextPlain, "pong")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(b) != "pong" {
		t.Fatalf("got %q, want pong", b)
	}
}

func TestLinkFormatCodecFromString(t *testing.T) {
	r := NewDefaultRegistry()
	b, err := r.Encode(registry.ContentFormatLinkFormat, "</ping>;rt=\"core.ping\"")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(b) != `</ping>;rt="core.ping"` {
		t.Fatalf("got %q", b)
	}
}
