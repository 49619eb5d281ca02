package response

import (
	"testing"

	"github.com/coapkit/coapkit/codec"
	"github.com/coapkit/coapkit/message"
	"github.com/coapkit/coapkit/registry"
	"github.com/coapkit/coapkit/wire"
)

func request(opts ...wire.Option) *message.Inbound {
	m := &wire.Message{Code: registry.MethodGET, Options: opts}
	return message.NewInbound(m, "test")
}

func TestBuildUsesFirstAllowedFormatWithNoAccept(t *testing.T) {
	b := NewBuilder(codec.NewDefaultRegistry())
	req := request()
	out, err := b.Build(req, registry.Content, map[string]int{"a": 1}, []uint32{registry.ContentFormatCBOR, registry.ContentFormatJSON}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cf, ok := out.Option(registry.OptionContentFormat)
	if !ok {
		t.Fatalf("expected content-format option")
	}
	if got := wire.DecodeUint(cf); got != registry.ContentFormatCBOR {
		t.Fatalf("expected first allowed format (cbor=%d), got %d", registry.ContentFormatCBOR, got)
	}
}

func TestBuildHonorsAccept(t *testing.T) {
	b := NewBuilder(codec.NewDefaultRegistry())
	req := request(wire.Option{Number: registry.OptionAccept, Value: wire.EncodeUint(registry.ContentFormatJSON)})
	out, err := b.Build(req, registry.Content, map[string]int{"a": 1}, []uint32{registry.ContentFormatCBOR, registry.ContentFormatJSON}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cf, _ := out.Option(registry.OptionContentFormat)
	if got := wire.DecodeUint(cf); got != registry.ContentFormatJSON {
		t.Fatalf("expected json (%d), got %d", registry.ContentFormatJSON, got)
	}
}

func TestBuildRejectsUnacceptableAccept(t *testing.T) {
	b := NewBuilder(codec.NewDefaultRegistry())
	req := request(wire.Option{Number: registry.OptionAccept, Value: wire.EncodeUint(registry.ContentFormatTextPlain)})
	out, err := b.Build(req, registry.Content, map[string]int{"a": 1}, []uint32{registry.ContentFormatCBOR, registry.ContentFormatJSON}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Code != registry.NotAcceptable {
		t.Fatalf("expected 4.06 Not Acceptable, got %v", out.Code)
	}
}

func TestBuildForcedFormatOverridesAccept(t *testing.T) {
	b := NewBuilder(codec.NewDefaultRegistry())
	forced := uint32(registry.ContentFormatCBOR)
	req := request(wire.Option{Number: registry.OptionAccept, Value: wire.EncodeUint(registry.ContentFormatJSON)})
	out, err := b.Build(req, registry.Content, map[string]int{"a": 1}, []uint32{registry.ContentFormatJSON}, &forced)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cf, _ := out.Option(registry.OptionContentFormat)
	if got := wire.DecodeUint(cf); got != registry.ContentFormatCBOR {
		t.Fatalf("expected forced cbor, got %d", got)
	}
}

func TestBuildRejectsUnsupportedForced(t *testing.T) {
	b := NewBuilder(codec.NewDefaultRegistry())
	forced := uint32(999)
	req := request()
	out, err := b.Build(req, registry.Content, map[string]int{"a": 1}, []uint32{registry.ContentFormatJSON}, &forced)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Code != registry.UnsupportedContentFmt {
		t.Fatalf("expected 4.15, got %v", out.Code)
	}
}

func TestErrorHelpers(t *testing.T) {
	b := NewBuilder(codec.NewDefaultRegistry())
	out := b.NotFound("no such resource")
	if out.Code != registry.NotFound {
		t.Fatalf("expected 4.04, got %v", out.Code)
	}
	if len(out.Payload) == 0 {
		t.Fatalf("expected a body")
	}
}

func TestHaltUnwraps(t *testing.T) {
	resp := message.NewOutbound(registry.Forbidden)
	err := Halt(resp)
	h, ok := err.(*Halted)
	if !ok {
		t.Fatalf("expected *Halted, got %T", err)
	}
	if h.Resp != resp {
		t.Fatalf("expected same response pointer")
	}
}

func TestPatchJSON(t *testing.T) {
	body := []byte(`{"next_batch":"s1","other":1}`)
	patched, err := PatchJSON(body, "next_batch", "s2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(patched) == string(body) {
		t.Fatalf("expected body to change")
	}
}
