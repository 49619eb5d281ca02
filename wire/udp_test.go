package wire

import (
	"bytes"
	"reflect"
	"testing"
)

func TestUDPRoundTrip(t *testing.T) {
	cases := []*Message{
		{
			Version: 1, Type: Confirmable, Token: []byte{0x01, 0x02},
			MessageID: 0xABCD, Code: uint32(1), // GET
			Options: []Option{{Number: 11, Value: []byte("ping")}},
			Payload: nil, Transport: UDP,
		},
		{
			Version: 1, Type: NonConfirmable, Token: []byte{},
			MessageID: 1, Code: uint32(69), // 2.05
			Options: []Option{
				{Number: 11, Value: []byte("sensors")},
				{Number: 11, Value: []byte("temp")},
				{Number: 12, Value: EncodeUint(50)},
			},
			Payload: []byte(`{"v":1}`), Transport: UDP,
		},
		{
			Version: 1, Type: Reset, Token: []byte{1, 2, 3, 4, 5, 6, 7, 8},
			MessageID: 0xFFFF, Code: 0,
			Options: nil, Payload: nil, Transport: UDP,
		},
	}
	for i, m := range cases {
		enc, err := EncodeUDP(m)
		if err != nil {
			t.Fatalf("case %d: EncodeUDP: %v", i, err)
		}
		dec, err := DecodeUDP(enc)
		if err != nil {
			t.Fatalf("case %d: DecodeUDP: %v", i, err)
		}
		if dec.Type != m.Type || dec.MessageID != m.MessageID || dec.Code != m.Code {
			t.Fatalf("case %d: header mismatch: %+v vs %+v", i, dec, m)
		}
		if !bytes.Equal(dec.Token, m.Token) {
			t.Fatalf("case %d: token mismatch: %x vs %x", i, dec.Token, m.Token)
		}
		if !bytes.Equal(dec.Payload, m.Payload) {
			t.Fatalf("case %d: payload mismatch: %q vs %q", i, dec.Payload, m.Payload)
		}
		if !reflect.DeepEqual(dec.Options, m.Options) {
			if len(dec.Options) != 0 || len(m.Options) != 0 {
				t.Fatalf("case %d: options mismatch: %+v vs %+v", i, dec.Options, m.Options)
			}
		}
	}
}

func TestUDPDecodeRejectsBadVersion(t *testing.T) {
	data := []byte{0x00, 0x01, 0x00, 0x00} // version 0
	if _, err := DecodeUDP(data); err == nil {
		t.Fatalf("expected bad_version error")
	}
}

func TestUDPDecodeRejectsShortHeader(t *testing.T) {
	if _, err := DecodeUDP([]byte{0x40, 0x01}); err == nil {
		t.Fatalf("expected short error")
	}
}

func TestUDPDecodeRejectsTKLOver8(t *testing.T) {
	// version=1, type=0, TKL=9
	data := []byte{0x49, 0x01, 0x00, 0x00}
	if _, err := DecodeUDP(data); err == nil {
		t.Fatalf("expected malformed error for TKL > 8")
	}
}

func TestUDPDecodeRejectsEmptyPayloadAfterMarker(t *testing.T) {
	m := &Message{Version: 1, Type: Confirmable, Code: 1, MessageID: 1}
	enc, err := EncodeUDP(m)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	enc = append(enc, 0xFF) // marker with nothing after it
	if _, err := DecodeUDP(enc); err == nil {
		t.Fatalf("expected malformed error for empty payload after marker")
	}
}

func TestUDPEncodeDeterministic(t *testing.T) {
	m := &Message{
		Version: 1, Type: Confirmable, Token: []byte{9},
		MessageID: 7, Code: 2,
		Options: []Option{{Number: 11, Value: []byte("echo")}},
	}
	a, err := EncodeUDP(m)
	if err != nil {
		t.Fatal(err)
	}
	b, err := EncodeUDP(m)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("encoding is not deterministic")
	}
}
