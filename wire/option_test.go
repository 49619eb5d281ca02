package wire

import (
	"bytes"
	"testing"
)

func TestNibbleExtensionBoundaries(t *testing.T) {
	cases := []struct {
		value    uint32
		wantSize int // nibble byte + extension bytes
	}{
		{12, 1},
		{13, 2},
		{268, 2},
		{269, 3},
		{65804, 3},
	}
	for _, tc := range cases {
		_, ext, err := nibbleExtension(tc.value)
		if err != nil {
			t.Fatalf("nibbleExtension(%d): %v", tc.value, err)
		}
		got := 1 + len(ext)
		if got != tc.wantSize {
			t.Errorf("nibbleExtension(%d) header size = %d, want %d", tc.value, got, tc.wantSize)
		}
	}
}

func TestNibbleExtensionTooLarge(t *testing.T) {
	if _, _, err := nibbleExtension(65805); err == nil {
		t.Fatalf("expected too_large error for 65805")
	}
}

func TestIntegerMinimality(t *testing.T) {
	if got := EncodeUint(0); len(got) != 0 {
		t.Fatalf("EncodeUint(0) = %v, want zero-length", got)
	}
	got := EncodeUint(8388864)
	want := []byte{0x80, 0x01, 0x00}
	if !bytes.Equal(got, want) {
		t.Fatalf("EncodeUint(8388864) = % x, want % x", got, want)
	}
	if DecodeUint(want) != 8388864 {
		t.Fatalf("DecodeUint round trip failed")
	}
}

func TestOptionRoundTripRepeatedNumbers(t *testing.T) {
	opts := []Option{
		{Number: 11, Value: []byte("a")},
		{Number: 11, Value: []byte("b")},
		{Number: 15, Value: []byte("q")},
	}
	var buf bytes.Buffer
	if err := EncodeOptions(&buf, opts); err != nil {
		t.Fatalf("EncodeOptions: %v", err)
	}
	r := bytes.NewReader(buf.Bytes())
	got, err := DecodeOptions(r)
	if err != nil {
		t.Fatalf("DecodeOptions: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d options, want 3", len(got))
	}
	for i, o := range opts {
		if got[i].Number != o.Number || !bytes.Equal(got[i].Value, o.Value) {
			t.Errorf("option[%d] = %+v, want %+v", i, got[i], o)
		}
	}
}
