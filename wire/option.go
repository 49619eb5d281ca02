package wire

import (
	"bytes"
	"sort"
)

// nibbleExtension computes the 4-bit nibble and any extension bytes for an
// option delta or length value, per RFC 7252 §3.1:
//
//	0..12    -> nibble = value, no extension
//	13..268  -> nibble = 13, 1 extension byte = value-13
//	269..65804 -> nibble = 14, 2 extension bytes (big-endian) = value-269
//	>65804   -> too large for a single option header
//
// Nibble 15 is reserved and never produced by the encoder.
func nibbleExtension(value uint32) (nibble uint8, ext []byte, err error) {
	switch {
	case value <= 12:
		return uint8(value), nil, nil
	case value <= 268:
		return 13, []byte{byte(value - 13)}, nil
	case value <= 65804:
		v := value - 269
		return 14, []byte{byte(v >> 8), byte(v)}, nil
	default:
		return 0, nil, newErr(KindTooLarge, "option delta/length %d exceeds 65804", value)
	}
}

// readNibbleExtension resolves a nibble read from an option header plus any
// extension bytes consumed from r back into the real delta/length value.
func readNibbleExtension(nibble uint8, r *bytes.Reader) (uint32, error) {
	switch {
	case nibble <= 12:
		return uint32(nibble), nil
	case nibble == 13:
		b, err := r.ReadByte()
		if err != nil {
			return 0, newErr(KindShort, "truncated 1-byte option extension")
		}
		return uint32(b) + 13, nil
	case nibble == 14:
		var buf [2]byte
		if n, err := r.Read(buf[:]); err != nil || n != 2 {
			return 0, newErr(KindShort, "truncated 2-byte option extension")
		}
		return (uint32(buf[0])<<8 | uint32(buf[1])) + 269, nil
	default: // 15
		return 0, newErr(KindMalformed, "reserved option nibble 15")
	}
}

// EncodeOptions writes opts in strictly ascending option-number order
// (stable on ties, preserving insertion order for repeated numbers) to w.
func EncodeOptions(w *bytes.Buffer, opts []Option) error {
	sorted := make([]Option, len(opts))
	copy(sorted, opts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

	var prev uint32
	for _, o := range sorted {
		delta := o.Number - prev
		prev = o.Number

		deltaNibble, deltaExt, err := nibbleExtension(delta)
		if err != nil {
			return err
		}
		lengthNibble, lengthExt, err := nibbleExtension(uint32(len(o.Value)))
		if err != nil {
			return err
		}
		w.WriteByte((deltaNibble << 4) | lengthNibble)
		w.Write(deltaExt)
		w.Write(lengthExt)
		w.Write(o.Value)
	}
	return nil
}

// DecodeOptions reads options from r until either r is exhausted or the
// 0xFF payload marker is encountered (which is left unconsumed so the
// caller can detect it and read the payload). Returns the decoded options.
func DecodeOptions(r *bytes.Reader) ([]Option, error) {
	var opts []Option
	var current uint32
	for {
		b, err := r.ReadByte()
		if err != nil {
			return opts, nil // end of buffer, no payload marker
		}
		if b == 0xFF {
			if err := r.UnreadByte(); err != nil {
				return nil, err
			}
			return opts, nil
		}
		deltaNibble := b >> 4
		lengthNibble := b & 0x0F
		delta, err := readNibbleExtension(deltaNibble, r)
		if err != nil {
			return nil, err
		}
		length, err := readNibbleExtension(lengthNibble, r)
		if err != nil {
			return nil, err
		}
		current += delta
		value := make([]byte, length)
		if length > 0 {
			n, err := r.Read(value)
			if err != nil || uint32(n) != length {
				return nil, newErr(KindShort, "truncated option value for number %d", current)
			}
		}
		opts = append(opts, Option{Number: current, Value: value})
	}
}

// EncodeUint returns the minimal big-endian encoding of v: zero-length for
// v == 0, otherwise the shortest byte sequence with no leading zero byte.
// Used for integer-valued options (e.g. Content-Format, Max-Age, Observe).
func EncodeUint(v uint32) []byte {
	if v == 0 {
		return nil
	}
	var buf [4]byte
	buf[0] = byte(v >> 24)
	buf[1] = byte(v >> 16)
	buf[2] = byte(v >> 8)
	buf[3] = byte(v)
	i := 0
	for i < 3 && buf[i] == 0 {
		i++
	}
	return buf[i:]
}

// DecodeUint decodes a minimal big-endian integer option value.
func DecodeUint(b []byte) uint32 {
	var v uint32
	for _, by := range b {
		v = v<<8 | uint32(by)
	}
	return v
}
