package wire

import (
	"bytes"
	"io"
)

// tcpLengthExtension computes the TCP frame length nibble and extension
// bytes, RFC 8323 §3.2:
//
//	0..12      -> nibble = length, no extension
//	13..268    -> nibble = 13, 1 extension byte  = length-13
//	269..65804 -> nibble = 14, 2 extension bytes = length-269
//	65805..    -> nibble = 15, 4 extension bytes = length-65805
func tcpLengthExtension(length uint32) (nibble uint8, ext []byte) {
	switch {
	case length <= 12:
		return uint8(length), nil
	case length <= 268:
		return 13, []byte{byte(length - 13)}
	case length <= 65804:
		v := length - 269
		return 14, []byte{byte(v >> 8), byte(v)}
	default:
		v := length - 65805
		return 15, []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
	}
}

func readUint(b []byte) uint32 {
	var v uint32
	for _, by := range b {
		v = v<<8 | uint32(by)
	}
	return v
}

func tcpExtensionSize(nibble uint8) int {
	switch nibble {
	case 13:
		return 1
	case 14:
		return 2
	case 15:
		return 4
	default:
		return 0
	}
}

func tcpResolveLength(nibble uint8, ext []byte) uint32 {
	switch nibble {
	case 13:
		return uint32(ext[0]) + 13
	case 14:
		return readUint(ext) + 269
	case 15:
		return readUint(ext) + 65805
	default:
		return uint32(nibble)
	}
}

// EncodeTCP serializes m using the RFC 8323 variable-length TCP framing.
// The length field covers only the options+payload bytes, not code or
// token.
func EncodeTCP(m *Message) ([]byte, error) {
	if len(m.Token) > 8 {
		return nil, newErr(KindMalformed, "token length %d exceeds 8", len(m.Token))
	}
	var body bytes.Buffer
	if err := EncodeOptions(&body, m.Options); err != nil {
		return nil, err
	}
	if len(m.Payload) > 0 {
		body.WriteByte(0xFF)
		body.Write(m.Payload)
	}

	lenNibble, lenExt := tcpLengthExtension(uint32(body.Len()))

	var out bytes.Buffer
	out.WriteByte((lenNibble << 4) | uint8(len(m.Token)))
	out.Write(lenExt)
	out.WriteByte(byte(m.Code))
	out.Write(m.Token)
	out.Write(body.Bytes())
	return out.Bytes(), nil
}

// DecodeTCP reads exactly one TCP-framed message from r.
func DecodeTCP(r io.Reader) (*Message, error) {
	var first [1]byte
	if _, err := io.ReadFull(r, first[:]); err != nil {
		return nil, newErr(KindShort, "truncated frame header: %v", err)
	}
	lenNibble := first[0] >> 4
	tkl := first[0] & 0x0F
	if tkl > 8 {
		return nil, newErr(KindMalformed, "TKL %d exceeds 8", tkl)
	}

	extSize := tcpExtensionSize(lenNibble)
	var lenExt []byte
	if extSize > 0 {
		lenExt = make([]byte, extSize)
		if _, err := io.ReadFull(r, lenExt); err != nil {
			return nil, newErr(KindShort, "truncated length extension: %v", err)
		}
	}
	length := tcpResolveLength(lenNibble, lenExt)

	var codeByte [1]byte
	if _, err := io.ReadFull(r, codeByte[:]); err != nil {
		return nil, newErr(KindShort, "truncated code byte: %v", err)
	}

	token := make([]byte, tkl)
	if tkl > 0 {
		if _, err := io.ReadFull(r, token); err != nil {
			return nil, newErr(KindShort, "truncated token: %v", err)
		}
	}

	body := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, newErr(KindShort, "truncated body (want %d bytes): %v", length, err)
		}
	}

	br := bytes.NewReader(body)
	opts, err := DecodeOptions(br)
	if err != nil {
		return nil, err
	}

	var payload []byte
	if marker, err := br.ReadByte(); err == nil {
		if marker != 0xFF {
			return nil, newErr(KindMalformed, "unexpected byte %#x after options", marker)
		}
		if br.Len() == 0 {
			return nil, newErr(KindMalformed, "payload marker present with empty payload")
		}
		payload = make([]byte, br.Len())
		_, _ = br.Read(payload)
	}

	return &Message{
		Token:     token,
		Code:      uint32(codeByte[0]),
		Options:   opts,
		Payload:   payload,
		Transport: TCP,
	}, nil
}
