package wire

import "bytes"

// EncodeUDP serializes m per RFC 7252 §3: a 4-byte fixed header, the token,
// options, and an optional 0xFF-prefixed payload.
func EncodeUDP(m *Message) ([]byte, error) {
	if len(m.Token) > 8 {
		return nil, newErr(KindMalformed, "token length %d exceeds 8", len(m.Token))
	}
	var buf bytes.Buffer
	version := m.Version
	if version == 0 {
		version = 1
	}
	buf.WriteByte((version << 6) | (uint8(m.Type) << 4) | uint8(len(m.Token)))
	buf.WriteByte(byte(m.Code))
	buf.WriteByte(byte(m.MessageID >> 8))
	buf.WriteByte(byte(m.MessageID))
	buf.Write(m.Token)

	if err := EncodeOptions(&buf, m.Options); err != nil {
		return nil, err
	}

	if len(m.Payload) > 0 {
		buf.WriteByte(0xFF)
		buf.Write(m.Payload)
	}
	return buf.Bytes(), nil
}

// DecodeUDP parses a single UDP datagram into a Message.
func DecodeUDP(data []byte) (*Message, error) {
	if len(data) < 4 {
		return nil, newErr(KindShort, "datagram shorter than fixed 4-byte header (%d bytes)", len(data))
	}
	first := data[0]
	version := first >> 6
	if version != 1 {
		return nil, newErr(KindBadVersion, "version %d != 1", version)
	}
	typ := Type((first >> 4) & 0x03)
	tkl := first & 0x0F
	if tkl > 8 {
		return nil, newErr(KindMalformed, "TKL %d exceeds 8", tkl)
	}
	code := uint32(data[1])
	mid := uint16(data[2])<<8 | uint16(data[3])

	r := bytes.NewReader(data[4:])
	token := make([]byte, tkl)
	if tkl > 0 {
		n, err := r.Read(token)
		if err != nil || uint8(n) != tkl {
			return nil, newErr(KindShort, "truncated token (want %d bytes)", tkl)
		}
	}

	opts, err := DecodeOptions(r)
	if err != nil {
		return nil, err
	}

	var payload []byte
	if marker, err := r.ReadByte(); err == nil {
		if marker != 0xFF {
			return nil, newErr(KindMalformed, "unexpected byte %#x after options (expected 0xFF marker or end)", marker)
		}
		if r.Len() == 0 {
			return nil, newErr(KindMalformed, "payload marker present with empty payload")
		}
		payload = make([]byte, r.Len())
		_, _ = r.Read(payload)
	}

	return &Message{
		Version:   1,
		Type:      typ,
		Token:     token,
		MessageID: mid,
		Code:      code,
		Options:   opts,
		Payload:   payload,
		Transport: UDP,
	}, nil
}
