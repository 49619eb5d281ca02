// Package wire implements the CoAP wire codec: RFC 7252 message encoding
// for UDP and the RFC 8323 variable-length framing for TCP, including
// option delta/length nibble extensions and the payload marker.
package wire

// Transport identifies which framing a Message was decoded from, or should
// be encoded for.
type Transport uint8

const (
	UDP Transport = iota
	TCP
)

func (t Transport) String() string {
	if t == TCP {
		return "TCP"
	}
	return "UDP"
}

// Type is the UDP message type (RFC 7252 §3). Unused on TCP.
type Type uint8

const (
	Confirmable    Type = 0
	NonConfirmable Type = 1
	Acknowledgement Type = 2
	Reset          Type = 3
)

// Option is a single (number, value) pair. Numbers are not required to be
// unique within a Message: Uri-Path and Uri-Query repeat, and the wire
// model preserves each repetition in insertion order.
type Option struct {
	Number uint32
	Value  []byte
}

// Message is the immutable-after-parse wire-level representation shared by
// both transports. Higher layers (package message) build
// Inbound/Outbound request/response views on top of this.
type Message struct {
	Version   uint8 // always 1 on UDP; meaningless on TCP
	Type      Type  // UDP only
	Token     []byte
	MessageID uint16 // UDP only
	Code      uint32 // class*32+detail; class 0 = request, 2/4/5 = response, 7 = signaling
	Options   []Option
	Payload   []byte
	Transport Transport
}

// Clone returns a deep copy so callers may safely mutate the result without
// affecting the original (Message is documented as immutable after parse,
// but constructing a response often starts from a shallow copy of a
// request's token/options).
func (m *Message) Clone() *Message {
	cp := *m
	if m.Token != nil {
		cp.Token = append([]byte(nil), m.Token...)
	}
	if m.Payload != nil {
		cp.Payload = append([]byte(nil), m.Payload...)
	}
	if m.Options != nil {
		cp.Options = make([]Option, len(m.Options))
		for i, o := range m.Options {
			cp.Options[i] = Option{Number: o.Number, Value: append([]byte(nil), o.Value...)}
		}
	}
	return &cp
}

// GetOption returns the first value registered for number, if any.
func (m *Message) GetOption(number uint32) ([]byte, bool) {
	for _, o := range m.Options {
		if o.Number == number {
			return o.Value, true
		}
	}
	return nil, false
}

// GetOptions returns every value registered for number, in wire order.
func (m *Message) GetOptions(number uint32) [][]byte {
	var out [][]byte
	for _, o := range m.Options {
		if o.Number == number {
			out = append(out, o.Value)
		}
	}
	return out
}

// AddOption appends an option. Callers are responsible for adding options
// in non-decreasing number order if the Message will be encoded directly;
// the encoder in this package sorts defensively (stable) before emitting.
func (m *Message) AddOption(number uint32, value []byte) {
	m.Options = append(m.Options, Option{Number: number, Value: value})
}
