package message

import (
	"github.com/coapkit/coapkit/registry"
	"github.com/coapkit/coapkit/wire"
)

// Outbound is the response-to-be-encoded view built by the Response
// Builder and consumed by the transports.
type Outbound struct {
	Code    registry.ResponseCode
	Options []wire.Option
	Payload []byte
}

// NewOutbound starts an empty Outbound with the given response code.
func NewOutbound(code registry.ResponseCode) *Outbound {
	return &Outbound{Code: code}
}

// SetOption replaces (or adds, if absent) the first option numbered n.
func (o *Outbound) SetOption(n uint32, value []byte) {
	for i := range o.Options {
		if o.Options[i].Number == n {
			o.Options[i].Value = value
			return
		}
	}
	o.Options = append(o.Options, wire.Option{Number: n, Value: value})
}

// HasOption reports whether option n has already been set.
func (o *Outbound) HasOption(n uint32) bool {
	_, ok := o.Option(n)
	return ok
}

// Option returns the first value set for option n.
func (o *Outbound) Option(n uint32) ([]byte, bool) {
	for _, opt := range o.Options {
		if opt.Number == n {
			return opt.Value, true
		}
	}
	return nil, false
}

// SetContentFormat sets the Content-Format option unless already present.
func (o *Outbound) SetContentFormat(format uint32) {
	if o.HasOption(registry.OptionContentFormat) {
		return
	}
	o.SetOption(registry.OptionContentFormat, wire.EncodeUint(format))
}

// SetObserve sets the Observe option to seq (wrapped to 24 bits per RFC
// 7641 §3.2).
func (o *Outbound) SetObserve(seq uint32) {
	o.SetOption(registry.OptionObserve, wire.EncodeUint(seq&0x00FFFFFF))
}

// ToWire builds the final wire.Message for req, echoing its token and (for
// UDP) message ID, and deriving the ACK/NON/RST type from the request's
// type: a CON request gets an ACK response, a NON request gets a NON
// response, and any other type gets RST.
func (o *Outbound) ToWire(req *wire.Message) *wire.Message {
	out := &wire.Message{
		Version:   1,
		Code:      uint32(o.Code),
		Token:     req.Token,
		MessageID: req.MessageID,
		Options:   o.Options,
		Payload:   o.Payload,
		Transport: req.Transport,
	}
	if req.Transport == wire.UDP {
		switch req.Type {
		case wire.Confirmable:
			out.Type = wire.Acknowledgement
		case wire.NonConfirmable:
			out.Type = wire.NonConfirmable
		default:
			out.Type = wire.Reset
		}
	}
	return out
}

// ToWireNotify builds a NON-confirmable notification carrying token and
// sequence, for the Observe registry's out-of-band delivery path,
// independent of any particular request/response cycle.
func (o *Outbound) ToWireNotify(token []byte, messageID uint16, transport wire.Transport) *wire.Message {
	m := &wire.Message{
		Version:   1,
		Type:      wire.NonConfirmable,
		Token:     token,
		MessageID: messageID,
		Code:      uint32(o.Code),
		Options:   o.Options,
		Payload:   o.Payload,
		Transport: transport,
	}
	return m
}
