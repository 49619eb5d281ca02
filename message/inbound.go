package message

import (
	"github.com/coapkit/coapkit/registry"
	"github.com/coapkit/coapkit/wire"
)

// Inbound is the parsed view of a request the router and handlers operate
// on. It wraps the immutable wire message and adds router-populated path
// parameters.
type Inbound struct {
	raw         *wire.Message
	Path        string
	Query       map[string][]string
	PathParams  map[string]string
	RemoteAddr  string // transport-level origin, "" for in-process dispatch
}

// NewInbound builds an Inbound from a decoded wire.Message.
func NewInbound(m *wire.Message, remoteAddr string) *Inbound {
	return &Inbound{
		raw:        m,
		Path:       PathFromOptions(m),
		Query:      QueryFromOptions(m),
		PathParams: map[string]string{},
		RemoteAddr: remoteAddr,
	}
}

// Raw exposes the underlying wire.Message for transports/codec layers.
func (in *Inbound) Raw() *wire.Message { return in.raw }

// Method returns the request's method code (registry.MethodGET, etc.).
func (in *Inbound) Method() uint32 { return in.raw.Code }

func (in *Inbound) Get() bool    { return in.Method() == registry.MethodGET }
func (in *Inbound) Post() bool   { return in.Method() == registry.MethodPOST }
func (in *Inbound) Put() bool    { return in.Method() == registry.MethodPUT }
func (in *Inbound) Delete() bool { return in.Method() == registry.MethodDELETE }

// Observe reports whether this is a GET carrying an Observe option, and if
// so whether it's a subscribe (value 0) as opposed to unsubscribe (value 1).
func (in *Inbound) Observe() (observing bool, subscribe bool) {
	if !in.Get() {
		return false, false
	}
	v, ok := in.raw.GetOption(registry.OptionObserve)
	if !ok {
		return false, false
	}
	return true, wire.DecodeUint(v) == 0
}

// Token returns the request's token.
func (in *Inbound) Token() []byte { return in.raw.Token }

// Accept reports whether the request's Accept option (if any) equals format.
// A request with no Accept option accepts everything.
func (in *Inbound) Accept(format uint32) bool {
	v, ok := in.raw.GetOption(registry.OptionAccept)
	if !ok {
		return true
	}
	return wire.DecodeUint(v) == format
}

// HasAccept reports whether the request carries an explicit Accept option,
// and returns its value.
func (in *Inbound) HasAccept() (uint32, bool) {
	v, ok := in.raw.GetOption(registry.OptionAccept)
	if !ok {
		return 0, false
	}
	return wire.DecodeUint(v), true
}

// ContentFormat returns the request's Content-Format option, if present.
func (in *Inbound) ContentFormat() (uint32, bool) {
	v, ok := in.raw.GetOption(registry.OptionContentFormat)
	if !ok {
		return 0, false
	}
	return wire.DecodeUint(v), true
}

// Option returns the first value for option number n.
func (in *Inbound) Option(n uint32) ([]byte, bool) { return in.raw.GetOption(n) }

// HasOption reports whether option n is present at all.
func (in *Inbound) HasOption(n uint32) bool {
	_, ok := in.raw.GetOption(n)
	return ok
}

// QueryParams returns the parsed Uri-Query multimap.
func (in *Inbound) QueryParams() map[string][]string { return in.Query }

// Param returns a router-extracted path parameter.
func (in *Inbound) Param(name string) string { return in.PathParams[name] }

// Payload returns the raw request body bytes.
func (in *Inbound) Payload() []byte { return in.raw.Payload }

// Decode decodes the request payload into v using codecReg, honoring the
// request's declared Content-Format (defaulting to JSON if absent, the
// same fallback response negotiation uses).
func (in *Inbound) Decode(codecReg interface {
	Decode(format uint32, data []byte, v interface{}) error
}, v interface{}) error {
	format, ok := in.ContentFormat()
	if !ok {
		format = registry.ContentFormatJSON
	}
	return codecReg.Decode(format, in.Payload(), v)
}
