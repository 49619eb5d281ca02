package response

import (
	"github.com/coapkit/coapkit/codec"
	"github.com/coapkit/coapkit/message"
	"github.com/coapkit/coapkit/registry"
)

// NegotiationError carries the CoAP response code a failed negotiation
// must produce: 4.06 Not Acceptable or 4.15 Unsupported Content-Format.
type NegotiationError struct {
	Code registry.ResponseCode
	Msg  string
}

func (e *NegotiationError) Error() string { return e.Msg }

// Negotiate implements content-format negotiation:
//
//  1. If forced is set, it must be supported by codecs, else 4.15.
//  2. Else if the request carries Accept, it must be supported AND appear
//     in allowed, else 4.06.
//  3. Else the first allowed format supported by codecs wins, falling
//     back to JSON.
func Negotiate(codecs *codec.Registry, req *message.Inbound, allowed []uint32, forced *uint32) (uint32, error) {
	if forced != nil {
		if !codecs.Supports(*forced) {
			return 0, &NegotiationError{Code: registry.UnsupportedContentFmt, Msg: "forced content-format not supported"}
		}
		return *forced, nil
	}

	if accept, ok := req.HasAccept(); ok {
		if !codecs.Supports(accept) || !contains(allowed, accept) {
			return 0, &NegotiationError{Code: registry.NotAcceptable, Msg: "requested Accept format not acceptable for this route"}
		}
		return accept, nil
	}

	for _, f := range allowed {
		if codecs.Supports(f) {
			return f, nil
		}
	}
	return registry.ContentFormatJSON, nil
}

func contains(s []uint32, v uint32) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
