package udp

import (
	"errors"

	"github.com/coapkit/coapkit/message"
	"github.com/coapkit/coapkit/registry"
)

var errNotFound = errors.New("udp: no matching route")

// internalErrorBody is the fixed 5.00 response body; route handler error
// details stay in the server log and never reach the wire.
var internalErrorBody = []byte(`{"error":"Internal Server Error"}`)

// errorOutbound maps a dispatch error to a minimal response when the
// router found no matching route or a handler returned an error without
// building its own Outbound.
func errorOutbound(err error) *message.Outbound {
	if errors.Is(err, errNotFound) {
		return message.NewOutbound(registry.NotFound)
	}
	out := message.NewOutbound(registry.InternalServerError)
	out.SetContentFormat(registry.ContentFormatJSON)
	out.Payload = internalErrorBody
	return out
}
