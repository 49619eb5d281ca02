package tcp

import (
	"errors"

	"github.com/coapkit/coapkit/message"
	"github.com/coapkit/coapkit/registry"
)

var errNotFound = errors.New("tcp: no matching route")

// internalErrorBody is the fixed 5.00 response body; route handler error
// details stay in the server log and never reach the wire.
var internalErrorBody = []byte(`{"error":"Internal Server Error"}`)

func errorOutbound(err error) *message.Outbound {
	if errors.Is(err, errNotFound) {
		return message.NewOutbound(registry.NotFound)
	}
	out := message.NewOutbound(registry.InternalServerError)
	out.SetContentFormat(registry.ContentFormatJSON)
	out.Payload = internalErrorBody
	return out
}
