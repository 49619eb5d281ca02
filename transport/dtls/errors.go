package dtls

import (
	"errors"

	"github.com/coapkit/coapkit/message"
	"github.com/coapkit/coapkit/registry"
)

var errNotFound = errors.New("dtls: no matching route")

// errorOutbound maps a dispatch error to a minimal response when the
// router found no matching route or a handler returned an error without
// building its own Outbound.
func errorOutbound(err error) *message.Outbound {
	if errors.Is(err, errNotFound) {
		return message.NewOutbound(registry.NotFound)
	}
	out := message.NewOutbound(registry.InternalServerError)
	out.Payload = []byte(err.Error())
	return out
}
