// Package response builds Outbound messages with content-format
// negotiation and a small set of convenience constructors for the
// common CoAP status-code responses.
package response

import (
	"fmt"

	"github.com/coapkit/coapkit/codec"
	"github.com/coapkit/coapkit/message"
	"github.com/coapkit/coapkit/registry"
)

// Builder encodes handler return values into wire-ready Outbound messages
// using a shared codec registry.
type Builder struct {
	codecs *codec.Registry
}

// NewBuilder returns a Builder backed by codecs.
func NewBuilder(codecs *codec.Registry) *Builder {
	return &Builder{codecs: codecs}
}

// Halted is returned by a handler (wrapped via Halt) to abort normal
// processing and use resp verbatim as the response, skipping any further
// encoding. Dispatch code should unwrap it with errors.As.
type Halted struct {
	Resp *message.Outbound
}

func (h *Halted) Error() string { return "response: halted" }

// Halt wraps resp so dispatch stops processing the handler chain and
// returns resp as-is.
func Halt(resp *message.Outbound) error { return &Halted{Resp: resp} }

// Build negotiates a content-format among allowed (falling back to JSON)
// honoring the request's Accept option, encodes payload, and returns a
// ready Outbound. If payload is already []byte it is used verbatim.
func (b *Builder) Build(req *message.Inbound, code registry.ResponseCode, payload interface{}, allowed []uint32, forced *uint32) (*message.Outbound, error) {
	format, err := Negotiate(b.codecs, req, allowed, forced)
	if err != nil {
		nerr, ok := err.(*NegotiationError)
		if !ok {
			return nil, err
		}
		return b.Error(nerr.Code, nerr.Msg), nil
	}

	out := message.NewOutbound(code)
	if payload == nil {
		return out, nil
	}

	var body []byte
	if raw, ok := payload.([]byte); ok {
		body = raw
	} else {
		body, err = b.codecs.Encode(format, payload)
		if err != nil {
			return nil, fmt.Errorf("response: encode payload: %w", err)
		}
	}
	out.SetContentFormat(format)
	out.Payload = body
	return out, nil
}

// Raw returns an Outbound carrying body verbatim under format, bypassing
// negotiation. Useful for discovery's link-format body.
func (b *Builder) Raw(code registry.ResponseCode, format uint32, body []byte) *message.Outbound {
	out := message.NewOutbound(code)
	out.SetContentFormat(format)
	out.Payload = body
	return out
}

func (b *Builder) json(code registry.ResponseCode, payload interface{}) *message.Outbound {
	out := message.NewOutbound(code)
	if payload == nil {
		return out
	}
	body, err := b.codecs.Encode(registry.ContentFormatJSON, payload)
	if err != nil {
		return b.Error(registry.InternalServerError, err.Error())
	}
	out.SetContentFormat(registry.ContentFormatJSON)
	out.Payload = body
	return out
}

// Created returns 2.01 Created with the JSON-encoded payload.
func (b *Builder) Created(payload interface{}) *message.Outbound { return b.json(registry.Created, payload) }

// Changed returns 2.04 Changed with the JSON-encoded payload.
func (b *Builder) Changed(payload interface{}) *message.Outbound { return b.json(registry.Changed, payload) }

// Deleted returns 2.02 Deleted with the JSON-encoded payload.
func (b *Builder) Deleted(payload interface{}) *message.Outbound { return b.json(registry.Deleted, payload) }

// Valid returns 2.03 Valid with the JSON-encoded payload.
func (b *Builder) Valid(payload interface{}) *message.Outbound { return b.json(registry.Valid, payload) }

// JSON returns 2.05 Content with the JSON-encoded payload.
func (b *Builder) JSON(payload interface{}) *message.Outbound { return b.json(registry.Content, payload) }

// Error returns code with a JSON body {"error": msg}, the convention the
// rest of this package's error helpers build on.
func (b *Builder) Error(code registry.ResponseCode, msg string) *message.Outbound {
	return b.json(code, map[string]string{"error": msg})
}

// BadRequest returns 4.00 Bad Request.
func (b *Builder) BadRequest(msg string) *message.Outbound { return b.Error(registry.BadRequest, msg) }

// Unauthorized returns 4.01 Unauthorized.
func (b *Builder) Unauthorized(msg string) *message.Outbound { return b.Error(registry.Unauthorized, msg) }

// Forbidden returns 4.03 Forbidden.
func (b *Builder) Forbidden(msg string) *message.Outbound { return b.Error(registry.Forbidden, msg) }

// NotFound returns 4.04 Not Found.
func (b *Builder) NotFound(msg string) *message.Outbound { return b.Error(registry.NotFound, msg) }

// MethodNotAllowed returns 4.05 Method Not Allowed.
func (b *Builder) MethodNotAllowed(msg string) *message.Outbound {
	return b.Error(registry.MethodNotAllowed, msg)
}

// NotAcceptable returns 4.06 Not Acceptable.
func (b *Builder) NotAcceptable(msg string) *message.Outbound { return b.Error(registry.NotAcceptable, msg) }

// PreconditionFailed returns 4.12 Precondition Failed.
func (b *Builder) PreconditionFailed(msg string) *message.Outbound {
	return b.Error(registry.PreconditionFailed, msg)
}

// UnsupportedContentFormat returns 4.15 Unsupported Content-Format.
func (b *Builder) UnsupportedContentFormat(msg string) *message.Outbound {
	return b.Error(registry.UnsupportedContentFmt, msg)
}

// InternalServerError returns 5.00 Internal Server Error.
func (b *Builder) InternalServerError(msg string) *message.Outbound {
	return b.Error(registry.InternalServerError, msg)
}

// NotImplemented returns 5.01 Not Implemented.
func (b *Builder) NotImplemented(msg string) *message.Outbound { return b.Error(registry.NotImplemented, msg) }

// Token is a small convenience wrapper so callers building standalone
// notifications (see observe.Registry.Notify) don't need to reach into
// wire.Message directly for the request's token.
func Token(req *message.Inbound) []byte { return req.Token() }
