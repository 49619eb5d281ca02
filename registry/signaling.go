package registry

// Signaling codes, RFC 8323 §5, class 7.
const (
	SignalingCSM     uint32 = 7*32 + 1
	SignalingPing    uint32 = 7*32 + 2
	SignalingPong    uint32 = 7*32 + 3
	SignalingRelease uint32 = 7*32 + 4
	SignalingAbort   uint32 = 7*32 + 5
)

// CSM signaling option numbers, RFC 8323 §5.3.1.
const (
	SignalingOptionMaxMessageSize    uint32 = 2
	SignalingOptionBlockWiseTransfer uint32 = 4
)

// Signaling is the default signaling-code registry.
var Signaling = newSignalingRegistry()

func newSignalingRegistry() *Registry {
	r := New(nil)
	r.MustRegister(SignalingCSM, "7.01 CSM", "CSM", "RFC8323")
	r.MustRegister(SignalingPing, "7.02 Ping", "Ping", "RFC8323")
	r.MustRegister(SignalingPong, "7.03 Pong", "Pong", "RFC8323")
	r.MustRegister(SignalingRelease, "7.04 Release", "Release", "RFC8323")
	r.MustRegister(SignalingAbort, "7.05 Abort", "Abort", "RFC8323")
	return r
}
