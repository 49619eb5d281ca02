// Package hooks is a thin adapter: named lifecycle events are forwarded
// through the event bus at address
// hooks.<event> with Local scope. Errors raised by hook subscribers are
// logged and swallowed by the bus itself; this package only shapes the
// address and payload convention.
package hooks

// Common lifecycle event names this framework emits. Plugins and
// application code may publish/subscribe to others freely; this list is
// not exhaustive.
const (
	ServerStarting      = "server_starting"
	ServerStarted       = "server_started"
	ServerStopping      = "server_stopping"
	RouterRouteAdded    = "router_route_added"
	PluginEnabling      = "plugin_enabling"
	PluginEnabled       = "plugin_enabled"
	PluginDisabled      = "plugin_disabled"
	PluginError         = "plugin_error"
	ObserveSubscribed   = "observe_subscribed"
	ObserveUnsubscribed = "observe_unsubscribed"
	ObserveNotifyStart  = "observe_notify_start"
	ObserveNotifyEnd    = "observe_notify_end"
)

// Publisher is the narrow bus dependency hooks needs: Publish(address, body).
type Publisher interface {
	Publish(address string, body interface{})
}

// Emitter publishes named lifecycle events at hooks.<event>, Local scope.
type Emitter struct {
	bus Publisher
}

// New returns an Emitter backed by bus.
func New(bus Publisher) *Emitter { return &Emitter{bus: bus} }

// Emit publishes event with payload verbatim; payload is not copied or
// frozen, so callers must treat it as read-only once emitted.
func (e *Emitter) Emit(event string, payload map[string]interface{}) {
	if e.bus == nil {
		return
	}
	e.bus.Publish("hooks."+event, payload)
}
