package hooks

import "testing"

type fakeBus struct {
	address string
	payload interface{}
}

func (f *fakeBus) Publish(address string, body interface{}) {
	f.address = address
	f.payload = body
}

func TestEmitPublishesUnderHooksPrefix(t *testing.T) {
	bus := &fakeBus{}
	e := New(bus)
	e.Emit(PluginEnabled, map[string]interface{}{"name": "metrics"})
	if bus.address != "hooks.plugin_enabled" {
		t.Fatalf("address = %q", bus.address)
	}
	payload, ok := bus.payload.(map[string]interface{})
	if !ok || payload["name"] != "metrics" {
		t.Fatalf("payload = %v", bus.payload)
	}
}

func TestEmitNilBusNoop(t *testing.T) {
	e := New(nil)
	e.Emit(ServerStarting, nil) // must not panic
}
