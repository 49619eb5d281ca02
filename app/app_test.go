package app

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/coapkit/coapkit/config"
	"github.com/coapkit/coapkit/message"
	"github.com/coapkit/coapkit/registry"
	"github.com/coapkit/coapkit/wire"
)

func TestNewInstallsDefaultRoutes(t *testing.T) {
	a, err := New(config.Default(), prometheus.NewRegistry(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entries := a.Router.Entries(false)
	var patterns []string
	for _, e := range entries {
		patterns = append(patterns, e.Pattern)
	}
	for _, want := range []string{"/.well-known/core", "/ping", "/echo"} {
		found := false
		for _, p := range patterns {
			if p == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected default route %q, got %v", want, patterns)
		}
	}
}

func TestPingHandlerReturnsContent(t *testing.T) {
	a, err := New(config.Default(), prometheus.NewRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}
	entry, _, ok := a.Router.Match(registry.MethodGET, "/ping")
	if !ok {
		t.Fatalf("expected /ping to be registered")
	}
	req := message.NewInbound(&wire.Message{Code: registry.MethodGET}, "test")
	resp, err := entry.Handler(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Code != registry.Content {
		t.Fatalf("expected 2.05 content, got %v", resp.Code)
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := a.Codecs.Decode(registry.ContentFormatJSON, resp.Payload, &body); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if body.Message != "Pong" {
		t.Fatalf("expected message %q, got %q", "Pong", body.Message)
	}
}

func TestEchoHandlerWrapsMessage(t *testing.T) {
	a, err := New(config.Default(), prometheus.NewRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}
	entry, _, ok := a.Router.Match(registry.MethodPOST, "/echo")
	if !ok {
		t.Fatalf("expected /echo to be registered")
	}
	payload, err := a.Codecs.Encode(registry.ContentFormatJSON, map[string]string{"message": "hi"})
	if err != nil {
		t.Fatal(err)
	}
	raw := &wire.Message{Code: registry.MethodPOST, Payload: payload}
	raw.AddOption(registry.OptionContentFormat, wire.EncodeUint(registry.ContentFormatJSON))
	req := message.NewInbound(raw, "test")
	resp, err := entry.Handler(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Code != registry.Content {
		t.Fatalf("expected 2.05 content, got %v", resp.Code)
	}
	var body struct {
		Echo string `json:"echo"`
	}
	if err := a.Codecs.Decode(registry.ContentFormatJSON, resp.Payload, &body); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if body.Echo != "hi" {
		t.Fatalf("expected echo %q, got %q", "hi", body.Echo)
	}
}

func TestDiscoveryHandlerListsPing(t *testing.T) {
	a, err := New(config.Default(), prometheus.NewRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}
	entry, _, ok := a.Router.Match(registry.MethodGET, "/.well-known/core")
	if !ok {
		t.Fatalf("expected discovery route to be registered")
	}
	req := message.NewInbound(&wire.Message{Code: registry.MethodGET}, "test")
	resp, err := entry.Handler(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(resp.Payload), "</ping>") {
		t.Fatalf("expected discovery body to list </ping>, got %q", resp.Payload)
	}
}
