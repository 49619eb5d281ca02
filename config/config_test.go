package config

import "testing"

func TestDefaultPassesValidation(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsMissingListenAddr(t *testing.T) {
	cfg := Default()
	cfg.UDPListenAddr = ""
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected validation error for empty udp listen addr")
	}
}

func TestValidateRejectsZeroWorkerThreads(t *testing.T) {
	cfg := Default()
	cfg.UDPWorkerThreads = 0
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected validation error for zero worker threads")
	}
}

func TestLoadWithNoFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.UDPListenAddr != ":5683" {
		t.Fatalf("expected default listen addr, got %q", cfg.UDPListenAddr)
	}
}
