package config

import (
	"strings"
	"testing"
)

type testEnvConfig struct {
	Port int `env:"CIRRO_CONFIGURE_TEST_PORT" envDefault:"123"`
}

func TestParseEnvUsesDefaults(t *testing.T) {
	var cfg testEnvConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("port = %d, want %d", cfg.Port, 123)
	}
}

func TestParseEnvReadsEnvironment(t *testing.T) {
	t.Setenv("CIRRO_CONFIGURE_TEST_PORT", "9001")
	var cfg testEnvConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 9001 {
		t.Fatalf("port = %d, want %d", cfg.Port, 9001)
	}
}

func TestParseEnvWrapsErrors(t *testing.T) {
	t.Setenv("CIRRO_CONFIGURE_TEST_PORT", "not-a-number")
	var cfg testEnvConfig
	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("error = %q, want prefix %q", err.Error(), "parse env:")
	}
}
