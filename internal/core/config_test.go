package core

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Auth.CallbackPort != 8080 {
		t.Errorf("callback port = %d", cfg.Auth.CallbackPort)
	}
	if cfg.Device.CacheTTL != 3*time.Second {
		t.Errorf("cache ttl = %v", cfg.Device.CacheTTL)
	}
	if cfg.Device.PollInterval != 100*time.Millisecond {
		t.Errorf("poll interval = %v", cfg.Device.PollInterval)
	}
	if cfg.Device.PollBudget != time.Second {
		t.Errorf("poll budget = %v", cfg.Device.PollBudget)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestAuthConfig_RedirectURL(t *testing.T) {
	cfg := AuthConfig{CallbackPort: 9090}

	if got := cfg.RedirectURL(); got != "http://localhost:9090/callback" {
		t.Errorf("RedirectURL() = %q", got)
	}
}
