package core

import (
	"fmt"
	"time"
)

type Config struct {
	Auth   AuthConfig
	Device DeviceConfig
	Log    LogConfig
}

type AuthConfig struct {
	// ClientID and ClientSecret pre-supply the application identity.
	// When empty the identity is collected interactively.
	ClientID     string
	ClientSecret string
	CallbackPort int
	DataDir      string
}

type DeviceConfig struct {
	CacheTTL     time.Duration
	PollInterval time.Duration
	PollBudget   time.Duration
}

type LogConfig struct {
	Level string
}

func DefaultConfig() *Config {
	return &Config{
		Auth: AuthConfig{
			CallbackPort: 8080,
		},
		Device: DeviceConfig{
			CacheTTL:     3 * time.Second,
			PollInterval: 100 * time.Millisecond,
			PollBudget:   time.Second,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// RedirectURL is the OAuth redirect URI derived from the callback port.
// It must match the URI registered with the provider verbatim.
func (c *AuthConfig) RedirectURL() string {
	return fmt.Sprintf("http://localhost:%d/callback", c.CallbackPort)
}
