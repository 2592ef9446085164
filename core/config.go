package core

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const DefaultBaseURL = "https://exolix.com/api/v2"

type Config struct {
	BaseURL string        `koanf:"base_url" mapstructure:"base_url"`
	APIKey  string        `koanf:"api_key" mapstructure:"api_key"`
	Timeout time.Duration `koanf:"timeout" mapstructure:"timeout"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
	}
}

func (c Config) Validate() error {
	base := strings.TrimSpace(c.BaseURL)
	if base == "" {
		return fmt.Errorf("core: base_url is required")
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("core: base_url is invalid: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("core: base_url must be absolute, got %q", base)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("core: timeout must be >= 0")
	}
	return nil
}

// NormalizedBaseURL returns the base URL without trailing slashes.
func (c Config) NormalizedBaseURL() string {
	return strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
}
