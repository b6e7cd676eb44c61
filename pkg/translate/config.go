package translate

import "time"

// FallbackURL is used when no endpoint is configured or the configured one
// fails.
const FallbackURL = "https://libretranslate.com/translate"

// Config represents the configuration for the translation client
type Config struct {
	// BaseURL is the primary translate endpoint. Empty means FallbackURL only.
	BaseURL string

	// APIKey is sent as api_key when set
	APIKey string

	// Timeout bounds each HTTP call
	Timeout time.Duration

	// FallbackURL overrides the package default, mainly for tests
	FallbackURL string
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return ErrInvalidConfig
	}
	return nil
}

// endpoints lists the URLs to try in order, without duplicates.
func (c *Config) endpoints() []string {
	fallback := c.FallbackURL
	if fallback == "" {
		fallback = FallbackURL
	}
	if c.BaseURL == "" || c.BaseURL == fallback {
		return []string{fallback}
	}
	return []string{c.BaseURL, fallback}
}
