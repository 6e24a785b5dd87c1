package stripe

import "fmt"

// Config holds the Stripe configuration.
type Config struct {
	APIKey string
}

// NewConfig creates a new Stripe configuration from the given secret API key.
func NewConfig(apiKey string) (*Config, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("stripe API key is required")
	}
	return &Config{APIKey: apiKey}, nil
}
