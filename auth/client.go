// Package auth resolves bearer tokens against the hosted identity provider.
// Tokens are opaque to this service; the provider owns issuance, expiry and
// revocation.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxErrorBodyBytes = 32 << 10 // 32 KiB

// User is the identity the provider resolves a token to.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Client is an HTTP client for the identity provider's user endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a new identity provider client. baseURL is the provider's root
// URL; apiKey is the project API key sent alongside every request.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// User resolves the given bearer token to the user it belongs to. Any
// provider-side rejection (expired token, unknown user, transport failure)
// is returned as an error; callers must not retry.
func (c *Client) User(ctx context.Context, token string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("could not build identity request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, fmt.Errorf("identity provider returned %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	user := &User{}
	if err := json.NewDecoder(resp.Body).Decode(user); err != nil {
		return nil, fmt.Errorf("could not decode identity response: %w", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("identity provider returned no user")
	}
	return user, nil
}
