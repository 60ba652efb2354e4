package nexudus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a client for the Nexudus Spaces API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     *TokenManager
}

// NewClient creates a new API client using the stored token.
// It looks for credentials in ~/.artisans/secrets/nexudus/token.json.
func NewClient(baseURL string) (*Client, error) {
	token, err := LoadToken()
	if err != nil {
		return nil, err
	}
	return NewClientWithToken(baseURL, NewTokenManager(baseURL, token)), nil
}

// NewClientWithToken creates a client around an explicit token manager.
func NewClientWithToken(baseURL string, tokens *TokenManager) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		tokens: tokens,
	}
}

// get performs an authenticated GET and decodes the JSON response into v.
// On 401 the token is refreshed once and the request retried, matching the
// Nexudus practice of expiring access tokens mid-session.
func (c *Client) get(ctx context.Context, path string, query url.Values, v any) error {
	resp, err := c.do(ctx, path, query)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		if err := c.tokens.Refresh(ctx); err != nil {
			return err
		}
		resp, err = c.do(ctx, path, query)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	return resp, nil
}

// page is the Nexudus list response envelope.
type page struct {
	CurrentPage int             `json:"CurrentPage"`
	TotalPages  int             `json:"TotalPages"`
	HasNextPage bool            `json:"HasNextPage"`
	TotalItems  int             `json:"TotalItems"`
	Records     json.RawMessage `json:"Records"`
}
