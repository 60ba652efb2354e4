// Package nexudus provides a Nexudus Spaces API client with local caching.
package nexudus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// tokenFile is the on-disk OAuth token format.
type tokenFile struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	Expiry       string `json:"expiry"`
}

// tokenResponse is the Nexudus token endpoint response body.
// ExpiresIn is in milliseconds, not seconds.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (r *tokenResponse) token(now time.Time) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  r.AccessToken,
		TokenType:    r.TokenType,
		RefreshToken: r.RefreshToken,
		Expiry:       now.Add(time.Duration(r.ExpiresIn) * time.Millisecond),
	}
}

// tokenPath returns the token file location (~/.artisans/secrets/nexudus/token.json).
func tokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".artisans", "secrets", "nexudus", "token.json"), nil
}

// LoadToken loads the stored OAuth token from ~/.artisans/secrets/nexudus/token.json.
func LoadToken() (*oauth2.Token, error) {
	path, err := tokenPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("no token found. Run 'artisans login' first")
	}

	var tf tokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}

	token := &oauth2.Token{
		AccessToken:  tf.AccessToken,
		TokenType:    tf.TokenType,
		RefreshToken: tf.RefreshToken,
	}
	if tf.Expiry != "" {
		if expiry, err := time.Parse(time.RFC3339, tf.Expiry); err == nil {
			token.Expiry = expiry
		}
	}

	return token, nil
}

// SaveToken persists an OAuth token to the token file with owner-only access.
func SaveToken(token *oauth2.Token) error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create secrets directory: %w", err)
	}

	tf := tokenFile{
		AccessToken:  token.AccessToken,
		TokenType:    token.TokenType,
		RefreshToken: token.RefreshToken,
	}
	if !token.Expiry.IsZero() {
		tf.Expiry = token.Expiry.Format(time.RFC3339)
	}

	data, err := json.MarshalIndent(tf, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// RemoveToken deletes the stored token. Missing file is not an error.
func RemoveToken() error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// TokenManager holds the current bearer token and refreshes it against the
// Nexudus token endpoint when it expires. Refreshed tokens are persisted
// back to the token file.
type TokenManager struct {
	mu         sync.Mutex
	baseURL    string
	httpClient *http.Client
	current    *oauth2.Token
	persist    bool
}

// NewTokenManager creates a token manager around an existing token.
func NewTokenManager(baseURL string, token *oauth2.Token) *TokenManager {
	return &TokenManager{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		current:    token,
		persist:    true,
	}
}

// Token returns a valid bearer token, refreshing first if the current one
// has expired. Safe for concurrent use.
func (m *TokenManager) Token(ctx context.Context) (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil && m.current.Valid() {
		return m.current, nil
	}
	if err := m.refreshLocked(ctx); err != nil {
		return nil, err
	}
	return m.current, nil
}

// Refresh forces a token refresh regardless of expiry. Used after the API
// rejects a request with 401.
func (m *TokenManager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshLocked(ctx)
}

func (m *TokenManager) refreshLocked(ctx context.Context) error {
	if m.current == nil || m.current.RefreshToken == "" {
		return fmt.Errorf("no refresh token available. Run 'artisans login' first")
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {m.current.RefreshToken},
	}
	token, err := requestToken(ctx, m.httpClient, m.baseURL, form)
	if err != nil {
		return fmt.Errorf("failed to refresh token: %w", err)
	}

	m.current = token
	if m.persist {
		if err := SaveToken(token); err != nil {
			slog.Warn("Failed to persist refreshed token", "error", err)
		}
	}
	slog.Debug("Refreshed bearer token", "expiry", token.Expiry)
	return nil
}

// Login authenticates against the Nexudus token endpoint with the password
// grant and returns the issued token.
func Login(ctx context.Context, baseURL, email, password string) (*oauth2.Token, error) {
	form := url.Values{
		"grant_type": {"password"},
		"username":   {email},
		"password":   {password},
	}
	client := &http.Client{Timeout: 30 * time.Second}
	token, err := requestToken(ctx, client, baseURL, form)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return token, nil
}

// requestToken posts a grant to /api/token and parses the response.
func requestToken(ctx context.Context, client *http.Client, baseURL string, form url.Values) (*oauth2.Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("token endpoint returned no access token")
	}

	return tr.token(time.Now()), nil
}
