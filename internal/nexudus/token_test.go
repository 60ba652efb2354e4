package nexudus

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

// =============================================================================
// Unit Tests for Token Handling
// =============================================================================

func TestTokenResponse_ExpiryIsMilliseconds(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	resp := &tokenResponse{
		AccessToken:  "abc",
		RefreshToken: "def",
		// Nexudus reports expires_in in milliseconds
		ExpiresIn: 600000,
	}

	token := resp.token(now)

	want := now.Add(10 * time.Minute)
	if !token.Expiry.Equal(want) {
		t.Errorf("Expiry = %v, want %v", token.Expiry, want)
	}
}

func TestSaveLoadToken_RoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	token := &oauth2.Token{
		AccessToken:  "test-access-token",
		TokenType:    "Bearer",
		RefreshToken: "test-refresh-token",
		Expiry:       expiry,
	}

	if err := SaveToken(token); err != nil {
		t.Fatalf("SaveToken() error: %v", err)
	}

	loaded, err := LoadToken()
	if err != nil {
		t.Fatalf("LoadToken() error: %v", err)
	}
	if loaded.AccessToken != token.AccessToken {
		t.Errorf("AccessToken = %q, want %q", loaded.AccessToken, token.AccessToken)
	}
	if loaded.RefreshToken != token.RefreshToken {
		t.Errorf("RefreshToken = %q, want %q", loaded.RefreshToken, token.RefreshToken)
	}
	if !loaded.Expiry.Equal(expiry) {
		t.Errorf("Expiry = %v, want %v", loaded.Expiry, expiry)
	}
}

func TestSaveToken_OwnerOnlyPermissions(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if err := SaveToken(&oauth2.Token{AccessToken: "secret"}); err != nil {
		t.Fatalf("SaveToken() error: %v", err)
	}

	path := filepath.Join(home, ".artisans", "secrets", "nexudus", "token.json")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("token file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("token file permissions = %o, want 600", perm)
	}
}

func TestLoadToken_MissingFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := LoadToken()
	if err == nil {
		t.Error("LoadToken() expected error when no token file exists, got nil")
	}
}

func TestRemoveToken_MissingFileIsNotAnError(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := RemoveToken(); err != nil {
		t.Errorf("RemoveToken() unexpected error: %v", err)
	}
}

// =============================================================================
// Token Endpoint Tests
// =============================================================================

// newTokenServer serves /api/token with a fixed token response and records
// the grant parameters it receives.
func newTokenServer(t *testing.T, grants *[]map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/token" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		grant := map[string]string{}
		for key := range r.PostForm {
			grant[key] = r.PostForm.Get(key)
		}
		*grants = append(*grants, grant)

		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "fresh-access",
			"refresh_token": "fresh-refresh",
			"token_type":    "Bearer",
			"expires_in":    1200000,
		})
	}))
}

func TestLogin_SendsPasswordGrant(t *testing.T) {
	var grants []map[string]string
	ts := newTokenServer(t, &grants)
	defer ts.Close()

	token, err := Login(context.Background(), ts.URL, "maker@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	if token.AccessToken != "fresh-access" {
		t.Errorf("AccessToken = %q, want %q", token.AccessToken, "fresh-access")
	}
	if len(grants) != 1 {
		t.Fatalf("token endpoint called %d times, want 1", len(grants))
	}
	grant := grants[0]
	if grant["grant_type"] != "password" {
		t.Errorf("grant_type = %q, want password", grant["grant_type"])
	}
	if grant["username"] != "maker@example.com" || grant["password"] != "hunter2" {
		t.Errorf("credentials not forwarded: %v", grant)
	}
}

func TestTokenManager_RefreshSendsStoredRefreshToken(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	var grants []map[string]string
	ts := newTokenServer(t, &grants)
	defer ts.Close()

	m := NewTokenManager(ts.URL, &oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: "old-refresh",
		Expiry:       time.Now().Add(-time.Minute),
	})

	token, err := m.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() error: %v", err)
	}
	if token.AccessToken != "fresh-access" {
		t.Errorf("AccessToken = %q, want refreshed token", token.AccessToken)
	}

	if len(grants) != 1 {
		t.Fatalf("token endpoint called %d times, want 1", len(grants))
	}
	grant := grants[0]
	if grant["grant_type"] != "refresh_token" {
		t.Errorf("grant_type = %q, want refresh_token", grant["grant_type"])
	}
	if grant["refresh_token"] != "old-refresh" {
		t.Errorf("refresh_token = %q, want the stored token verbatim", grant["refresh_token"])
	}

	// Refreshed token must be persisted for the next invocation
	loaded, err := LoadToken()
	if err != nil {
		t.Fatalf("refreshed token not persisted: %v", err)
	}
	if loaded.AccessToken != "fresh-access" {
		t.Errorf("persisted AccessToken = %q, want %q", loaded.AccessToken, "fresh-access")
	}
}

func TestTokenManager_ValidTokenNotRefreshed(t *testing.T) {
	var grants []map[string]string
	ts := newTokenServer(t, &grants)
	defer ts.Close()

	m := NewTokenManager(ts.URL, &oauth2.Token{
		AccessToken: "still-good",
		Expiry:      time.Now().Add(time.Hour),
	})

	token, err := m.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() error: %v", err)
	}
	if token.AccessToken != "still-good" {
		t.Errorf("AccessToken = %q, want the original token", token.AccessToken)
	}
	if len(grants) != 0 {
		t.Errorf("token endpoint called %d times, want 0", len(grants))
	}
}

func TestTokenManager_NoRefreshToken(t *testing.T) {
	m := NewTokenManager("http://unused", &oauth2.Token{
		AccessToken: "stale",
		Expiry:      time.Now().Add(-time.Minute),
	})

	if _, err := m.Token(context.Background()); err == nil {
		t.Error("Token() expected error without a refresh token, got nil")
	}
}
