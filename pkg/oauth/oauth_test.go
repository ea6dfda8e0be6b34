package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newProviderServer(t *testing.T, profile string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"provider-token","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer provider-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(profile))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testEndpoint(srv *httptest.Server) oauth2.Endpoint {
	return oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token", AuthStyle: oauth2.AuthStyleInParams}
}

func TestGoogleExchange(t *testing.T) {
	srv := newProviderServer(t, `{"id":"g-1","email":"ada@example.com","verified_email":true,"name":"Ada Lovelace","picture":"https://img.example/ada.png"}`)

	p := NewGoogleProvider("client", "secret", "http://localhost:5173/auth/callback/google")
	p.config.Endpoint = testEndpoint(srv)
	p.userInfoURL = srv.URL + "/me"

	identity, err := p.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, &Identity{
		Provider:      "google",
		ID:            "g-1",
		Email:         "ada@example.com",
		EmailVerified: true,
		Name:          "Ada Lovelace",
		Picture:       "https://img.example/ada.png",
	}, identity)
}

func TestGoogleExchangeRejectsBadCode(t *testing.T) {
	srv := newProviderServer(t, `{}`)

	p := NewGoogleProvider("client", "secret", "http://localhost:5173/auth/callback/google")
	p.config.Endpoint = testEndpoint(srv)
	p.userInfoURL = srv.URL + "/me"

	_, err := p.Exchange(context.Background(), "bad-code")
	assert.Error(t, err)
}

func TestFacebookExchange(t *testing.T) {
	srv := newProviderServer(t, `{"id":"fb-9","email":"grace@example.com","name":"Grace Hopper","picture":{"data":{"url":"https://img.example/grace.jpg"}}}`)

	p := NewFacebookProvider("app", "secret", "http://localhost:5173/auth/callback/facebook")
	p.config.Endpoint = testEndpoint(srv)
	p.userInfoURL = srv.URL + "/me"

	identity, err := p.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "facebook", identity.Provider)
	assert.Equal(t, "grace@example.com", identity.Email)
	assert.True(t, identity.EmailVerified)
	assert.Equal(t, "https://img.example/grace.jpg", identity.Picture)
}

func TestAuthURLCarriesState(t *testing.T) {
	p := NewGoogleProvider("client", "secret", "http://localhost:5173/auth/callback/google")
	url := p.AuthURL("abc123")
	assert.Contains(t, url, "state=abc123")
	assert.Contains(t, url, "client_id=client")
}
