package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthCodeURL(t *testing.T) {
	client := NewGoogleClient("client-id", "client-secret", "http://localhost/callback")

	rawURL := client.AuthCodeURL("state-123")
	parsed, err := url.Parse(rawURL)
	require.NoError(t, err)

	query := parsed.Query()
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, "client-id", query.Get("client_id"))
	assert.Equal(t, "http://localhost/callback", query.Get("redirect_uri"))
	assert.Equal(t, "state-123", query.Get("state"))
	assert.Contains(t, query.Get("scope"), "email")
}

func TestExchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.Form.Get("grant_type"))
		assert.Equal(t, "the-code", r.Form.Get("code"))
		assert.Equal(t, "client-id", r.Form.Get("client_id"))
		assert.Equal(t, "client-secret", r.Form.Get("client_secret"))
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "at-1"})
	}))
	defer srv.Close()

	client := NewGoogleClient("client-id", "client-secret", "http://localhost/callback")
	client.TokenURL = srv.URL

	token, err := client.Exchange(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "at-1", token)
}

func TestExchangeRejectedCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewGoogleClient("client-id", "client-secret", "http://localhost/callback")
	client.TokenURL = srv.URL

	_, err := client.Exchange(context.Background(), "bad-code")
	assert.Error(t, err)
}

func TestExchangeNotConfigured(t *testing.T) {
	client := NewGoogleClient("", "", "")
	_, err := client.Exchange(context.Background(), "code")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestFetchUserInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"sub":   "g-1",
			"email": "kari@kollektivet.no",
			"name":  "Kari",
		})
	}))
	defer srv.Close()

	client := NewGoogleClient("client-id", "client-secret", "http://localhost/callback")
	client.UserInfoURL = srv.URL

	info, err := client.FetchUserInfo(context.Background(), "at-1")
	require.NoError(t, err)
	assert.Equal(t, "kari@kollektivet.no", info.Email)
	assert.Equal(t, "Kari", info.Name)
}

func TestFetchUserInfoMissingEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"sub": "g-1"})
	}))
	defer srv.Close()

	client := NewGoogleClient("client-id", "client-secret", "http://localhost/callback")
	client.UserInfoURL = srv.URL

	_, err := client.FetchUserInfo(context.Background(), "at-1")
	assert.Error(t, err)
}

func TestNewStateUnique(t *testing.T) {
	a, err := NewState()
	require.NoError(t, err)
	b, err := NewState()
	require.NoError(t, err)
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
