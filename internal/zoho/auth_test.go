package zoho

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthServer(t *testing.T, expiresIn int) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth/v2/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		require.Equal(t, "rt-1", r.Form.Get("refresh_token"))

		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-` + strconv.Itoa(calls) + `","expires_in":` + strconv.Itoa(expiresIn) + `}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestTokenIsCached(t *testing.T) {
	srv, calls := newAuthServer(t, 3600)
	p := NewTokenProvider(srv.URL, "cid", "secret", "rt-1")

	tok1, err := p.Token(context.Background())
	require.NoError(t, err)
	tok2, err := p.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, tok1, tok2)
	assert.Equal(t, 1, *calls, "second call served from cache")
}

func TestTokenRefreshesInsideExpiryMargin(t *testing.T) {
	// expires_in under the safety margin means the cached token is
	// already considered stale on the next call.
	srv, calls := newAuthServer(t, int(expiryMargin/time.Second)-60)
	p := NewTokenProvider(srv.URL, "cid", "secret", "rt-1")

	_, err := p.Token(context.Background())
	require.NoError(t, err)
	_, err = p.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, *calls)
}

func TestForceRefreshDiscardsCache(t *testing.T) {
	srv, calls := newAuthServer(t, 3600)
	p := NewTokenProvider(srv.URL, "cid", "secret", "rt-1")

	_, err := p.Token(context.Background())
	require.NoError(t, err)
	_, err = p.ForceRefresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, *calls)
}

func TestTokenMissingCredentials(t *testing.T) {
	p := NewTokenProvider("http://127.0.0.1:0", "", "", "")
	_, err := p.Token(context.Background())
	assert.Error(t, err)
}

func TestTokenErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
	}))
	t.Cleanup(srv.Close)

	p := NewTokenProvider(srv.URL, "cid", "secret", "rt-1")
	_, err := p.Token(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_client")
}
