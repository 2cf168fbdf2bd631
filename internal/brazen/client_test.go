package brazen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recruitsync-engine/internal/netutil"
)

func TestTokenCachedAcrossRequests(t *testing.T) {
	authCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth2/token":
			authCalls++
			_, _ = w.Write([]byte(`{"access_token":"t1","expires_in":3600}`))
		case "/events/evt/registrations":
			require.Equal(t, "Bearer t1", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"registrations":[]}`))
		}
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, "cid", "secret", nil)
	_, err := c.ListRegistrations(context.Background(), "evt")
	require.NoError(t, err)
	_, err = c.ListRegistrations(context.Background(), "evt")
	require.NoError(t, err)

	assert.Equal(t, 1, authCalls)
}

func TestReauthenticatesOnceAfter401(t *testing.T) {
	authCalls, apiCalls := 0, 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth2/token":
			authCalls++
			_, _ = w.Write([]byte(`{"access_token":"t` + string(rune('0'+authCalls)) + `","expires_in":3600}`))
		default:
			apiCalls++
			if apiCalls == 1 {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"registrations":[]}`))
		}
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, "cid", "secret", nil)
	_, err := c.ListRegistrations(context.Background(), "evt")
	require.NoError(t, err)
	assert.Equal(t, 2, authCalls)
	assert.Equal(t, 2, apiCalls)
}

func TestRetriesTransientStatuses(t *testing.T) {
	old := netutil.RetryBaseWait
	netutil.RetryBaseWait = time.Millisecond
	t.Cleanup(func() { netutil.RetryBaseWait = old })

	apiCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth2/token" {
			_, _ = w.Write([]byte(`{"access_token":"t1","expires_in":3600}`))
			return
		}
		apiCalls++
		if apiCalls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"registrations":[]}`))
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, "cid", "secret", nil)
	_, err := c.ListRegistrations(context.Background(), "evt")
	require.NoError(t, err)
	assert.Equal(t, 3, apiCalls)
}

func TestGivesUpOnPersistent429(t *testing.T) {
	old := netutil.RetryBaseWait
	netutil.RetryBaseWait = time.Millisecond
	t.Cleanup(func() { netutil.RetryBaseWait = old })

	apiCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth2/token" {
			_, _ = w.Write([]byte(`{"access_token":"t1","expires_in":3600}`))
			return
		}
		apiCalls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, "cid", "secret", nil)
	_, err := c.ListRegistrations(context.Background(), "evt")
	require.Error(t, err)
	assert.Equal(t, netutil.RetryAttempts, apiCalls)
}

func TestListRegistrationsUnwrapsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth2/token" {
			_, _ = w.Write([]byte(`{"access_token":"t1","expires_in":3600}`))
			return
		}
		_, _ = w.Write([]byte(`{"registrations":[
			{"data":{"id":"r1","email":"a@example.com","first_name":"Ann"}},
			{"data":{"id":"r2","email":"b@example.com"}}
		]}`))
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, "cid", "secret", nil)
	regs, err := c.ListRegistrations(context.Background(), "evt")
	require.NoError(t, err)
	require.Len(t, regs, 2)
	assert.Equal(t, "r1", regs[0].ID)
	assert.Equal(t, "Ann", regs[0].FirstName)
}

func TestCreateRegistrationPayload(t *testing.T) {
	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth2/token" {
			_, _ = w.Write([]byte(`{"access_token":"t1","expires_in":3600}`))
			return
		}
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, "cid", "secret", nil)
	err := c.CreateRegistration(context.Background(), "evt-9", "a@example.com", "Ann", "Smith", "Gender=Female")
	require.NoError(t, err)

	assert.Equal(t, "a@example.com", payload["email"])
	assert.Equal(t, "evt-9", payload["event_code"])
	assert.Equal(t, "Gender=Female", payload["data"])
	assert.Equal(t, "Ann", payload["first_name"])
	assert.Equal(t, "Smith", payload["last_name"])
}
