package zoho

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// expiryMargin is shaved off the advertised token lifetime so a request
// issued just before expiry doesn't race the server-side cutoff.
const expiryMargin = 5 * time.Minute

// TokenProvider exchanges the long-lived refresh token for access tokens
// and caches the result until it nears expiry. One provider is built per
// process and shared by reference; there is no package-level state.
type TokenProvider struct {
	accountsURL  string
	clientID     string
	clientSecret string
	refreshToken string
	hc           *http.Client

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func NewTokenProvider(accountsURL, clientID, clientSecret, refreshToken string) *TokenProvider {
	return &TokenProvider{
		accountsURL:  strings.TrimRight(accountsURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		refreshToken: refreshToken,
		hc:           &http.Client{Timeout: 30 * time.Second},
	}
}

// Token returns the cached access token, refreshing it first if the
// cache is empty or within the expiry margin.
func (p *TokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && time.Now().Before(p.expiry) {
		return p.token, nil
	}
	return p.refreshLocked(ctx)
}

// ForceRefresh discards the cached token and fetches a new one. Used by
// the client after a 401: the cached token may look fresh but be revoked.
func (p *TokenProvider) ForceRefresh(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.token = ""
	return p.refreshLocked(ctx)
}

func (p *TokenProvider) refreshLocked(ctx context.Context) (string, error) {
	if p.clientID == "" || p.clientSecret == "" || p.refreshToken == "" {
		return "", fmt.Errorf("zoho credentials missing")
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {p.clientID},
		"client_secret": {p.clientSecret},
		"refresh_token": {p.refreshToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.accountsURL+"/oauth/v2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := p.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("zoho token: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return "", fmt.Errorf("zoho token status %d", res.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
		Error       string `json:"error"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("zoho token decode: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("zoho token: empty access_token (error=%q)", body.Error)
	}

	expiresIn := body.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}

	p.token = body.AccessToken
	p.expiry = time.Now().Add(time.Duration(expiresIn)*time.Second - expiryMargin)
	return p.token, nil
}
