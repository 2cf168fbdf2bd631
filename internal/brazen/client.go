package brazen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"recruitsync-engine/internal/domain"
	"recruitsync-engine/internal/netutil"
)

// Client talks to the Brazen events API with a client-credentials token.
// The token is cached per client; a 401 forces one re-auth and one retry.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	hc           *http.Client
	limiter      *netutil.HostLimiter

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func New(baseURL, clientID, clientSecret string, limiter *netutil.HostLimiter) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		hc:           &http.Client{Timeout: 30 * time.Second},
		limiter:      limiter,
	}
}

// Authenticate performs the client-credentials grant. Callers normally
// go through the request wrapper, which caches the token.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	payload, _ := json.Marshal(map[string]string{
		"client_id":     c.clientID,
		"client_secret": c.clientSecret,
		"grant_type":    "client_credentials",
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/oauth2/token", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("brazen auth: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return "", fmt.Errorf("brazen auth status %d", res.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("brazen auth decode: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("brazen auth: empty access_token")
	}

	expiresIn := body.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}

	c.mu.Lock()
	c.token = body.AccessToken
	c.expiry = time.Now().Add(time.Duration(expiresIn) * time.Second)
	c.mu.Unlock()

	return body.AccessToken, nil
}

func (c *Client) cachedToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.token != "" && time.Now().Before(c.expiry) {
		t := c.token
		c.mu.Unlock()
		return t, nil
	}
	c.mu.Unlock()
	return c.Authenticate(ctx)
}

// registrations arrive wrapped in a data envelope
type registrationItem struct {
	Data domain.Registration `json:"data"`
}

// ListRegistrations returns the registrations for an event. Each item's
// Data blob stays URL-encoded; only the detail call guarantees it is
// populated.
func (c *Client) ListRegistrations(ctx context.Context, eventID string) ([]domain.Registration, error) {
	body, err := c.request(ctx, http.MethodGet,
		fmt.Sprintf("/events/%s/registrations", eventID), nil)
	if err != nil {
		return nil, fmt.Errorf("brazen list registrations: %w", err)
	}

	var page struct {
		Registrations []registrationItem `json:"registrations"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("brazen list registrations decode: %w", err)
	}

	out := make([]domain.Registration, 0, len(page.Registrations))
	for _, item := range page.Registrations {
		out = append(out, item.Data)
	}
	return out, nil
}

func (c *Client) GetRegistrationDetail(ctx context.Context, eventID, registrationID string) (domain.Registration, error) {
	body, err := c.request(ctx, http.MethodGet,
		fmt.Sprintf("/events/%s/registrations/%s", eventID, registrationID), nil)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("brazen registration %s: %w", registrationID, err)
	}

	var item registrationItem
	if err := json.Unmarshal(body, &item); err != nil {
		return domain.Registration{}, fmt.Errorf("brazen registration %s decode: %w", registrationID, err)
	}
	return item.Data, nil
}

// CreateRegistration registers an email for the event. formData is the
// already URL-encoded answer blob the event expects.
func (c *Client) CreateRegistration(ctx context.Context, eventID, email, firstName, lastName, formData string) error {
	payload, err := json.Marshal(map[string]string{
		"email":      email,
		"event_code": eventID,
		"data":       formData,
		"first_name": firstName,
		"last_name":  lastName,
	})
	if err != nil {
		return fmt.Errorf("brazen registration encode: %w", err)
	}

	_, err = c.request(ctx, http.MethodPost,
		fmt.Sprintf("/events/%s/registrations", eventID), payload)
	if err != nil {
		return fmt.Errorf("brazen create registration %q: %w", email, err)
	}
	return nil
}

// request performs an authenticated round-trip. A 401 forces one re-auth
// and one retry; transient answers get the shared bounded backoff.
func (c *Client) request(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	u := c.baseURL + path

	reauthed := false
	var lastErr error

	for attempt := 1; attempt <= netutil.RetryAttempts; attempt++ {
		token, err := c.cachedToken(ctx)
		if err != nil {
			return nil, err
		}

		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, u, rd)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")

		if err := c.limiter.WaitURL(ctx, u); err != nil {
			return nil, err
		}

		res, err := c.hc.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%s %s: %w", method, path, err)
			if waitErr := netutil.Backoff(ctx, attempt); waitErr != nil {
				return nil, lastErr
			}
			continue
		}

		resBody, readErr := io.ReadAll(res.Body)
		res.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("%s %s read: %w", method, path, readErr)
		}

		switch {
		case res.StatusCode == http.StatusUnauthorized && !reauthed:
			reauthed = true
			if _, err := c.Authenticate(ctx); err != nil {
				return nil, fmt.Errorf("%s %s: re-auth after 401: %w", method, path, err)
			}
			attempt-- // the re-auth retry doesn't consume a transient attempt
			continue
		case netutil.Transient(res.StatusCode):
			lastErr = fmt.Errorf("%s %s status %d", method, path, res.StatusCode)
			if waitErr := netutil.Backoff(ctx, attempt); waitErr != nil {
				return nil, lastErr
			}
			continue
		case res.StatusCode >= 400:
			return nil, fmt.Errorf("%s %s status %d", method, path, res.StatusCode)
		}
		return resBody, nil
	}
	return nil, lastErr
}
