package zoho

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"recruitsync-engine/internal/domain"
	"recruitsync-engine/internal/netutil"
)

// Client wraps the Zoho Recruit v2 API. Every request carries a token
// from the provider; a 401 with a token-class error code triggers exactly
// one forced refresh and one retry, while 429/5xx answers are retried
// with the shared netutil backoff.
type Client struct {
	baseURL string
	tokens  *TokenProvider
	hc      *http.Client
	limiter *netutil.HostLimiter
}

func New(baseURL string, tokens *TokenProvider, limiter *netutil.HostLimiter) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		hc:      &http.Client{Timeout: 30 * time.Second},
		limiter: limiter,
	}
}

// EnsureAuth acquires a destination token without touching any record,
// so a run can fail fast before any group is processed when the
// credentials are bad.
func (c *Client) EnsureAuth(ctx context.Context) error {
	_, err := c.tokens.Token(ctx)
	return err
}

// SearchCandidateByEmail returns the remote id of the stored candidate
// with the exact email, or "" when no record matches. The match is
// case-sensitive on Zoho's side.
func (c *Client) SearchCandidateByEmail(ctx context.Context, email string) (string, error) {
	criteria := fmt.Sprintf("(Email:equals:%s)", email)
	body, err := c.request(ctx, http.MethodGet,
		"/Candidates/search?criteria="+url.QueryEscape(criteria), "", nil)
	if err != nil {
		return "", fmt.Errorf("zoho candidate search %q: %w", email, err)
	}

	var page struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if len(body) == 0 {
		return "", nil // 204: no match, create branch
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return "", fmt.Errorf("zoho candidate search decode: %w", err)
	}
	if len(page.Data) == 0 {
		return "", nil
	}
	return page.Data[0].ID, nil
}

func (c *Client) CreateCandidate(ctx context.Context, cand domain.Candidate) (string, error) {
	id, err := c.writeRecord(ctx, http.MethodPost, "/Candidates", cand)
	if err != nil {
		return "", fmt.Errorf("zoho create candidate %q: %w", cand.Email, err)
	}
	return id, nil
}

func (c *Client) UpdateCandidate(ctx context.Context, id string, cand domain.Candidate) error {
	if _, err := c.writeRecord(ctx, http.MethodPut, "/Candidates/"+id, cand); err != nil {
		return fmt.Errorf("zoho update candidate %s: %w", id, err)
	}
	return nil
}

func (c *Client) SearchJobOpeningByExternalID(ctx context.Context, externalID string) (string, error) {
	criteria := fmt.Sprintf("(SJB_Job_ID:equals:%s)", externalID)
	body, err := c.request(ctx, http.MethodGet,
		"/JobOpenings/search?criteria="+url.QueryEscape(criteria), "", nil)
	if err != nil {
		return "", fmt.Errorf("zoho job opening search %q: %w", externalID, err)
	}

	var page struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if len(body) == 0 {
		return "", nil
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return "", fmt.Errorf("zoho job opening search decode: %w", err)
	}
	if len(page.Data) == 0 {
		return "", nil
	}
	return page.Data[0].ID, nil
}

func (c *Client) CreateJobOpening(ctx context.Context, opening domain.JobOpening) (string, error) {
	id, err := c.writeRecord(ctx, http.MethodPost, "/JobOpenings", opening)
	if err != nil {
		return "", fmt.Errorf("zoho create job opening %q: %w", opening.Name, err)
	}
	return id, nil
}

// ListAssociations returns the job-opening ids the candidate is already
// linked to. An empty answer is normal for new candidates.
func (c *Client) ListAssociations(ctx context.Context, candidateID string) ([]string, error) {
	body, err := c.request(ctx, http.MethodGet, "/Candidates/"+candidateID+"/associatejob", "", nil)
	if err != nil {
		return nil, fmt.Errorf("zoho associations %s: %w", candidateID, err)
	}
	if len(body) == 0 {
		return nil, nil
	}

	var page struct {
		Data []struct {
			JobOpeningID string `json:"Job_Opening_ID"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("zoho associations decode: %w", err)
	}
	out := make([]string, 0, len(page.Data))
	for _, a := range page.Data {
		out = append(out, a.JobOpeningID)
	}
	return out, nil
}

func (c *Client) CreateAssociation(ctx context.Context, assoc domain.Association) error {
	if _, err := c.writeRecord(ctx, http.MethodPost, "/Associate_Candidates", assoc); err != nil {
		return fmt.Errorf("zoho associate candidate %s job %s: %w", assoc.CandidateID, assoc.JobOpeningID, err)
	}
	return nil
}

// UploadAttachment re-posts resume bytes as multipart form data under the
// candidate's Attachments, preserving the original content type.
func (c *Client) UploadAttachment(ctx context.Context, candidateID string, resume domain.Resume) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename=%q`, resume.FileName))
	ct := resume.ContentType
	if ct == "" {
		ct = "application/pdf"
	}
	hdr.Set("Content-Type", ct)

	part, err := mw.CreatePart(hdr)
	if err != nil {
		return fmt.Errorf("zoho attachment encode: %w", err)
	}
	if _, err := part.Write(resume.Data); err != nil {
		return fmt.Errorf("zoho attachment encode: %w", err)
	}
	if err := mw.WriteField("attachments_category", "Resume"); err != nil {
		return fmt.Errorf("zoho attachment encode: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("zoho attachment encode: %w", err)
	}

	_, err = c.request(ctx, http.MethodPost, "/Candidates/"+candidateID+"/Attachments",
		mw.FormDataContentType(), buf.Bytes())
	if err != nil {
		return fmt.Errorf("zoho upload attachment %s: %w", candidateID, err)
	}
	return nil
}

// writeRecord wraps Zoho's data-array envelope for create/update calls
// and extracts the record id from the response details.
func (c *Client) writeRecord(ctx context.Context, method, path string, record any) (string, error) {
	payload, err := json.Marshal(map[string]any{"data": []any{record}})
	if err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}

	body, err := c.request(ctx, method, path, "application/json", payload)
	if err != nil {
		return "", err
	}

	var res struct {
		Data []struct {
			Status  string `json:"status"`
			Code    string `json:"code"`
			Message string `json:"message"`
			Details struct {
				ID string `json:"id"`
			} `json:"details"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if len(res.Data) == 0 {
		return "", fmt.Errorf("unexpected response shape")
	}
	if res.Data[0].Status == "error" {
		return "", fmt.Errorf("api error %s: %s", res.Data[0].Code, res.Data[0].Message)
	}
	return res.Data[0].Details.ID, nil
}

// request performs an authenticated round-trip. Token errors get one
// forced refresh + one retry; transient answers get bounded backoff.
// A 204 comes back as a nil body with no error.
func (c *Client) request(ctx context.Context, method, path, contentType string, body []byte) ([]byte, error) {
	u := c.baseURL + path

	refreshed := false
	var lastErr error

	for attempt := 1; attempt <= netutil.RetryAttempts; attempt++ {
		token, err := c.tokens.Token(ctx)
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
		req.Header.Set("Authorization", "Zoho-oauthtoken "+token)
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

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
		case res.StatusCode == http.StatusNoContent:
			return nil, nil
		case res.StatusCode < 400:
			return resBody, nil
		case res.StatusCode == http.StatusUnauthorized && !refreshed && isTokenError(resBody):
			refreshed = true
			log.Printf("[zoho] token rejected, forcing refresh and retrying %s %s", method, path)
			if _, err := c.tokens.ForceRefresh(ctx); err != nil {
				return nil, fmt.Errorf("%s %s: token refresh after 401: %w", method, path, err)
			}
			attempt-- // the refresh retry doesn't consume a transient attempt
			continue
		case netutil.Transient(res.StatusCode):
			lastErr = fmt.Errorf("%s %s status %d", method, path, res.StatusCode)
			if waitErr := netutil.Backoff(ctx, attempt); waitErr != nil {
				return nil, lastErr
			}
			continue
		default:
			return nil, fmt.Errorf("%s %s status %d: %s", method, path, res.StatusCode, truncate(resBody, 200))
		}
	}
	return nil, lastErr
}

// isTokenError distinguishes an expired/revoked token from a 401 that no
// amount of refreshing will fix (scope misconfiguration stays fatal once
// the single retry is spent).
func isTokenError(body []byte) bool {
	var e struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return false
	}
	switch e.Code {
	case "INVALID_TOKEN", "INVALID_OAUTH", "OAUTH_SCOPE_MISMATCH":
		return true
	}
	return strings.Contains(strings.ToLower(e.Message), "token")
}

func truncate(b []byte, n int) string {
	s := string(b)
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
