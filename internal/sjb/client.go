package sjb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"recruitsync-engine/internal/domain"
	"recruitsync-engine/internal/netutil"
)

// Client talks to a Smart Job Board site's REST API. SJB authenticates
// with an api_key query parameter on every request.
type Client struct {
	baseURL string
	apiKey  string
	hc      *http.Client
	limiter *netutil.HostLimiter
}

func New(baseURL, apiKey string, limiter *netutil.HostLimiter) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		hc:      &http.Client{Timeout: 30 * time.Second},
		limiter: limiter,
	}
}

// ListApplications fetches one page of applications for a job posting.
func (c *Client) ListApplications(ctx context.Context, jobID int64, page, limit int) (domain.ApplicationsPage, error) {
	var out domain.ApplicationsPage
	u := fmt.Sprintf("%s/jobs/%d/applications?%s", c.baseURL, jobID, c.query(url.Values{
		"page":  {fmt.Sprint(page)},
		"limit": {fmt.Sprint(limit)},
	}))
	if err := c.getJSON(ctx, u, &out); err != nil {
		return domain.ApplicationsPage{}, fmt.Errorf("sjb list applications page %d: %w", page, err)
	}
	return out, nil
}

func (c *Client) GetJobSeeker(ctx context.Context, id int64) (domain.JobSeeker, error) {
	var out domain.JobSeeker
	u := fmt.Sprintf("%s/jobseekers/%d?%s", c.baseURL, id, c.query(nil))
	if err := c.getJSON(ctx, u, &out); err != nil {
		return domain.JobSeeker{}, fmt.Errorf("sjb jobseeker %d: %w", id, err)
	}
	return out, nil
}

func (c *Client) GetJobListing(ctx context.Context, id int64) (domain.JobListing, error) {
	var out domain.JobListing
	u := fmt.Sprintf("%s/jobs/%d?%s", c.baseURL, id, c.query(nil))
	if err := c.getJSON(ctx, u, &out); err != nil {
		return domain.JobListing{}, fmt.Errorf("sjb job %d: %w", id, err)
	}
	return out, nil
}

type resumeMeta struct {
	Resume string `json:"resume"`
}

// GetResume resolves the resume's file URL through the metadata endpoint
// and downloads the bytes. The file URL sometimes answers JSON (expired
// link); that is treated as an error, not a resume.
func (c *Client) GetResume(ctx context.Context, id int64) (domain.Resume, error) {
	var meta resumeMeta
	u := fmt.Sprintf("%s/resumes/%d?%s", c.baseURL, id, c.query(nil))
	if err := c.getJSON(ctx, u, &meta); err != nil {
		return domain.Resume{}, fmt.Errorf("sjb resume %d metadata: %w", id, err)
	}
	if meta.Resume == "" {
		return domain.Resume{}, fmt.Errorf("sjb resume %d: no file url in metadata", id)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, meta.Resume, nil)
	if err != nil {
		return domain.Resume{}, fmt.Errorf("sjb resume %d: %w", id, err)
	}
	if err := c.limiter.WaitURL(ctx, meta.Resume); err != nil {
		return domain.Resume{}, err
	}
	res, err := c.hc.Do(req)
	if err != nil {
		return domain.Resume{}, fmt.Errorf("sjb resume %d download: %w", id, err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return domain.Resume{}, fmt.Errorf("sjb resume %d download status %d", id, res.StatusCode)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return domain.Resume{}, fmt.Errorf("sjb resume %d read: %w", id, err)
	}

	ct := res.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/pdf"
	}
	if strings.HasPrefix(ct, "application/json") {
		return domain.Resume{}, fmt.Errorf("sjb resume %d: file url answered JSON instead of a document", id)
	}

	return domain.Resume{
		URL:         meta.Resume,
		Data:        data,
		ContentType: ct,
		FileName:    resumeFileName(res.Header.Get("Content-Disposition"), id),
	}, nil
}

type seekersPage struct {
	JobSeekers []domain.JobSeeker `json:"jobseekers"`
	Total      int                `json:"total"`
}

// SearchJobSeekerByEmail reports whether a seeker already exists for the
// exact email. Absence is not an error.
func (c *Client) SearchJobSeekerByEmail(ctx context.Context, email string) (*domain.JobSeeker, error) {
	var out seekersPage
	u := fmt.Sprintf("%s/jobseekers?%s", c.baseURL, c.query(url.Values{"email": {email}}))
	if err := c.getJSON(ctx, u, &out); err != nil {
		return nil, fmt.Errorf("sjb seeker search %q: %w", email, err)
	}
	if len(out.JobSeekers) == 0 {
		return nil, nil
	}
	return &out.JobSeekers[0], nil
}

func (c *Client) CreateJobSeeker(ctx context.Context, seeker domain.NewJobSeeker) (int64, error) {
	body, err := json.Marshal(seeker)
	if err != nil {
		return 0, fmt.Errorf("sjb create seeker encode: %w", err)
	}

	u := fmt.Sprintf("%s/jobseekers?%s", c.baseURL, c.query(nil))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	if err := c.limiter.WaitURL(ctx, u); err != nil {
		return 0, err
	}
	res, err := c.hc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("sjb create seeker: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return 0, fmt.Errorf("sjb create seeker status %d", res.StatusCode)
	}

	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		return 0, fmt.Errorf("sjb create seeker decode: %w", err)
	}
	return created.ID, nil
}

// getJSON fetches and decodes one resource. Transient answers (429,
// 5xx, connection errors) retry with the shared bounded backoff.
func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	var lastErr error
	for attempt := 1; attempt <= netutil.RetryAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		if err := c.limiter.WaitURL(ctx, u); err != nil {
			return err
		}
		res, err := c.hc.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("get: %w", err)
			if waitErr := netutil.Backoff(ctx, attempt); waitErr != nil {
				return lastErr
			}
			continue
		}

		if netutil.Transient(res.StatusCode) {
			res.Body.Close()
			lastErr = fmt.Errorf("status %d", res.StatusCode)
			if waitErr := netutil.Backoff(ctx, attempt); waitErr != nil {
				return lastErr
			}
			continue
		}
		if res.StatusCode >= 400 {
			res.Body.Close()
			return fmt.Errorf("status %d", res.StatusCode)
		}

		err = json.NewDecoder(res.Body).Decode(out)
		res.Body.Close()
		if err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		return nil
	}
	return lastErr
}

func (c *Client) query(extra url.Values) string {
	q := url.Values{"api_key": {c.apiKey}}
	for k, vs := range extra {
		q[k] = vs
	}
	return q.Encode()
}

func resumeFileName(disposition string, id int64) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := params["filename"]; name != "" {
				return name
			}
		}
	}
	return fmt.Sprintf("resume_%d.pdf", id)
}
