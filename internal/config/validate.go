package config

import (
	"fmt"
	"net/url"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate trims the config and reports everything wrong
// with it at once, splitting hard errors from warnings the operator can
// ignore.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	out.SJB.BaseURL = strings.TrimSpace(strings.TrimRight(out.SJB.BaseURL, "/"))
	out.Zoho.AccountsURL = strings.TrimSpace(strings.TrimRight(out.Zoho.AccountsURL, "/"))
	out.Zoho.APIBaseURL = strings.TrimSpace(strings.TrimRight(out.Zoho.APIBaseURL, "/"))
	out.Brazen.BaseURL = strings.TrimSpace(strings.TrimRight(out.Brazen.BaseURL, "/"))
	out.Labels.Source = strings.TrimSpace(out.Labels.Source)
	out.Labels.Client = strings.TrimSpace(out.Labels.Client)

	checkURL := func(name, raw string, required bool) {
		if raw == "" {
			if required {
				res.addErr("%s is required", name)
			}
			return
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			res.addErr("%s is not a valid absolute URL: %q", name, raw)
		}
	}

	checkURL("sjb.base_url", out.SJB.BaseURL, true)
	checkURL("zoho.accounts_url", out.Zoho.AccountsURL, true)
	checkURL("zoho.api_base_url", out.Zoho.APIBaseURL, true)
	checkURL("brazen.base_url", out.Brazen.BaseURL, false)

	if out.SJB.JobID <= 0 {
		res.addErr("sjb.job_id must be > 0")
	}

	if out.Brazen.BaseURL != "" && out.Brazen.EventID == "" {
		res.addWarn("brazen.base_url is set but brazen.event_id is empty; event registration is disabled.")
	}

	if out.Sync.IntervalSeconds <= 0 {
		res.addErr("sync.interval_seconds must be > 0")
	} else if out.Sync.IntervalSeconds < 60 {
		res.addWarn("sync.interval_seconds is very low (%d) and may hit API rate limits.", out.Sync.IntervalSeconds)
	}
	if out.Sync.PageSize <= 0 || out.Sync.PageSize > 500 {
		res.addErr("sync.page_size must be 1..500")
	}

	if out.Limits.RequestsPerSecond <= 0 {
		res.addErr("limits.requests_per_second must be > 0")
	}
	if out.Limits.Burst <= 0 {
		res.addErr("limits.burst must be > 0")
	}

	if out.Labels.Source == "" {
		res.addWarn("labels.source is empty; candidates will carry no Source.")
	}

	return out, res
}
