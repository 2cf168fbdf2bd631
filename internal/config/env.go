// config/env.go
package config

import (
	"os"
	"strconv"
)

// OverlayEnv applies environment overrides on top of the file config.
// The .env file (if any) has already been loaded into the environment
// by the time this runs. Unset variables leave the file values alone.
func OverlayEnv(cfg *Config) {
	setStr := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setStr(&cfg.SJB.BaseURL, "SJB_BASE_URL")
	setStr(&cfg.Zoho.AccountsURL, "ZOHO_ACCOUNTS_URL")
	setStr(&cfg.Zoho.APIBaseURL, "ZOHO_API_BASE_URL")
	setStr(&cfg.Zoho.ClientID, "ZOHO_CLIENT_ID")
	setStr(&cfg.Brazen.BaseURL, "BRAZEN_BASE_URL")
	setStr(&cfg.Brazen.ClientID, "BRAZEN_CLIENT_ID")
	setStr(&cfg.Brazen.EventID, "BRAZEN_EVENT_ID")

	if v := os.Getenv("SJB_JOB_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.SJB.JobID = id
		}
	}
	if v := os.Getenv("SYNC_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Sync.IntervalSeconds = n
		}
	}
}
