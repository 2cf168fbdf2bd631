package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// Port binds the local API on 127.0.0.1. The data dir comes
		// from RECRUITSYNC_DATA_DIR, not from here: the config file
		// itself lives inside it.
		Port int `yaml:"port"`
	} `yaml:"app"`

	Sync struct {
		IntervalSeconds int `yaml:"interval_seconds"`
		PageSize        int `yaml:"page_size"`
	} `yaml:"sync"`

	SJB struct {
		BaseURL string `yaml:"base_url"`
		JobID   int64  `yaml:"job_id"`
	} `yaml:"sjb"`

	Zoho struct {
		AccountsURL string `yaml:"accounts_url"`
		APIBaseURL  string `yaml:"api_base_url"`
		ClientID    string `yaml:"client_id"`
	} `yaml:"zoho"`

	Brazen struct {
		BaseURL  string `yaml:"base_url"`
		ClientID string `yaml:"client_id"`
		EventID  string `yaml:"event_id"`
	} `yaml:"brazen"`

	Labels struct {
		// Source lands in each candidate's Source field.
		Source string `yaml:"source"`
		// Client lands in created job openings' Client_Name.
		Client string `yaml:"client"`
	} `yaml:"labels"`

	Limits struct {
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
	} `yaml:"limits"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// Default returns the config a fresh install starts from. Credentials
// never live here; they come from the keychain or the environment.
func Default() Config {
	var cfg Config
	cfg.App.Port = 38472
	cfg.Sync.IntervalSeconds = 900
	cfg.Sync.PageSize = 100
	cfg.Zoho.AccountsURL = "https://accounts.zoho.com"
	cfg.Zoho.APIBaseURL = "https://recruit.zoho.com/recruit/v2"
	cfg.Labels.Source = "Smart Job Board"
	cfg.Labels.Client = "Direct Hire"
	cfg.Limits.RequestsPerSecond = 1.5
	cfg.Limits.Burst = 3
	return cfg
}
