package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// “Service” groups the app’s secrets in the OS keychain.
	KeyringService = "recruitsync"

	AccountSJBAPIKey        = "sjb:api_key"
	AccountZohoClientSecret = "zoho:client_secret"
	AccountZohoRefreshToken = "zoho:refresh_token"
	AccountBrazenSecret     = "brazen:client_secret"
)

// envFallback maps keychain accounts to the environment variables used
// on headless hosts with no keychain daemon.
var envFallback = map[string]string{
	AccountSJBAPIKey:        "SJB_API_KEY",
	AccountZohoClientSecret: "ZOHO_CLIENT_SECRET",
	AccountZohoRefreshToken: "ZOHO_REFRESH_TOKEN",
	AccountBrazenSecret:     "BRAZEN_CLIENT_SECRET",
}

// Get looks in the keychain first, then the environment.
func Get(account string) (string, error) {
	pw, err := keyring.Get(KeyringService, account)
	if err == nil && strings.TrimSpace(pw) != "" {
		return pw, nil
	}

	if env := envFallback[account]; env != "" {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v, nil
		}
	}
	return "", errors.New("secret " + account + " not found (set it in keychain or via env)")
}

// GetOptional is Get for secrets whose absence just disables a feature.
func GetOptional(account string) string {
	v, err := Get(account)
	if err != nil {
		return ""
	}
	return v
}

func Set(account string, value string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret value is empty")
	}
	return keyring.Set(KeyringService, account, value)
}

func Delete(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}
