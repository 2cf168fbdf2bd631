package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"recruitsync-engine/internal/secrets"
)

type SecretsHandler struct{}

type setSecretReq struct {
	Value string `json:"value"`
}

// accounts maps the URL name to the keychain account. Anything else is
// a 404, so arbitrary keychain entries can't be written through the API.
var accounts = map[string]string{
	"sjb":                secrets.AccountSJBAPIKey,
	"zoho-client-secret": secrets.AccountZohoClientSecret,
	"zoho-refresh-token": secrets.AccountZohoRefreshToken,
	"brazen":             secrets.AccountBrazenSecret,
}

// SetByPath stores a secret named by the path: /api/secrets/{name}.
func (h SecretsHandler) SetByPath(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/secrets/")
	account, ok := accounts[name]
	if !ok {
		WriteError(w, r, http.StatusNotFound, "unknown_secret", "unknown secret name")
		return
	}

	var req setSecretReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if err := secrets.Set(account, req.Value); err != nil {
		http.Error(w, "failed to store secret: "+err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
