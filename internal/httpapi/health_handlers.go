package httpapi

import (
	"encoding/json"
	"net/http"

	"recruitsync-engine/internal/poll"
)

type HealthHandler struct {
	Runner *poll.Runner
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	running := false
	if h.Runner != nil {
		running = h.Runner.Status().Running
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok":      true,
		"running": running,
	})
}
