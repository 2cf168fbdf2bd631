package httpapi

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"

	"recruitsync-engine/internal/domain"
	"recruitsync-engine/internal/poll"
	"recruitsync-engine/internal/store"
)

type SyncHandler struct {
	Runner *poll.Runner
}

func (h SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Runner.Status())
}

// Run triggers an outbound run in the background. The runner's guard
// answers 409 when one is already in flight, here or in another process
// sharing the data dir.
func (h SyncHandler) Run(w http.ResponseWriter, r *http.Request) {
	h.trigger(w, r, h.Runner.RunSync)
}

func (h SyncHandler) Intake(w http.ResponseWriter, r *http.Request) {
	h.trigger(w, r, h.Runner.RunIntake)
}

func (h SyncHandler) trigger(w http.ResponseWriter, r *http.Request, run func(context.Context) (domain.BatchResult, error)) {
	if h.Runner.Status().Running {
		WriteError(w, r, http.StatusConflict, "already_running", "a sync run is already in progress")
		return
	}

	go func() {
		if _, err := run(context.Background()); err != nil && !errors.Is(err, poll.ErrAlreadyRunning) {
			log.Printf("[api] triggered run failed: %v", err)
		}
	}()

	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}

type RunsHandler struct {
	DB *sql.DB
}

func (h RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.DB == nil {
		writeJSON(w, []store.Run{})
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	runs, err := store.ListRuns(r.Context(), h.DB, limit)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	writeJSON(w, runs)
}
