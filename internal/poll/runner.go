package poll

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"recruitsync-engine/internal/domain"
	"recruitsync-engine/internal/events"
	"recruitsync-engine/internal/store"
	syncer "recruitsync-engine/internal/sync"
)

// ErrAlreadyRunning means a run was requested while another one holds
// the guard, in this process or another one on the same data dir.
var ErrAlreadyRunning = errors.New("a sync run is already in progress")

const runTimeout = 15 * time.Minute

// Status is the last-known runner state, served by the HTTP API.
type Status struct {
	Running    bool                `json:"running"`
	LastKind   string              `json:"lastKind,omitempty"`
	LastRunAt  string              `json:"lastRunAt,omitempty"`
	LastOkAt   string              `json:"lastOkAt,omitempty"`
	LastError  string              `json:"lastError,omitempty"`
	LastResult *domain.BatchResult `json:"lastResult,omitempty"`
}

// Runner serializes sync runs. A process-local mutex stops the ticker
// and the manual-trigger endpoint from overlapping; the flock file
// stops a second process pointed at the same data dir.
type Runner struct {
	Pipeline *syncer.Pipeline
	DB       *sql.DB // nil disables run history
	Hub      *events.Hub
	LockPath string

	running sync.Mutex
	status  atomic.Value // Status
}

func (r *Runner) Status() Status {
	if s, ok := r.status.Load().(Status); ok {
		return s
	}
	return Status{}
}

// RunSync executes one outbound run under the overlap guard.
func (r *Runner) RunSync(ctx context.Context) (domain.BatchResult, error) {
	return r.run(ctx, "sync", r.Pipeline.Run)
}

// RunIntake executes one inbound (registrant intake) run under the same
// guard, so it never overlaps an outbound run either.
func (r *Runner) RunIntake(ctx context.Context) (domain.BatchResult, error) {
	return r.run(ctx, "intake", r.Pipeline.RunIntake)
}

func (r *Runner) run(ctx context.Context, kind string, fn func(context.Context) (domain.BatchResult, error)) (domain.BatchResult, error) {
	if !r.running.TryLock() {
		return domain.BatchResult{}, ErrAlreadyRunning
	}
	defer r.running.Unlock()

	var fl *flock.Flock
	if r.LockPath != "" {
		fl = flock.New(r.LockPath)
		locked, err := fl.TryLock()
		if err != nil {
			return domain.BatchResult{}, err
		}
		if !locked {
			return domain.BatchResult{}, ErrAlreadyRunning
		}
		defer func() { _ = fl.Unlock() }()
	}

	startedAt := time.Now()
	st := r.Status()
	st.Running = true
	st.LastKind = kind
	st.LastRunAt = startedAt.Format(time.RFC3339)
	r.status.Store(st)
	r.publish(events.TypeRunStarted, map[string]string{"kind": kind})

	rctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	result, err := fn(rctx)
	finishedAt := time.Now()

	st = r.Status()
	st.Running = false
	st.LastResult = &result
	if err != nil {
		st.LastError = err.Error()
		log.Printf("[runner] %s run failed: %v", kind, err)
		r.publish(events.TypeRunFailed, map[string]string{"kind": kind, "error": err.Error()})
	} else {
		st.LastError = ""
		st.LastOkAt = finishedAt.Format(time.RFC3339)
		log.Printf("[runner] %s run ok total=%d created=%d updated=%d registered=%d skipped=%d failed=%d",
			kind, result.Total, result.Created, result.Updated, result.Registered, result.Skipped, result.Failed)
		r.publish(events.TypeRunFinished, result)
	}
	r.status.Store(st)

	if r.DB != nil {
		if _, dbErr := store.InsertRun(ctx, r.DB, kind, startedAt, finishedAt, result, err); dbErr != nil {
			log.Printf("[runner] persisting run history failed: %v", dbErr)
		}
	}
	return result, err
}

func (r *Runner) publish(typ string, data any) {
	if r.Hub != nil {
		r.Hub.Publish(events.MakeEvent("", typ, 1, data))
	}
}

// Scheduled is the task the ticker drives: one outbound run with the
// intake run piggybacked after it. An overlap answer from the guard is
// normal when a manual run is in flight and is not an error.
func (r *Runner) Scheduled(ctx context.Context) error {
	if _, err := r.RunSync(ctx); err != nil && !errors.Is(err, ErrAlreadyRunning) {
		return err
	}
	if r.Pipeline.Registrar == nil || r.Pipeline.EventID == "" {
		return nil
	}
	if _, err := r.RunIntake(ctx); err != nil && !errors.Is(err, ErrAlreadyRunning) {
		return err
	}
	return nil
}
