package netutil

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// RetryAttempts bounds transient-failure retries for every outbound client.
const RetryAttempts = 3

// RetryBaseWait is a var so tests can shrink the backoff.
var RetryBaseWait = 2 * time.Second

// Transient reports whether a status merits another attempt: rate
// limiting and server-side failures. Client errors never retry.
func Transient(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// Backoff sleeps attempt*RetryBaseWait ahead of the next attempt. It
// errors when the attempts are spent or the context ends first.
func Backoff(ctx context.Context, attempt int) error {
	if attempt >= RetryAttempts {
		return fmt.Errorf("attempts exhausted")
	}
	t := time.NewTimer(time.Duration(attempt) * RetryBaseWait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
