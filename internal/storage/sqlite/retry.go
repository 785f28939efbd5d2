package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/rferrer/steady/internal/metrics"
)

const (
	// maxWriteAttempts bounds how often a single mutation is retried.
	maxWriteAttempts = 3

	// retryBaseDelay is the first backoff; each following attempt waits
	// four times longer (10ms, 40ms, 160ms, ...).
	retryBaseDelay = 10 * time.Millisecond
)

// isTransient reports whether err looks like a transient SQLite contention
// error worth retrying: lock/busy/constraint-retry class. Anything else is
// propagated to the caller on the first attempt.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "locked") ||
		strings.Contains(msg, "busy") ||
		strings.Contains(msg, "constraint")
}

// execRetry runs a single mutating statement with bounded backoff-and-retry
// on transient contention. The caller must treat a returned error as "write
// did not durably happen"; no partial-success state is exposed.
func execRetry(ctx context.Context, fn func() error) error {
	delay := retryBaseDelay
	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil || attempt >= maxWriteAttempts || !isTransient(err) {
			return err
		}
		metrics.WriteRetriesTotal.Inc()
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 4
	}
}
