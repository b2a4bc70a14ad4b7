package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/doctree"
	"github.com/dgallion1/docchunk/internal/writer"
)

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var writeErr *writer.WriteError
	return errors.As(err, &writeErr)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

const MaxRetries = 3

// retrySink retries retryable chunk writes with backoff.
type retrySink struct {
	next     chunker.Sink
	attempts int
	backoff  func(int) time.Duration
	log      *slog.Logger
	onRetry  func()
	onWrite  func()
}

func (s *retrySink) WriteChunk(ctx context.Context, c doctree.Chunk) error {
	var lastErr error
	for attempt := range s.attempts {
		lastErr = s.next.WriteChunk(ctx, c)
		if lastErr == nil {
			if s.onWrite != nil {
				s.onWrite()
			}
			return nil
		}
		if !IsRetryable(lastErr) || attempt == s.attempts-1 {
			break
		}
		s.log.Warn("retryable write error", "chunk", c.Index, "attempt", attempt, "error", lastErr)
		if s.onRetry != nil {
			s.onRetry()
		}
		select {
		case <-time.After(s.backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
