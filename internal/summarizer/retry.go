package summarizer

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/tenderbrief/internal/remote"
)

// MaxRetries bounds the attempts made against the remote summarizer.
const MaxRetries = 3

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *remote.RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := min(time.Duration(1<<uint(attempt))*time.Second, 30*time.Second)
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}
