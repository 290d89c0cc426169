package recovery

import (
	"fmt"
	"log"
	"time"

	"extranet_rates/apperror"
)

// Retry re-runs an operation with doubling back-off. Fatal errors are
// returned immediately.
type Retry struct {
	Attempts  int
	BaseDelay time.Duration

	sleep func(time.Duration)
}

func (r *Retry) Do(name string, fn func() error) error {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := r.sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var lastErr error
	delay := r.BaseDelay
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if apperror.IsFatal(lastErr) {
			return lastErr
		}
		if attempt < attempts {
			log.Printf("[retry] %s failed (attempt %d/%d): %v, retrying in %v",
				name, attempt, attempts, lastErr, delay)
			sleep(delay)
			delay *= 2
		}
	}

	if attempts == 1 {
		return lastErr
	}
	return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, lastErr)
}
