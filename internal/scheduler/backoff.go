package scheduler

import "time"

const (
	// After this many consecutive fetch failures the ticker is rested
	// instead of retried immediately.
	MaxConsecutiveErrors = 3

	backoffStep = 5 * time.Minute
	backoffCap  = 60 * time.Minute
)

// Backoff returns the wait before retry attempt n (1-based): 5 minutes per
// attempt, capped at one hour.
func Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := time.Duration(attempt) * backoffStep
	if d > backoffCap {
		return backoffCap
	}
	return d
}
