package retry

import "time"

// ExponentialBackoff returns base * 2^attempt.
func ExponentialBackoff(attempt int, base time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	return base * (1 << attempt)
}

// CappedBackoff is ExponentialBackoff limited to max. A non-positive max disables the cap.
func CappedBackoff(attempt int, base, max time.Duration) time.Duration {
	if attempt > 30 {
		attempt = 30
	}
	d := ExponentialBackoff(attempt, base)
	if max > 0 && (d > max || d <= 0) {
		return max
	}
	return d
}
