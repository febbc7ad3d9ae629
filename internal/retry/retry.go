// Package retry computes exponential backoff delays for outbound calls
// that must eventually succeed, such as outbox delivery.
package retry

import "time"

// Config configures backoff behaviour.
type Config struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// Delay returns the backoff delay preceding the given 1-based attempt,
// clamped to MaxDelay. Attempt 1 has no delay.
func (c *Config) Delay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	delay := c.InitialDelay
	for i := 2; i < attempt; i++ {
		delay = time.Duration(float64(delay) * c.BackoffFactor)
		if delay >= c.MaxDelay {
			return c.MaxDelay
		}
	}
	if delay > c.MaxDelay {
		return c.MaxDelay
	}
	return delay
}
