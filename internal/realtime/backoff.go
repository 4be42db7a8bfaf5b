package realtime

import (
	"math/rand/v2"
	"time"
)

// Backoff computes the delay before reconnect attempt n (1-based).
type Backoff interface {
	Next(attempt int) time.Duration
}

// LinearBackoff waits Base * attempt.
type LinearBackoff struct {
	Base time.Duration
}

func (b LinearBackoff) Next(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return b.Base * time.Duration(attempt)
}

// uncappedMax bounds an ExponentialBackoff whose Max is unset.
const uncappedMax = 24 * time.Hour

// ExponentialBackoff doubles from Base, capped at Max (24h when unset), with
// optional jitter.
type ExponentialBackoff struct {
	Base   time.Duration
	Max    time.Duration
	Jitter bool // Scale each delay by a random factor in [0.5, 1.5)
}

func (b ExponentialBackoff) Next(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := b.Base
	if base <= 0 {
		base = time.Second
	}
	limit := b.Max
	if limit <= 0 {
		limit = uncappedMax
	}

	delay := min(base, limit)
	for i := 1; i < attempt && delay < limit; i++ {
		delay = min(delay*2, limit)
	}

	if b.Jitter {
		delay = delay/2 + time.Duration(rand.Int64N(int64(delay)))
	}
	return delay
}
