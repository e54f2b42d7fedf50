package evalclient

import (
	"sync"
	"time"
)

// Backoff is a bounded exponential schedule: Base doubled per attempt,
// capped at Max.
type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

// Delay returns the wait before retrying after the given zero-based attempt.
func (b Backoff) Delay(attempt int) time.Duration {
	d := b.Base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= b.Max {
			return b.Max
		}
	}
	if d > b.Max {
		return b.Max
	}
	return d
}

// adaptiveBackoff is the separate, longer schedule for rate-limited
// responses. Every 429 raises the base so a throttling backend sees
// progressively gentler traffic for the rest of the session. A
// server-supplied hint always wins when it is longer.
type adaptiveBackoff struct {
	mu   sync.Mutex
	base time.Duration
	max  time.Duration
}

func newAdaptiveBackoff(base, max time.Duration) *adaptiveBackoff {
	return &adaptiveBackoff{base: base, max: max}
}

func (a *adaptiveBackoff) next(attempt int, hint time.Duration) time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()

	d := Backoff{Base: a.base, Max: a.max}.Delay(attempt)

	if a.base < a.max {
		a.base *= 2
		if a.base > a.max {
			a.base = a.max
		}
	}

	if hint > d {
		d = hint
	}
	if d > a.max {
		d = a.max
	}
	return d
}
