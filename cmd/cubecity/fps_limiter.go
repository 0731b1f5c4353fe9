package main

import "time"

// fpsLimiter paces the tick loop at a fixed rate.
type fpsLimiter struct {
	target time.Duration
	next   time.Time
}

func newFPSLimiter(hz int) *fpsLimiter {
	return &fpsLimiter{target: time.Second / time.Duration(max(hz, 1))}
}

// Wait blocks until the next frame is due. It sleeps most of the remaining
// time and spins the last 200µs for precision.
func (f *fpsLimiter) Wait() {
	if f.next.IsZero() {
		f.next = time.Now().Add(f.target)
	} else {
		f.next = f.next.Add(f.target)
	}

	for {
		remaining := time.Until(f.next)
		if remaining <= 0 {
			break
		}
		if remaining > 200*time.Microsecond {
			time.Sleep(remaining - 200*time.Microsecond)
		}
		if time.Until(f.next) <= 0 {
			break
		}
	}

	// If we're significantly late (e.g., hitch), resync to avoid drift
	if late := -time.Until(f.next); late > f.target {
		f.next = time.Now().Add(f.target)
	}
}
