// Package profiling collects per-tick CPU timings and long-lived diagnostic
// counters for the chunk pipeline. Safe for use from worker goroutines.
package profiling

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	mu          sync.Mutex
	frameTotals = make(map[string]time.Duration)
)

// Track returns a stop function that records the elapsed time under the given name.
// Usage: defer profiling.Track("chunks.Tick")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		frameTotals[name] += d
		mu.Unlock()
	}
}

// ResetFrame clears current per-frame totals. Call at the start of each tick.
func ResetFrame() {
	mu.Lock()
	clear(frameTotals)
	mu.Unlock()
}

// Snapshot returns a copy of current per-frame totals.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]time.Duration, len(frameTotals))
	for k, v := range frameTotals {
		out[k] = v
	}
	return out
}

// TopN formats the n largest totals of the current frame.
// Example: "chunks.Tick:4.2ms, meshing.Build:2.1ms"
func TopN(n int) string {
	type pair struct {
		name string
		dur  time.Duration
	}
	ss := Snapshot()
	list := make([]pair, 0, len(ss))
	for k, v := range ss {
		list = append(list, pair{name: k, dur: v})
	}
	slices.SortFunc(list, func(a, b pair) int { return cmp.Compare(b.dur, a.dur) })
	n = min(n, len(list))
	parts := make([]string, 0, n)
	for _, p := range list[:n] {
		parts = append(parts, p.name+":"+formatMs(float64(p.dur.Microseconds())/1000.0))
	}
	return strings.Join(parts, ", ")
}

// formatMs keeps one decimal and drops a trailing .0.
func formatMs(ms float64) string {
	return strconv.FormatFloat(math.Floor(ms*10+1e-6)/10, 'f', -1, 64) + "ms"
}
