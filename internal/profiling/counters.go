package profiling

import (
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Diagnostic counters that live across frames, e.g. discarded results or
// refused enqueues. Unlike frame timers they are never reset by ResetFrame.

var (
	counterMu sync.Mutex
	counters  = make(map[string]int64)
)

// Add increments the named counter by n.
func Add(name string, n int64) {
	counterMu.Lock()
	counters[name] += n
	counterMu.Unlock()
}

// Counter returns the current value of the named counter.
func Counter(name string) int64 {
	counterMu.Lock()
	defer counterMu.Unlock()
	return counters[name]
}

// Counters formats every non-zero counter as "name=value", sorted by name.
func Counters() string {
	counterMu.Lock()
	names := make([]string, 0, len(counters))
	for k, v := range counters {
		if v != 0 {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, k := range names {
		parts = append(parts, k+"="+strconv.FormatInt(counters[k], 10))
	}
	counterMu.Unlock()
	return strings.Join(parts, " ")
}

// ResetCounters clears every counter.
func ResetCounters() {
	counterMu.Lock()
	clear(counters)
	counterMu.Unlock()
}
