package pool

// NewSliceArena returns an arena of []E whose resources have length equal to their
// bucket. When zero is set, released slices are cleared before reuse.
func NewSliceArena[E any](name string, granularity int, zero bool) *Arena[[]E] {
	opts := Options[[]E]{
		Name:        name,
		Granularity: granularity,
		Alloc:       func(bucket int) []E { return make([]E, bucket) },
		Capacity:    func(s []E) int { return len(s) },
	}
	if zero {
		opts.Reset = func(s []E) { clear(s) }
	}
	return NewArena(opts)
}
