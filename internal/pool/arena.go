// Package pool provides reference-counted, size-bucketed buffer arenas.
//
// An Arena hands out Handles. A Handle starts with one user; every AddUser must be
// matched by a Release, and the last Release returns the resource to a per-bucket
// free-list. Arenas are safe for concurrent use.
package pool

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// DefaultGranularity is the bucket width used when Options.Granularity is zero.
const DefaultGranularity = 1024

var (
	// ErrUseAfterRelease is the panic value when a released handle is touched.
	ErrUseAfterRelease = errors.New("pool: handle used after its last user released it")
	// ErrShapeMismatch is the panic value when a resource comes back with a capacity
	// that does not match the bucket it was taken from.
	ErrShapeMismatch = errors.New("pool: resource shape does not match its bucket")
)

// Options configures an Arena.
type Options[T any] struct {
	// Name is used in diagnostics only.
	Name string
	// Granularity is the bucket width; requested sizes are rounded up to a multiple of it.
	Granularity int
	// Alloc creates a fresh resource able to hold bucket elements.
	Alloc func(bucket int) T
	// Capacity reports how many elements a resource holds. It is checked against the
	// bucket when the resource is returned.
	Capacity func(T) int
	// Reset, when set, runs before a resource goes back on the free-list.
	Reset func(T)
}

// Arena is a generic bucketed pool.
type Arena[T any] struct {
	opts    Options[T]
	buckets sync.Map // int -> *freeList[T]

	allocated   atomic.Int64
	reused      atomic.Int64
	outstanding atomic.Int64
	free        atomic.Int64
}

// Stats is a snapshot of arena counters.
type Stats struct {
	Name        string
	Allocated   int64 // resources created by Alloc
	Reused      int64 // Get calls served from a free-list
	Outstanding int64 // handles with at least one user
	Free        int64 // resources sitting in free-lists
}

func (s Stats) String() string {
	return fmt.Sprintf("%s: allocated=%d reused=%d outstanding=%d free=%d",
		s.Name, s.Allocated, s.Reused, s.Outstanding, s.Free)
}

// NewArena creates an arena. Alloc and Capacity are required.
func NewArena[T any](opts Options[T]) *Arena[T] {
	if opts.Alloc == nil || opts.Capacity == nil {
		panic("pool: Options.Alloc and Options.Capacity are required")
	}
	if opts.Granularity <= 0 {
		opts.Granularity = DefaultGranularity
	}
	return &Arena[T]{opts: opts}
}

// BucketFor rounds size up to the arena's bucket width. Sizes below one granule
// share the smallest bucket.
func (a *Arena[T]) BucketFor(size int) int {
	g := a.opts.Granularity
	if size <= 0 {
		return g
	}
	return (size + g - 1) / g * g
}

// Get returns a handle to a resource able to hold at least size elements.
func (a *Arena[T]) Get(size int) *Handle[T] {
	bucket := a.BucketFor(size)

	var res T
	if fl := a.list(bucket, false); fl != nil {
		if v, ok := fl.pop(); ok {
			res = v
			a.free.Add(-1)
			a.reused.Add(1)
			return a.wrap(res, size, bucket)
		}
	}

	res = a.opts.Alloc(bucket)
	if c := a.opts.Capacity(res); c != bucket {
		panic(errors.Wrapf(ErrShapeMismatch, "%s: Alloc(%d) produced capacity %d", a.opts.Name, bucket, c))
	}
	a.allocated.Add(1)
	return a.wrap(res, size, bucket)
}

func (a *Arena[T]) wrap(res T, size, bucket int) *Handle[T] {
	h := &Handle[T]{arena: a, res: res, size: size, bucket: bucket}
	h.users.Store(1)
	a.outstanding.Add(1)
	return h
}

func (a *Arena[T]) put(res T, bucket int) {
	if c := a.opts.Capacity(res); c != bucket {
		panic(errors.Wrapf(ErrShapeMismatch, "%s: returned capacity %d to bucket %d", a.opts.Name, c, bucket))
	}
	if a.opts.Reset != nil {
		a.opts.Reset(res)
	}
	a.outstanding.Add(-1)
	a.list(bucket, true).push(res)
	a.free.Add(1)
}

func (a *Arena[T]) list(bucket int, create bool) *freeList[T] {
	if v, ok := a.buckets.Load(bucket); ok {
		return v.(*freeList[T])
	}
	if !create {
		return nil
	}
	v, _ := a.buckets.LoadOrStore(bucket, &freeList[T]{})
	return v.(*freeList[T])
}

// Stats returns a snapshot of the arena's counters.
func (a *Arena[T]) Stats() Stats {
	return Stats{
		Name:        a.opts.Name,
		Allocated:   a.allocated.Load(),
		Reused:      a.reused.Load(),
		Outstanding: a.outstanding.Load(),
		Free:        a.free.Load(),
	}
}
