package pool

import (
	"sync/atomic"

	"github.com/pkg/errors"
)

// Handle is a reference-counted lease on a pooled resource.
type Handle[T any] struct {
	arena  *Arena[T]
	res    T
	size   int
	bucket int
	users  atomic.Int32
}

// Resource returns the leased resource. It panics once every user has released it.
func (h *Handle[T]) Resource() T {
	if h.users.Load() < 1 {
		panic(errors.Wrapf(ErrUseAfterRelease, "%s bucket %d", h.arena.opts.Name, h.bucket))
	}
	return h.res
}

// Size is the size originally requested from Get.
func (h *Handle[T]) Size() int { return h.size }

// Bucket is the rounded size class the resource belongs to.
func (h *Handle[T]) Bucket() int { return h.bucket }

// Users returns the current user count.
func (h *Handle[T]) Users() int32 { return h.users.Load() }

// AddUser registers another owner of the handle. A released handle stays
// released: the count is never raised from zero.
func (h *Handle[T]) AddUser() {
	for {
		n := h.users.Load()
		if n < 1 {
			panic(errors.Wrapf(ErrUseAfterRelease, "%s: AddUser on released handle", h.arena.opts.Name))
		}
		if h.users.CompareAndSwap(n, n+1) {
			return
		}
	}
}

// Release drops one user. It reports true when this call returned the resource to the arena.
func (h *Handle[T]) Release() bool {
	for {
		n := h.users.Load()
		if n < 1 {
			panic(errors.Wrapf(ErrUseAfterRelease, "%s: Release on released handle", h.arena.opts.Name))
		}
		if !h.users.CompareAndSwap(n, n-1) {
			continue
		}
		if n > 1 {
			return false
		}
		res := h.res
		var zero T
		h.res = zero
		h.arena.put(res, h.bucket)
		return true
	}
}
