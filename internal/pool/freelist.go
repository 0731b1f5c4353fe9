package pool

import "sync/atomic"

// freeList is a lock-free LIFO (Treiber stack). Nodes are never recycled, so the
// garbage collector rules out ABA on head.
type freeList[T any] struct {
	head atomic.Pointer[node[T]]
}

type node[T any] struct {
	val  T
	next *node[T]
}

func (l *freeList[T]) push(v T) {
	n := &node[T]{val: v}
	for {
		old := l.head.Load()
		n.next = old
		if l.head.CompareAndSwap(old, n) {
			return
		}
	}
}

func (l *freeList[T]) pop() (T, bool) {
	for {
		old := l.head.Load()
		if old == nil {
			var zero T
			return zero, false
		}
		if l.head.CompareAndSwap(old, old.next) {
			return old.val, true
		}
	}
}
