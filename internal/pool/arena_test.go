package pool

import (
	"errors"
	"sync"
	"testing"
)

func TestBucketRounding(t *testing.T) {
	a := NewSliceArena[uint16]("test", 1024, true)
	cases := []struct {
		size, want int
	}{
		{0, 1024},
		{1, 1024},
		{1024, 1024},
		{1025, 2048},
		{32768, 32768},
		{32769, 33792},
	}
	for _, c := range cases {
		if got := a.BucketFor(c.size); got != c.want {
			t.Errorf("BucketFor(%d) = %d, want %d", c.size, got, c.want)
		}
		h := a.Get(c.size)
		if len(h.Resource()) != c.want {
			t.Errorf("Get(%d) len = %d, want %d", c.size, len(h.Resource()), c.want)
		}
		if h.Size() != c.size {
			t.Errorf("Size() = %d, want %d", h.Size(), c.size)
		}
		h.Release()
	}
}

func TestReuseIsZeroFilled(t *testing.T) {
	a := NewSliceArena[uint16]("blocks", 1024, true)

	h := a.Get(16 * 128 * 16)
	buf := h.Resource()
	for i := range buf {
		buf[i] = uint16(i%7 + 1)
	}
	if !h.Release() {
		t.Fatal("expected last Release to return the buffer")
	}

	h2 := a.Get(16 * 128 * 16)
	if st := a.Stats(); st.Reused != 1 || st.Allocated != 1 {
		t.Fatalf("expected reuse of the released buffer, got %v", st)
	}
	for i, v := range h2.Resource() {
		if v != 0 {
			t.Fatalf("reused buffer not zeroed at %d: %d", i, v)
		}
	}
}

func TestWithoutResetKeepsContents(t *testing.T) {
	a := NewSliceArena[int]("scratch", 16, false)
	h := a.Get(10)
	h.Resource()[0] = 42
	h.Release()
	h2 := a.Get(10)
	if h2.Resource()[0] != 42 {
		t.Fatalf("scratch arena should not clear, got %d", h2.Resource()[0])
	}
}

func TestRefCounting(t *testing.T) {
	a := NewSliceArena[byte]("rc", 8, true)
	h := a.Get(8)
	h.AddUser()
	if h.Users() != 2 {
		t.Fatalf("users = %d, want 2", h.Users())
	}
	if h.Release() {
		t.Fatal("first Release must not return the buffer")
	}
	if st := a.Stats(); st.Outstanding != 1 || st.Free != 0 {
		t.Fatalf("unexpected stats after first release: %v", st)
	}
	if !h.Release() {
		t.Fatal("second Release must return the buffer")
	}
	if st := a.Stats(); st.Outstanding != 0 || st.Free != 1 {
		t.Fatalf("unexpected stats after final release: %v", st)
	}
}

func expectPanic(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, target) {
			t.Fatalf("panic = %v, want %v", r, target)
		}
	}()
	fn()
}

func TestUseAfterReleasePanics(t *testing.T) {
	a := NewSliceArena[byte]("uar", 8, true)
	h := a.Get(4)
	h.Release()
	expectPanic(t, ErrUseAfterRelease, func() { h.Resource() })
	expectPanic(t, ErrUseAfterRelease, func() { h.Release() })
}

func TestAddUserOnReleasedHandle(t *testing.T) {
	a := NewSliceArena[byte]("revive", 8, true)
	h := a.Get(4)
	h.Release()
	expectPanic(t, ErrUseAfterRelease, func() { h.AddUser() })
	if n := h.Users(); n != 0 {
		t.Fatalf("users = %d after refused AddUser, want 0", n)
	}
	expectPanic(t, ErrUseAfterRelease, func() { h.Resource() })
	expectPanic(t, ErrUseAfterRelease, func() { h.Release() })
	if st := a.Stats(); st.Outstanding != 0 || st.Free != 1 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestShapeMismatchPanics(t *testing.T) {
	a := NewArena(Options[[]int]{
		Name:        "shape",
		Granularity: 4,
		Alloc:       func(bucket int) []int { return make([]int, bucket) },
		Capacity:    func(s []int) int { return len(s) },
	})
	h := a.Get(4)
	// Simulate a buggy owner swapping the backing slice.
	h.res = make([]int, 3)
	expectPanic(t, ErrShapeMismatch, func() { h.Release() })

	bad := NewArena(Options[[]int]{
		Granularity: 4,
		Alloc:       func(bucket int) []int { return make([]int, bucket-1) },
		Capacity:    func(s []int) int { return len(s) },
	})
	expectPanic(t, ErrShapeMismatch, func() { bad.Get(4) })
}

func TestConcurrentGetRelease(t *testing.T) {
	a := NewSliceArena[uint32]("conc", 64, true)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				h := a.Get((seed*31 + i) % 200)
				buf := h.Resource()
				for j := range buf {
					if buf[j] != 0 {
						t.Errorf("dirty buffer from arena")
						return
					}
					buf[j] = uint32(j + 1)
				}
				h.Release()
			}
		}(g)
	}
	wg.Wait()
	st := a.Stats()
	if st.Outstanding != 0 {
		t.Fatalf("outstanding = %d after all releases", st.Outstanding)
	}
	if st.Free != st.Allocated {
		t.Fatalf("free %d != allocated %d", st.Free, st.Allocated)
	}
}

func BenchmarkGetRelease(b *testing.B) {
	a := NewSliceArena[uint16]("bench", 1024, true)
	for i := 0; i < b.N; i++ {
		h := a.Get(16 * 128 * 16)
		h.Release()
	}
}
