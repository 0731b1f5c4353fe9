// Package dispatch runs jobs on a fixed set of worker goroutines and hands the
// results back to a single consumer that polls without blocking.
package dispatch

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/alitto/pond/v2"
	"github.com/pkg/errors"
)

// DefaultCapacity is the outstanding-job bound used when Options.Capacity is zero.
const DefaultCapacity = 256

var (
	// ErrQueueSaturated is returned by Enqueue when Capacity jobs are outstanding.
	ErrQueueSaturated = errors.New("dispatch: queue saturated")
	// ErrClosed is returned by Enqueue after Close.
	ErrClosed = errors.New("dispatch: dispatcher closed")
)

// WorkerFault reports a job that returned an error or panicked.
type WorkerFault struct {
	Dispatcher string
	Request    any
	Panicked   bool
	Cause      error
}

func (f *WorkerFault) Error() string {
	kind := "failed"
	if f.Panicked {
		kind = "panicked"
	}
	return fmt.Sprintf("%s: job %v %s: %v", f.Dispatcher, f.Request, kind, f.Cause)
}

func (f *WorkerFault) Unwrap() error { return f.Cause }

// Options configures a Dispatcher.
type Options struct {
	Name     string
	Workers  int
	Capacity int
	Logger   *slog.Logger
}

type result[Resp any] struct {
	resp Resp
	err  error
}

// Dispatcher is a bounded request/response pipe over a worker pool.
//
// A job counts as outstanding from Enqueue until its result is returned by
// TryPoll, so the bound covers both queued work and completed results that
// nobody has drained yet.
//
// Enqueue and Close may be called from any goroutine. TryPoll has a single
// consumer.
type Dispatcher[Req, Resp any] struct {
	name     string
	fn       func(Req) (Resp, error)
	pool     pond.Pool
	results  chan result[Resp]
	capacity int
	pending  atomic.Int64
	log      *slog.Logger

	// mu orders Submit against Close so no job reaches a stopped pool.
	mu     sync.RWMutex
	closed bool
}

// New starts a dispatcher running fn on its workers.
func New[Req, Resp any](fn func(Req) (Resp, error), opts Options) *Dispatcher[Req, Resp] {
	if opts.Workers <= 0 {
		opts.Workers = max(runtime.NumCPU()/2, 1)
	}
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.Name == "" {
		opts.Name = "dispatch"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Dispatcher[Req, Resp]{
		name:     opts.Name,
		fn:       fn,
		pool:     pond.NewPool(opts.Workers),
		results:  make(chan result[Resp], opts.Capacity),
		capacity: opts.Capacity,
		log:      opts.Logger.With("dispatcher", opts.Name),
	}
}

// Enqueue submits req without blocking.
func (d *Dispatcher[Req, Resp]) Enqueue(req Req) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}
	for {
		n := d.pending.Load()
		if n >= int64(d.capacity) {
			return errors.Wrapf(ErrQueueSaturated, "%s: %d outstanding", d.name, n)
		}
		if d.pending.CompareAndSwap(n, n+1) {
			break
		}
	}
	d.pool.Submit(func() {
		// results has room for every outstanding job, so this never blocks.
		d.results <- d.run(req)
	})
	return nil
}

func (d *Dispatcher[Req, Resp]) run(req Req) (out result[Resp]) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		cause, ok := r.(error)
		if ok {
			cause = errors.WithStack(cause)
		} else {
			cause = errors.Errorf("%v", r)
		}
		d.log.Debug("worker panicked", "req", req, "err", cause)
		out = result[Resp]{err: &WorkerFault{Dispatcher: d.name, Request: req, Panicked: true, Cause: cause}}
	}()

	resp, err := d.fn(req)
	if err != nil {
		return result[Resp]{err: &WorkerFault{Dispatcher: d.name, Request: req, Cause: errors.WithStack(err)}}
	}
	return result[Resp]{resp: resp}
}

// TryPoll returns at most one completed result. ok is false when nothing is ready.
// A failed job is reported once as a *WorkerFault with ok set.
func (d *Dispatcher[Req, Resp]) TryPoll() (resp Resp, ok bool, err error) {
	select {
	case r := <-d.results:
		d.pending.Add(-1)
		return r.resp, true, r.err
	default:
		return resp, false, nil
	}
}

// Pending returns the number of outstanding jobs.
func (d *Dispatcher[Req, Resp]) Pending() int {
	return int(d.pending.Load())
}

// Capacity returns the outstanding-job bound.
func (d *Dispatcher[Req, Resp]) Capacity() int { return d.capacity }

// Close rejects further jobs and waits for running ones. Their results stay
// available to TryPoll so the consumer can release what they hold.
func (d *Dispatcher[Req, Resp]) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()
	d.pool.StopAndWait()
}
