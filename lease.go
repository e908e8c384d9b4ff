package lazypool

import (
	"sync/atomic"

	"github.com/behos/lazy-pool/errs"
)

// leaseSeq numbers leases across all pools for debug lease tracking.
var leaseSeq atomic.Uint64

// Lease wraps a single checked-out object. The caller holding the lease
// is the object's only owner until the lease is finalized by Release.
//
// Every lease must be finalized exactly once. A lease that is dropped
// without Release leaves its capacity slot checked out forever; builds
// compiled with the debug tag log abandoned leases when they are garbage
// collected.
type Lease[T any] struct {
	pool    *Pool[T]
	obj     T
	id      uint64
	tainted atomic.Bool
	done    atomic.Bool
}

func (p *Pool[T]) newLease(obj T) *Lease[T] {
	l := &Lease[T]{
		pool: p,
		obj:  obj,
		id:   leaseSeq.Add(1),
	}
	p.dbg.recordAcquire(l.id)
	setAbandonFinalizer(l)
	return l
}

// Value returns the wrapped object. After the lease has been finalized
// the object is gone and Value returns the zero value.
func (l *Lease[T]) Value() T {
	return l.obj
}

// Ref returns a pointer to the wrapped object for in-place mutation.
func (l *Lease[T]) Ref() *T {
	return &l.obj
}

// Taint marks the lease so that finalizing discards the object instead of
// returning it to the pool. Safe to call any number of times before
// Release; it cannot be undone.
func (l *Lease[T]) Taint() {
	l.tainted.Store(true)
}

// Tainted reports whether the lease has been marked for discard.
func (l *Lease[T]) Tainted() bool {
	return l.tainted.Load()
}

// Release finalizes the lease, consuming it. The object returns to the
// pool's idle set, or is discarded when the lease is tainted; either way
// the oldest waiter is woken. Releasing an already-finalized lease is a
// programming error and fails with already_finalized without touching
// pool counts.
func (l *Lease[T]) Release() error {
	if l.done.Swap(true) {
		return errs.New(l.pool.name, errs.CodeFinalized, errs.WithMessage("lease already finalized"))
	}
	l.pool.dbg.recordRelease(l.id)

	obj := l.obj
	var zero T
	l.obj = zero

	if l.tainted.Load() {
		l.pool.discard(obj)
		return nil
	}
	l.pool.returnIdle(obj)
	return nil
}
