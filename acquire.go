package lazypool

import (
	"context"
	"fmt"
	"time"

	"github.com/behos/lazy-pool/errs"
	"github.com/behos/lazy-pool/telemetry"
)

// Acquire checks one object out of the pool, constructing it through the
// factory when the idle set is empty and capacity headroom remains. When
// the pool is at capacity the call queues behind earlier acquires and is
// woken in FIFO order as leases are finalized; a woken caller re-checks
// pool state rather than assuming an object is reserved for it, so wakes
// that race with other acquirers simply queue again.
//
// Factory failures roll the reservation back, wake the next waiter, and
// surface as a factory_failed error wrapping the factory's error. Context
// cancellation while queued dequeues the caller and returns the context
// error.
func (p *Pool[T]) Acquire(ctx context.Context) (*Lease[T], error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	s := p.state
	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			p.inst.RecordAcquire(ctx, p.name, telemetry.ResultClosed, time.Since(start))
			return nil, errs.New(p.name, errs.CodeClosed, errs.WithMessage("acquire on closed pool"))
		}

		if n := len(s.idle); n > 0 {
			obj := s.idle[n-1]
			var zero T
			s.idle[n-1] = zero
			s.idle = s.idle[:n-1]
			s.outstanding++
			s.reuses++
			s.mu.Unlock()

			p.inst.AddIdle(ctx, p.name, -1)
			p.inst.AddOutstanding(ctx, p.name, 1)
			p.inst.RecordAcquire(ctx, p.name, telemetry.ResultReused, time.Since(start))
			return p.newLease(obj), nil
		}

		if p.capacity == 0 || s.outstanding < p.capacity {
			// Reserve the slot before constructing so concurrent acquires
			// cannot overshoot capacity, then run the factory unlocked: it
			// may block arbitrarily long.
			s.outstanding++
			s.factoryCalls++
			s.mu.Unlock()

			obj, err := p.factory(ctx)
			if err != nil {
				s.mu.Lock()
				s.outstanding--
				s.factoryFailures++
				s.wakeLocked()
				s.maybeDrainLocked()
				s.mu.Unlock()
				p.inst.RecordFactory(ctx, p.name, telemetry.ResultError)
				return nil, errs.New(p.name, errs.CodeFactory, errs.WithMessage("factory failed"), errs.WithCause(err))
			}

			p.inst.RecordFactory(ctx, p.name, telemetry.ResultOK)
			p.inst.AddOutstanding(ctx, p.name, 1)
			p.inst.RecordAcquire(ctx, p.name, telemetry.ResultCreated, time.Since(start))
			return p.newLease(obj), nil
		}

		ready := make(chan struct{}, 1)
		elem := s.waiters.PushBack(ready)
		s.mu.Unlock()

		select {
		case <-ready:
			// Woken by a finalized lease; loop and re-check.
		case <-ctx.Done():
			s.mu.Lock()
			s.waiters.Remove(elem)
			select {
			case <-ready:
				// A wake raced with cancellation; pass it to the next waiter
				// so the signal is not lost.
				s.wakeLocked()
			default:
			}
			s.mu.Unlock()
			return nil, fmt.Errorf("lazypool %s: acquire: %w", p.name, ctx.Err())
		}
	}
}
