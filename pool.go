package lazypool

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	"github.com/behos/lazy-pool/errs"
	"github.com/behos/lazy-pool/telemetry"
)

// Pool hands out lazily-constructed objects wrapped in leases. A Pool
// value is a shareable handle: any number of goroutines may call its
// methods concurrently, and every copy of the pointer aliases the same
// underlying state.
type Pool[T any] struct {
	name     string
	capacity int
	factory  Factory[T]
	reset    func(*T)
	destroy  func(T)
	inst     *telemetry.Instruments
	dbg      *debugState
	state    *sharedState[T]
}

// sharedState is the single piece of shared mutable state. Every field is
// guarded by mu except drained, which is closed at most once under mu.
type sharedState[T any] struct {
	mu          sync.Mutex
	idle        []T
	outstanding int
	waiters     *list.List // of chan struct{}, each buffered for one signal
	closed      bool
	drained     chan struct{}
	drainOnce   sync.Once

	factoryCalls    uint64
	factoryFailures uint64
	reuses          uint64
	discards        uint64
}

// Option configures a Pool at construction time.
type Option[T any] func(*Pool[T]) error

// WithCapacity bounds the number of objects the pool will have in
// existence at once, idle and checked out combined. Pools without this
// option are unbounded.
func WithCapacity[T any](capacity int) Option[T] {
	return func(p *Pool[T]) error {
		if capacity <= 0 {
			return errs.New(p.name, errs.CodeInvalid, errs.WithMessage("capacity must be positive"))
		}
		p.capacity = capacity
		return nil
	}
}

// WithName labels the pool for errors, metrics, and manager registration.
func WithName[T any](name string) Option[T] {
	return func(p *Pool[T]) error {
		if name == "" {
			return errs.New("", errs.CodeInvalid, errs.WithMessage("name must be non-empty"))
		}
		p.name = name
		return nil
	}
}

// WithReset installs a hook run on an object each time it returns to the
// idle set, before it can be reused.
func WithReset[T any](fn func(*T)) Option[T] {
	return func(p *Pool[T]) error {
		p.reset = fn
		return nil
	}
}

// WithDestroy installs a hook run on an object when it leaves the pool
// for good: after a tainted lease is finalized, or when idle objects are
// torn down by Close.
func WithDestroy[T any](fn func(T)) Option[T] {
	return func(p *Pool[T]) error {
		p.destroy = fn
		return nil
	}
}

// WithMeterProvider enables OpenTelemetry instrumentation for the pool.
func WithMeterProvider[T any](mp metric.MeterProvider) Option[T] {
	return func(p *Pool[T]) error {
		inst, err := telemetry.NewInstruments(mp)
		if err != nil {
			return errs.New(p.name, errs.CodeInvalid, errs.WithMessage("create instruments"), errs.WithCause(err))
		}
		p.inst = inst
		return nil
	}
}

// New constructs a pool around the provided factory. Objects are not
// constructed up front; the first acquires build them one at a time.
func New[T any](factory Factory[T], opts ...Option[T]) (*Pool[T], error) {
	if factory == nil {
		return nil, errs.New("", errs.CodeInvalid, errs.WithMessage("factory required"))
	}
	p := &Pool[T]{
		factory: factory,
		state: &sharedState[T]{
			waiters: list.New(),
			drained: make(chan struct{}),
		},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	if p.name == "" {
		p.name = "pool-" + uuid.NewString()[:8]
	}
	p.dbg = newDebugState(p.name)
	return p, nil
}

// Name returns the pool's label.
func (p *Pool[T]) Name() string { return p.name }

// Stats returns a consistent snapshot of the pool counters.
func (p *Pool[T]) Stats() Stats {
	s := p.state
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Pool:            p.name,
		Capacity:        p.capacity,
		Idle:            len(s.idle),
		Outstanding:     s.outstanding,
		Waiters:         s.waiters.Len(),
		FactoryCalls:    s.factoryCalls,
		FactoryFailures: s.factoryFailures,
		Reuses:          s.reuses,
		Discards:        s.discards,
	}
}

// With acquires a lease, runs fn against the leased object, and finalizes
// the lease. When fn returns an error the object is tainted and discarded
// rather than returned, since a failed operation may have left it in an
// unusable state.
func (p *Pool[T]) With(ctx context.Context, fn func(*T) error) error {
	lease, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	if err := fn(lease.Ref()); err != nil {
		lease.Taint()
		if rerr := lease.Release(); rerr != nil {
			return errors.Join(err, rerr)
		}
		return err
	}
	return lease.Release()
}

// Close tears the pool down without waiting for outstanding leases. Idle
// objects are destroyed, queued waiters fail with a pool-closed error,
// and subsequent acquires fail immediately. Outstanding leases remain
// valid; their objects are destroyed rather than pooled when finalized.
// Close is idempotent.
func (p *Pool[T]) Close() {
	s := p.state
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	idle := s.idle
	s.idle = nil
	s.wakeAllLocked()
	s.maybeDrainLocked()
	s.mu.Unlock()

	for _, obj := range idle {
		p.destroyObject(obj)
	}
	if len(idle) > 0 {
		p.inst.AddIdle(context.Background(), p.name, -int64(len(idle)))
	}
}

// Shutdown closes the pool and waits for every outstanding lease to be
// finalized or for ctx to expire. On timeout the error reports how many
// leases are still unreturned; builds with the debug tag also retain the
// acquisition stacks, reachable via ActiveStacks.
func (p *Pool[T]) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	p.Close()
	select {
	case <-p.state.drained:
		return nil
	case <-ctx.Done():
		st := p.Stats()
		return errs.New(p.name, errs.CodeTimeout,
			errs.WithMessage(fmt.Sprintf("%d leases still outstanding", st.Outstanding)),
			errs.WithCause(ctx.Err()))
	}
}

// ActiveStacks returns the acquisition stacks of live leases in builds
// compiled with the debug tag, and nil otherwise.
func (p *Pool[T]) ActiveStacks() []string {
	return p.dbg.activeStacks()
}

// returnIdle parks a finalized lease's object back in the idle set and
// wakes the oldest waiter.
func (p *Pool[T]) returnIdle(obj T) {
	if p.reset != nil {
		p.reset(&obj)
	}
	s := p.state
	s.mu.Lock()
	if s.closed {
		s.outstanding--
		s.maybeDrainLocked()
		s.mu.Unlock()
		p.destroyObject(obj)
		p.inst.AddOutstanding(context.Background(), p.name, -1)
		return
	}
	s.idle = append(s.idle, obj)
	s.outstanding--
	s.wakeLocked()
	s.mu.Unlock()

	p.inst.AddOutstanding(context.Background(), p.name, -1)
	p.inst.AddIdle(context.Background(), p.name, 1)
}

// discard drops a tainted lease's object and wakes the oldest waiter,
// since the capacity headroom is reusable even though the object is not.
func (p *Pool[T]) discard(obj T) {
	s := p.state
	s.mu.Lock()
	s.outstanding--
	s.discards++
	s.wakeLocked()
	s.maybeDrainLocked()
	s.mu.Unlock()

	p.destroyObject(obj)
	p.inst.RecordDiscard(context.Background(), p.name)
	p.inst.AddOutstanding(context.Background(), p.name, -1)
}

func (p *Pool[T]) destroyObject(obj T) {
	if p.destroy != nil {
		p.destroy(obj)
	}
}

// wakeLocked signals the waiter that has been queued longest. Each signal
// channel is buffered and receives at most one send, so this never blocks.
func (s *sharedState[T]) wakeLocked() {
	front := s.waiters.Front()
	if front == nil {
		return
	}
	s.waiters.Remove(front)
	front.Value.(chan struct{}) <- struct{}{}
}

func (s *sharedState[T]) wakeAllLocked() {
	for s.waiters.Len() > 0 {
		s.wakeLocked()
	}
}

func (s *sharedState[T]) maybeDrainLocked() {
	if s.closed && s.outstanding == 0 {
		s.drainOnce.Do(func() { close(s.drained) })
	}
}
