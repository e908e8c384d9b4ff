package manager

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	lazypool "github.com/behos/lazy-pool"
	"github.com/behos/lazy-pool/errs"
)

func newTestPool(t *testing.T, name string, capacity int) *lazypool.Pool[int] {
	t.Helper()
	opts := []lazypool.Option[int]{lazypool.WithName[int](name)}
	if capacity > 0 {
		opts = append(opts, lazypool.WithCapacity[int](capacity))
	}
	pool, err := lazypool.New(lazypool.SyncFactory(func() int { return 0 }), opts...)
	require.NoError(t, err)
	return pool
}

func TestRegisterAndLookup(t *testing.T) {
	m := New()
	pool := newTestPool(t, "ints", 4)

	require.NoError(t, m.Register(pool))

	got, err := m.Lookup("ints")
	require.NoError(t, err)
	require.Equal(t, "ints", got.Name())

	_, err = m.Lookup("missing")
	require.ErrorIs(t, err, ErrNotRegistered)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	m := New()
	require.NoError(t, m.Register(newTestPool(t, "ints", 0)))

	err := m.Register(newTestPool(t, "ints", 0))
	require.Error(t, err)
	require.Contains(t, err.Error(), "already registered")
}

func TestRegisterRejectsNil(t *testing.T) {
	m := New()
	require.Error(t, m.Register(nil))
}

func TestShutdownDrainsAllPools(t *testing.T) {
	m := New()
	first := newTestPool(t, "first", 2)
	second := newTestPool(t, "second", 2)
	require.NoError(t, m.Register(first))
	require.NoError(t, m.Register(second))

	lease, err := first.Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, lease.Release())

	require.NoError(t, m.Shutdown(context.Background()))

	_, err = first.Acquire(context.Background())
	require.True(t, errs.Is(err, errs.CodeClosed))
	_, err = second.Acquire(context.Background())
	require.True(t, errs.Is(err, errs.CodeClosed))
}

func TestShutdownReportsUnreturnedLeases(t *testing.T) {
	m := New()
	pool := newTestPool(t, "held", 1)
	require.NoError(t, m.Register(pool))

	lease, err := pool.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err = m.Shutdown(ctx)
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.CodeTimeout))

	// The lease can still be finalized after the failed drain.
	require.NoError(t, lease.Release())
}

func TestRegisterAfterShutdownFails(t *testing.T) {
	m := New()
	require.NoError(t, m.Shutdown(context.Background()))

	err := m.Register(newTestPool(t, "late", 0))
	require.ErrorIs(t, err, ErrShutdown)
}

func TestDumpStats(t *testing.T) {
	m := New()
	pool := newTestPool(t, "ints", 3)
	require.NoError(t, m.Register(pool))

	lease, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	defer func() { require.NoError(t, lease.Release()) }()

	var buf bytes.Buffer
	require.NoError(t, m.DumpStats(&buf))

	out := buf.String()
	require.Contains(t, out, `"ints"`)
	require.Contains(t, out, `"capacity":3`)
	require.Contains(t, out, `"outstanding":1`)
}

func TestGlobalPanicsBeforeInit(t *testing.T) {
	// The init-once guard makes ordering between global tests significant;
	// only the uninitialized path can be asserted reliably here when the
	// package-level instance was already installed by another test.
	defer func() {
		if r := recover(); r == nil {
			t.Skip("global manager already initialized in this process")
		}
	}()
	_ = Global()
}

func TestInitGlobalInstallsOnce(t *testing.T) {
	InitGlobal(nil)
	first := Global()
	require.NotNil(t, first)

	InitGlobal(New())
	require.Same(t, first, Global(), "subsequent InitGlobal calls are no-ops")
}

func TestShutdownAggregatesErrors(t *testing.T) {
	m := New()
	a := newTestPool(t, "a", 1)
	b := newTestPool(t, "b", 1)
	require.NoError(t, m.Register(a))
	require.NoError(t, m.Register(b))

	leaseA, err := a.Acquire(context.Background())
	require.NoError(t, err)
	leaseB, err := b.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err = m.Shutdown(ctx)
	require.Error(t, err)

	var poolErr *errs.E
	require.True(t, errors.As(err, &poolErr))

	require.NoError(t, leaseA.Release())
	require.NoError(t, leaseB.Release())
}
