package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/behos/lazy-pool"

// Instruments bundles the metric instruments recorded by a pool. A nil
// *Instruments is valid and records nothing, so uninstrumented pools pay
// no telemetry cost.
type Instruments struct {
	acquires     metric.Int64Counter
	factoryCalls metric.Int64Counter
	discards     metric.Int64Counter
	idle         metric.Int64UpDownCounter
	outstanding  metric.Int64UpDownCounter
	acquireWait  metric.Float64Histogram
}

// NewInstruments creates the pool instruments on the provided meter
// provider. A nil provider yields nil instruments.
func NewInstruments(mp metric.MeterProvider) (*Instruments, error) {
	if mp == nil {
		return nil, nil
	}
	meter := mp.Meter(meterName)
	inst := new(Instruments)

	var err error
	if inst.acquires, err = meter.Int64Counter("pool.acquires",
		metric.WithDescription("Completed acquire calls, labelled by result.")); err != nil {
		return nil, fmt.Errorf("create acquires counter: %w", err)
	}
	if inst.factoryCalls, err = meter.Int64Counter("pool.factory.calls",
		metric.WithDescription("Factory invocations, labelled by result.")); err != nil {
		return nil, fmt.Errorf("create factory counter: %w", err)
	}
	if inst.discards, err = meter.Int64Counter("pool.discards",
		metric.WithDescription("Objects discarded after a tainted lease was finalized.")); err != nil {
		return nil, fmt.Errorf("create discards counter: %w", err)
	}
	if inst.idle, err = meter.Int64UpDownCounter("pool.idle",
		metric.WithDescription("Objects currently parked in the idle set.")); err != nil {
		return nil, fmt.Errorf("create idle counter: %w", err)
	}
	if inst.outstanding, err = meter.Int64UpDownCounter("pool.outstanding",
		metric.WithDescription("Objects currently checked out via a live lease.")); err != nil {
		return nil, fmt.Errorf("create outstanding counter: %w", err)
	}
	if inst.acquireWait, err = meter.Float64Histogram("pool.acquire.wait",
		metric.WithDescription("Time spent inside Acquire, including waiting and construction."),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("create acquire wait histogram: %w", err)
	}
	return inst, nil
}

// RecordAcquire records a completed acquire call and its wait time.
func (i *Instruments) RecordAcquire(ctx context.Context, pool, result string, wait time.Duration) {
	if i == nil {
		return
	}
	attrs := metric.WithAttributes(ResultAttributes(pool, result)...)
	i.acquires.Add(ctx, 1, attrs)
	i.acquireWait.Record(ctx, wait.Seconds(), attrs)
}

// RecordFactory records one factory invocation.
func (i *Instruments) RecordFactory(ctx context.Context, pool, result string) {
	if i == nil {
		return
	}
	i.factoryCalls.Add(ctx, 1, metric.WithAttributes(ResultAttributes(pool, result)...))
}

// RecordDiscard records one discarded object.
func (i *Instruments) RecordDiscard(ctx context.Context, pool string) {
	if i == nil {
		return
	}
	i.discards.Add(ctx, 1, metric.WithAttributes(PoolAttributes(pool)...))
}

// AddIdle adjusts the idle-object gauge.
func (i *Instruments) AddIdle(ctx context.Context, pool string, delta int64) {
	if i == nil {
		return
	}
	i.idle.Add(ctx, delta, metric.WithAttributes(PoolAttributes(pool)...))
}

// AddOutstanding adjusts the outstanding-object gauge.
func (i *Instruments) AddOutstanding(ctx context.Context, pool string, delta int64) {
	if i == nil {
		return
	}
	i.outstanding.Add(ctx, delta, metric.WithAttributes(PoolAttributes(pool)...))
}
