package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestInstrumentsRecordMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	inst, err := NewInstruments(mp)
	require.NoError(t, err)
	require.NotNil(t, inst)

	ctx := context.Background()
	inst.RecordAcquire(ctx, "test", ResultCreated, 5*time.Millisecond)
	inst.RecordAcquire(ctx, "test", ResultReused, time.Millisecond)
	inst.RecordFactory(ctx, "test", ResultOK)
	inst.RecordDiscard(ctx, "test")
	inst.AddOutstanding(ctx, "test", 2)
	inst.AddOutstanding(ctx, "test", -1)
	inst.AddIdle(ctx, "test", 1)

	metrics := collect(t, reader)

	acquires, ok := metrics["pool.acquires"].Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected pool.acquires sum data")
	var totalAcquires int64
	for _, dp := range acquires.DataPoints {
		totalAcquires += dp.Value
	}
	require.Equal(t, int64(2), totalAcquires)

	outstanding, ok := metrics["pool.outstanding"].Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected pool.outstanding sum data")
	require.Len(t, outstanding.DataPoints, 1)
	require.Equal(t, int64(1), outstanding.DataPoints[0].Value)

	wait, ok := metrics["pool.acquire.wait"].Data.(metricdata.Histogram[float64])
	require.True(t, ok, "expected pool.acquire.wait histogram data")
	var waitCount uint64
	for _, dp := range wait.DataPoints {
		waitCount += dp.Count
	}
	require.Equal(t, uint64(2), waitCount)
}

func TestNilProviderYieldsNilInstruments(t *testing.T) {
	inst, err := NewInstruments(nil)
	require.NoError(t, err)
	require.Nil(t, inst)

	// Nil instruments must be safe to record against.
	inst.RecordAcquire(context.Background(), "test", ResultCreated, time.Millisecond)
	inst.RecordFactory(context.Background(), "test", ResultError)
	inst.RecordDiscard(context.Background(), "test")
	inst.AddIdle(context.Background(), "test", 1)
	inst.AddOutstanding(context.Background(), "test", 1)
}
