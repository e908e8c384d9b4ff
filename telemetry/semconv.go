// Package telemetry provides semantic conventions and metric instruments
// for lazy-pool observability.
package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Semantic convention attribute keys for lazy-pool telemetry.
// Following OpenTelemetry naming conventions: namespace.attribute_name

const (
	// AttrPoolName labels metrics with the logical pool name.
	AttrPoolName = attribute.Key("pool.name")
	// AttrResult records the outcome of an acquire or factory call.
	AttrResult = attribute.Key("result")
)

// Result values reported on acquire and factory metrics.
const (
	// ResultReused marks an acquire satisfied from the idle set.
	ResultReused = "reused"
	// ResultCreated marks an acquire satisfied by a fresh factory call.
	ResultCreated = "created"
	// ResultOK marks a factory call that produced an object.
	ResultOK = "ok"
	// ResultError marks a factory call that failed.
	ResultError = "error"
	// ResultClosed marks an acquire rejected because the pool is closed.
	ResultClosed = "closed"
)

// PoolAttributes returns the base attribute set for pool metrics.
func PoolAttributes(pool string) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrPoolName.String(pool),
	}
}

// ResultAttributes returns attributes for acquire and factory metrics.
func ResultAttributes(pool, result string) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrPoolName.String(pool),
		AttrResult.String(result),
	}
}
