package lazypool

// Stats is a point-in-time snapshot of a pool's counters.
type Stats struct {
	Pool     string `json:"pool"`
	Capacity int    `json:"capacity"` // 0 means unbounded
	Idle     int    `json:"idle"`
	// Outstanding counts objects checked out via a live lease, including
	// reservations held while their factory call is still running.
	Outstanding int `json:"outstanding"`
	Waiters     int `json:"waiters"`

	FactoryCalls    uint64 `json:"factory_calls"`
	FactoryFailures uint64 `json:"factory_failures"`
	Reuses          uint64 `json:"reuses"`
	Discards        uint64 `json:"discards"`
}
