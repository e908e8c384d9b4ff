// Package lazypool provides a lazily-populated pool of reusable objects
// shared by concurrent callers.
//
// Objects are produced on demand by a caller-supplied Factory, handed out
// wrapped in a Lease, and parked in an idle set when the lease is
// released. A pool with a capacity hands out at most that many objects at
// once; further acquires queue and are woken in FIFO order as leases are
// finalized. Reuse order is LIFO: the most recently returned object is
// handed out first.
//
// A lease must be finalized exactly once, by Release. Taint marks the
// lease so that finalizing discards the object instead of returning it to
// the idle set. With composes acquire, a caller-supplied operation, and
// finalize into a single call for ordinary use.
package lazypool
