//go:build debug

package lazypool

import (
	"log"
	"runtime"
	"runtime/debug"
	"sync"
)

// debugState tracks the acquisition stack of every live lease so leaked
// leases can be attributed during shutdown diagnostics.
type debugState struct {
	name   string
	mu     sync.Mutex
	stacks map[uint64]string
}

func newDebugState(name string) *debugState {
	return &debugState{
		name:   name,
		stacks: make(map[uint64]string),
	}
}

func (d *debugState) recordAcquire(id uint64) {
	if d == nil {
		return
	}
	stack := string(debug.Stack())
	d.mu.Lock()
	d.stacks[id] = stack
	d.mu.Unlock()
}

func (d *debugState) recordRelease(id uint64) {
	if d == nil {
		return
	}
	d.mu.Lock()
	delete(d.stacks, id)
	d.mu.Unlock()
}

func (d *debugState) activeStacks() []string {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.stacks) == 0 {
		return nil
	}
	out := make([]string, 0, len(d.stacks))
	for _, stack := range d.stacks {
		out = append(out, stack)
	}
	return out
}

// setAbandonFinalizer logs leases that were garbage collected without
// being finalized. The slot is leaked either way; the log makes the leak
// attributable.
func setAbandonFinalizer[T any](l *Lease[T]) {
	runtime.SetFinalizer(l, func(l *Lease[T]) {
		if !l.done.Load() {
			log.Printf("lazypool %s: lease %d abandoned without Release; capacity slot leaked", l.pool.name, l.id)
		}
	})
}
