// Package manager coordinates named pools, providing registration,
// YAML-backed configuration, and graceful shutdown semantics.
package manager

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	lazypool "github.com/behos/lazy-pool"
)

var (
	// ErrNotRegistered indicates the requested pool has not been registered.
	ErrNotRegistered = errors.New("manager: pool not registered")
	// ErrShutdown indicates the manager is shutting down and cannot service requests.
	ErrShutdown = errors.New("manager: shutdown in progress")
)

// Managed is the view of a pool the manager needs: every *lazypool.Pool
// satisfies it regardless of its object type.
type Managed interface {
	Name() string
	Stats() lazypool.Stats
	Close()
	Shutdown(ctx context.Context) error
	ActiveStacks() []string
}

// Manager coordinates named pools, providing lookup, lifecycle
// management, and graceful shutdown for all of them at once.
type Manager struct {
	mu           sync.RWMutex
	pools        map[string]Managed
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

// New constructs an initialized manager ready for pool registration.
func New() *Manager {
	m := new(Manager)
	m.pools = make(map[string]Managed)
	m.shutdownCh = make(chan struct{})
	return m
}

// Register adds a pool under its name, rejecting duplicates and pools
// registered after shutdown began.
func (m *Manager) Register(p Managed) error {
	if p == nil {
		return fmt.Errorf("manager: nil pool")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.shutdownCh:
		return ErrShutdown
	default:
	}

	name := p.Name()
	if _, exists := m.pools[name]; exists {
		return fmt.Errorf("manager: pool %s already registered", name)
	}
	m.pools[name] = p
	return nil
}

// Lookup returns the registered pool with the given name.
func (m *Manager) Lookup(name string) (Managed, error) {
	m.mu.RLock()
	p, ok := m.pools[name]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}
	return p, nil
}

// Shutdown drains every registered pool concurrently, waiting for
// outstanding leases to be finalized or for the provided context
// (defaulting to 5 seconds) to expire. Pools that time out are logged
// with acquisition stacks when available.
func (m *Manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var cancel context.CancelFunc
	if _, ok := ctx.Deadline(); !ok {
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
	}
	if cancel != nil {
		defer cancel()
	}

	m.shutdownOnce.Do(func() {
		close(m.shutdownCh)
	})

	m.mu.RLock()
	pools := make([]Managed, 0, len(m.pools))
	for _, p := range m.pools {
		pools = append(pools, p)
	}
	m.mu.RUnlock()

	var (
		wg     conc.WaitGroup
		failMu sync.Mutex
		failed []error
	)
	for _, p := range pools {
		wg.Go(func() {
			if err := p.Shutdown(ctx); err != nil {
				failMu.Lock()
				failed = append(failed, err)
				failMu.Unlock()
				m.logOutstanding(p)
			}
		})
	}
	wg.Wait()

	if len(failed) > 0 {
		return errors.Join(failed...)
	}
	return nil
}

func (m *Manager) logOutstanding(p Managed) {
	stats := p.Stats()
	if stats.Outstanding <= 0 {
		return
	}
	log.Printf("manager: pool %s shut down with %d leases in flight", p.Name(), stats.Outstanding)
	for _, stack := range p.ActiveStacks() {
		log.Printf("manager: leak candidate in pool %s\n%s", p.Name(), stack)
	}
}
