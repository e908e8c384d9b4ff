package manager

import (
	"sync"
	"sync/atomic"
)

var (
	globalInstance atomic.Pointer[Manager]
	initOnce       sync.Once
)

// InitGlobal initializes the process-wide manager instance. Subsequent
// calls are no-ops. Passing nil installs a freshly constructed manager.
func InitGlobal(m *Manager) {
	initOnce.Do(func() {
		if m == nil {
			m = New()
		}
		globalInstance.Store(m)
	})
}

// Global returns the initialized process-wide manager instance.
func Global() *Manager {
	instance := globalInstance.Load()
	if instance == nil {
		panic("manager: global instance not initialized")
	}
	return instance
}
