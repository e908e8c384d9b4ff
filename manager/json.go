package manager

import (
	"bytes"
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	lazypool "github.com/behos/lazy-pool"
)

// DumpStats writes a JSON snapshot of every registered pool's statistics,
// keyed by pool name.
func (m *Manager) DumpStats(w io.Writer) error {
	m.mu.RLock()
	snapshot := make(map[string]lazypool.Stats, len(m.pools))
	for name, p := range m.pools {
		snapshot[name] = p.Stats()
	}
	m.mu.RUnlock()
	return writeJSON(w, snapshot)
}

// writeJSON encodes and writes JSON directly to the writer without HTML
// escaping.
func writeJSON(w io.Writer, v any) error {
	buf := &bytes.Buffer{}
	encoder := json.NewEncoder(buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	data := buf.Bytes()
	if len(data) > 0 && data[len(data)-1] == '\n' {
		data = data[:len(data)-1]
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write encoded json: %w", err)
	}
	return nil
}
