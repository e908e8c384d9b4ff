package manager

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	lazypool "github.com/behos/lazy-pool"
)

// PoolSpec declares a single named pool. A zero capacity means unbounded.
type PoolSpec struct {
	Name     string `yaml:"name"`
	Capacity int    `yaml:"capacity"`
}

// Config declares the pools an application runs with.
type Config struct {
	Pools []PoolSpec `yaml:"pools"`
}

// LoadConfig reads and validates a pool configuration from YAML.
func LoadConfig(r io.Reader) (Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	seen := make(map[string]struct{}, len(c.Pools))
	for _, spec := range c.Pools {
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			return fmt.Errorf("pool name must be non-empty")
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate pool name %q", name)
		}
		seen[name] = struct{}{}
		if spec.Capacity < 0 {
			return fmt.Errorf("pool %s: capacity must not be negative", name)
		}
	}
	return nil
}

// Capacity returns the configured capacity for the named pool; zero means
// unbounded. The second return reports whether the pool is declared.
func (c Config) Capacity(name string) (int, bool) {
	for _, spec := range c.Pools {
		if strings.TrimSpace(spec.Name) == name {
			return spec.Capacity, true
		}
	}
	return 0, false
}

// Build constructs the pool declared under name in cfg, applying the
// configured capacity before any extra options.
func Build[T any](cfg Config, name string, factory lazypool.Factory[T], opts ...lazypool.Option[T]) (*lazypool.Pool[T], error) {
	capacity, ok := cfg.Capacity(name)
	if !ok {
		return nil, fmt.Errorf("manager: pool %s not declared in config", name)
	}
	all := make([]lazypool.Option[T], 0, len(opts)+2)
	all = append(all, lazypool.WithName[T](name))
	if capacity > 0 {
		all = append(all, lazypool.WithCapacity[T](capacity))
	}
	all = append(all, opts...)
	return lazypool.New(factory, all...)
}
