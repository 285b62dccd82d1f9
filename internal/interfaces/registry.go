package interfaces

import (
	"fmt"
	"sort"
	"sync"
)

// ProtocolInfo describes a registered probe.
type ProtocolInfo struct {
	// Name is the probe identifier (e.g., "tcp").
	Name string

	// Description is a human-readable description of the probe.
	Description string

	// DefaultPort is used when a target does not name a port.
	DefaultPort int

	// Factory creates a new Probe instance.
	Factory func() Probe
}

// ProbeRegistry manages registered probes.
type ProbeRegistry struct {
	mu     sync.RWMutex
	probes map[string]ProtocolInfo
}

// NewProbeRegistry creates a new probe registry.
func NewProbeRegistry() *ProbeRegistry {
	return &ProbeRegistry{
		probes: make(map[string]ProtocolInfo),
	}
}

// Register adds a probe to the registry.
func (r *ProbeRegistry) Register(info ProtocolInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if info.Name == "" {
		return fmt.Errorf("probe name cannot be empty")
	}
	if info.Factory == nil {
		return fmt.Errorf("probe factory cannot be nil")
	}
	if _, exists := r.probes[info.Name]; exists {
		return fmt.Errorf("probe %q already registered", info.Name)
	}

	r.probes[info.Name] = info
	return nil
}

// Get returns the probe info for the given name.
func (r *ProbeRegistry) Get(name string) (ProtocolInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, ok := r.probes[name]
	return info, ok
}

// Factory returns a ProbeFactory for the named probe.
func (r *ProbeRegistry) Factory(name string) (ProbeFactory, error) {
	info, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown probe %q", name)
	}
	return FactoryFunc{Name: info.Name, New: info.Factory}, nil
}

// List returns all registered probe names, sorted.
func (r *ProbeRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.probes))
	for name := range r.probes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns all registered probes sorted by name.
func (r *ProbeRegistry) All() []ProtocolInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	probes := make([]ProtocolInfo, 0, len(r.probes))
	for _, info := range r.probes {
		probes = append(probes, info)
	}
	sort.Slice(probes, func(i, j int) bool { return probes[i].Name < probes[j].Name })
	return probes
}

// DefaultRegistry is the global probe registry.
var DefaultRegistry = NewProbeRegistry()

// Register is a convenience function to register a probe with the default registry.
func Register(info ProtocolInfo) error {
	return DefaultRegistry.Register(info)
}
