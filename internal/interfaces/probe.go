package interfaces

import "context"

// Probe performs a single connection attempt against one target.
// Connect failures are reported as *utils.ConnectionError.
type Probe interface {
	// Initialize sets up the probe with target information
	Initialize(target string, config *ProbeConfig) error

	// Connect establishes a connection to the target
	Connect(ctx context.Context) error

	// Close cleans up any resources
	Close() error

	// GetProtocolName returns the name of the probe
	GetProtocolName() string

	// GetTarget returns the address being probed
	GetTarget() string

	// IsConnected returns whether the last Connect succeeded and Close has not been called
	IsConnected() bool

	// Detail returns what the probe observed on the connection, such as a
	// banner or a TLS version. Empty until Connect succeeds.
	Detail() string
}

// ProbeFactory creates probes for the checker without it knowing the
// concrete implementation
type ProbeFactory interface {
	CreateProbe() Probe
	GetProtocolName() string
}

// FactoryFunc adapts a constructor to the ProbeFactory interface
type FactoryFunc struct {
	Name string
	New  func() Probe
}

func (f FactoryFunc) CreateProbe() Probe {
	return f.New()
}

func (f FactoryFunc) GetProtocolName() string {
	return f.Name
}
