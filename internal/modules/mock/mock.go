package mock

import (
	"github.com/nimda/connector-probe/internal/interfaces"
	"github.com/nimda/connector-probe/internal/testutil"
)

// ProtocolName identifies the mock probe in the registry
const ProtocolName = "mock"

// MockProbe is an alias to testutil.MockProbe for consistency
type MockProbe = testutil.MockProbe

// NewMockProbe creates a new mock probe
func NewMockProbe() *MockProbe {
	return testutil.NewMockProbe()
}

// MockFactory is a mock factory for creating mock probes
type MockFactory = testutil.MockProbeFactory

// Register adds the mock probe to registry. It is not registered by default.
func Register(registry *interfaces.ProbeRegistry) error {
	return registry.Register(interfaces.ProtocolInfo{
		Name:        ProtocolName,
		Description: "In-memory probe for tests",
		DefaultPort: 1,
		Factory:     func() interfaces.Probe { return NewMockProbe() },
	})
}
