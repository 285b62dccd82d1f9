package testutil

import (
	"context"
	"sync"

	"github.com/nimda/connector-probe/internal/interfaces"
	"github.com/nimda/connector-probe/pkg/utils"
	"github.com/stretchr/testify/mock"
)

// MockProbe is a configurable probe for testing. Targets listed as down fail
// to connect with a ConnectionError; everything else succeeds.
type MockProbe struct {
	target    string
	config    *interfaces.ProbeConfig
	connected bool
	down      map[string]error
	detail    string
	initError error // Error to return from Initialize
}

// NewMockProbe creates a mock probe where every target is reachable
func NewMockProbe() *MockProbe {
	return &MockProbe{
		down:   make(map[string]error),
		detail: "mock ok",
	}
}

// NewMockProbeWithInitError creates a mock probe that fails on Initialize
func NewMockProbeWithInitError(err error) *MockProbe {
	return &MockProbe{
		down:      make(map[string]error),
		initError: err,
	}
}

// SetDown makes Connect fail for target with the given cause
func (m *MockProbe) SetDown(target string, cause error) {
	m.down[target] = cause
}

// Initialize initializes the mock probe
func (m *MockProbe) Initialize(target string, config *interfaces.ProbeConfig) error {
	if m.initError != nil {
		return m.initError
	}
	m.target = target
	m.config = config
	return nil
}

// Connect establishes a mock connection
func (m *MockProbe) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return utils.FromDialError("dial", m.target, err)
	}
	if cause, ok := m.down[m.target]; ok {
		return utils.NewConnectionErrorWithCause("mock connection failed to "+m.target, cause)
	}
	m.connected = true
	return nil
}

// Close cleans up the mock connection
func (m *MockProbe) Close() error {
	m.connected = false
	return nil
}

// GetProtocolName returns the protocol name
func (m *MockProbe) GetProtocolName() string {
	return "mock"
}

// GetTarget returns the target
func (m *MockProbe) GetTarget() string {
	return m.target
}

// Config returns the configuration passed to Initialize
func (m *MockProbe) Config() *interfaces.ProbeConfig {
	return m.config
}

// IsConnected returns connection status
func (m *MockProbe) IsConnected() bool {
	return m.connected
}

// Detail returns the canned detail once connected
func (m *MockProbe) Detail() string {
	if !m.connected {
		return ""
	}
	return m.detail
}

// MockProbeFactory is a testify mock factory. Without expectations it hands
// out fresh MockProbes sharing the same down list.
type MockProbeFactory struct {
	mock.Mock

	mu   sync.Mutex
	down map[string]error
}

// SetDown makes every probe created afterwards fail for target
func (f *MockProbeFactory) SetDown(target string, cause error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down == nil {
		f.down = make(map[string]error)
	}
	f.down[target] = cause
}

// CreateProbe creates a new mock probe
func (f *MockProbeFactory) CreateProbe() interfaces.Probe {
	if len(f.ExpectedCalls) > 0 {
		args := f.Called()
		return args.Get(0).(interfaces.Probe)
	}
	probe := NewMockProbe()
	f.mu.Lock()
	for target, cause := range f.down {
		probe.SetDown(target, cause)
	}
	f.mu.Unlock()
	return probe
}

// GetProtocolName returns the protocol name
func (f *MockProbeFactory) GetProtocolName() string {
	return "mock"
}

// Ensure interfaces are implemented
var _ interfaces.Probe = (*MockProbe)(nil)
var _ interfaces.ProbeFactory = (*MockProbeFactory)(nil)
