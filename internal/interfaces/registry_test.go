package interfaces

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProbe struct{ target string }

func (s *stubProbe) Initialize(target string, config *ProbeConfig) error {
	s.target = target
	return nil
}
func (s *stubProbe) Connect(ctx context.Context) error { return nil }
func (s *stubProbe) Close() error                      { return nil }
func (s *stubProbe) GetProtocolName() string           { return "stub" }
func (s *stubProbe) GetTarget() string                 { return s.target }
func (s *stubProbe) IsConnected() bool                 { return false }
func (s *stubProbe) Detail() string                    { return "" }

func TestProbeRegistry(t *testing.T) {
	registry := NewProbeRegistry()
	newStub := func() Probe { return &stubProbe{} }

	require.NoError(t, registry.Register(ProtocolInfo{Name: "stub", DefaultPort: 7, Factory: newStub}))
	require.NoError(t, registry.Register(ProtocolInfo{Name: "alpha", DefaultPort: 9, Factory: newStub}))

	assert.EqualError(t, registry.Register(ProtocolInfo{Name: "", Factory: newStub}), "probe name cannot be empty")
	assert.EqualError(t, registry.Register(ProtocolInfo{Name: "nil"}), "probe factory cannot be nil")
	assert.EqualError(t, registry.Register(ProtocolInfo{Name: "stub", Factory: newStub}), `probe "stub" already registered`)

	assert.Equal(t, []string{"alpha", "stub"}, registry.List())
	all := registry.All()
	require.Len(t, all, 2)
	assert.Equal(t, "alpha", all[0].Name)

	info, ok := registry.Get("stub")
	require.True(t, ok)
	assert.Equal(t, 7, info.DefaultPort)

	factory, err := registry.Factory("stub")
	require.NoError(t, err)
	assert.Equal(t, "stub", factory.GetProtocolName())
	assert.Equal(t, "stub", factory.CreateProbe().GetProtocolName())

	_, err = registry.Factory("missing")
	assert.EqualError(t, err, `unknown probe "missing"`)
}

func TestProbeConfig(t *testing.T) {
	cfg := NewProbeConfig()
	assert.Equal(t, 5*time.Second, cfg.Timeout)

	var validationErr *ValidationError
	assert.ErrorAs(t, cfg.Validate(), &validationErr)
	assert.Equal(t, "port", validationErr.Field)

	cfg.Port = 22
	cfg.Extra["read-banner"] = true
	cfg.Extra["count"] = 3
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.Bool("read-banner"))
	assert.False(t, cfg.Bool("count"))
	assert.False(t, cfg.Bool("missing"))

	clone := cfg.WithPort(2222)
	clone.Extra["read-banner"] = false
	assert.Equal(t, 2222, clone.Port)
	assert.Equal(t, 22, cfg.Port)
	assert.True(t, cfg.Bool("read-banner"))

	cfg.Timeout = 0
	assert.EqualError(t, cfg.Validate(), "validation error for timeout: timeout must be positive")

	var nilCfg *ProbeConfig
	assert.False(t, nilCfg.Bool("anything"))
}

func TestValidation(t *testing.T) {
	assert.NoError(t, ValidatePort(1))
	assert.NoError(t, ValidatePort(65535))
	assert.Error(t, ValidatePort(0))
	assert.Error(t, ValidatePort(65536))

	assert.NoError(t, ValidateWorkers(1))
	assert.Error(t, ValidateWorkers(0))
	assert.Error(t, ValidateWorkers(513))

	assert.NoError(t, ValidateTimeout(time.Millisecond))
	assert.Error(t, ValidateTimeout(0))

	assert.NoError(t, ValidateTarget("db.internal"))
	assert.Error(t, ValidateTarget(""))
	assert.Error(t, ValidateTarget("bad host"))

	file, err := os.CreateTemp(t.TempDir(), "targets_*.txt")
	require.NoError(t, err)
	file.Close()
	assert.NoError(t, ValidateFile(file.Name()))
	assert.Error(t, ValidateFile(t.TempDir()))
	assert.Error(t, ValidateFile(file.Name()+".missing"))
}
