package modules

import (
	"context"
	"testing"
	"time"

	"github.com/nimda/connector-probe/internal/interfaces"
	"github.com/nimda/connector-probe/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseProbeInitialize(t *testing.T) {
	base := NewBaseProbe(443)
	require.NoError(t, base.Initialize("example.com", nil))
	assert.Equal(t, "example.com:443", base.Address())
	assert.Equal(t, 5*time.Second, base.Timeout())

	cfg := &interfaces.ProbeConfig{Port: 8443, Extra: map[string]interface{}{"insecure": true}}
	require.NoError(t, base.Initialize("2001:db8::1", cfg))
	assert.Equal(t, "[2001:db8::1]:8443", base.Address())
	assert.Equal(t, 5*time.Second, base.Timeout()) // zero timeout keeps the default
	assert.True(t, base.Config().Bool("insecure"))

	assert.Error(t, base.Initialize("", nil))
	assert.Error(t, NewBaseProbe(0).Initialize("example.com", nil))
}

func TestBaseProbeDeadline(t *testing.T) {
	base := NewBaseProbe(22)
	require.NoError(t, base.Initialize("example.com", &interfaces.ProbeConfig{Timeout: time.Hour}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.WithinDuration(t, time.Now().Add(time.Second), base.Deadline(ctx), 500*time.Millisecond)
	assert.WithinDuration(t, time.Now().Add(time.Hour), base.Deadline(context.Background()), time.Second)
}

func TestBaseProbeConnectState(t *testing.T) {
	base := NewBaseProbe(22)
	err := base.Connect(context.Background())
	assert.True(t, utils.IsConnectionError(err))

	base.SetConnected(true, "banner")
	assert.True(t, base.IsConnected())
	assert.Equal(t, "banner", base.Detail())

	require.NoError(t, base.Close())
	assert.False(t, base.IsConnected())
	assert.Equal(t, "base", base.GetProtocolName())
}
