package modules

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/nimda/connector-probe/internal/interfaces"
	"github.com/nimda/connector-probe/pkg/utils"
)

// BaseProbe provides common functionality for probes
type BaseProbe struct {
	target    string
	config    *interfaces.ProbeConfig
	connected bool
	detail    string
}

// NewBaseProbe creates a new base probe listening on defaultPort unless configured otherwise
func NewBaseProbe(defaultPort int) *BaseProbe {
	cfg := interfaces.NewProbeConfig()
	cfg.Port = defaultPort
	return &BaseProbe{config: cfg}
}

// Initialize sets up the base probe. Zero values in config keep the defaults.
func (b *BaseProbe) Initialize(target string, config *interfaces.ProbeConfig) error {
	if err := interfaces.ValidateTarget(target); err != nil {
		return err
	}
	b.target = target

	if config != nil {
		merged := b.config.WithPort(b.config.Port)
		if config.Port > 0 {
			merged.Port = config.Port
		}
		if config.Timeout > 0 {
			merged.Timeout = config.Timeout
		}
		for k, v := range config.Extra {
			merged.Extra[k] = v
		}
		b.config = merged
	}

	return b.config.Validate()
}

// GetTarget returns the target host
func (b *BaseProbe) GetTarget() string {
	return b.target
}

// Config returns the effective configuration
func (b *BaseProbe) Config() *interfaces.ProbeConfig {
	return b.config
}

// Address returns host:port for dialing
func (b *BaseProbe) Address() string {
	return net.JoinHostPort(b.target, strconv.Itoa(b.config.Port))
}

// Timeout returns the configured per-attempt timeout
func (b *BaseProbe) Timeout() time.Duration {
	return b.config.Timeout
}

// Deadline returns the earlier of the context deadline and now+timeout
func (b *BaseProbe) Deadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(b.config.Timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		return ctxDeadline
	}
	return deadline
}

// SetConnected marks the probe as connected and records what it observed
func (b *BaseProbe) SetConnected(connected bool, detail string) {
	b.connected = connected
	b.detail = detail
}

// IsConnected returns whether the probe is connected
func (b *BaseProbe) IsConnected() bool {
	return b.connected
}

// Detail returns what the last successful Connect observed
func (b *BaseProbe) Detail() string {
	return b.detail
}

// Connect is not implemented in BaseProbe - must be implemented by concrete probes
func (b *BaseProbe) Connect(ctx context.Context) error {
	return utils.NewConnectionError("connect not implemented for base probe")
}

// GetProtocolName is overridden by concrete probes
func (b *BaseProbe) GetProtocolName() string {
	return "base"
}

// Close marks the probe as disconnected
func (b *BaseProbe) Close() error {
	b.connected = false
	return nil
}

// Ensure BaseProbe implements the Probe interface
var _ interfaces.Probe = (*BaseProbe)(nil)
