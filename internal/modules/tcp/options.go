package tcp

import (
	"github.com/nimda/connector-probe/internal/interfaces"
)

const (
	// ProtocolName identifies this probe in the registry
	ProtocolName = "tcp"

	// DefaultPort is used when neither the target nor the flags name a port
	DefaultPort = 80

	// OptReadBanner enables reading the server greeting after connecting
	OptReadBanner = "read-banner"
)

// Factory creates TCP probes
type Factory struct{}

// CreateProbe creates a new TCPProbe instance
func (f *Factory) CreateProbe() interfaces.Probe {
	return NewTCPProbe()
}

// GetProtocolName returns the protocol name
func (f *Factory) GetProtocolName() string {
	return ProtocolName
}

func init() {
	_ = interfaces.Register(interfaces.ProtocolInfo{
		Name:        ProtocolName,
		Description: "Plain TCP connect, optionally reading the server banner",
		DefaultPort: DefaultPort,
		Factory:     func() interfaces.Probe { return NewTCPProbe() },
	})
}
