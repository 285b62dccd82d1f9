package tlsconn

import (
	"github.com/nimda/connector-probe/internal/interfaces"
)

const (
	// ProtocolName identifies this probe in the registry
	ProtocolName = "tls"

	// DefaultPort is used when neither the target nor the flags name a port
	DefaultPort = 443

	// OptInsecure skips certificate verification
	OptInsecure = "insecure"

	// OptServerName overrides the SNI name, which defaults to the target host
	OptServerName = "server-name"
)

// Factory creates TLS probes
type Factory struct{}

// CreateProbe creates a new TLSProbe instance
func (f *Factory) CreateProbe() interfaces.Probe {
	return NewTLSProbe()
}

// GetProtocolName returns the protocol name
func (f *Factory) GetProtocolName() string {
	return ProtocolName
}

func init() {
	_ = interfaces.Register(interfaces.ProtocolInfo{
		Name:        ProtocolName,
		Description: "TCP connect followed by a TLS handshake",
		DefaultPort: DefaultPort,
		Factory:     func() interfaces.Probe { return NewTLSProbe() },
	})
}
