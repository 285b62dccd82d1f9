package web

import (
	"github.com/nimda/connector-probe/internal/interfaces"
)

const (
	// ProtocolName identifies this probe in the registry
	ProtocolName = "http"

	// DefaultPort is used when neither the target nor the flags name a port
	DefaultPort = 80

	// OptHTTPS switches the scheme to https
	OptHTTPS = "https"

	// OptInsecure skips certificate verification for https
	OptInsecure = "insecure"

	// OptPath overrides the request path
	OptPath = "path"
)

// Factory creates HTTP probes
type Factory struct{}

// CreateProbe creates a new HTTPProbe instance
func (f *Factory) CreateProbe() interfaces.Probe {
	return NewHTTPProbe()
}

// GetProtocolName returns the protocol name
func (f *Factory) GetProtocolName() string {
	return ProtocolName
}

func init() {
	_ = interfaces.Register(interfaces.ProtocolInfo{
		Name:        ProtocolName,
		Description: "HTTP(S) HEAD request; any response status counts as reachable",
		DefaultPort: DefaultPort,
		Factory:     func() interfaces.Probe { return NewHTTPProbe() },
	})
}
