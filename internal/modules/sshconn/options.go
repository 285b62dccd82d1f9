package sshconn

import (
	"github.com/nimda/connector-probe/internal/interfaces"
)

const (
	// ProtocolName identifies this probe in the registry
	ProtocolName = "ssh"

	// DefaultPort is used when neither the target nor the flags name a port
	DefaultPort = 22

	// OptUser sets the user name sent during the handshake
	OptUser = "user"
)

// Factory creates SSH probes
type Factory struct{}

// CreateProbe creates a new SSHProbe instance
func (f *Factory) CreateProbe() interfaces.Probe {
	return NewSSHProbe()
}

// GetProtocolName returns the protocol name
func (f *Factory) GetProtocolName() string {
	return ProtocolName
}

func init() {
	_ = interfaces.Register(interfaces.ProtocolInfo{
		Name:        ProtocolName,
		Description: "SSH key exchange, reporting the host key fingerprint",
		DefaultPort: DefaultPort,
		Factory:     func() interfaces.Probe { return NewSSHProbe() },
	})
}
