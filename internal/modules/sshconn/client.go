package sshconn

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/nimda/connector-probe/internal/modules"
	"github.com/nimda/connector-probe/pkg/utils"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/crypto/ssh"
)

// SSHProbe completes the SSH transport handshake and records the server's
// host key. No credentials are offered, so a server that then rejects
// authentication still counts as reachable.
type SSHProbe struct {
	*modules.BaseProbe
	client *ssh.Client

	mu      sync.Mutex
	hostKey ssh.PublicKey
}

// NewSSHProbe creates a new SSH probe
func NewSSHProbe() *SSHProbe {
	return &SSHProbe{
		BaseProbe: modules.NewBaseProbe(DefaultPort),
	}
}

// GetProtocolName returns the protocol name
func (p *SSHProbe) GetProtocolName() string {
	return ProtocolName
}

// Connect dials the target and runs the key exchange
func (p *SSHProbe) Connect(ctx context.Context) error {
	addr := p.Address()

	dialer := &net.Dialer{Timeout: p.Timeout()}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return utils.FromDialError("dial", addr, err)
	}
	if err := conn.SetDeadline(p.Deadline(ctx)); err != nil {
		_ = conn.Close()
		return utils.FromDialError("dial", addr, err)
	}

	config := &ssh.ClientConfig{
		User:            p.user(),
		HostKeyCallback: p.recordHostKey,
		ClientVersion:   "SSH-2.0-connector-probe",
		Timeout:         p.Timeout(),
	}

	zlog.Trace().Str("addr", addr).Msg("Starting SSH handshake")
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	key := p.HostKey()
	if err != nil {
		_ = conn.Close()
		if key == nil {
			return utils.FromDialError("ssh handshake with", addr, err)
		}
		zlog.Trace().Err(err).Str("addr", addr).Msg("Key exchange completed, authentication rejected")
	} else {
		p.client = ssh.NewClient(sshConn, chans, reqs)
	}

	detail := fmt.Sprintf("%s %s", key.Type(), ssh.FingerprintSHA256(key))
	p.SetConnected(true, detail)
	zlog.Debug().Str("addr", addr).Str("host_key", detail).Msg("SSH handshake completed")
	return nil
}

func (p *SSHProbe) recordHostKey(hostname string, remote net.Addr, key ssh.PublicKey) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hostKey = key
	return nil
}

// HostKey returns the key presented by the server, or nil before a handshake
func (p *SSHProbe) HostKey() ssh.PublicKey {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hostKey
}

func (p *SSHProbe) user() string {
	if user, ok := p.Config().Extra[OptUser].(string); ok && user != "" {
		return user
	}
	return "probe"
}

// Close closes the SSH client if authentication was accepted
func (p *SSHProbe) Close() error {
	if p.client != nil {
		if err := p.client.Close(); err != nil {
			zlog.Trace().Err(err).Msg("Error closing SSH connection")
		}
		p.client = nil
	}
	return p.BaseProbe.Close()
}
