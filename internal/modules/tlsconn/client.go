package tlsconn

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"

	"github.com/nimda/connector-probe/internal/modules"
	"github.com/nimda/connector-probe/pkg/utils"
	zlog "github.com/rs/zerolog/log"
)

// TLSProbe dials the target and completes a TLS handshake
type TLSProbe struct {
	*modules.BaseProbe
	conn *tls.Conn
}

// NewTLSProbe creates a new TLS probe
func NewTLSProbe() *TLSProbe {
	return &TLSProbe{
		BaseProbe: modules.NewBaseProbe(DefaultPort),
	}
}

// GetProtocolName returns the protocol name
func (p *TLSProbe) GetProtocolName() string {
	return ProtocolName
}

// Connect performs the TCP dial and TLS handshake
func (p *TLSProbe) Connect(ctx context.Context) error {
	addr := p.Address()
	insecure := p.Config().Bool(OptInsecure)

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: p.Timeout()},
		Config: &tls.Config{
			ServerName:         p.serverName(),
			InsecureSkipVerify: insecure, //nolint:gosec // opt-in via --insecure
			MinVersion:         tls.VersionTLS12,
		},
	}

	zlog.Trace().Str("addr", addr).Bool("insecure", insecure).Msg("Starting TLS handshake")
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return utils.FromDialError("tls handshake with", addr, err)
	}
	p.conn = conn.(*tls.Conn)

	detail := describeState(p.conn.ConnectionState())
	p.SetConnected(true, detail)
	zlog.Debug().Str("addr", addr).Str("detail", detail).Msg("TLS handshake completed")
	return nil
}

func (p *TLSProbe) serverName() string {
	if name, ok := p.Config().Extra[OptServerName].(string); ok && name != "" {
		return name
	}
	return p.GetTarget()
}

// describeState summarizes the negotiated version and the leaf certificate subject
func describeState(state tls.ConnectionState) string {
	detail := tls.VersionName(state.Version)
	if len(state.PeerCertificates) > 0 {
		leaf := state.PeerCertificates[0]
		detail = fmt.Sprintf("%s cn=%s expires=%s", detail, leaf.Subject.CommonName, leaf.NotAfter.UTC().Format("2006-01-02"))
	}
	return detail
}

// Close closes the TLS connection
func (p *TLSProbe) Close() error {
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			zlog.Trace().Err(err).Msg("Error closing TLS connection")
		}
		p.conn = nil
	}
	return p.BaseProbe.Close()
}
