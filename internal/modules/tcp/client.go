package tcp

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"unicode/utf8"

	"github.com/nimda/connector-probe/internal/modules"
	"github.com/nimda/connector-probe/pkg/utils"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/charmap"
)

// maxBannerBytes bounds how much of a server greeting is read
const maxBannerBytes = 512

// TCPProbe dials a TCP port and optionally reads the server's greeting line
type TCPProbe struct {
	*modules.BaseProbe
	conn net.Conn
}

// NewTCPProbe creates a new TCP probe
func NewTCPProbe() *TCPProbe {
	return &TCPProbe{
		BaseProbe: modules.NewBaseProbe(DefaultPort),
	}
}

// GetProtocolName returns the protocol name
func (p *TCPProbe) GetProtocolName() string {
	return ProtocolName
}

// Connect dials the target and, when "read-banner" is set, reads one line
func (p *TCPProbe) Connect(ctx context.Context) error {
	addr := p.Address()
	zlog.Trace().Str("addr", addr).Msg("Dialing TCP")

	dialer := &net.Dialer{Timeout: p.Timeout()}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return utils.FromDialError("dial", addr, err)
	}
	p.conn = conn

	detail := conn.RemoteAddr().String()
	if p.Config().Bool(OptReadBanner) {
		banner, err := p.readBanner(ctx)
		if err != nil {
			p.closeConn()
			return utils.FromDialError("read banner from", addr, err)
		}
		if banner != "" {
			detail = banner
		}
	}

	p.SetConnected(true, detail)
	zlog.Debug().Str("addr", addr).Str("detail", detail).Msg("TCP connection established")
	return nil
}

// readBanner reads the first line sent by the server. A server that sends
// nothing before the deadline yields an empty banner, not an error.
func (p *TCPProbe) readBanner(ctx context.Context) (string, error) {
	if err := p.conn.SetReadDeadline(p.Deadline(ctx)); err != nil {
		return "", err
	}
	reader := bufio.NewReader(io.LimitReader(p.conn, maxBannerBytes))
	line, err := reader.ReadBytes('\n')
	if err != nil {
		switch {
		case utils.IsTimeout(err) && len(line) == 0:
			zlog.Trace().Str("addr", p.Address()).Msg("No banner before deadline")
			return "", nil
		case errors.Is(err, io.EOF) && len(line) > 0:
			// server closed after a partial line, or the limit was hit
		case !utils.IsTimeout(err):
			return "", err
		}
	}
	return DecodeBanner(line), nil
}

// DecodeBanner converts raw greeting bytes to a trimmed string. Bytes that are
// not valid UTF-8 are decoded as Windows-1252, which many legacy daemons emit.
func DecodeBanner(raw []byte) string {
	if !utf8.Valid(raw) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
		if err == nil {
			raw = decoded
		}
	}
	return strings.TrimSpace(strings.ToValidUTF8(string(raw), ""))
}

func (p *TCPProbe) closeConn() {
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			zlog.Trace().Err(err).Msg("Error closing TCP connection")
		}
		p.conn = nil
	}
}

// Close closes the connection
func (p *TCPProbe) Close() error {
	p.closeConn()
	return p.BaseProbe.Close()
}
