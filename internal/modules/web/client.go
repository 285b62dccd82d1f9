package web

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/nimda/connector-probe/internal/modules"
	"github.com/nimda/connector-probe/pkg/utils"
	zlog "github.com/rs/zerolog/log"
)

// HTTPProbe issues a HEAD request. Any HTTP response counts as a connection;
// only transport failures are reported as errors.
type HTTPProbe struct {
	*modules.BaseProbe
	httpClient *http.Client
}

// NewHTTPProbe creates a new HTTP probe
func NewHTTPProbe() *HTTPProbe {
	return &HTTPProbe{
		BaseProbe: modules.NewBaseProbe(DefaultPort),
	}
}

// GetProtocolName returns the protocol name
func (p *HTTPProbe) GetProtocolName() string {
	return ProtocolName
}

// URL returns the URL the probe requests
func (p *HTTPProbe) URL() string {
	scheme := "http"
	if p.Config().Bool(OptHTTPS) {
		scheme = "https"
	}
	path := "/"
	if custom, ok := p.Config().Extra[OptPath].(string); ok && custom != "" {
		path = custom
	}
	return fmt.Sprintf("%s://%s%s", scheme, net.JoinHostPort(p.GetTarget(), strconv.Itoa(p.Config().Port)), path)
}

// Connect sends the HEAD request
func (p *HTTPProbe) Connect(ctx context.Context) error {
	url := p.URL()
	if p.httpClient == nil {
		p.httpClient = &http.Client{
			Timeout: p.Timeout(),
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: p.Config().Bool(OptInsecure), //nolint:gosec // opt-in via --insecure
				},
				DisableKeepAlives: true,
			},
			// Redirects are reported, not followed
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return utils.NewConnectionErrorWithCause(fmt.Sprintf("invalid url %s", url), err)
	}
	req.Header.Set("User-Agent", "connector-probe")

	zlog.Trace().Str("url", url).Msg("Sending HEAD request")
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return utils.FromDialError("HEAD", url, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	detail := resp.Status
	if server := resp.Header.Get("Server"); server != "" {
		detail = fmt.Sprintf("%s server=%s", detail, server)
	}
	p.SetConnected(true, detail)
	zlog.Debug().Str("url", url).Int("status", resp.StatusCode).Msg("HTTP response received")
	return nil
}

// Close releases idle connections
func (p *HTTPProbe) Close() error {
	if p.httpClient != nil {
		p.httpClient.CloseIdleConnections()
	}
	return p.BaseProbe.Close()
}
