package core

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/nimda/connector-probe/internal/interfaces"
	zlog "github.com/rs/zerolog/log"
)

// Target represents a single endpoint to probe
type Target struct {
	Host string
	Port int
	// PortSet is true when the port came from the target line
	PortSet bool
	// Probe overrides the probe chosen on the command line when set
	Probe string
}

// Address returns host:port, bracketing IPv6 literals
func (t *Target) Address() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

func (t *Target) String() string {
	if t.Probe != "" {
		return t.Probe + "://" + t.Address()
	}
	return t.Address()
}

// TargetParser handles parsing of target specifications from files
type TargetParser struct {
	defaultPort int
}

// NewTargetParser creates a new target parser with the given default port
func NewTargetParser(defaultPort int) *TargetParser {
	return &TargetParser{
		defaultPort: defaultPort,
	}
}

// ParseTargetLine parses a single line from target file
// Format: host:port:probe (all fields except host are optional)
// Examples:
//
//	"192.168.1.1" - host only, uses the default port and probe
//	"192.168.1.1:8443" - host and port
//	"192.168.1.1:22:ssh" - host, port, and probe
//	"[2001:db8::1]:443:tls" - IPv6 literals must be bracketed
func (p *TargetParser) ParseTargetLine(line string) (*Target, error) {
	zlog.Trace().Str("line", line).Msg("Parsing target line")

	// Skip comments and empty lines
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		zlog.Trace().Msg("Skipping empty/comment line")
		return nil, nil
	}

	target := &Target{
		Port: p.defaultPort,
	}

	rest := line
	if strings.HasPrefix(line, "[") {
		end := strings.Index(line, "]")
		if end < 0 {
			return nil, fmt.Errorf("unterminated IPv6 literal: %s", line)
		}
		target.Host = line[1:end]
		rest = strings.TrimPrefix(line[end+1:], ":")
		if rest != "" && line[end+1] != ':' {
			return nil, fmt.Errorf("invalid target format: %s", line)
		}
	} else {
		host, tail, _ := strings.Cut(line, ":")
		target.Host = host
		rest = tail
	}

	var fields []string
	if rest != "" {
		fields = strings.Split(rest, ":")
	}

	switch len(fields) {
	case 0:
		// Only host specified
	case 1, 2:
		if fields[0] != "" {
			if port, err := strconv.Atoi(fields[0]); err == nil && port > 0 && port <= 65535 {
				target.Port = port
				target.PortSet = true
			} else {
				zlog.Warn().Str("port", fields[0]).Msg("Invalid port, using default")
			}
		}
		if len(fields) == 2 {
			target.Probe = fields[1]
		}
	default:
		zlog.Warn().Str("line", line).Int("parts", len(fields)+1).Msg("Invalid target format: too many fields")
		return nil, fmt.Errorf("invalid target format: %s", line)
	}

	// Validate host is not empty
	if target.Host == "" {
		zlog.Warn().Str("line", line).Msg("Target host cannot be empty")
		return nil, fmt.Errorf("target host cannot be empty: %s", line)
	}

	zlog.Debug().Stringer("target", target).Msg("Parsed target")
	return target, nil
}

// ParseTargetFile reads and parses a target file
func (p *TargetParser) ParseTargetFile(filePath string) ([]*Target, error) {
	zlog.Info().Str("file", filePath).Msg("Loading targets from file")

	file, err := os.Open(filePath)
	if err != nil {
		zlog.Error().Str("file", filePath).Err(err).Msg("Failed to open target file")
		return nil, err
	}
	defer func(file *os.File) {
		err := file.Close()
		if err != nil {
			zlog.Warn().Msg("Failed to close target file")
		}
	}(file)

	var targets []*Target
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		target, err := p.ParseTargetLine(line)
		if err != nil {
			zlog.Warn().
				Str("file", filePath).
				Int("line", lineNum).
				Str("content", line).
				Err(err).
				Msg("Error parsing target line")
			continue
		}
		if target != nil {
			targets = append(targets, target)
		}
	}

	if err := scanner.Err(); err != nil {
		zlog.Error().Str("file", filePath).Err(err).Msg("Error reading target file")
		return nil, err
	}

	zlog.Info().Int("count", len(targets)).Msg("Loaded targets")
	return targets, nil
}

// ResolveTargets returns copies of targets with the probe name filled in.
// A target that names a probe other than protocol without giving a port is
// moved to that probe's default port, which is the port the checker dials.
func ResolveTargets(targets []*Target, protocol string, registry *interfaces.ProbeRegistry) ([]*Target, error) {
	resolved := make([]*Target, 0, len(targets))
	for _, target := range targets {
		t := *target
		if t.Probe == "" {
			t.Probe = protocol
		}
		if t.Probe != protocol {
			info, ok := registry.Get(t.Probe)
			if !ok {
				return nil, fmt.Errorf("target %s: unknown probe %q", target, t.Probe)
			}
			if !t.PortSet {
				t.Port = info.DefaultPort
				t.PortSet = true
			}
		}
		resolved = append(resolved, &t)
	}
	return resolved, nil
}
