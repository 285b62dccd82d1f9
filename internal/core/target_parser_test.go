package core

import (
	"os"
	"testing"

	"github.com/nimda/connector-probe/internal/interfaces"
	"github.com/nimda/connector-probe/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTargetLine_HostOnly(t *testing.T) {
	parser := NewTargetParser(443)
	target, err := parser.ParseTargetLine("192.168.1.1")

	assert.NoError(t, err)
	require.NotNil(t, target)
	assert.Equal(t, "192.168.1.1", target.Host)
	assert.Equal(t, 443, target.Port)
	assert.False(t, target.PortSet)
	assert.Empty(t, target.Probe)
	assert.Equal(t, "192.168.1.1:443", target.Address())
}

func TestParseTargetLine_WithPort(t *testing.T) {
	parser := NewTargetParser(443)
	target, err := parser.ParseTargetLine("db.internal:5432")

	assert.NoError(t, err)
	require.NotNil(t, target)
	assert.Equal(t, "db.internal", target.Host)
	assert.Equal(t, 5432, target.Port)
	assert.True(t, target.PortSet)
}

func TestParseTargetLine_WithAllFields(t *testing.T) {
	parser := NewTargetParser(443)
	target, err := parser.ParseTargetLine("10.0.0.5:2222:ssh")

	assert.NoError(t, err)
	require.NotNil(t, target)
	assert.Equal(t, "10.0.0.5", target.Host)
	assert.Equal(t, 2222, target.Port)
	assert.Equal(t, "ssh", target.Probe)
	assert.Equal(t, "ssh://10.0.0.5:2222", target.String())
}

func TestParseTargetLine_ProbeWithoutPort(t *testing.T) {
	parser := NewTargetParser(443)
	target, err := parser.ParseTargetLine("10.0.0.5::ssh")

	assert.NoError(t, err)
	require.NotNil(t, target)
	assert.Equal(t, 443, target.Port)
	assert.False(t, target.PortSet)
	assert.Equal(t, "ssh", target.Probe)
}

func TestParseTargetLine_IPv6(t *testing.T) {
	parser := NewTargetParser(443)

	target, err := parser.ParseTargetLine("[2001:db8::1]:8443:tls")
	assert.NoError(t, err)
	require.NotNil(t, target)
	assert.Equal(t, "2001:db8::1", target.Host)
	assert.Equal(t, 8443, target.Port)
	assert.Equal(t, "tls", target.Probe)
	assert.Equal(t, "[2001:db8::1]:8443", target.Address())

	target, err = parser.ParseTargetLine("[::1]")
	assert.NoError(t, err)
	require.NotNil(t, target)
	assert.Equal(t, "::1", target.Host)
	assert.Equal(t, 443, target.Port)

	_, err = parser.ParseTargetLine("[::1")
	assert.Error(t, err)

	_, err = parser.ParseTargetLine("[::1]x")
	assert.Error(t, err)
}

func TestParseTargetLine_EmptyHost(t *testing.T) {
	parser := NewTargetParser(443)
	target, err := parser.ParseTargetLine(":8080")

	assert.Error(t, err)
	assert.Nil(t, target)
	assert.Contains(t, err.Error(), "target host cannot be empty")
}

func TestParseTargetLine_TooManyFields(t *testing.T) {
	parser := NewTargetParser(443)
	target, err := parser.ParseTargetLine("2001:db8::1")

	assert.Error(t, err)
	assert.Nil(t, target)
	assert.Contains(t, err.Error(), "invalid target format")
}

func TestParseTargetLine_InvalidPort(t *testing.T) {
	parser := NewTargetParser(443)

	for _, line := range []string{"192.168.1.1:invalid_port", "192.168.1.1:0", "192.168.1.1:70000"} {
		target, err := parser.ParseTargetLine(line)
		assert.NoError(t, err)
		require.NotNil(t, target)
		assert.Equal(t, 443, target.Port, line)
		assert.False(t, target.PortSet, line)
	}
}

func TestParseTargetLine_CommentLine(t *testing.T) {
	parser := NewTargetParser(443)
	target, err := parser.ParseTargetLine("# This is a comment")

	assert.NoError(t, err)
	assert.Nil(t, target) // Should return nil for comment lines
}

func TestParseTargetLine_EmptyLine(t *testing.T) {
	parser := NewTargetParser(443)
	target, err := parser.ParseTargetLine("")

	assert.NoError(t, err)
	assert.Nil(t, target)
}

func TestParseTargetLine_WhitespaceOnly(t *testing.T) {
	parser := NewTargetParser(443)
	target, err := parser.ParseTargetLine("   \t\n")

	assert.NoError(t, err)
	assert.Nil(t, target)
}

func TestParseTargetFile(t *testing.T) {
	testContent := `# Test targets file
192.168.1.1
192.168.1.2:8443
10.0.0.1:22:ssh
# Another comment
[::1]:80:http

  # Empty line with spaces
192.168.1.3:abc
too:many:fields:here
`

	tmpFile, err := os.CreateTemp("", "test_targets_*.txt")
	require.NoError(t, err)
	defer os.Remove(tmpFile.Name())

	_, err = tmpFile.WriteString(testContent)
	require.NoError(t, err)
	tmpFile.Close()

	parser := NewTargetParser(443)
	targets, err := parser.ParseTargetFile(tmpFile.Name())

	assert.NoError(t, err)
	require.Len(t, targets, 5) // the malformed line is skipped

	assert.Equal(t, "192.168.1.1:443", targets[0].Address())
	assert.Equal(t, "192.168.1.2:8443", targets[1].Address())
	assert.Equal(t, "ssh", targets[2].Probe)
	assert.Equal(t, 22, targets[2].Port)
	assert.Equal(t, "::1", targets[3].Host)
	assert.Equal(t, "http", targets[3].Probe)
	assert.Equal(t, 443, targets[4].Port) // invalid port falls back to the default
}

func TestParseTargetFile_EmptyFile(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "empty_targets_*.txt")
	require.NoError(t, err)
	defer os.Remove(tmpFile.Name())
	tmpFile.Close()

	parser := NewTargetParser(443)
	targets, err := parser.ParseTargetFile(tmpFile.Name())

	assert.NoError(t, err)
	assert.Len(t, targets, 0)
}

func TestParseTargetFile_NonExistentFile(t *testing.T) {
	parser := NewTargetParser(443)
	targets, err := parser.ParseTargetFile("nonexistent_file.txt")

	assert.Error(t, err)
	assert.Nil(t, targets)
}

func TestTargetQueue(t *testing.T) {
	targets := []*Target{{Host: "a", Port: 1}, {Host: "b", Port: 2}}
	queue := NewTargetQueue(targets)

	assert.Equal(t, 2, queue.Total())
	assert.Equal(t, 0.0, queue.Progress())

	assert.Same(t, targets[0], queue.Next())
	assert.Equal(t, 1, queue.Remaining())
	assert.Equal(t, 0.5, queue.Progress())

	assert.Same(t, targets[1], queue.Next())
	assert.Nil(t, queue.Next())
	assert.Equal(t, 0, queue.Remaining())
	assert.Equal(t, 1.0, queue.Progress())

	assert.Equal(t, 0.0, NewTargetQueue(nil).Progress())
}

func TestResolveTargets(t *testing.T) {
	registry := interfaces.NewProbeRegistry()
	require.NoError(t, registry.Register(interfaces.ProtocolInfo{
		Name:        "alt",
		DefaultPort: 2222,
		Factory:     func() interfaces.Probe { return testutil.NewMockProbe() },
	}))

	parser := NewTargetParser(443)
	var targets []*Target
	for _, line := range []string{"10.0.0.1", "10.0.0.2::alt", "10.0.0.3:2200:alt", "10.0.0.4::tls"} {
		target, err := parser.ParseTargetLine(line)
		require.NoError(t, err)
		targets = append(targets, target)
	}

	resolved, err := ResolveTargets(targets, "tls", registry)
	require.NoError(t, err)
	require.Len(t, resolved, 4)

	assert.Equal(t, "tls", resolved[0].Probe)
	assert.Equal(t, 443, resolved[0].Port)
	assert.Equal(t, "alt", resolved[1].Probe)
	assert.Equal(t, 2222, resolved[1].Port)
	assert.Equal(t, 2200, resolved[2].Port)
	assert.Equal(t, 443, resolved[3].Port)

	// The input is left untouched
	assert.Equal(t, 443, targets[1].Port)
	assert.Empty(t, targets[0].Probe)

	// A report written for the dialed port covers the resolved target
	report := &Report{}
	report.Add(Result{Target: &Target{Host: "10.0.0.2", Port: 2222}, Protocol: "alt"})
	remaining := FilterCompleted(resolved, "tls", report.CompletedSet())
	assert.Len(t, remaining, 3)
	for _, target := range remaining {
		assert.NotEqual(t, "10.0.0.2", target.Host)
	}

	_, err = ResolveTargets([]*Target{{Host: "10.0.0.5", Port: 443, Probe: "gopher"}}, "tls", registry)
	assert.EqualError(t, err, `target gopher://10.0.0.5:443: unknown probe "gopher"`)
}
