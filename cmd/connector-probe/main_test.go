package main

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/nimda/connector-probe/internal/core"
	"github.com/nimda/connector-probe/internal/modules/tcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCheckConfig(t *testing.T) {
	require.NoError(t, tcpCmd.Flags().Set("port", "2525"))
	require.NoError(t, tcpCmd.Flags().Set(tcp.OptReadBanner, "true"))
	require.NoError(t, rootCmd.PersistentFlags().Set("timeout", "750ms"))
	defer func() {
		_ = tcpCmd.Flags().Set("port", strconv.Itoa(tcp.DefaultPort))
		_ = tcpCmd.Flags().Set(tcp.OptReadBanner, "false")
		_ = rootCmd.PersistentFlags().Set("timeout", "5s")
	}()

	// InheritedFlags merges the root's persistent flags into tcpCmd.Flags()
	tcpCmd.InheritedFlags()

	cfg, err := parseCheckConfig(tcpCmd, tcp.ProtocolName, []string{tcp.OptReadBanner})
	require.NoError(t, err)
	assert.Equal(t, 2525, cfg.port)
	assert.Equal(t, 750*time.Millisecond, cfg.timeout)
	assert.Equal(t, true, cfg.extra[tcp.OptReadBanner])
	assert.Equal(t, 10, cfg.workers)
}

func TestLoadTargets(t *testing.T) {
	targets, err := loadTargets(&CheckConfig{target: "10.0.0.1:22", port: 80})
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "10.0.0.1:22", targets[0].Address())

	file := filepath.Join(t.TempDir(), "targets.txt")
	require.NoError(t, os.WriteFile(file, []byte("10.0.0.1\n# skip\n10.0.0.2:8080\n"), 0644))
	targets, err = loadTargets(&CheckConfig{targetFile: file, port: 80})
	require.NoError(t, err)
	require.Len(t, targets, 2)
	assert.Equal(t, 80, targets[0].Port)
}

func TestRunCheck(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()
	openPort := ln.Addr().(*net.TCPAddr).Port

	closed, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	closedPort := closed.Addr().(*net.TCPAddr).Port
	require.NoError(t, closed.Close())

	dir := t.TempDir()
	targetFile := filepath.Join(dir, "targets.txt")
	content := "127.0.0.1:" + strconv.Itoa(openPort) + "\n127.0.0.1:" + strconv.Itoa(closedPort) + "\n"
	require.NoError(t, os.WriteFile(targetFile, []byte(content), 0644))

	reportDir := filepath.Join(dir, "reports")
	cfg := &CheckConfig{
		protocol:   tcp.ProtocolName,
		targetFile: targetFile,
		workers:    2,
		port:       tcp.DefaultPort,
		timeout:    time.Second,
		reportDir:  reportDir,
		extra:      map[string]interface{}{},
	}

	err = runCheck(context.Background(), cfg)
	assert.ErrorIs(t, err, errUnreachable)

	reports, err := filepath.Glob(filepath.Join(reportDir, "report_*.json"))
	require.NoError(t, err)
	require.Len(t, reports, 1)

	report, err := core.LoadReport(reports[0])
	require.NoError(t, err)
	reachable, unreachable := report.Counts()
	assert.Equal(t, 1, reachable)
	assert.Equal(t, 1, unreachable)

	// Resuming from the report leaves nothing to do
	cfg.resumeFile = reports[0]
	cfg.reportDir = ""
	assert.NoError(t, runCheck(context.Background(), cfg))
}
