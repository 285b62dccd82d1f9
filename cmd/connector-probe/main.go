package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nimda/connector-probe/internal/core"
	"github.com/nimda/connector-probe/internal/interfaces"
	"github.com/nimda/connector-probe/internal/metrics"
	"github.com/nimda/connector-probe/internal/modules/sshconn"
	"github.com/nimda/connector-probe/internal/modules/tcp"
	"github.com/nimda/connector-probe/internal/modules/tlsconn"
	"github.com/nimda/connector-probe/internal/modules/web"
	"github.com/nimda/connector-probe/pkg/duallog"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// errUnreachable makes the process exit with status 2 when any target failed
var errUnreachable = errors.New("one or more targets are unreachable")

var (
	debugMode   bool
	traceMode   bool
	consoleMode bool
)

var rootCmd = &cobra.Command{
	Use:           "connector-probe",
	Short:         "Connection diagnostics for connector endpoints",
	Long:          "Attempts one connection per target and reports which endpoints are reachable and why the others failed.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Setup dual logging: STDOUT=complete log, STDERR=progress+outcomes
		logLevel := zerolog.InfoLevel
		if traceMode {
			logLevel = zerolog.TraceLevel
		} else if debugMode {
			logLevel = zerolog.DebugLevel
		}
		duallog.Setup(logLevel, duallog.Options{Console: consoleMode})

		if traceMode {
			zlog.Trace().Msg("🔍🔍 TRACE MODE ENABLED")
		} else if debugMode {
			zlog.Debug().Msg("🔍 DEBUG MODE ENABLED")
		}

		// Validate common flags (skip for commands that do not probe)
		if cmd.Name() == "connector-probe" || cmd.Name() == "list" {
			return nil
		}

		target, _ := cmd.Flags().GetString("target")
		targetFile, _ := cmd.Flags().GetString("target-file")

		if target == "" && targetFile == "" {
			return fmt.Errorf("either --target or --target-file must be specified")
		}
		if target != "" && targetFile != "" {
			return fmt.Errorf("cannot specify both --target and --target-file")
		}
		if targetFile != "" {
			if err := interfaces.ValidateFile(targetFile); err != nil {
				return err
			}
		}
		return nil
	},
}

var tcpCmd = &cobra.Command{
	Use:   tcp.ProtocolName,
	Short: "Check plain TCP connectivity",
	RunE:  runProbe(tcp.ProtocolName, tcp.OptReadBanner),
}

var tlsCmd = &cobra.Command{
	Use:   tlsconn.ProtocolName,
	Short: "Check TCP connectivity and complete a TLS handshake",
	RunE:  runProbe(tlsconn.ProtocolName, tlsconn.OptInsecure, tlsconn.OptServerName),
}

var httpCmd = &cobra.Command{
	Use:   web.ProtocolName,
	Short: "Check that an HTTP(S) endpoint answers a HEAD request",
	RunE:  runProbe(web.ProtocolName, web.OptHTTPS, web.OptInsecure, web.OptPath),
}

var sshCmd = &cobra.Command{
	Use:   sshconn.ProtocolName,
	Short: "Check that an SSH server completes key exchange",
	RunE:  runProbe(sshconn.ProtocolName, sshconn.OptUser),
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available probes",
	Run: func(cmd *cobra.Command, args []string) {
		for _, info := range interfaces.DefaultRegistry.All() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-6s port %-5d %s\n", info.Name, info.DefaultPort, info.Description)
		}
	},
}

func init() {
	// Global flags (logging)
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&traceMode, "trace", false, "Enable trace logging")
	rootCmd.PersistentFlags().BoolVar(&consoleMode, "console", false, "Human-readable log output instead of JSON")

	// Common check flags (shared by all probes)
	rootCmd.PersistentFlags().String("target", "", "Single target: host[:port[:probe]]")
	rootCmd.PersistentFlags().String("target-file", "", "File with one target per line: host[:port[:probe]]")
	rootCmd.PersistentFlags().Int("workers", 10, "Number of concurrent connection attempts")
	rootCmd.PersistentFlags().String("timeout", "5s", "Per-target connection timeout")
	rootCmd.PersistentFlags().String("stats-interval", "0", "Progress report interval on STDERR (0 to disable)")
	rootCmd.PersistentFlags().String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9100)")

	// Report functionality flags
	rootCmd.PersistentFlags().String("report-dir", "./reports", "Directory to save the JSON report (empty to disable)")
	rootCmd.PersistentFlags().String("resume", "", "Skip targets already present in a previous report")

	// Probe-specific flags with different defaults
	tcpCmd.Flags().Int("port", tcp.DefaultPort, "Default TCP port")
	tlsCmd.Flags().Int("port", tlsconn.DefaultPort, "Default TLS port")
	httpCmd.Flags().Int("port", web.DefaultPort, "Default HTTP port")
	sshCmd.Flags().Int("port", sshconn.DefaultPort, "Default SSH port")

	tcpCmd.Flags().Bool(tcp.OptReadBanner, false, "Read and report the first line the server sends")
	tlsCmd.Flags().Bool(tlsconn.OptInsecure, false, "Skip certificate verification")
	tlsCmd.Flags().String(tlsconn.OptServerName, "", "SNI server name (defaults to the target host)")
	httpCmd.Flags().Bool(web.OptHTTPS, false, "Use HTTPS instead of HTTP")
	httpCmd.Flags().Bool(web.OptInsecure, false, "Skip certificate verification for HTTPS")
	httpCmd.Flags().String(web.OptPath, "/", "Request path")
	sshCmd.Flags().String(sshconn.OptUser, "probe", "User name sent during the handshake")

	rootCmd.AddCommand(tcpCmd, tlsCmd, httpCmd, sshCmd, listCmd)
}

// CheckConfig holds configuration for a run
type CheckConfig struct {
	protocol      string
	target        string
	targetFile    string
	workers       int
	port          int
	timeout       time.Duration
	statsInterval time.Duration
	metricsAddr   string
	reportDir     string
	resumeFile    string
	extra         map[string]interface{}
}

// parseCheckConfig parses run configuration from command flags
func parseCheckConfig(cmd *cobra.Command, protocol string, options []string) (*CheckConfig, error) {
	target, _ := cmd.Flags().GetString("target")
	targetFile, _ := cmd.Flags().GetString("target-file")
	workers, _ := cmd.Flags().GetInt("workers")
	port, _ := cmd.Flags().GetInt("port")
	timeout, _ := cmd.Flags().GetString("timeout")
	statsInterval, _ := cmd.Flags().GetString("stats-interval")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	reportDir, _ := cmd.Flags().GetString("report-dir")
	resumeFile, _ := cmd.Flags().GetString("resume")

	timeoutDuration, err := time.ParseDuration(timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout: %w", err)
	}

	var statsDuration time.Duration
	if statsInterval != "" && statsInterval != "0" {
		statsDuration, err = time.ParseDuration(statsInterval)
		if err != nil {
			return nil, fmt.Errorf("invalid stats-interval: %w", err)
		}
	}

	extra := make(map[string]interface{}, len(options))
	for _, name := range options {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		switch flag.Value.Type() {
		case "bool":
			extra[name], _ = cmd.Flags().GetBool(name)
		default:
			extra[name] = flag.Value.String()
		}
	}

	cfg := &CheckConfig{
		protocol:      protocol,
		target:        target,
		targetFile:    targetFile,
		workers:       workers,
		port:          port,
		timeout:       timeoutDuration,
		statsInterval: statsDuration,
		metricsAddr:   metricsAddr,
		reportDir:     reportDir,
		resumeFile:    resumeFile,
		extra:         extra,
	}

	if err := interfaces.ValidateWorkers(cfg.workers); err != nil {
		return nil, err
	}
	if err := interfaces.ValidatePort(cfg.port); err != nil {
		return nil, err
	}
	if err := interfaces.ValidateTimeout(cfg.timeout); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runProbe returns the RunE for a probe subcommand
func runProbe(protocol string, options ...string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := parseCheckConfig(cmd, protocol, options)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		zlog.Debug().Str("probe", protocol).Msg("Starting check")
		return runCheck(ctx, cfg)
	}
}

// loadTargets reads targets from --target or --target-file
func loadTargets(cfg *CheckConfig) ([]*core.Target, error) {
	parser := core.NewTargetParser(cfg.port)
	if cfg.targetFile != "" {
		return parser.ParseTargetFile(cfg.targetFile)
	}

	target, err := parser.ParseTargetLine(cfg.target)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, nil
	}
	return []*core.Target{target}, nil
}

// runCheck probes every target once and writes the report
func runCheck(ctx context.Context, cfg *CheckConfig) error {
	targets, err := loadTargets(cfg)
	if err != nil {
		return fmt.Errorf("failed to load targets: %w", err)
	}
	targets, err = core.ResolveTargets(targets, cfg.protocol, interfaces.DefaultRegistry)
	if err != nil {
		return err
	}

	var previous *core.Report
	if cfg.resumeFile != "" {
		zlog.Info().Str("file", cfg.resumeFile).Msg("Resuming from previous report")
		previous, err = core.LoadReport(cfg.resumeFile)
		if err != nil {
			return err
		}
		previous.PrintSummary(os.Stderr)
		targets = core.FilterCompleted(targets, cfg.protocol, previous.CompletedSet())
		zlog.Info().Int("remaining", len(targets)).Msg("Targets left after resume")
	}

	if len(targets) == 0 {
		if previous != nil {
			zlog.Info().Msg("Every target is already covered by the previous report")
			return nil
		}
		return fmt.Errorf("no valid targets found")
	}

	factory, err := interfaces.DefaultRegistry.Factory(cfg.protocol)
	if err != nil {
		return err
	}

	probeConfig := interfaces.NewProbeConfig()
	probeConfig.Port = cfg.port
	probeConfig.Timeout = cfg.timeout
	probeConfig.Extra = cfg.extra

	checker := core.NewChecker(factory, probeConfig, cfg.workers)
	checker.LoadTargets(targets)

	if cfg.metricsAddr != "" {
		promMetrics := metrics.NewPrometheusMetrics()
		checker.SetMetrics(promMetrics)
		go func() {
			if err := promMetrics.Serve(ctx, cfg.metricsAddr); err != nil {
				zlog.Error().Err(err).Str("addr", cfg.metricsAddr).Msg("Metrics server failed")
			}
		}()
	}

	stats := core.NewStatsTracker(len(targets), cfg.statsInterval)
	checker.SetStatsTracker(stats)
	stats.Start(ctx)
	defer stats.Stop()

	zlog.Info().
		Str("probe", cfg.protocol).
		Int("targets", len(targets)).
		Int("workers", cfg.workers).
		Dur("timeout", cfg.timeout).
		Msg("Starting connection checks")

	if err := checker.Start(ctx); err != nil {
		return err
	}

	report := &core.Report{
		Protocol:   cfg.protocol,
		TargetFile: cfg.targetFile,
		Workers:    cfg.workers,
		Timeout:    cfg.timeout.String(),
	}

	checked := 0
	for result := range checker.Results() {
		checked++
		report.Add(result)
		if checked%10 == 0 {
			duallog.Progress().
				Int("checked", checked).
				Int("total", len(targets)).
				Msgf("Progress: %.1f%%", checker.Progress()*100)
		}
	}

	if err := checker.Wait(); err != nil {
		zlog.Warn().Err(err).Int("checked", checked).Msg("Check interrupted, saving partial report")
	}

	if previous != nil {
		report.Merge(previous)
	}

	if cfg.reportDir != "" {
		if _, err := core.SaveReport(report, cfg.reportDir); err != nil {
			zlog.Error().Err(err).Msg("Failed to save report")
		}
	}
	report.PrintSummary(os.Stderr)

	summary := stats.Summary()
	zlog.Info().
		Int("checked", summary.Checked).
		Int("reachable", summary.Reachable).
		Int("unreachable", summary.Unreachable).
		Dur("elapsed", summary.Elapsed).
		Msg("Connection checks completed")

	if _, unreachable := report.Counts(); unreachable > 0 {
		return errUnreachable
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errUnreachable) {
			os.Exit(2)
		}
		zlog.Error().Err(err).Msg("connector-probe failed")
		os.Exit(1)
	}
}
