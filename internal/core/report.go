package core

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	zlog "github.com/rs/zerolog/log"
)

// Report is the saved outcome of a run. A report can be fed back with
// --resume to skip targets it already covers.
type Report struct {
	Timestamp  time.Time      `json:"timestamp"`
	Protocol   string         `json:"protocol"`
	TargetFile string         `json:"target_file,omitempty"`
	Workers    int            `json:"workers"`
	Timeout    string         `json:"timeout"`
	Targets    []TargetReport `json:"targets"`
}

// TargetReport records the outcome for a single target
type TargetReport struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Probe     string `json:"probe"`
	Reachable bool   `json:"reachable"`
	Error     string `json:"error,omitempty"`
	Cause     string `json:"cause,omitempty"`
	Detail    string `json:"detail,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

// Key identifies a target and the probe used on it, independent of outcome
func (tr TargetReport) Key() string {
	return targetKey(tr.Probe, tr.Host, tr.Port)
}

// Address returns host:port for the entry
func (tr TargetReport) Address() string {
	return (&Target{Host: tr.Host, Port: tr.Port}).Address()
}

func targetKey(probe, host string, port int) string {
	return probe + "://" + (&Target{Host: host, Port: port}).Address()
}

// Add appends a checker result to the report
func (r *Report) Add(result Result) {
	entry := TargetReport{
		Host:      result.Target.Host,
		Port:      result.Target.Port,
		Probe:     result.Protocol,
		Reachable: result.Reachable,
		Detail:    result.Detail,
		LatencyMs: result.Latency.Milliseconds(),
	}
	if result.Err != nil {
		entry.Error = result.Err.Error()
		if cause := result.Err.Cause(); cause != nil {
			entry.Cause = cause.Error()
		}
	}
	r.Targets = append(r.Targets, entry)
}

// Merge copies entries from a previous report for targets not present in r
func (r *Report) Merge(previous *Report) {
	seen := r.CompletedSet()
	for _, entry := range previous.Targets {
		if !seen[entry.Key()] {
			r.Targets = append(r.Targets, entry)
			seen[entry.Key()] = true
		}
	}
}

// CompletedSet returns the keys of every target in the report
func (r *Report) CompletedSet() map[string]bool {
	set := make(map[string]bool, len(r.Targets))
	for _, entry := range r.Targets {
		set[entry.Key()] = true
	}
	return set
}

// Counts returns how many targets were reachable and unreachable
func (r *Report) Counts() (reachable, unreachable int) {
	for _, entry := range r.Targets {
		if entry.Reachable {
			reachable++
		} else {
			unreachable++
		}
	}
	return reachable, unreachable
}

// FilterCompleted drops targets that appear in completed. Targets without a
// probe override are keyed under protocol. Ports must already be resolved,
// see ResolveTargets.
func FilterCompleted(targets []*Target, protocol string, completed map[string]bool) []*Target {
	remaining := make([]*Target, 0, len(targets))
	for _, target := range targets {
		probe := target.Probe
		if probe == "" {
			probe = protocol
		}
		if !completed[targetKey(probe, target.Host, target.Port)] {
			remaining = append(remaining, target)
		}
	}
	return remaining
}

// SaveReport writes the report to a timestamped file in directory
func SaveReport(report *Report, directory string) (string, error) {
	if err := os.MkdirAll(directory, 0755); err != nil {
		return "", errors.Wrap(err, "failed to create report directory")
	}

	report.Timestamp = time.Now()
	filename := fmt.Sprintf("report_%s.json", report.Timestamp.Format("20060102_150405.000"))
	path := filepath.Join(directory, filename)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal report")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrap(err, "failed to write report file")
	}

	zlog.Info().Str("file", path).Msg("Saved report")
	return path, nil
}

// LoadReport loads a report written by SaveReport
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read report file")
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, errors.Wrap(err, "failed to parse report file")
	}

	zlog.Info().
		Str("file", path).
		Time("original_timestamp", report.Timestamp).
		Int("targets", len(report.Targets)).
		Msg("Loaded report")

	return &report, nil
}

// PrintSummary writes a human-readable summary of the report
func (r *Report) PrintSummary(w io.Writer) {
	reachable, unreachable := r.Counts()

	fmt.Fprintf(w, "\n=== Connection Report ===\n")
	fmt.Fprintf(w, "Timestamp:     %s\n", r.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Probe:         %s\n", r.Protocol)
	if r.TargetFile != "" {
		fmt.Fprintf(w, "Target File:   %s\n", r.TargetFile)
	}
	fmt.Fprintf(w, "Targets:       %d (%d reachable, %d unreachable)\n", len(r.Targets), reachable, unreachable)

	if unreachable > 0 {
		fmt.Fprintf(w, "\nUnreachable:\n")
		shown := 0
		for _, entry := range r.Targets {
			if entry.Reachable {
				continue
			}
			if shown == 10 {
				fmt.Fprintf(w, "  ... and %d more\n", unreachable-shown)
				break
			}
			fmt.Fprintf(w, "  %s (%s): %s\n", entry.Address(), entry.Probe, entry.Error)
			shown++
		}
	}
	fmt.Fprintf(w, "=========================\n\n")
}
