package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// StatsSummary is a point-in-time view of a run
type StatsSummary struct {
	TotalTargets int
	Checked      int
	Reachable    int
	Unreachable  int
	Elapsed      time.Duration
	// Rate is targets checked per second
	Rate float64
}

// Remaining returns the number of targets not yet checked
func (s StatsSummary) Remaining() int {
	if remaining := s.TotalTargets - s.Checked; remaining > 0 {
		return remaining
	}
	return 0
}

// ETA estimates the time left at the current rate
func (s StatsSummary) ETA() time.Duration {
	if s.Rate <= 0 {
		return 0
	}
	return time.Duration(float64(s.Remaining()) / s.Rate * float64(time.Second))
}

// StatsTracker tracks run statistics and outputs progress reports
type StatsTracker struct {
	mu             sync.RWMutex
	startTime      time.Time
	totalTargets   int
	checked        int
	reachable      int
	unreachable    int
	totalLatency   time.Duration
	outputInterval time.Duration
	out            io.Writer
	stopChan       chan struct{}
	stopOnce       sync.Once
	wg             sync.WaitGroup
}

// NewStatsTracker creates a new statistics tracker
func NewStatsTracker(totalTargets int, outputInterval time.Duration) *StatsTracker {
	return &StatsTracker{
		startTime:      time.Now(),
		totalTargets:   totalTargets,
		outputInterval: outputInterval,
		out:            os.Stderr,
		stopChan:       make(chan struct{}),
	}
}

// SetOutput redirects progress reports, which go to STDERR by default
func (st *StatsTracker) SetOutput(w io.Writer) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.out = w
}

// Start begins the statistics output loop
func (st *StatsTracker) Start(ctx context.Context) {
	if st.outputInterval == 0 {
		return
	}

	st.wg.Add(1)
	go st.outputLoop(ctx)
}

// Stop stops the statistics output loop
func (st *StatsTracker) Stop() {
	st.stopOnce.Do(func() { close(st.stopChan) })
	st.wg.Wait()
}

// Record counts a finished probe
func (st *StatsTracker) Record(result Result) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.checked++
	st.totalLatency += result.Latency
	if result.Reachable {
		st.reachable++
	} else {
		st.unreachable++
	}
}

// Summary returns the current statistics
func (st *StatsTracker) Summary() StatsSummary {
	st.mu.RLock()
	defer st.mu.RUnlock()

	elapsed := time.Since(st.startTime)
	summary := StatsSummary{
		TotalTargets: st.totalTargets,
		Checked:      st.checked,
		Reachable:    st.reachable,
		Unreachable:  st.unreachable,
		Elapsed:      elapsed,
	}
	if elapsed > 0 {
		summary.Rate = float64(st.checked) / elapsed.Seconds()
	}
	return summary
}

// AverageLatency returns the mean latency across recorded probes
func (st *StatsTracker) AverageLatency() time.Duration {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if st.checked == 0 {
		return 0
	}
	return st.totalLatency / time.Duration(st.checked)
}

// outputLoop periodically outputs progress statistics
func (st *StatsTracker) outputLoop(ctx context.Context) {
	defer st.wg.Done()

	ticker := time.NewTicker(st.outputInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			st.WriteReport()

		case <-st.stopChan:
			return

		case <-ctx.Done():
			return
		}
	}
}

// WriteReport writes a progress report to the configured output
func (st *StatsTracker) WriteReport() {
	summary := st.Summary()
	avg := st.AverageLatency()

	st.mu.RLock()
	out := st.out
	st.mu.RUnlock()

	fmt.Fprintf(out, "\n=== Progress Report ===\n")
	fmt.Fprintf(out, "Speed:                %.2f targets/second\n", summary.Rate)
	fmt.Fprintf(out, "Targets:              %d/%d checked (%d reachable, %d unreachable)\n",
		summary.Checked, summary.TotalTargets, summary.Reachable, summary.Unreachable)
	fmt.Fprintf(out, "Average latency:      %s\n", avg.Round(time.Millisecond))
	fmt.Fprintf(out, "Elapsed:              %s\n", formatDuration(summary.Elapsed))

	if eta := summary.ETA(); eta > 0 {
		fmt.Fprintf(out, "Estimated time left:  %s\n", formatDuration(eta))
	}

	fmt.Fprintf(out, "======================\n\n")
}

// formatDuration formats a duration in a human-readable format
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		minutes := int(d.Minutes())
		seconds := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	if d < 24*time.Hour {
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % 60
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	return fmt.Sprintf("%dd %dh", days, hours)
}
