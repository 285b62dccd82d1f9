package interfaces

import "time"

// Metrics defines the interface for collecting probe metrics.
type Metrics interface {
	// IncAttempts increments the number of connection attempts.
	IncAttempts(protocol string)

	// IncReachable increments the number of successful connections.
	IncReachable(protocol string)

	// IncUnreachable increments the number of failed connections.
	IncUnreachable(protocol string)

	// ObserveLatency records how long a connection attempt took.
	ObserveLatency(protocol string, duration time.Duration)
}

// NoopMetrics is a no-op implementation of Metrics.
type NoopMetrics struct{}

func (n *NoopMetrics) IncAttempts(protocol string)                            {}
func (n *NoopMetrics) IncReachable(protocol string)                           {}
func (n *NoopMetrics) IncUnreachable(protocol string)                         {}
func (n *NoopMetrics) ObserveLatency(protocol string, duration time.Duration) {}
