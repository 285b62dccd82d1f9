package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nimda/connector-probe/internal/interfaces"
	"github.com/nimda/connector-probe/pkg/duallog"
	"github.com/nimda/connector-probe/pkg/utils"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Result represents the outcome of probing a single target
type Result struct {
	Target    *Target
	Protocol  string
	Reachable bool
	// Err is set when Reachable is false
	Err       *utils.ConnectionError
	Detail    string
	Latency   time.Duration
	CheckedAt time.Time

	attempted bool
}

// Checker probes a list of targets concurrently, one attempt per target
type Checker struct {
	factory  interfaces.ProbeFactory
	registry *interfaces.ProbeRegistry
	config   *interfaces.ProbeConfig
	workers  int
	metrics  interfaces.Metrics
	stats    *StatsTracker

	targets   []*Target
	queue     *TargetQueue
	overrides map[string]interfaces.ProbeFactory
	results   chan Result
	done      chan struct{}
	err       error
}

// NewChecker creates a checker that builds probes with factory
func NewChecker(factory interfaces.ProbeFactory, config *interfaces.ProbeConfig, workers int) *Checker {
	return &Checker{
		factory:  factory,
		registry: interfaces.DefaultRegistry,
		config:   config,
		workers:  workers,
		metrics:  &interfaces.NoopMetrics{},
	}
}

// SetRegistry sets the registry used to resolve per-target probe overrides
func (c *Checker) SetRegistry(registry *interfaces.ProbeRegistry) {
	c.registry = registry
}

// SetMetrics sets the metrics sink
func (c *Checker) SetMetrics(metrics interfaces.Metrics) {
	c.metrics = metrics
}

// SetStatsTracker sets the stats tracker fed with every result
func (c *Checker) SetStatsTracker(stats *StatsTracker) {
	c.stats = stats
}

// LoadTargets loads the targets to probe
func (c *Checker) LoadTargets(targets []*Target) {
	c.targets = targets
}

// Start validates the configuration and launches the workers. Results() is
// closed once every target has been probed or ctx is cancelled.
func (c *Checker) Start(ctx context.Context) error {
	if len(c.targets) == 0 {
		return errors.New("no targets loaded")
	}
	if c.factory == nil {
		return errors.New("no probe factory set")
	}
	if err := interfaces.ValidateWorkers(c.workers); err != nil {
		return err
	}
	if err := interfaces.ValidateTimeout(c.config.Timeout); err != nil {
		return err
	}
	if err := c.resolveOverrides(); err != nil {
		return err
	}

	c.queue = NewTargetQueue(c.targets)
	c.results = make(chan Result, c.workers*2)
	c.done = make(chan struct{})

	zlog.Debug().
		Int("targets", len(c.targets)).
		Int("workers", c.workers).
		Str("probe", c.factory.GetProtocolName()).
		Msg("Starting checker")

	group, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < c.workers; i++ {
		id := i
		group.Go(func() error {
			return c.worker(groupCtx, id)
		})
	}

	// Auto-close results when all workers complete
	go func() {
		c.err = group.Wait()
		close(c.results)
		close(c.done)
	}()

	return nil
}

// resolveOverrides looks up every probe named by a target so that unknown
// names fail before any connection is attempted
func (c *Checker) resolveOverrides() error {
	c.overrides = make(map[string]interfaces.ProbeFactory)
	for _, target := range c.targets {
		name := target.Probe
		if name == "" || name == c.factory.GetProtocolName() {
			continue
		}
		if _, ok := c.overrides[name]; ok {
			continue
		}
		if c.registry == nil {
			return fmt.Errorf("target %s names probe %q but no registry is set", target, name)
		}
		factory, err := c.registry.Factory(name)
		if err != nil {
			return fmt.Errorf("target %s: %w", target, err)
		}
		c.overrides[name] = factory
	}
	return nil
}

// worker probes targets until the queue is drained or ctx is done
func (c *Checker) worker(ctx context.Context, id int) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		target := c.queue.Next()
		if target == nil {
			zlog.Trace().Int("worker_id", id).Msg("Queue drained, worker exiting")
			return nil
		}

		result := c.check(ctx, target)

		// A cancelled run says nothing about the target, so leave it for --resume
		if err := ctx.Err(); err != nil {
			zlog.Trace().Str("target", target.String()).Msg("Run cancelled, dropping result")
			return err
		}

		select {
		case c.results <- result:
		case <-ctx.Done():
			return ctx.Err()
		}

		c.record(result)
		if c.stats != nil {
			c.stats.Record(result)
		}
	}
}

// check performs one connection attempt against target. The result's
// Target carries the port that was actually dialed.
func (c *Checker) check(ctx context.Context, target *Target) Result {
	factory := c.factory
	config := c.config.WithPort(target.Port)
	if override, ok := c.overrides[target.Probe]; ok {
		factory = override
		if info, found := c.registry.Get(target.Probe); found && !target.PortSet {
			config.Port = info.DefaultPort
		}
	}
	if config.Port != target.Port {
		effective := *target
		effective.Port = config.Port
		effective.PortSet = true
		target = &effective
	}

	probe := factory.CreateProbe()
	result := Result{
		Target:    target,
		Protocol:  probe.GetProtocolName(),
		CheckedAt: time.Now(),
	}

	if err := probe.Initialize(target.Host, config); err != nil {
		result.Err = utils.NewConnectionErrorWithCause(fmt.Sprintf("cannot probe %s", target.Address()), err)
		return result
	}

	attemptCtx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()

	result.attempted = true
	start := time.Now()
	err := probe.Connect(attemptCtx)
	result.Latency = time.Since(start)

	if err != nil {
		result.Err = utils.FromDialError("connect to", target.Address(), err)
	} else {
		result.Reachable = true
		result.Detail = probe.Detail()
	}

	if err := probe.Close(); err != nil {
		zlog.Trace().Err(err).Str("target", target.String()).Msg("Error closing probe")
	}

	return result
}

// record logs the outcome and updates metrics
func (c *Checker) record(result Result) {
	if result.attempted {
		c.metrics.IncAttempts(result.Protocol)
		c.metrics.ObserveLatency(result.Protocol, result.Latency)
	}

	if result.Reachable {
		c.metrics.IncReachable(result.Protocol)
		duallog.Reachable().
			Str("target", result.Target.Address()).
			Str("probe", result.Protocol).
			Str("detail", result.Detail).
			Dur("latency", result.Latency).
			Msg("✓ reachable")
		return
	}

	c.metrics.IncUnreachable(result.Protocol)
	event := duallog.Unreachable().
		Str("target", result.Target.Address()).
		Str("probe", result.Protocol).
		Dur("latency", result.Latency)
	if result.Err != nil {
		event = event.Err(result.Err)
		if cause := result.Err.Cause(); cause != nil {
			event = event.Str("cause", cause.Error())
		}
	}
	event.Msg("✗ unreachable")
}

// Results returns the channel for receiving results
func (c *Checker) Results() <-chan Result {
	return c.results
}

// Wait blocks until all workers have exited and returns the first worker
// error, which is only ever a context error
func (c *Checker) Wait() error {
	if c.done == nil {
		return nil
	}
	<-c.done
	return c.err
}

// Run starts the checker and collects every result
func (c *Checker) Run(ctx context.Context) ([]Result, error) {
	if err := c.Start(ctx); err != nil {
		return nil, err
	}
	var results []Result
	for result := range c.Results() {
		results = append(results, result)
	}
	return results, c.Wait()
}

// Progress returns the current progress (0.0 to 1.0)
func (c *Checker) Progress() float64 {
	if c.queue == nil {
		return 0.0
	}
	return c.queue.Progress()
}
