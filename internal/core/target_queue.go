package core

import "sync"

// TargetQueue hands out targets to workers, each exactly once
type TargetQueue struct {
	targets []*Target
	index   int
	mu      sync.Mutex
}

// NewTargetQueue creates a new target queue
func NewTargetQueue(targets []*Target) *TargetQueue {
	return &TargetQueue{
		targets: targets,
	}
}

// Next returns the next target in the queue, or nil if done
func (q *TargetQueue) Next() *Target {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.index >= len(q.targets) {
		return nil
	}

	target := q.targets[q.index]
	q.index++
	return target
}

// Progress returns the current progress (0.0 to 1.0)
func (q *TargetQueue) Progress() float64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.targets) == 0 {
		return 0.0
	}
	return float64(q.index) / float64(len(q.targets))
}

// Total returns the total number of targets
func (q *TargetQueue) Total() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.targets)
}

// Remaining returns the number of targets not yet handed out
func (q *TargetQueue) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.targets) - q.index
}
