package service

import (
	"sync"
	"time"
)

// ClockChange describes a detected jump of the wall clock or the zone offset.
type ClockChange struct {
	Drift        time.Duration
	OffsetBefore int
	OffsetAfter  int
}

// ClockWatcher detects wall-clock jumps and zone offset changes by comparing
// consecutive samples. The wall reading is compared against elapsed
// monotonic time, which manual clock edits do not affect.
type ClockWatcher struct {
	tolerance time.Duration
	wall      func() time.Time
	elapsed   func() time.Duration
	loc       *time.Location

	mu          sync.Mutex
	sampled     bool
	lastWall    time.Time
	lastElapsed time.Duration
	lastOffset  int
}

// NewClockWatcher watches the real clock in loc.
func NewClockWatcher(tolerance time.Duration, loc *time.Location) *ClockWatcher {
	start := time.Now()
	return NewClockWatcherWith(tolerance, loc, time.Now, func() time.Duration { return time.Since(start) })
}

// NewClockWatcherWith takes explicit wall and monotonic sources.
func NewClockWatcherWith(tolerance time.Duration, loc *time.Location, wall func() time.Time, elapsed func() time.Duration) *ClockWatcher {
	if loc == nil {
		loc = time.Local
	}
	return &ClockWatcher{tolerance: tolerance, wall: wall, elapsed: elapsed, loc: loc}
}

// Check takes a sample and reports a change against the previous one. The
// first call only records the baseline.
func (w *ClockWatcher) Check() (ClockChange, bool) {
	now := w.wall().Round(0).In(w.loc)
	elapsed := w.elapsed()
	_, offset := now.Zone()

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.sampled {
		w.sampled = true
		w.lastWall, w.lastElapsed, w.lastOffset = now, elapsed, offset
		return ClockChange{}, false
	}

	drift := now.Sub(w.lastWall) - (elapsed - w.lastElapsed)
	change := ClockChange{Drift: drift, OffsetBefore: w.lastOffset, OffsetAfter: offset}
	w.lastWall, w.lastElapsed, w.lastOffset = now, elapsed, offset

	if drift < 0 {
		drift = -drift
	}
	return change, drift > w.tolerance || change.OffsetBefore != change.OffsetAfter
}
