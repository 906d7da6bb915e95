package service_test

import (
	"sync"
	"testing"
	"time"

	"montagebot/internal/service"
	"montagebot/internal/testfixtures"
)

// fakeClocks drives the wall and monotonic readings of a ClockWatcher.
type fakeClocks struct {
	mu      sync.Mutex
	wall    time.Time
	elapsed time.Duration
}

func (f *fakeClocks) Wall() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.wall
}

func (f *fakeClocks) Elapsed() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.elapsed
}

// tick moves both clocks by d and the wall clock by an extra jump.
func (f *fakeClocks) tick(d, jump time.Duration) {
	f.mu.Lock()
	f.wall = f.wall.Add(d + jump)
	f.elapsed += d
	f.mu.Unlock()
}

func TestClockWatcher(t *testing.T) {
	tests := []struct {
		name   string
		jump   time.Duration
		wantOK bool
	}{
		{"steady clock", 0, false},
		{"small drift within tolerance", 30 * time.Second, false},
		{"manual clock forward", 2 * time.Hour, true},
		{"manual clock backward", -10 * time.Minute, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clocks := &fakeClocks{wall: at(10, 0)}
			w := service.NewClockWatcherWith(2*time.Minute, testfixtures.Berlin(), clocks.Wall, clocks.Elapsed)

			if _, changed := w.Check(); changed {
				t.Fatal("first Check() reported a change")
			}
			clocks.tick(time.Minute, tt.jump)
			change, changed := w.Check()
			if changed != tt.wantOK {
				t.Fatalf("Check() changed = %v, want %v (drift %v)", changed, tt.wantOK, change.Drift)
			}
			if change.Drift != tt.jump {
				t.Errorf("Drift = %v, want %v", change.Drift, tt.jump)
			}
		})
	}
}

func TestClockWatcherDetectsOffsetChange(t *testing.T) {
	loc := testfixtures.Berlin()
	if loc.String() != "Europe/Berlin" {
		t.Skip("tz database unavailable")
	}
	// 01:59 CET, one minute before clocks go forward.
	clocks := &fakeClocks{wall: time.Date(2026, 3, 29, 1, 59, 0, 0, loc)}
	w := service.NewClockWatcherWith(2*time.Minute, loc, clocks.Wall, clocks.Elapsed)
	w.Check()

	clocks.tick(2*time.Minute, 0)
	change, changed := w.Check()
	if !changed {
		t.Fatal("Check() missed the DST transition")
	}
	if change.OffsetBefore != 3600 || change.OffsetAfter != 7200 {
		t.Errorf("offsets = %d -> %d, want 3600 -> 7200", change.OffsetBefore, change.OffsetAfter)
	}
	if change.Drift != 0 {
		t.Errorf("Drift = %v, want 0 for a zone change", change.Drift)
	}
}
