package service

import (
	"sync"
	"testing"
	"time"

	"montagebot/internal/model"
)

func TestDateLocksSerializeSameDate(t *testing.T) {
	locks := NewDateLocks()
	unlock := locks.Lock("2026-03-02")

	acquired := make(chan struct{})
	go func() {
		release := locks.Lock("2026-03-02")
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatal("second Lock() on the same date did not block")
	case <-time.After(20 * time.Millisecond):
	}

	// Other dates stay free.
	other := locks.Lock("2026-03-03")
	other()

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second Lock() never acquired")
	}
}

func TestDateLocksDropIdleEntries(t *testing.T) {
	locks := NewDateLocks()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			date := model.Date("2026-03-02")
			if i%2 == 0 {
				date = "2026-03-03"
			}
			unlock := locks.Lock(date)
			unlock()
		}(i)
	}
	wg.Wait()
	if n := locks.size(); n != 0 {
		t.Errorf("size() = %d after all unlocks, want 0", n)
	}
}
