package service

import (
	"sync"

	"montagebot/internal/model"
)

// DateLocks serializes work on the same date while leaving different dates
// independent. Idle locks are dropped.
type DateLocks struct {
	mu    sync.Mutex
	locks map[model.Date]*dateLock
}

type dateLock struct {
	mu   sync.Mutex
	refs int
}

func NewDateLocks() *DateLocks {
	return &DateLocks{locks: make(map[model.Date]*dateLock)}
}

// Lock blocks until date is free and returns the matching unlock func.
func (l *DateLocks) Lock(date model.Date) func() {
	l.mu.Lock()
	dl, ok := l.locks[date]
	if !ok {
		dl = &dateLock{}
		l.locks[date] = dl
	}
	dl.refs++
	l.mu.Unlock()

	dl.mu.Lock()
	return func() {
		dl.mu.Unlock()
		l.mu.Lock()
		dl.refs--
		if dl.refs == 0 {
			delete(l.locks, date)
		}
		l.mu.Unlock()
	}
}

func (l *DateLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
