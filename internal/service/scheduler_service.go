package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// SchedulerService wraps cron-based jobs.
type SchedulerService struct {
	cron *cron.Cron
}

func NewSchedulerService(loc *time.Location) *SchedulerService {
	return &SchedulerService{
		cron: cron.New(cron.WithLocation(loc), cron.WithSeconds()),
	}
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// ScheduleInterval registers a periodic job every given duration.
func (s *SchedulerService) ScheduleInterval(interval time.Duration, job func()) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be positive")
	}
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	spec := fmt.Sprintf("@every %ds", seconds)
	return s.cron.AddFunc(spec, job)
}

// ScheduleOnce registers job to run a single time at at. A time in the past
// runs on the next scheduler tick.
func (s *SchedulerService) ScheduleOnce(at time.Time, job func()) cron.EntryID {
	return s.cron.Schedule(&onceSchedule{at: at}, cron.FuncJob(job))
}

// Remove drops a job. Unknown ids are ignored.
func (s *SchedulerService) Remove(id cron.EntryID) {
	s.cron.Remove(id)
}

// onceSchedule yields its instant on the first Next call and the zero time
// afterwards, which cron treats as never.
type onceSchedule struct {
	at   time.Time
	used bool
}

func (o *onceSchedule) Next(now time.Time) time.Time {
	if o.used {
		return time.Time{}
	}
	o.used = true
	if o.at.Before(now) {
		return now
	}
	return o.at
}

// CronTimer implements Timer with one-shot cron entries, keeping at most one
// registered at a time.
type CronTimer struct {
	svc *SchedulerService
	now func() time.Time

	mu      sync.Mutex
	id      cron.EntryID
	pending bool
}

func NewCronTimer(svc *SchedulerService, now func() time.Time) *CronTimer {
	if now == nil {
		now = time.Now
	}
	return &CronTimer{svc: svc, now: now}
}

func (t *CronTimer) Schedule(delay time.Duration, fire func()) error {
	if delay < 0 {
		return fmt.Errorf("negative delay %s", delay)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
	t.id = t.svc.ScheduleOnce(t.now().Add(delay), fire)
	t.pending = true
	return nil
}

func (t *CronTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
}

func (t *CronTimer) cancelLocked() {
	if t.pending {
		t.svc.Remove(t.id)
		t.pending = false
	}
}
