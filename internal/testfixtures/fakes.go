package testfixtures

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"montagebot/internal/model"
)

// FakeTimer records scheduled wake-ups; tests fire them by hand.
type FakeTimer struct {
	mu        sync.Mutex
	fire      func()
	delay     time.Duration
	active    int
	schedules int
	cancels   int
	failNext  int
}

var ErrTimerRefused = errors.New("testfixtures: timer registration refused")

// FailNext makes the next n Schedule calls fail.
func (t *FakeTimer) FailNext(n int) {
	t.mu.Lock()
	t.failNext = n
	t.mu.Unlock()
}

func (t *FakeTimer) Schedule(delay time.Duration, fire func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.schedules++
	if t.failNext > 0 {
		t.failNext--
		return ErrTimerRefused
	}
	t.fire = fire
	t.delay = delay
	t.active = 1
	return nil
}

func (t *FakeTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancels++
	t.fire = nil
	t.active = 0
}

// Active is the number of pending wake-ups, zero or one.
func (t *FakeTimer) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Delay is the delay of the pending wake-up.
func (t *FakeTimer) Delay() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.delay
}

// Schedules counts Schedule calls, failed ones included.
func (t *FakeTimer) Schedules() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.schedules
}

// Fire runs the pending wake-up, if any, and reports whether one ran.
func (t *FakeTimer) Fire() bool {
	t.mu.Lock()
	fire := t.fire
	t.fire = nil
	t.active = 0
	t.mu.Unlock()
	if fire == nil {
		return false
	}
	fire()
	return true
}

// Notification is one call recorded by RecordingSink.
type Notification struct {
	Half model.Half
	Date model.Date
}

// RecordingSink records notifications and can be made to fail.
type RecordingSink struct {
	mu   sync.Mutex
	sent []Notification
	Err  error
	Hook func(Notification)
}

func (s *RecordingSink) Notify(_ context.Context, half model.Half, date model.Date) error {
	s.mu.Lock()
	if s.Err != nil {
		err := s.Err
		s.mu.Unlock()
		return err
	}
	n := Notification{Half: half, Date: date}
	s.sent = append(s.sent, n)
	hook := s.Hook
	s.mu.Unlock()
	if hook != nil {
		hook(n)
	}
	return nil
}

func (s *RecordingSink) SetErr(err error) {
	s.mu.Lock()
	s.Err = err
	s.mu.Unlock()
}

func (s *RecordingSink) Sent() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notification(nil), s.sent...)
}

// MemoryStore is an in-memory work entry store and delivery log.
type MemoryStore struct {
	mu         sync.Mutex
	entries    map[model.Date]model.WorkEntry
	deliveries map[model.Date]model.Deliveries
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:    make(map[model.Date]model.WorkEntry),
		deliveries: make(map[model.Date]model.Deliveries),
	}
}

func (m *MemoryStore) GetByDate(_ context.Context, date model.Date) (*model.WorkEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[date]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *MemoryStore) Upsert(_ context.Context, entry *model.WorkEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.Date] = *entry
	return nil
}

func (m *MemoryStore) DeleteByDate(_ context.Context, date model.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, date)
	return nil
}

func (m *MemoryStore) GetByDateRange(_ context.Context, from, to model.Date) ([]model.WorkEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.WorkEntry
	for d, e := range m.entries {
		if d >= from && d <= to {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (m *MemoryStore) Delivered(_ context.Context, date model.Date) (model.Deliveries, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deliveries[date], nil
}

func (m *MemoryStore) MarkDelivered(_ context.Context, date model.Date, half model.Half, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.deliveries[date]
	d.Add(half)
	m.deliveries[date] = d
	return nil
}

// StaticSettings is a settings source tests can swap.
type StaticSettings struct {
	mu sync.RWMutex
	v  model.ReminderSettings
}

func NewStaticSettings(v model.ReminderSettings) *StaticSettings {
	return &StaticSettings{v: v}
}

func (s *StaticSettings) Current() model.ReminderSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v
}

func (s *StaticSettings) Set(v model.ReminderSettings) {
	s.mu.Lock()
	s.v = v
	s.mu.Unlock()
}

// Settings returns valid settings with a 06:00-09:00 morning window, a
// 16:00-22:30 evening window and a 5 km area around Leipzig.
func Settings() model.ReminderSettings {
	return model.ReminderSettings{
		ID:                   model.SettingsID,
		Morning:              model.Window{Enabled: true, Start: model.MustTimeOfDay(6, 0), End: model.MustTimeOfDay(9, 0)},
		Evening:              model.Window{Enabled: true, Start: model.MustTimeOfDay(16, 0), End: model.MustTimeOfDay(22, 30)},
		CenterLat:            51.3397,
		CenterLon:            12.3731,
		RadiusMeters:         5000,
		MinAccuracyMeters:    100,
		ReferenceLabel:       "Leipzig",
		CheckIntervalMinutes: 15,
	}
}

// SettingsStore keeps the settings row in memory.
type SettingsStore struct {
	mu      sync.Mutex
	stored  *model.ReminderSettings
	saves   int
	SaveErr error
}

func (s *SettingsStore) LoadOrSeed(_ context.Context, seed model.ReminderSettings) (model.ReminderSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stored == nil {
		seed.ID = model.SettingsID
		s.stored = &seed
	}
	return *s.stored, nil
}

func (s *SettingsStore) Save(_ context.Context, v model.ReminderSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.saves++
	s.stored = &v
	return nil
}

// Saves counts successful Save calls.
func (s *SettingsStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
