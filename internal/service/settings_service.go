package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"montagebot/internal/model"
)

// SettingsStore persists the settings row.
type SettingsStore interface {
	LoadOrSeed(ctx context.Context, seed model.ReminderSettings) (model.ReminderSettings, error)
	Save(ctx context.Context, settings model.ReminderSettings) error
}

// ChangeHook runs after a settings change has been persisted.
type ChangeHook func(ctx context.Context, settings model.ReminderSettings) error

// SettingsService owns the process-wide settings value. Readers get a copy
// of the last fully written value.
type SettingsService struct {
	store SettingsStore
	seed  model.ReminderSettings
	now   func() time.Time
	log   *zap.Logger

	mu      sync.RWMutex
	current model.ReminderSettings

	// writeMu serializes Update and Reload so hooks see changes in order.
	writeMu sync.Mutex
	hooks   []ChangeHook
}

func NewSettingsService(store SettingsStore, seed model.ReminderSettings, now func() time.Time, log *zap.Logger) *SettingsService {
	if now == nil {
		now = time.Now
	}
	return &SettingsService{store: store, seed: seed, now: now, log: log.Named("settings"), current: seed}
}

// Init loads the stored settings, seeding them on first start.
func (s *SettingsService) Init(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	loaded, err := s.store.LoadOrSeed(ctx, s.seed)
	if err != nil {
		return err
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("stored settings: %w", err)
	}
	s.set(loaded)
	return nil
}

// Current returns a copy of the settings.
func (s *SettingsService) Current() model.ReminderSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// OnChange registers a hook run after every successful change.
func (s *SettingsService) OnChange(hook ChangeHook) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.hooks = append(s.hooks, hook)
}

// Update applies fn to a copy of the settings, validates and persists the
// result, publishes it and then runs the change hooks. Hook failures are
// logged; the change itself stands.
func (s *SettingsService) Update(ctx context.Context, fn func(*model.ReminderSettings) error) (model.ReminderSettings, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := s.Current()
	if err := fn(&next); err != nil {
		return model.ReminderSettings{}, err
	}
	if err := next.Validate(); err != nil {
		return model.ReminderSettings{}, err
	}
	next.ID = model.SettingsID
	next.UpdatedAt = s.now()
	if err := s.store.Save(ctx, next); err != nil {
		return model.ReminderSettings{}, err
	}
	s.set(next)
	s.log.Info("settings updated",
		zap.Stringer("morning", next.Morning),
		zap.Stringer("evening", next.Evening),
	)
	s.runHooks(ctx, next)
	return next, nil
}

// Reload picks up changes written by another process and runs the hooks
// when the stored value differs. It reports whether anything changed.
func (s *SettingsService) Reload(ctx context.Context) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	loaded, err := s.store.LoadOrSeed(ctx, s.seed)
	if err != nil {
		return false, err
	}
	if sameSettings(loaded, s.Current()) {
		return false, nil
	}
	if err := loaded.Validate(); err != nil {
		return false, fmt.Errorf("stored settings: %w", err)
	}
	s.set(loaded)
	s.log.Info("settings reloaded from store")
	s.runHooks(ctx, loaded)
	return true, nil
}

func (s *SettingsService) set(v model.ReminderSettings) {
	s.mu.Lock()
	s.current = v
	s.mu.Unlock()
}

func (s *SettingsService) runHooks(ctx context.Context, v model.ReminderSettings) {
	for _, hook := range s.hooks {
		if err := hook(ctx, v); err != nil {
			s.log.Error("settings hook failed", zap.Error(err), zap.String("error_kind", ErrorKind(err)))
		}
	}
}

func sameSettings(a, b model.ReminderSettings) bool {
	a.UpdatedAt, b.UpdatedAt = time.Time{}, time.Time{}
	return a == b
}
