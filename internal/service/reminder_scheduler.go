package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"montagebot/internal/metrics"
	"montagebot/internal/model"
)

// Timer is a re-armable one-shot wake-up source. Schedule replaces any
// pending wake-up; Cancel is safe to call when nothing is pending.
type Timer interface {
	Schedule(delay time.Duration, fire func()) error
	Cancel()
}

// NotificationSink delivers a reminder for half on date.
type NotificationSink interface {
	Notify(ctx context.Context, half model.Half, date model.Date) error
}

// DeliveryLog remembers which halves were already reminded on a date.
type DeliveryLog interface {
	Delivered(ctx context.Context, date model.Date) (model.Deliveries, error)
	MarkDelivered(ctx context.Context, date model.Date, half model.Half, at time.Time) error
}

// EntryReader reads today's entry for the wake-up evaluation.
type EntryReader interface {
	GetByDate(ctx context.Context, date model.Date) (*model.WorkEntry, error)
}

// Trigger names the reason for an arm.
type Trigger string

const (
	TriggerBoot           Trigger = "BOOT"
	TriggerClockChange    Trigger = "CLOCK_CHANGE"
	TriggerSettingsChange Trigger = "SETTINGS_CHANGE"
	TriggerWake           Trigger = "WAKE"
)

// State of the scheduler.
type State string

const (
	StateUnarmed State = "UNARMED"
	StateArmed   State = "ARMED"
)

// SchedulerOptions tunes timer registration and wake-ups.
type SchedulerOptions struct {
	RetryAttempts uint
	RetryInitial  time.Duration
	WakeTimeout   time.Duration
	Location      *time.Location
	Now           func() time.Time
}

// SchedulerStatus is a point-in-time view for status commands.
type SchedulerStatus struct {
	State    State
	Degraded bool
	NextWake time.Time
	ArmID    string
}

// ReminderScheduler keeps exactly one pending wake-up and evaluates the
// reminder windows whenever it fires.
type ReminderScheduler struct {
	timer      Timer
	settings   SettingsSource
	entries    EntryReader
	deliveries DeliveryLog
	sink       NotificationSink
	opts       SchedulerOptions
	log        *zap.Logger

	// armMu serializes arms; mu only guards the fields below and is never
	// held while waiting on a retry.
	armMu sync.Mutex

	mu         sync.Mutex
	state      State
	generation uint64
	armID      string
	nextWake   time.Time
	degraded   bool

	// evalMu keeps wake-ups and manual checks from notifying twice.
	evalMu sync.Mutex
}

func NewReminderScheduler(timer Timer, settings SettingsSource, entries EntryReader, deliveries DeliveryLog, sink NotificationSink, opts SchedulerOptions, log *zap.Logger) *ReminderScheduler {
	if opts.RetryAttempts == 0 {
		opts.RetryAttempts = 5
	}
	if opts.RetryInitial <= 0 {
		opts.RetryInitial = time.Second
	}
	if opts.WakeTimeout <= 0 {
		opts.WakeTimeout = 30 * time.Second
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ReminderScheduler{
		timer:      timer,
		settings:   settings,
		entries:    entries,
		deliveries: deliveries,
		sink:       sink,
		opts:       opts,
		log:        log.Named("scheduler"),
		state:      StateUnarmed,
	}
}

// Arm cancels the pending wake-up and installs the next one for the current
// settings. With no enabled window the scheduler ends up UNARMED. Arms are
// serialized; a Disable or newer arm during the retry makes this one a no-op.
func (s *ReminderScheduler) Arm(ctx context.Context, trigger Trigger) error {
	s.armMu.Lock()
	defer s.armMu.Unlock()
	return s.arm(ctx, trigger, 0)
}

// errArmSuperseded stops the retry once the generation moved on.
var errArmSuperseded = errors.New("arm superseded")

// arm must be called with armMu held. A non-zero expect aborts the arm when
// the generation no longer matches it.
func (s *ReminderScheduler) arm(ctx context.Context, trigger Trigger, expect uint64) error {
	s.mu.Lock()
	if expect != 0 && expect != s.generation {
		s.mu.Unlock()
		return nil
	}
	metrics.RecordArm(string(trigger))
	s.timer.Cancel()
	s.generation++
	gen := s.generation
	armID := uuid.NewString()
	s.armID = armID
	s.state = StateUnarmed
	s.nextWake = time.Time{}
	now := s.now()
	delay, ok := NextWake(now, s.settings.Current())
	if !ok {
		s.setDegradedLocked(false)
		s.mu.Unlock()
		s.log.Info("no reminder window enabled, scheduler unarmed", zap.String("trigger", string(trigger)))
		return nil
	}
	s.mu.Unlock()

	fire := func() { s.wake(gen) }
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.opts.RetryInitial
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.generation {
			return struct{}{}, backoff.Permanent(errArmSuperseded)
		}
		if err := s.timer.Schedule(delay, fire); err != nil {
			return struct{}{}, err
		}
		s.state = StateArmed
		s.nextWake = now.Add(delay)
		return struct{}{}, nil
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(s.opts.RetryAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			s.log.Warn("timer registration failed, retrying",
				zap.Error(err),
				zap.Duration("retry_in", next),
			)
		}),
	)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.log.Debug("arm superseded during retry",
			zap.String("trigger", string(trigger)),
			zap.String("arm_id", armID),
		)
		return nil
	}
	if err != nil {
		s.timer.Cancel()
		s.setDegradedLocked(true)
		s.log.Error("reminder scheduling degraded",
			zap.String("trigger", string(trigger)),
			zap.Uint("attempts", s.opts.RetryAttempts),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrSchedulingFailure, err)
	}

	s.setDegradedLocked(false)
	s.log.Info("scheduler armed",
		zap.String("trigger", string(trigger)),
		zap.String("arm_id", armID),
		zap.Time("next_wake", s.nextWake),
	)
	return nil
}

// Disable cancels the pending wake-up. Wake-ups already in flight are dropped.
func (s *ReminderScheduler) Disable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer.Cancel()
	s.generation++
	s.state = StateUnarmed
	s.nextWake = time.Time{}
	s.log.Info("scheduler disabled")
}

func (s *ReminderScheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Degraded reports whether the last arm gave up registering a timer.
func (s *ReminderScheduler) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

func (s *ReminderScheduler) Status() SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SchedulerStatus{
		State:    s.state,
		Degraded: s.degraded,
		NextWake: s.nextWake,
		ArmID:    s.armID,
	}
}

// OnSettingsChanged re-arms for new settings; it fits SettingsService.OnChange.
func (s *ReminderScheduler) OnSettingsChanged(ctx context.Context, _ model.ReminderSettings) error {
	return s.Arm(ctx, TriggerSettingsChange)
}

func (s *ReminderScheduler) wake(gen uint64) {
	s.mu.Lock()
	stale := gen != s.generation || s.state != StateArmed
	s.mu.Unlock()
	if stale {
		s.log.Debug("dropping stale wake-up", zap.Uint64("generation", gen))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.WakeTimeout)
	defer cancel()

	if _, err := s.Check(ctx); err != nil {
		s.log.Error("window evaluation failed", zap.Error(err), zap.String("error_kind", ErrorKind(err)))
	}

	// Someone re-armed or disabled while we were evaluating; arm skips then.
	s.armMu.Lock()
	defer s.armMu.Unlock()
	if err := s.arm(ctx, TriggerWake, gen); err != nil {
		s.log.Error("re-arm after wake-up failed", zap.Error(err))
	}
}

// Check evaluates the windows once at the current time and notifies when a
// reminder is due. A half is only logged as delivered after the sink
// accepted the notification.
func (s *ReminderScheduler) Check(ctx context.Context) (Decision, error) {
	s.evalMu.Lock()
	defer s.evalMu.Unlock()

	now := s.now()
	date := model.DateOf(now)

	entry, err := s.entries.GetByDate(ctx, date)
	if err != nil {
		return DecisionNone, fmt.Errorf("load today's entry: %w", err)
	}
	delivered, err := s.deliveries.Delivered(ctx, date)
	if err != nil {
		return DecisionNone, fmt.Errorf("load delivery log: %w", err)
	}

	decision := EvaluateWindow(now, s.settings.Current(), entry, delivered)
	half, fire := decision.Half()
	if !fire {
		return DecisionNone, nil
	}

	// Settings may have changed while we were reading the store.
	if !s.settings.Current().Window(half).Enabled {
		s.log.Info("window disabled before notify", zap.String("half", half.Label()))
		return DecisionNone, nil
	}

	if err := s.sink.Notify(ctx, half, date); err != nil {
		return DecisionNone, fmt.Errorf("notify %s: %w", half.Label(), err)
	}
	if err := s.deliveries.MarkDelivered(ctx, date, half, now); err != nil {
		s.log.Error("reminder delivered but not logged", zap.String("half", half.Label()), zap.Error(err))
	}
	metrics.RecordReminder(half.Label())
	s.log.Info("reminder sent", zap.String("half", half.Label()), zap.String("date", date.String()))
	return decision, nil
}

func (s *ReminderScheduler) now() time.Time {
	return s.opts.Now().In(s.opts.Location)
}

func (s *ReminderScheduler) setDegradedLocked(degraded bool) {
	s.degraded = degraded
	metrics.SetSchedulerDegraded(degraded)
}
