package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"montagebot/internal/location"
	"montagebot/internal/metrics"
	"montagebot/internal/model"
)

// WorkEntryStore is the keyed persistence the recorder works against.
type WorkEntryStore interface {
	GetByDate(ctx context.Context, date model.Date) (*model.WorkEntry, error)
	Upsert(ctx context.Context, entry *model.WorkEntry) error
	DeleteByDate(ctx context.Context, date model.Date) error
	GetByDateRange(ctx context.Context, from, to model.Date) ([]model.WorkEntry, error)
}

// SettingsSource hands out the current settings snapshot.
type SettingsSource interface {
	Current() model.ReminderSettings
}

// CheckInRecorder records check-ins and manual edits and keeps NeedsReview
// in sync with the rest of the entry.
type CheckInRecorder struct {
	store    WorkEntryStore
	settings SettingsSource
	locks    *DateLocks
	now      func() time.Time
	log      *zap.Logger
}

func NewCheckInRecorder(store WorkEntryStore, settings SettingsSource, now func() time.Time, log *zap.Logger) *CheckInRecorder {
	if now == nil {
		now = time.Now
	}
	return &CheckInRecorder{
		store:    store,
		settings: settings,
		locks:    NewDateLocks(),
		now:      now,
		log:      log.Named("recorder"),
	}
}

type recordOptions struct {
	label *string
}

// RecordOption tweaks a single check-in.
type RecordOption func(*recordOptions)

// WithLabel stores label as the location label instead of the derived one.
func WithLabel(label string) RecordOption {
	return func(o *recordOptions) {
		if label != "" {
			o.label = &label
		}
	}
}

func (r *CheckInRecorder) RecordMorningCheckIn(ctx context.Context, date model.Date, now time.Time, reading *location.Reading, opts ...RecordOption) (*model.WorkEntry, error) {
	return r.RecordCheckIn(ctx, model.HalfMorning, date, now, reading, opts...)
}

func (r *CheckInRecorder) RecordEveningCheckIn(ctx context.Context, date model.Date, now time.Time, reading *location.Reading, opts ...RecordOption) (*model.WorkEntry, error) {
	return r.RecordCheckIn(ctx, model.HalfEvening, date, now, reading, opts...)
}

// RecordCheckIn overwrites one half of the entry for date with a fresh
// capture at now. A nil reading is recorded as UNAVAILABLE, never rejected.
func (r *CheckInRecorder) RecordCheckIn(ctx context.Context, half model.Half, date model.Date, now time.Time, reading *location.Reading, opts ...RecordOption) (*model.WorkEntry, error) {
	if !half.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownHalf, string(half))
	}
	var o recordOptions
	for _, opt := range opts {
		opt(&o)
	}

	settings := r.settings.Current()
	assessment, err := location.Assess(reading, settings)
	if err != nil {
		return nil, err
	}

	entry, err := r.mutate(ctx, date, now, true, func(e *model.WorkEntry) error {
		captured := now
		checkIn := model.CheckIn{
			CapturedAt:           &captured,
			LocationLabel:        o.label,
			OutsideReferenceArea: assessment.OutsideReferenceArea,
			LocationStatus:       assessment.Status,
		}
		if reading != nil {
			lat, lon, acc := reading.Lat, reading.Lon, reading.AccuracyMeters
			checkIn.Lat, checkIn.Lon, checkIn.AccuracyMeters = &lat, &lon, &acc
		}
		if checkIn.LocationLabel == nil && settings.ReferenceLabel != "" &&
			assessment.OutsideReferenceArea != nil && !*assessment.OutsideReferenceArea {
			label := settings.ReferenceLabel
			checkIn.LocationLabel = &label
		}
		*e.Half(half) = checkIn
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordCheckIn(half.Label(), string(assessment.Status))
	fields := []zap.Field{
		zap.String("date", date.String()),
		zap.String("half", half.Label()),
		zap.String("status", string(assessment.Status)),
		zap.Bool("needs_review", entry.NeedsReview),
	}
	if assessment.DistanceMeters != nil {
		fields = append(fields, zap.Float64("distance_m", *assessment.DistanceMeters))
	}
	r.log.Info("check-in recorded", fields...)
	return entry, nil
}

// SetDayType creates or updates the day type of date.
func (r *CheckInRecorder) SetDayType(ctx context.Context, date model.Date, dayType model.DayType) (*model.WorkEntry, error) {
	if !dayType.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownDayType, string(dayType))
	}
	return r.mutate(ctx, date, r.now(), true, func(e *model.WorkEntry) error {
		e.DayType = dayType
		return nil
	})
}

// TravelEvent carries the travel fields to write. Nil fields are left as
// they are.
type TravelEvent struct {
	StartAt    *time.Time
	ArriveAt   *time.Time
	LabelStart *string
	LabelEnd   *string
}

// SetTravelEvent creates or updates the travel fields of date.
func (r *CheckInRecorder) SetTravelEvent(ctx context.Context, date model.Date, ev TravelEvent) (*model.WorkEntry, error) {
	return r.mutate(ctx, date, r.now(), true, func(e *model.WorkEntry) error {
		if ev.StartAt != nil {
			e.TravelStartAt = ev.StartAt
		}
		if ev.ArriveAt != nil {
			e.TravelArriveAt = ev.ArriveAt
		}
		if ev.LabelStart != nil {
			e.TravelLabelStart = ev.LabelStart
		}
		if ev.LabelEnd != nil {
			e.TravelLabelEnd = ev.LabelEnd
		}
		return nil
	})
}

// ClearTravelEvents removes all travel fields. The entry must exist.
func (r *CheckInRecorder) ClearTravelEvents(ctx context.Context, date model.Date) (*model.WorkEntry, error) {
	return r.mutate(ctx, date, r.now(), false, func(e *model.WorkEntry) error {
		e.ClearTravel()
		return nil
	})
}

// EntryPatch is a field-level manual correction. Nil fields are left as
// they are; ClearWorkTimes and ClearNote reset the matching fields first.
type EntryPatch struct {
	WorkStart      *model.TimeOfDay
	WorkEnd        *model.TimeOfDay
	BreakMinutes   *int
	Note           *string
	ClearWorkTimes bool
	ClearNote      bool
}

// UpdateEntry applies patch to an existing entry. Unlike the check-in flow,
// an explicit edit that leaves work end at or before work start is rejected.
func (r *CheckInRecorder) UpdateEntry(ctx context.Context, date model.Date, patch EntryPatch) (*model.WorkEntry, error) {
	if patch.BreakMinutes != nil && *patch.BreakMinutes < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBreak, *patch.BreakMinutes)
	}
	for _, t := range []*model.TimeOfDay{patch.WorkStart, patch.WorkEnd} {
		if t != nil && !t.Valid() {
			return nil, fmt.Errorf("%w: %d minutes", model.ErrInvalidTimeOfDay, int(*t))
		}
	}

	return r.mutate(ctx, date, r.now(), false, func(e *model.WorkEntry) error {
		if patch.ClearWorkTimes {
			e.WorkStart, e.WorkEnd = nil, nil
		}
		if patch.ClearNote {
			e.Note = nil
		}
		if patch.WorkStart != nil {
			v := *patch.WorkStart
			e.WorkStart = &v
		}
		if patch.WorkEnd != nil {
			v := *patch.WorkEnd
			e.WorkEnd = &v
		}
		if patch.BreakMinutes != nil {
			e.BreakMinutes = *patch.BreakMinutes
		}
		if patch.Note != nil {
			v := *patch.Note
			e.Note = &v
		}
		if (patch.WorkStart != nil || patch.WorkEnd != nil) &&
			e.WorkStart != nil && e.WorkEnd != nil && *e.WorkEnd <= *e.WorkStart {
			return fmt.Errorf("%w: %s-%s", ErrInvalidTimeRange, *e.WorkStart, *e.WorkEnd)
		}
		return nil
	})
}

// ResolveReview confirms the location of the given halves by hand: label
// becomes the location label and inside the confirmed area verdict. The
// assessed status and area fields are kept as recorded; confirmed halves no
// longer count for review either way. The entry is created when missing.
func (r *CheckInRecorder) ResolveReview(ctx context.Context, date model.Date, halves []model.Half, label string, inside bool) (*model.WorkEntry, error) {
	for _, h := range halves {
		if !h.Valid() {
			return nil, fmt.Errorf("%w: %q", model.ErrUnknownHalf, string(h))
		}
	}
	return r.mutate(ctx, date, r.now(), true, func(e *model.WorkEntry) error {
		for _, h := range halves {
			c := e.Half(h)
			l, outside := label, !inside
			c.LocationLabel = &l
			c.ConfirmedOutside = &outside
		}
		return nil
	})
}

// DeleteEntry removes the entry for date and returns it. A missing date
// yields nil, nil.
func (r *CheckInRecorder) DeleteEntry(ctx context.Context, date model.Date) (*model.WorkEntry, error) {
	unlock := r.locks.Lock(date)
	defer unlock()

	entry, err := r.store.GetByDate(ctx, date)
	if err != nil || entry == nil {
		return nil, err
	}
	if err := r.store.DeleteByDate(ctx, date); err != nil {
		return nil, err
	}
	r.log.Info("entry deleted", zap.String("date", date.String()))
	return entry, nil
}

// Entry returns the entry for date or nil.
func (r *CheckInRecorder) Entry(ctx context.Context, date model.Date) (*model.WorkEntry, error) {
	return r.store.GetByDate(ctx, date)
}

// Entries returns entries between from and to inclusive, newest first.
func (r *CheckInRecorder) Entries(ctx context.Context, from, to model.Date) ([]model.WorkEntry, error) {
	return r.store.GetByDateRange(ctx, from, to)
}

type reviewLister interface {
	NeedingReview(ctx context.Context, from, to model.Date) ([]model.WorkEntry, error)
}

// NeedingReview returns the flagged entries between from and to, newest
// first. Stores that can filter on their own are asked to.
func (r *CheckInRecorder) NeedingReview(ctx context.Context, from, to model.Date) ([]model.WorkEntry, error) {
	if lister, ok := r.store.(reviewLister); ok {
		return lister.NeedingReview(ctx, from, to)
	}
	entries, err := r.store.GetByDateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	flagged := entries[:0]
	for _, e := range entries {
		if e.NeedsReview {
			flagged = append(flagged, e)
		}
	}
	return flagged, nil
}

// mutate runs fn on the entry for date under the date lock, recomputes the
// review flag and persists the result.
func (r *CheckInRecorder) mutate(ctx context.Context, date model.Date, now time.Time, create bool, fn func(*model.WorkEntry) error) (*model.WorkEntry, error) {
	if _, err := model.ParseDate(date.String()); err != nil {
		return nil, err
	}

	unlock := r.locks.Lock(date)
	defer unlock()

	entry, err := r.store.GetByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		if !create {
			return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, date)
		}
		entry = model.NewWorkEntry(date, now)
	}

	if err := fn(entry); err != nil {
		return nil, err
	}

	entry.NeedsReview = entry.ComputeNeedsReview()
	if now.After(entry.UpdatedAt) {
		entry.UpdatedAt = now
	}
	if err := r.store.Upsert(ctx, entry); err != nil {
		return nil, err
	}
	if entry.NeedsReview {
		metrics.RecordNeedsReview()
		r.log.Debug("entry needs review",
			zap.String("date", date.String()),
			zap.Any("reasons", entry.ReviewReasons()),
		)
	}
	return entry, nil
}
