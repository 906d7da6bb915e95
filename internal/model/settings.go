package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrInvalidSettings = errors.New("model: invalid reminder settings")

// MinCheckIntervalMinutes is the floor for the periodic wake-up interval.
const MinCheckIntervalMinutes = 15

// SettingsID is the primary key of the single settings row.
const SettingsID = 1

// Window is a local-time interval [Start, End) during which a reminder for a
// half may fire.
type Window struct {
	Enabled bool      `gorm:"not null"`
	Start   TimeOfDay `gorm:"size:5;not null"`
	End     TimeOfDay `gorm:"size:5;not null"`
}

// Contains reports whether t lies inside [Start, End). It ignores Enabled.
func (w Window) Contains(t TimeOfDay) bool {
	return t >= w.Start && t < w.End
}

func (w Window) String() string {
	state := "off"
	if w.Enabled {
		state = "on"
	}
	return fmt.Sprintf("%s–%s (%s)", w.Start, w.End, state)
}

// ReminderSettings is the process-wide configuration record.
type ReminderSettings struct {
	ID uint `gorm:"primaryKey"`

	Morning Window `gorm:"embedded;embeddedPrefix:morning_"`
	Evening Window `gorm:"embedded;embeddedPrefix:evening_"`

	CenterLat         float64 `gorm:"not null"`
	CenterLon         float64 `gorm:"not null"`
	RadiusMeters      float64 `gorm:"not null"`
	MinAccuracyMeters float64 `gorm:"not null"`
	// ReferenceLabel names the reference area; check-ins inside it without
	// an explicit label inherit it.
	ReferenceLabel string

	CheckIntervalMinutes int `gorm:"not null"`

	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}

// TableName keeps the table name stable regardless of gorm's pluralizer.
func (ReminderSettings) TableName() string {
	return "reminder_settings"
}

// Window returns the window configured for h.
func (s ReminderSettings) Window(h Half) Window {
	if h == HalfEvening {
		return s.Evening
	}
	return s.Morning
}

// SetWindow replaces the window configured for h.
func (s *ReminderSettings) SetWindow(h Half, w Window) {
	if h == HalfEvening {
		s.Evening = w
		return
	}
	s.Morning = w
}

// AnyWindowEnabled reports whether at least one reminder window is active.
func (s ReminderSettings) AnyWindowEnabled() bool {
	return s.Morning.Enabled || s.Evening.Enabled
}

// CheckInterval returns the wake-up interval with the floor applied.
func (s ReminderSettings) CheckInterval() time.Duration {
	minutes := s.CheckIntervalMinutes
	if minutes < MinCheckIntervalMinutes {
		minutes = MinCheckIntervalMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// Validate rejects settings that the evaluator and assessor cannot work with.
func (s ReminderSettings) Validate() error {
	for _, h := range Halves {
		w := s.Window(h)
		if !w.Start.Valid() || !w.End.Valid() {
			return fmt.Errorf("%w: %s window has an out-of-range time", ErrInvalidSettings, h.Label())
		}
		if w.Start >= w.End {
			return fmt.Errorf("%w: %s window must start before it ends", ErrInvalidSettings, h.Label())
		}
	}
	if math.IsNaN(s.CenterLat) || s.CenterLat < -90 || s.CenterLat > 90 {
		return fmt.Errorf("%w: center latitude %v out of range", ErrInvalidSettings, s.CenterLat)
	}
	if math.IsNaN(s.CenterLon) || s.CenterLon < -180 || s.CenterLon > 180 {
		return fmt.Errorf("%w: center longitude %v out of range", ErrInvalidSettings, s.CenterLon)
	}
	if !(s.RadiusMeters > 0) {
		return fmt.Errorf("%w: radius must be positive", ErrInvalidSettings)
	}
	if !(s.MinAccuracyMeters > 0) {
		return fmt.Errorf("%w: accuracy threshold must be positive", ErrInvalidSettings)
	}
	return nil
}
