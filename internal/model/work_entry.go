package model

import "time"

// CheckIn is one half (morning or evening) of a WorkEntry.
type CheckIn struct {
	CapturedAt           *time.Time
	LocationLabel        *string
	Lat                  *float64
	Lon                  *float64
	AccuracyMeters       *float64
	OutsideReferenceArea *bool
	LocationStatus       LocationStatus `gorm:"size:16;not null"`
	// ConfirmedOutside is the area verdict the owner gave by hand. Nil until
	// the location is confirmed; a new check-in on the half resets it.
	ConfirmedOutside *bool
}

// Attempted reports whether a check-in was recorded for this half.
func (c CheckIn) Attempted() bool {
	return c.CapturedAt != nil
}

// Confirmed reports whether the owner confirmed the location by hand.
func (c CheckIn) Confirmed() bool {
	return c.ConfirmedOutside != nil
}

// Outside is the effective area verdict: the confirmed one when present,
// otherwise the assessed one.
func (c CheckIn) Outside() *bool {
	if c.ConfirmedOutside != nil {
		return c.ConfirmedOutside
	}
	return c.OutsideReferenceArea
}

// WorkEntry is the per-date work record. Date is the unique key.
type WorkEntry struct {
	Date         Date       `gorm:"primaryKey;size:10"`
	WorkStart    *TimeOfDay `gorm:"size:5"`
	WorkEnd      *TimeOfDay `gorm:"size:5"`
	BreakMinutes int        `gorm:"not null"`
	DayType      DayType    `gorm:"size:8;not null"`

	Morning CheckIn `gorm:"embedded;embeddedPrefix:morning_"`
	Evening CheckIn `gorm:"embedded;embeddedPrefix:evening_"`

	TravelStartAt    *time.Time
	TravelArriveAt   *time.Time
	TravelLabelStart *string
	TravelLabelEnd   *string

	NeedsReview bool `gorm:"index;not null"`
	Note        *string
	CreatedAt   time.Time `gorm:"autoCreateTime:false;index"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false"`
}

// NewWorkEntry returns the implicit record created on first touch of a date.
func NewWorkEntry(date Date, now time.Time) *WorkEntry {
	return &WorkEntry{
		Date:      date,
		DayType:   DayTypeWork,
		Morning:   CheckIn{LocationStatus: LocationOK},
		Evening:   CheckIn{LocationStatus: LocationOK},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Half returns a pointer to the requested half so callers can mutate it.
func (e *WorkEntry) Half(h Half) *CheckIn {
	if h == HalfEvening {
		return &e.Evening
	}
	return &e.Morning
}

// HasTravel reports whether any travel field is set.
func (e *WorkEntry) HasTravel() bool {
	return e.TravelStartAt != nil || e.TravelArriveAt != nil ||
		e.TravelLabelStart != nil || e.TravelLabelEnd != nil
}

// ClearTravel resets the commute fields.
func (e *WorkEntry) ClearTravel() {
	e.TravelStartAt = nil
	e.TravelArriveAt = nil
	e.TravelLabelStart = nil
	e.TravelLabelEnd = nil
}
