package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownDayType        = errors.New("model: unknown day type")
	ErrUnknownLocationStatus = errors.New("model: unknown location status")
	ErrUnknownHalf           = errors.New("model: unknown half")
)

// DayType marks a date as a working day or a day off.
type DayType string

const (
	DayTypeWork DayType = "WORK"
	DayTypeOff  DayType = "OFF"
)

// ParseDayType maps user input to a DayType. Matching is case-insensitive;
// anything else is rejected. Stored values are matched exactly by Scan.
func ParseDayType(raw string) (DayType, error) {
	switch DayType(strings.ToUpper(strings.TrimSpace(raw))) {
	case DayTypeWork:
		return DayTypeWork, nil
	case DayTypeOff:
		return DayTypeOff, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDayType, raw)
	}
}

func (d DayType) Valid() bool {
	return d == DayTypeWork || d == DayTypeOff
}

func (d DayType) Value() (driver.Value, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDayType, string(d))
	}
	return string(d), nil
}

func (d *DayType) Scan(src any) error {
	raw, err := scanString(src)
	if err != nil {
		return fmt.Errorf("scan day type: %w", err)
	}
	v := DayType(raw)
	if !v.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownDayType, raw)
	}
	*d = v
	return nil
}

func (DayType) GormDataType() string { return "string" }

// LocationStatus is the quality verdict for the location reading of a half.
type LocationStatus string

const (
	LocationOK          LocationStatus = "OK"
	LocationUnavailable LocationStatus = "UNAVAILABLE"
	LocationLowAccuracy LocationStatus = "LOW_ACCURACY"
)

func ParseLocationStatus(raw string) (LocationStatus, error) {
	switch LocationStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case LocationOK:
		return LocationOK, nil
	case LocationUnavailable:
		return LocationUnavailable, nil
	case LocationLowAccuracy:
		return LocationLowAccuracy, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLocationStatus, raw)
	}
}

func (s LocationStatus) Valid() bool {
	switch s {
	case LocationOK, LocationUnavailable, LocationLowAccuracy:
		return true
	}
	return false
}

// Degraded reports whether the status should put the entry up for review.
func (s LocationStatus) Degraded() bool {
	return s == LocationUnavailable || s == LocationLowAccuracy
}

func (s LocationStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLocationStatus, string(s))
	}
	return string(s), nil
}

func (s *LocationStatus) Scan(src any) error {
	raw, err := scanString(src)
	if err != nil {
		return fmt.Errorf("scan location status: %w", err)
	}
	v := LocationStatus(raw)
	if !v.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownLocationStatus, raw)
	}
	*s = v
	return nil
}

func (LocationStatus) GormDataType() string { return "string" }

// Half selects the morning or evening check-in of a WorkEntry.
type Half string

const (
	HalfMorning Half = "MORNING"
	HalfEvening Half = "EVENING"
)

// Halves lists both halves in tie-break order.
var Halves = []Half{HalfMorning, HalfEvening}

func ParseHalf(raw string) (Half, error) {
	switch Half(strings.ToUpper(strings.TrimSpace(raw))) {
	case HalfMorning:
		return HalfMorning, nil
	case HalfEvening:
		return HalfEvening, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownHalf, raw)
	}
}

func (h Half) Valid() bool {
	return h == HalfMorning || h == HalfEvening
}

// Label is the lower-case form used in logs, metrics and commands.
func (h Half) Label() string {
	return strings.ToLower(string(h))
}

func (h Half) Value() (driver.Value, error) {
	if !h.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHalf, string(h))
	}
	return string(h), nil
}

func (h *Half) Scan(src any) error {
	raw, err := scanString(src)
	if err != nil {
		return fmt.Errorf("scan half: %w", err)
	}
	v := Half(raw)
	if !v.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownHalf, raw)
	}
	*h = v
	return nil
}

func (Half) GormDataType() string { return "string" }

func scanString(src any) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case nil:
		return "", errors.New("unexpected NULL")
	default:
		return "", fmt.Errorf("unsupported type %T", src)
	}
}
