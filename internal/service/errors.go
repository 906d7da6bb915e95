package service

import (
	"errors"

	"montagebot/internal/location"
	"montagebot/internal/model"
)

var (
	// ErrRecordNotFound is returned by edits that cannot create a missing entry.
	ErrRecordNotFound = errors.New("service: record not found")
	// ErrInvalidTimeRange is returned when an explicit edit puts work end at or before work start.
	ErrInvalidTimeRange = errors.New("service: work end must be after work start")
	ErrInvalidBreak     = errors.New("service: break minutes must not be negative")
	// ErrSchedulingFailure is returned when the reminder timer could not be registered after retries.
	ErrSchedulingFailure = errors.New("service: scheduling failure")
)

// ErrorKind maps sentinel errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrRecordNotFound):
		return "record_not_found"
	case errors.Is(err, ErrInvalidTimeRange):
		return "invalid_time_range"
	case errors.Is(err, ErrInvalidBreak):
		return "invalid_break"
	case errors.Is(err, ErrSchedulingFailure):
		return "scheduling_failure"
	case errors.Is(err, location.ErrInvalidCoordinate):
		return "invalid_coordinate"
	case errors.Is(err, model.ErrInvalidSettings):
		return "invalid_settings"
	case errors.Is(err, model.ErrInvalidDate), errors.Is(err, model.ErrInvalidTimeOfDay):
		return "invalid_input"
	case errors.Is(err, model.ErrUnknownDayType),
		errors.Is(err, model.ErrUnknownLocationStatus),
		errors.Is(err, model.ErrUnknownHalf):
		return "decode"
	}
	return "internal"
}
