package service_test

import (
	"errors"
	"fmt"
	"testing"

	"montagebot/internal/location"
	"montagebot/internal/model"
	"montagebot/internal/service"
)

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("edit: %w", service.ErrRecordNotFound), "record_not_found"},
		{service.ErrInvalidTimeRange, "invalid_time_range"},
		{service.ErrInvalidBreak, "invalid_break"},
		{fmt.Errorf("%w: timer", service.ErrSchedulingFailure), "scheduling_failure"},
		{location.ErrInvalidCoordinate, "invalid_coordinate"},
		{model.ErrInvalidSettings, "invalid_settings"},
		{model.ErrInvalidDate, "invalid_input"},
		{model.ErrUnknownDayType, "decode"},
		{errors.New("boom"), "internal"},
	}
	for _, tt := range tests {
		if got := service.ErrorKind(tt.err); got != tt.want {
			t.Errorf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
