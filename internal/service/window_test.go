package service_test

import (
	"testing"
	"time"

	"montagebot/internal/model"
	"montagebot/internal/service"
	"montagebot/internal/testfixtures"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 2, hour, minute, 0, 0, testfixtures.Berlin())
}

func TestEvaluateWindow(t *testing.T) {
	settings := testfixtures.Settings()
	captured := at(7, 0)

	morningDone := model.NewWorkEntry("2026-03-02", captured)
	morningDone.Morning.CapturedAt = &captured

	yesterday := model.NewWorkEntry("2026-03-01", captured)
	yesterday.Morning.CapturedAt = &captured

	disabledMorning := testfixtures.Settings()
	disabledMorning.Morning.Enabled = false

	overlapping := testfixtures.Settings()
	overlapping.Evening.Start = model.MustTimeOfDay(7, 0)

	dayOff := model.NewWorkEntry("2026-03-02", captured)
	dayOff.DayType = model.DayTypeOff

	offYesterday := model.NewWorkEntry("2026-03-01", captured)
	offYesterday.DayType = model.DayTypeOff

	tests := []struct {
		name      string
		now       time.Time
		settings  model.ReminderSettings
		entry     *model.WorkEntry
		delivered model.Deliveries
		want      service.Decision
	}{
		{"inside morning, nothing recorded", at(7, 30), settings, nil, model.Deliveries{}, service.DecisionFireMorning},
		{"window start is inclusive", at(6, 0), settings, nil, model.Deliveries{}, service.DecisionFireMorning},
		{"window end is exclusive", at(9, 0), settings, nil, model.Deliveries{}, service.DecisionNone},
		{"before window", at(5, 59), settings, nil, model.Deliveries{}, service.DecisionNone},
		{"morning captured", at(7, 35), settings, morningDone, model.Deliveries{}, service.DecisionNone},
		{"entry of another day is ignored", at(7, 35), settings, yesterday, model.Deliveries{}, service.DecisionFireMorning},
		{"already reminded", at(8, 0), settings, nil, model.Deliveries{Morning: true}, service.DecisionNone},
		{"morning disabled", at(7, 30), disabledMorning, nil, model.Deliveries{}, service.DecisionNone},
		{"inside evening", at(18, 0), settings, morningDone, model.Deliveries{Morning: true}, service.DecisionFireEvening},
		{"overlap prefers morning", at(7, 30), overlapping, nil, model.Deliveries{}, service.DecisionFireMorning},
		{"overlap falls to evening once morning fired", at(7, 30), overlapping, nil, model.Deliveries{Morning: true}, service.DecisionFireEvening},
		{"overlap falls to evening once morning captured", at(7, 30), overlapping, morningDone, model.Deliveries{}, service.DecisionFireEvening},
		{"day off silences morning", at(7, 30), settings, dayOff, model.Deliveries{}, service.DecisionNone},
		{"day off silences evening", at(18, 0), settings, dayOff, model.Deliveries{}, service.DecisionNone},
		{"day off of another date is ignored", at(7, 30), settings, offYesterday, model.Deliveries{}, service.DecisionFireMorning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.EvaluateWindow(tt.now, tt.settings, tt.entry, tt.delivered)
			if got != tt.want {
				t.Errorf("EvaluateWindow() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEvaluateWindowNeverFiresCapturedMorning(t *testing.T) {
	settings := testfixtures.Settings()
	settings.Morning.Start = model.MustTimeOfDay(0, 0)
	settings.Morning.End = model.MustTimeOfDay(23, 59)
	settings.Evening.Enabled = false

	captured := at(0, 1)
	entry := model.NewWorkEntry("2026-03-02", captured)
	entry.Morning.CapturedAt = &captured

	for minute := 0; minute < 24*60; minute += 7 {
		now := at(0, 0).Add(time.Duration(minute) * time.Minute)
		if got := service.EvaluateWindow(now, settings, entry, model.Deliveries{}); got == service.DecisionFireMorning {
			t.Fatalf("EvaluateWindow(%s) fired morning despite capture", now.Format("15:04"))
		}
	}
}

func TestNextWake(t *testing.T) {
	settings := testfixtures.Settings()
	settings.CheckIntervalMinutes = 20

	morningOnly := testfixtures.Settings()
	morningOnly.Evening.Enabled = false
	morningOnly.CheckIntervalMinutes = 5

	tests := []struct {
		name     string
		now      time.Time
		settings model.ReminderSettings
		want     time.Duration
	}{
		{"before morning window", at(5, 0), settings, time.Hour},
		{"inside morning window", at(7, 0), settings, 20 * time.Minute},
		{"between windows", at(12, 0), settings, 4 * time.Hour},
		{"after evening window", at(23, 0), settings, 7 * time.Hour},
		{"morning only after window", at(10, 0), morningOnly, 20 * time.Hour},
		{"interval floor applies", at(7, 0), morningOnly, 15 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := service.NextWake(tt.now, tt.settings)
			if !ok {
				t.Fatal("NextWake() reported no enabled window")
			}
			if got != tt.want {
				t.Errorf("NextWake() = %v, want %v", got, tt.want)
			}
		})
	}

	off := testfixtures.Settings()
	off.Morning.Enabled = false
	off.Evening.Enabled = false
	if _, ok := service.NextWake(at(7, 0), off); ok {
		t.Error("NextWake() with all windows disabled reported a wake")
	}
}

func TestNextWakeAcrossDSTChange(t *testing.T) {
	loc := testfixtures.Berlin()
	if loc.String() != "Europe/Berlin" {
		t.Skip("tz database unavailable")
	}
	settings := testfixtures.Settings()
	settings.Evening.Enabled = false

	// Clocks go forward on 2026-03-29 at 02:00; the night is an hour shorter.
	now := time.Date(2026, 3, 28, 22, 0, 0, 0, loc)
	got, ok := service.NextWake(now, settings)
	if !ok || got != 7*time.Hour {
		t.Errorf("NextWake() = %v, %v; want 7h", got, ok)
	}
}
