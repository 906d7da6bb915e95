package service

import (
	"time"

	"montagebot/internal/model"
)

// Decision is the outcome of one window evaluation.
type Decision string

const (
	DecisionNone        Decision = "NONE"
	DecisionFireMorning Decision = "FIRE_MORNING"
	DecisionFireEvening Decision = "FIRE_EVENING"
)

// Half returns the half a fire decision is for.
func (d Decision) Half() (model.Half, bool) {
	switch d {
	case DecisionFireMorning:
		return model.HalfMorning, true
	case DecisionFireEvening:
		return model.HalfEvening, true
	}
	return "", false
}

func fireDecision(h model.Half) Decision {
	if h == model.HalfEvening {
		return DecisionFireEvening
	}
	return DecisionFireMorning
}

// EvaluateWindow decides whether a reminder is due at now. A half fires when
// its window is enabled and contains now, today's entry has no capture for
// it and no reminder for it was delivered today. Morning wins a tie.
// An entry for a different date counts as no entry; an OFF entry for today
// silences both halves.
func EvaluateWindow(now time.Time, settings model.ReminderSettings, today *model.WorkEntry, delivered model.Deliveries) Decision {
	if today != nil && today.Date != model.DateOf(now) {
		today = nil
	}
	if today != nil && today.DayType == model.DayTypeOff {
		return DecisionNone
	}
	clock := model.ClockOf(now)

	for _, h := range model.Halves {
		w := settings.Window(h)
		if !w.Enabled || !w.Contains(clock) {
			continue
		}
		if today != nil && today.Half(h).Attempted() {
			continue
		}
		if delivered.Has(h) {
			continue
		}
		return fireDecision(h)
	}
	return DecisionNone
}

// NextWake returns the delay until the next evaluation: the start of an
// enabled window later today, the check interval while inside one, or the
// window start tomorrow once it has passed. The soonest across windows
// wins. It reports false when no window is enabled.
func NextWake(now time.Time, settings model.ReminderSettings) (time.Duration, bool) {
	var (
		best  time.Duration
		found bool
	)
	clock := model.ClockOf(now)
	for _, h := range model.Halves {
		w := settings.Window(h)
		if !w.Enabled {
			continue
		}
		var d time.Duration
		switch {
		case clock < w.Start:
			d = w.Start.On(now).Sub(now)
		case w.Contains(clock):
			d = settings.CheckInterval()
		default:
			d = w.Start.On(now.AddDate(0, 0, 1)).Sub(now)
		}
		if d < 0 {
			d = 0
		}
		if !found || d < best {
			best, found = d, true
		}
	}
	return best, found
}
