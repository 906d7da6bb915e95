package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"montagebot/internal/model"
)

func printEntry(w io.Writer, e *model.WorkEntry, loc *time.Location) {
	fmt.Fprintf(w, "%s  %s\n", e.Date, strings.ToLower(string(e.DayType)))
	for _, h := range model.Halves {
		fmt.Fprintf(w, "  %-8s %s\n", h.Label(), describeCheckIn(e.Half(h), loc))
	}
	if e.WorkStart != nil || e.WorkEnd != nil || e.BreakMinutes > 0 {
		fmt.Fprintf(w, "  %-8s %s-%s, break %dm\n", "work", optionalTime(e.WorkStart), optionalTime(e.WorkEnd), e.BreakMinutes)
	}
	if e.HasTravel() {
		fmt.Fprintf(w, "  %-8s %s%s -> %s%s\n", "travel",
			clock(e.TravelStartAt, loc), optionalLabel(e.TravelLabelStart),
			clock(e.TravelArriveAt, loc), optionalLabel(e.TravelLabelEnd))
	}
	if e.Note != nil && *e.Note != "" {
		fmt.Fprintf(w, "  %-8s %s\n", "note", *e.Note)
	}
	if e.NeedsReview {
		fmt.Fprintf(w, "  %-8s %s\n", "review", joinReasons(e.ReviewReasons()))
	}
}

// printReviewList prints one line per flagged entry.
func printReviewList(w io.Writer, entries []model.WorkEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries need review.")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %s\n", e.Date, joinReasons(e.ReviewReasons()))
	}
}

func printSettings(w io.Writer, s model.ReminderSettings) {
	fmt.Fprintf(w, "morning   %s\n", s.Morning)
	fmt.Fprintf(w, "evening   %s\n", s.Evening)
	fmt.Fprintf(w, "center    %.5f,%.5f\n", s.CenterLat, s.CenterLon)
	fmt.Fprintf(w, "radius    %.0fm\n", s.RadiusMeters)
	fmt.Fprintf(w, "accuracy  %.0fm\n", s.MinAccuracyMeters)
	fmt.Fprintf(w, "label     %s\n", s.ReferenceLabel)
	fmt.Fprintf(w, "interval  %s\n", s.CheckInterval())
}

func describeCheckIn(c *model.CheckIn, loc *time.Location) string {
	if !c.Attempted() {
		return "-"
	}
	parts := []string{clock(c.CapturedAt, loc), strings.ToLower(string(c.LocationStatus))}
	if c.LocationLabel != nil && *c.LocationLabel != "" {
		parts = append(parts, *c.LocationLabel)
	}
	if out := c.Outside(); out != nil && *out {
		parts = append(parts, "outside")
	}
	if c.Confirmed() {
		parts = append(parts, "confirmed")
	}
	return strings.Join(parts, " ")
}

func joinReasons(reasons []model.ReviewReason) string {
	out := make([]string, len(reasons))
	for i, r := range reasons {
		out[i] = string(r)
	}
	return strings.Join(out, ", ")
}

func clock(t *time.Time, loc *time.Location) string {
	if t == nil {
		return "?"
	}
	return t.In(loc).Format("15:04")
}

func optionalTime(t *model.TimeOfDay) string {
	if t == nil {
		return "?"
	}
	return t.String()
}

func optionalLabel(s *string) string {
	if s == nil || *s == "" {
		return ""
	}
	return " (" + *s + ")"
}

// parseWindowRange reads "HH:MM-HH:MM".
func parseWindowRange(raw string) (model.TimeOfDay, model.TimeOfDay, error) {
	rawStart, rawEnd, ok := strings.Cut(raw, "-")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q, want HH:MM-HH:MM", model.ErrInvalidTimeOfDay, raw)
	}
	start, err := model.ParseTimeOfDay(strings.TrimSpace(rawStart))
	if err != nil {
		return 0, 0, err
	}
	end, err := model.ParseTimeOfDay(strings.TrimSpace(rawEnd))
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// parseClockOn turns "HH:MM" into an instant on date in loc.
func parseClockOn(raw string, date model.Date, loc *time.Location) (*time.Time, error) {
	t, err := model.ParseTimeOfDay(raw)
	if err != nil {
		return nil, err
	}
	at := t.On(date.In(loc))
	return &at, nil
}
