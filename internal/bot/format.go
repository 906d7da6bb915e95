package bot

import (
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"montagebot/internal/model"
	"montagebot/internal/service"
)

var weekdays = [...]string{"So", "Mo", "Di", "Mi", "Do", "Fr", "Sa"}

var reasonLabels = map[model.ReviewReason]string{
	model.ReasonMorningLocation: "Morgen ohne verlässlichen Standort",
	model.ReasonEveningLocation: "Abend ohne verlässlichen Standort",
	model.ReasonMorningOutside:  "Morgen außerhalb des Referenzgebiets",
	model.ReasonEveningOutside:  "Abend außerhalb des Referenzgebiets",
	model.ReasonCheckInOrder:    "Abend-Check-in nicht nach dem Morgen",
	model.ReasonWorkTimeRange:   "Arbeitsende nicht nach Arbeitsbeginn",
}

var errNoArgs = errors.New("missing arguments")

func escape(s string) string {
	return html.EscapeString(s)
}

func halfTitle(h model.Half) string {
	if h == model.HalfEvening {
		return "Abend"
	}
	return "Morgen"
}

func formatDate(d model.Date, loc *time.Location) string {
	t := d.In(loc)
	if t.IsZero() {
		return d.String()
	}
	return fmt.Sprintf("%s %s", weekdays[t.Weekday()], t.Format("02.01.2006"))
}

func formatShortDate(d model.Date, loc *time.Location) string {
	t := d.In(loc)
	if t.IsZero() {
		return d.String()
	}
	return t.Format("02.01.")
}

func formatClock(t *time.Time, loc *time.Location) string {
	if t == nil {
		return "–"
	}
	return t.In(loc).Format("15:04")
}

func dayTypeTitle(d model.DayType) string {
	if d == model.DayTypeOff {
		return "Frei"
	}
	return "Arbeitstag"
}

func formatEntry(e *model.WorkEntry, loc *time.Location) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📅 <b>%s</b> · %s\n", formatDate(e.Date, loc), dayTypeTitle(e.DayType)))
	for _, h := range model.Halves {
		icon := "🌅"
		if h == model.HalfEvening {
			icon = "🌇"
		}
		b.WriteString(fmt.Sprintf("%s %s: %s\n", icon, halfTitle(h), formatCheckIn(e.Half(h), loc)))
	}
	if e.WorkStart != nil || e.WorkEnd != nil || e.BreakMinutes > 0 {
		b.WriteString(fmt.Sprintf("🕒 Arbeitszeit: %s–%s, Pause %d min\n",
			formatTimeOfDay(e.WorkStart), formatTimeOfDay(e.WorkEnd), e.BreakMinutes))
	}
	if e.HasTravel() {
		b.WriteString(fmt.Sprintf("🚗 Fahrt: %s%s → %s%s\n",
			formatClock(e.TravelStartAt, loc), formatLabel(e.TravelLabelStart),
			formatClock(e.TravelArriveAt, loc), formatLabel(e.TravelLabelEnd)))
	}
	if e.Note != nil && *e.Note != "" {
		b.WriteString(fmt.Sprintf("📝 %s\n", escape(*e.Note)))
	}
	if e.NeedsReview {
		b.WriteString(fmt.Sprintf("⚠️ Prüfen: %s\n", formatReasons(e.ReviewReasons())))
	}
	return strings.TrimSpace(b.String())
}

func formatCheckIn(c *model.CheckIn, loc *time.Location) string {
	if !c.Attempted() {
		return "–"
	}
	parts := []string{formatClock(c.CapturedAt, loc)}
	if c.LocationLabel != nil {
		parts = append(parts, escape(*c.LocationLabel))
	}
	switch {
	case c.Confirmed():
		if *c.ConfirmedOutside {
			parts = append(parts, "außerhalb")
		}
		parts = append(parts, "bestätigt")
	case c.LocationStatus == model.LocationUnavailable:
		parts = append(parts, "kein Standort")
	case c.LocationStatus == model.LocationLowAccuracy:
		parts = append(parts, "ungenau")
	case c.OutsideReferenceArea != nil && *c.OutsideReferenceArea:
		parts = append(parts, "außerhalb")
	}
	return strings.Join(parts, " · ")
}

func formatTimeOfDay(t *model.TimeOfDay) string {
	if t == nil {
		return "?"
	}
	return t.String()
}

func formatLabel(s *string) string {
	if s == nil || *s == "" {
		return ""
	}
	return " (" + escape(*s) + ")"
}

func formatReasons(reasons []model.ReviewReason) string {
	labels := make([]string, 0, len(reasons))
	for _, r := range reasons {
		if label, ok := reasonLabels[r]; ok {
			labels = append(labels, label)
			continue
		}
		labels = append(labels, string(r))
	}
	return strings.Join(labels, ", ")
}

func formatCheckInResult(half model.Half, e *model.WorkEntry, loc *time.Location) string {
	c := e.Half(half)
	var b strings.Builder
	b.WriteString(fmt.Sprintf("✅ <b>%s-Check-in</b> um %s gespeichert.\n", halfTitle(half), formatClock(c.CapturedAt, loc)))
	switch c.LocationStatus {
	case model.LocationUnavailable:
		b.WriteString("⚠️ Kein Standort empfangen.\n")
	case model.LocationLowAccuracy:
		acc := 0.0
		if c.AccuracyMeters != nil {
			acc = *c.AccuracyMeters
		}
		b.WriteString(fmt.Sprintf("⚠️ Standort zu ungenau (±%.0f m).\n", acc))
	default:
		if c.OutsideReferenceArea != nil && *c.OutsideReferenceArea {
			b.WriteString("📍 Außerhalb des Referenzgebiets.\n")
		} else if c.LocationLabel != nil {
			b.WriteString(fmt.Sprintf("📍 %s\n", escape(*c.LocationLabel)))
		}
	}
	if e.NeedsReview {
		b.WriteString(fmt.Sprintf("⚠️ Zur Prüfung: %s\n", formatReasons(e.ReviewReasons())))
	}
	return strings.TrimSpace(b.String())
}

func formatSettings(s model.ReminderSettings) string {
	var b strings.Builder
	b.WriteString("⚙️ <b>Einstellungen</b>\n")
	b.WriteString(fmt.Sprintf("🌅 Morgen: %s\n", s.Morning))
	b.WriteString(fmt.Sprintf("🌇 Abend: %s\n", s.Evening))
	label := s.ReferenceLabel
	if label == "" {
		label = "Referenz"
	}
	b.WriteString(fmt.Sprintf("📍 %s (%.5f, %.5f), Radius %.1f km\n", escape(label), s.CenterLat, s.CenterLon, s.RadiusMeters/1000))
	b.WriteString(fmt.Sprintf("🎯 Mindestgenauigkeit: %.0f m\n", s.MinAccuracyMeters))
	b.WriteString(fmt.Sprintf("🔁 Prüfintervall: %d min", int(s.CheckInterval()/time.Minute)))
	return b.String()
}

func formatSchedulerStatus(st service.SchedulerStatus, loc *time.Location) string {
	var b strings.Builder
	if st.State == service.StateArmed {
		b.WriteString(fmt.Sprintf("⏱ Nächste Prüfung: %s", st.NextWake.In(loc).Format("02.01. 15:04")))
	} else {
		b.WriteString("⏱ Erinnerungen aus")
	}
	if st.Degraded {
		b.WriteString("\n⚠️ Erinnerungs-Timer konnte nicht registriert werden")
	}
	return b.String()
}

// errorMessage maps service errors to the text shown to the user.
func errorMessage(err error) string {
	switch service.ErrorKind(err) {
	case "record_not_found":
		return "Für dieses Datum gibt es keinen Eintrag."
	case "invalid_time_range":
		return "Arbeitsende muss nach dem Arbeitsbeginn liegen."
	case "invalid_break":
		return "Die Pause darf nicht negativ sein."
	case "invalid_settings":
		return "Ungültige Einstellungen: " + escape(err.Error())
	case "invalid_coordinate":
		return "Ungültige Koordinaten."
	case "invalid_input", "decode":
		return "Ungültige Eingabe. Datum als JJJJ-MM-TT, Uhrzeit als HH:MM."
	default:
		return "Interner Fehler, bitte später erneut versuchen."
	}
}

// parseDateArg reads an optional leading date from args.
func parseDateArg(args string, def model.Date) (model.Date, string, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return def, "", nil
	}
	date, err := model.ParseDate(fields[0])
	if err != nil {
		return "", "", err
	}
	return date, strings.Join(fields[1:], " "), nil
}

// parseHours reads "HH:MM HH:MM [break]".
func parseHours(args string) (service.EntryPatch, error) {
	fields := strings.Fields(args)
	if len(fields) < 2 || len(fields) > 3 {
		return service.EntryPatch{}, errNoArgs
	}
	start, err := model.ParseTimeOfDay(fields[0])
	if err != nil {
		return service.EntryPatch{}, err
	}
	end, err := model.ParseTimeOfDay(fields[1])
	if err != nil {
		return service.EntryPatch{}, err
	}
	patch := service.EntryPatch{WorkStart: &start, WorkEnd: &end}
	if len(fields) == 3 {
		minutes, err := strconv.Atoi(fields[2])
		if err != nil {
			return service.EntryPatch{}, fmt.Errorf("parse break: %w", err)
		}
		patch.BreakMinutes = &minutes
	}
	return patch, nil
}

var halfAliases = map[string]model.Half{
	"morning": model.HalfMorning,
	"morgen":  model.HalfMorning,
	"evening": model.HalfEvening,
	"abend":   model.HalfEvening,
}

// parseWindowArgs reads "morning|evening on|off|HH:MM-HH:MM".
func parseWindowArgs(args string) (model.Half, func(*model.Window), error) {
	fields := strings.Fields(strings.ToLower(args))
	if len(fields) != 2 {
		return "", nil, errNoArgs
	}
	half, ok := halfAliases[fields[0]]
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", model.ErrUnknownHalf, fields[0])
	}
	switch fields[1] {
	case "on", "an":
		return half, func(w *model.Window) { w.Enabled = true }, nil
	case "off", "aus":
		return half, func(w *model.Window) { w.Enabled = false }, nil
	}
	rawStart, rawEnd, ok := strings.Cut(fields[1], "-")
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", model.ErrInvalidTimeOfDay, fields[1])
	}
	start, err := model.ParseTimeOfDay(rawStart)
	if err != nil {
		return "", nil, err
	}
	end, err := model.ParseTimeOfDay(rawEnd)
	if err != nil {
		return "", nil, err
	}
	return half, func(w *model.Window) {
		w.Start, w.End = start, end
		w.Enabled = true
	}, nil
}
