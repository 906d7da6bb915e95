package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"montagebot/internal/model"
)

func TestParseWindowRange(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{"06:00-13:00", false},
		{"6:00 - 13:00", false},
		{"06:00", true},
		{"06:00-25:00", true},
		{"-", true},
	}
	for _, tt := range tests {
		start, end, err := parseWindowRange(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseWindowRange(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && (start != model.MustTimeOfDay(6, 0) || end != model.MustTimeOfDay(13, 0)) {
			t.Errorf("parseWindowRange(%q) = %s-%s", tt.raw, start, end)
		}
	}
}

func TestParseCenter(t *testing.T) {
	lat, lon, err := parseCenter("51.34, 12.374")
	if err != nil || lat != 51.34 || lon != 12.374 {
		t.Errorf("parseCenter() = %v, %v, %v", lat, lon, err)
	}
	for _, bad := range []string{"51.34", "north,12", "51.34,east"} {
		if _, _, err := parseCenter(bad); err == nil {
			t.Errorf("parseCenter(%q) accepted", bad)
		}
	}
}

func TestResolveHalves(t *testing.T) {
	now := time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)
	e := model.NewWorkEntry("2026-03-02", now)

	if _, err := resolveHalves(e, ""); err == nil {
		t.Error("resolveHalves() on an entry without check-ins succeeded")
	}

	e.Evening.CapturedAt = &now
	halves, err := resolveHalves(e, "")
	if err != nil || len(halves) != 1 || halves[0] != model.HalfEvening {
		t.Errorf("resolveHalves() = %v, %v", halves, err)
	}

	halves, err = resolveHalves(e, "morning")
	if err != nil || len(halves) != 1 || halves[0] != model.HalfMorning {
		t.Errorf("resolveHalves(morning) = %v, %v", halves, err)
	}
	if _, err := resolveHalves(e, "noon"); err == nil {
		t.Error("resolveHalves(noon) accepted")
	}
}

func TestPrintEntry(t *testing.T) {
	loc := time.UTC
	captured := time.Date(2026, 3, 2, 6, 45, 0, 0, loc)
	arrive := time.Date(2026, 3, 2, 6, 30, 0, 0, loc)
	outside := true
	label := "Halle 3"
	to := "Baustelle"
	start, end := model.MustTimeOfDay(7, 0), model.MustTimeOfDay(15, 30)

	e := model.NewWorkEntry("2026-03-02", captured)
	e.Morning.CapturedAt = &captured
	e.Morning.LocationLabel = &label
	e.Morning.OutsideReferenceArea = &outside
	e.WorkStart, e.WorkEnd, e.BreakMinutes = &start, &end, 30
	e.TravelArriveAt = &arrive
	e.TravelLabelEnd = &to
	e.NeedsReview = e.ComputeNeedsReview()

	var buf bytes.Buffer
	printEntry(&buf, e, loc)
	got := buf.String()
	for _, want := range []string{
		"2026-03-02  work",
		"morning  06:45 ok Halle 3 outside",
		"evening  -",
		"07:00-15:30, break 30m",
		"? -> 06:30 (Baustelle)",
		"morning_outside_area",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("printEntry() missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "note") {
		t.Errorf("printEntry() shows an empty note:\n%s", got)
	}
}
