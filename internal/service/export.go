package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"montagebot/internal/model"
)

const exportTimestampLayout = "2006-01-02 15:04:05"

var exportHeader = []string{
	"date", "dayType", "workStart", "workEnd", "breakMinutes",
	"morningCapturedAt", "morningLocationLabel", "morningOutside",
	"eveningCapturedAt", "eveningLocationLabel", "eveningOutside",
	"travelStartAt", "travelArriveAt", "travelLabelStart", "travelLabelEnd",
	"note", "needsReview", "createdAt", "updatedAt",
}

// EntryRangeReader lists entries for an inclusive date range.
type EntryRangeReader interface {
	GetByDateRange(ctx context.Context, from, to model.Date) ([]model.WorkEntry, error)
}

// Exporter writes work entries as semicolon separated CSV.
type Exporter struct {
	entries EntryRangeReader
	loc     *time.Location
}

func NewExporter(entries EntryRangeReader, loc *time.Location) *Exporter {
	if loc == nil {
		loc = time.Local
	}
	return &Exporter{entries: entries, loc: loc}
}

// Export writes the entries between from and to in ascending date order and
// returns how many rows were written.
func (e *Exporter) Export(ctx context.Context, from, to model.Date, w io.Writer) (int, error) {
	entries, err := e.entries.GetByDateRange(ctx, from, to)
	if err != nil {
		return 0, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })
	if err := WriteCSV(w, entries, e.loc); err != nil {
		return 0, err
	}
	return len(entries), nil
}

// WriteCSV writes entries in the given order. Timestamps are rendered in loc.
func WriteCSV(w io.Writer, entries []model.WorkEntry, loc *time.Location) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, entry := range entries {
		if err := cw.Write(exportRow(entry, loc)); err != nil {
			return fmt.Errorf("write csv row %s: %w", entry.Date, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func exportRow(e model.WorkEntry, loc *time.Location) []string {
	ts := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.In(loc).Format(exportTimestampLayout)
	}
	str := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	tod := func(t *model.TimeOfDay) string {
		if t == nil {
			return ""
		}
		return t.String()
	}
	flag := func(b *bool) string {
		if b == nil {
			return ""
		}
		return strconv.FormatBool(*b)
	}
	created, updated := e.CreatedAt, e.UpdatedAt

	return []string{
		e.Date.String(),
		string(e.DayType),
		tod(e.WorkStart),
		tod(e.WorkEnd),
		strconv.Itoa(e.BreakMinutes),
		ts(e.Morning.CapturedAt),
		str(e.Morning.LocationLabel),
		flag(e.Morning.Outside()),
		ts(e.Evening.CapturedAt),
		str(e.Evening.LocationLabel),
		flag(e.Evening.Outside()),
		ts(e.TravelStartAt),
		ts(e.TravelArriveAt),
		str(e.TravelLabelStart),
		str(e.TravelLabelEnd),
		str(e.Note),
		strconv.FormatBool(e.NeedsReview),
		ts(&created),
		ts(&updated),
	}
}
