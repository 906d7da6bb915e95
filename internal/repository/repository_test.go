package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"montagebot/internal/model"
	"montagebot/internal/repository"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "data", "test.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestWorkEntryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewWorkEntryRepository(openTestDB(t))

	got, err := repo.GetByDate(ctx, "2026-03-02")
	if err != nil || got != nil {
		t.Fatalf("GetByDate(missing) = %+v, %v; want nil, nil", got, err)
	}

	now := time.Date(2026, 3, 2, 7, 15, 0, 0, time.UTC)
	entry := model.NewWorkEntry("2026-03-02", now)
	start := model.MustTimeOfDay(7, 0)
	label := "Leipzig"
	lat, lon, acc := 51.34, 12.37, 15.0
	outside := false
	entry.WorkStart = &start
	entry.Morning = model.CheckIn{
		CapturedAt:           &now,
		LocationLabel:        &label,
		Lat:                  &lat,
		Lon:                  &lon,
		AccuracyMeters:       &acc,
		OutsideReferenceArea: &outside,
		LocationStatus:       model.LocationOK,
	}
	if err := repo.Upsert(ctx, entry); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err = repo.GetByDate(ctx, "2026-03-02")
	if err != nil || got == nil {
		t.Fatalf("GetByDate() = %+v, %v", got, err)
	}
	if got.WorkStart == nil || *got.WorkStart != start {
		t.Errorf("WorkStart = %v, want %v", got.WorkStart, start)
	}
	if got.WorkEnd != nil {
		t.Errorf("WorkEnd = %v, want nil", *got.WorkEnd)
	}
	if got.Morning.LocationLabel == nil || *got.Morning.LocationLabel != label {
		t.Errorf("Morning.LocationLabel = %v", got.Morning.LocationLabel)
	}
	if got.Morning.OutsideReferenceArea == nil || *got.Morning.OutsideReferenceArea {
		t.Errorf("Morning.OutsideReferenceArea = %v", got.Morning.OutsideReferenceArea)
	}
	if got.Evening.CapturedAt != nil || got.Evening.LocationStatus != model.LocationOK {
		t.Errorf("Evening = %+v, want untouched", got.Evening)
	}
	if got.DayType != model.DayTypeWork {
		t.Errorf("DayType = %s", got.DayType)
	}

	// Overwrite with zero values: the upsert must not keep stale columns.
	got.WorkStart = nil
	got.BreakMinutes = 0
	got.NeedsReview = false
	got.DayType = model.DayTypeOff
	if err := repo.Upsert(ctx, got); err != nil {
		t.Fatalf("Upsert(update) error = %v", err)
	}
	again, err := repo.GetByDate(ctx, "2026-03-02")
	if err != nil {
		t.Fatalf("GetByDate() error = %v", err)
	}
	if again.WorkStart != nil || again.DayType != model.DayTypeOff {
		t.Errorf("after update WorkStart = %v DayType = %s", again.WorkStart, again.DayType)
	}
	if !again.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", again.CreatedAt, now)
	}
}

func TestWorkEntryKeepsConfirmedVerdict(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewWorkEntryRepository(openTestDB(t))

	now := time.Date(2026, 3, 2, 7, 15, 0, 0, time.UTC)
	entry := model.NewWorkEntry("2026-03-02", now)
	label := "Berlin"
	confirmed := true
	entry.Morning = model.CheckIn{
		CapturedAt:       &now,
		LocationLabel:    &label,
		LocationStatus:   model.LocationUnavailable,
		ConfirmedOutside: &confirmed,
	}
	if err := repo.Upsert(ctx, entry); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := repo.GetByDate(ctx, "2026-03-02")
	if err != nil || got == nil {
		t.Fatalf("GetByDate() = %+v, %v", got, err)
	}
	if got.Morning.ConfirmedOutside == nil || !*got.Morning.ConfirmedOutside {
		t.Errorf("Morning.ConfirmedOutside = %v, want true", got.Morning.ConfirmedOutside)
	}
	if got.Morning.OutsideReferenceArea != nil || got.Morning.LocationStatus != model.LocationUnavailable {
		t.Errorf("Morning assessment = %v, %s; want nil, UNAVAILABLE", got.Morning.OutsideReferenceArea, got.Morning.LocationStatus)
	}
	if got.Evening.ConfirmedOutside != nil {
		t.Errorf("Evening.ConfirmedOutside = %v, want nil", *got.Evening.ConfirmedOutside)
	}

	got.Morning.ConfirmedOutside = nil
	if err := repo.Upsert(ctx, got); err != nil {
		t.Fatalf("Upsert(reset) error = %v", err)
	}
	again, err := repo.GetByDate(ctx, "2026-03-02")
	if err != nil {
		t.Fatalf("GetByDate() error = %v", err)
	}
	if again.Morning.ConfirmedOutside != nil {
		t.Errorf("after reset ConfirmedOutside = %v, want nil", *again.Morning.ConfirmedOutside)
	}
}

func TestWorkEntryRangeAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewWorkEntryRepository(openTestDB(t))
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	for _, d := range []model.Date{"2026-02-27", "2026-03-01", "2026-03-02", "2026-03-05"} {
		e := model.NewWorkEntry(d, now)
		e.NeedsReview = d == "2026-03-01"
		if err := repo.Upsert(ctx, e); err != nil {
			t.Fatalf("Upsert(%s) error = %v", d, err)
		}
	}

	entries, err := repo.GetByDateRange(ctx, "2026-03-01", "2026-03-05")
	if err != nil {
		t.Fatalf("GetByDateRange() error = %v", err)
	}
	var dates []model.Date
	for _, e := range entries {
		dates = append(dates, e.Date)
	}
	want := []model.Date{"2026-03-05", "2026-03-02", "2026-03-01"}
	if len(dates) != len(want) {
		t.Fatalf("GetByDateRange() dates = %v, want %v", dates, want)
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Fatalf("GetByDateRange() dates = %v, want %v", dates, want)
		}
	}

	flagged, err := repo.NeedingReview(ctx, "2026-01-01", "2026-12-31")
	if err != nil || len(flagged) != 1 || flagged[0].Date != "2026-03-01" {
		t.Fatalf("NeedingReview() = %+v, %v", flagged, err)
	}

	if err := repo.DeleteByDate(ctx, "2026-03-02"); err != nil {
		t.Fatalf("DeleteByDate() error = %v", err)
	}
	if err := repo.DeleteByDate(ctx, "2026-03-02"); err != nil {
		t.Fatalf("DeleteByDate(missing) error = %v", err)
	}
	if got, _ := repo.GetByDate(ctx, "2026-03-02"); got != nil {
		t.Errorf("entry still present after delete: %+v", got)
	}
}

func TestSettingsLoadOrSeed(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSettingsRepository(openTestDB(t))

	seed := model.ReminderSettings{
		Morning:              model.Window{Enabled: true, Start: model.MustTimeOfDay(6, 0), End: model.MustTimeOfDay(13, 0)},
		Evening:              model.Window{Enabled: false, Start: model.MustTimeOfDay(16, 0), End: model.MustTimeOfDay(22, 30)},
		CenterLat:            51.34,
		CenterLon:            12.374,
		RadiusMeters:         30000,
		MinAccuracyMeters:    3000,
		CheckIntervalMinutes: 30,
	}
	got, err := repo.LoadOrSeed(ctx, seed)
	if err != nil {
		t.Fatalf("LoadOrSeed() error = %v", err)
	}
	if got.ID != model.SettingsID || got.Morning != seed.Morning {
		t.Fatalf("LoadOrSeed() = %+v", got)
	}

	got.Evening.Enabled = true
	got.RadiusMeters = 5000
	if err := repo.Save(ctx, got); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	other := seed
	other.RadiusMeters = 1
	loaded, err := repo.LoadOrSeed(ctx, other)
	if err != nil {
		t.Fatalf("LoadOrSeed() error = %v", err)
	}
	if !loaded.Evening.Enabled || loaded.RadiusMeters != 5000 {
		t.Errorf("LoadOrSeed() after save = %+v, want stored row", loaded)
	}
	if loaded.Evening.End != model.MustTimeOfDay(22, 30) {
		t.Errorf("Evening.End = %s", loaded.Evening.End)
	}
}

func TestDeliveryLog(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewDeliveryRepository(openTestDB(t))
	at := time.Date(2026, 3, 2, 6, 30, 0, 0, time.UTC)

	got, err := repo.Delivered(ctx, "2026-03-02")
	if err != nil || got.Has(model.HalfMorning) || got.Has(model.HalfEvening) {
		t.Fatalf("Delivered(empty) = %+v, %v", got, err)
	}

	for i := 0; i < 2; i++ {
		if err := repo.MarkDelivered(ctx, "2026-03-02", model.HalfMorning, at); err != nil {
			t.Fatalf("MarkDelivered() error = %v", err)
		}
	}
	got, err = repo.Delivered(ctx, "2026-03-02")
	if err != nil || !got.Has(model.HalfMorning) || got.Has(model.HalfEvening) {
		t.Fatalf("Delivered() = %+v, %v", got, err)
	}

	if err := repo.Prune(ctx, "2026-03-03"); err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	got, _ = repo.Delivered(ctx, "2026-03-02")
	if got.Has(model.HalfMorning) {
		t.Error("Prune() kept an old row")
	}
}
