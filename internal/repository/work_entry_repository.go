package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"montagebot/internal/model"
)

// WorkEntryRepository stores one WorkEntry per date.
type WorkEntryRepository struct {
	db *gorm.DB
}

func NewWorkEntryRepository(db *gorm.DB) *WorkEntryRepository {
	return &WorkEntryRepository{db: db}
}

// GetByDate returns nil without error when no entry exists for date.
func (r *WorkEntryRepository) GetByDate(ctx context.Context, date model.Date) (*model.WorkEntry, error) {
	var entry model.WorkEntry
	err := r.db.WithContext(ctx).Where("date = ?", date).First(&entry).Error
	switch {
	case err == nil:
		return &entry, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find work entry %s: %w", date, err)
	}
}

// Upsert inserts entry or overwrites every column of the existing row for
// the same date in one statement.
func (r *WorkEntryRepository) Upsert(ctx context.Context, entry *model.WorkEntry) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}},
			UpdateAll: true,
		}).
		Create(entry).Error
	if err != nil {
		return fmt.Errorf("upsert work entry %s: %w", entry.Date, err)
	}
	return nil
}

// DeleteByDate removes the entry for date. Missing dates are not an error.
func (r *WorkEntryRepository) DeleteByDate(ctx context.Context, date model.Date) error {
	if err := r.db.WithContext(ctx).Where("date = ?", date).Delete(&model.WorkEntry{}).Error; err != nil {
		return fmt.Errorf("delete work entry %s: %w", date, err)
	}
	return nil
}

// GetByDateRange returns entries with from <= date <= to, newest first.
func (r *WorkEntryRepository) GetByDateRange(ctx context.Context, from, to model.Date) ([]model.WorkEntry, error) {
	var entries []model.WorkEntry
	if err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", from, to).
		Order("date DESC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list work entries: %w", err)
	}
	return entries, nil
}

// NeedingReview returns flagged entries in the range, newest first.
func (r *WorkEntryRepository) NeedingReview(ctx context.Context, from, to model.Date) ([]model.WorkEntry, error) {
	var entries []model.WorkEntry
	if err := r.db.WithContext(ctx).
		Where("needs_review = ? AND date >= ? AND date <= ?", true, from, to).
		Order("date DESC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list entries needing review: %w", err)
	}
	return entries, nil
}
