package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"montagebot/internal/model"
)

// SettingsRepository persists the single ReminderSettings row.
type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// LoadOrSeed returns the stored settings, writing seed first if none exist.
func (r *SettingsRepository) LoadOrSeed(ctx context.Context, seed model.ReminderSettings) (model.ReminderSettings, error) {
	var settings model.ReminderSettings
	db := r.db.WithContext(ctx)
	err := db.First(&settings, model.SettingsID).Error
	switch {
	case err == nil:
		return settings, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		seed.ID = model.SettingsID
		if err := db.Create(&seed).Error; err != nil {
			return model.ReminderSettings{}, fmt.Errorf("create settings: %w", err)
		}
		return seed, nil
	default:
		return model.ReminderSettings{}, fmt.Errorf("find settings: %w", err)
	}
}

// Save overwrites the settings row.
func (r *SettingsRepository) Save(ctx context.Context, settings model.ReminderSettings) error {
	settings.ID = model.SettingsID
	if err := r.db.WithContext(ctx).Save(&settings).Error; err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
