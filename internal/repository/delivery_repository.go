package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"montagebot/internal/model"
)

// DeliveryRepository is the sqlite reminder delivery log.
type DeliveryRepository struct {
	db *gorm.DB
}

func NewDeliveryRepository(db *gorm.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

// Delivered returns the halves already reminded on date.
func (r *DeliveryRepository) Delivered(ctx context.Context, date model.Date) (model.Deliveries, error) {
	var rows []model.ReminderDelivery
	if err := r.db.WithContext(ctx).Where("date = ?", date).Find(&rows).Error; err != nil {
		return model.Deliveries{}, fmt.Errorf("list deliveries %s: %w", date, err)
	}
	var out model.Deliveries
	for _, row := range rows {
		out.Add(row.Half)
	}
	return out, nil
}

// MarkDelivered records a reminder for half on date. Repeated calls keep the
// first delivery time.
func (r *DeliveryRepository) MarkDelivered(ctx context.Context, date model.Date, half model.Half, at time.Time) error {
	row := model.ReminderDelivery{Date: date, Half: half, DeliveredAt: at}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("mark delivered %s %s: %w", date, half.Label(), err)
	}
	return nil
}

// Prune drops log rows older than before.
func (r *DeliveryRepository) Prune(ctx context.Context, before model.Date) error {
	if err := r.db.WithContext(ctx).Where("date < ?", before).Delete(&model.ReminderDelivery{}).Error; err != nil {
		return fmt.Errorf("prune deliveries: %w", err)
	}
	return nil
}
