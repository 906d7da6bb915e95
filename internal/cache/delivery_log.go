package cache

import (
	"context"
	"fmt"
	"time"

	"montagebot/internal/model"
)

const (
	reminderDeliveredPrefix = "reminder:delivered"

	// Keys outlive the day they describe so a late wake after midnight in
	// another zone still sees them.
	deliveredTTL = 48 * time.Hour
)

// DeliveryLog keeps per-day reminder delivery marks in redis.
type DeliveryLog struct {
	client *Client
}

func NewDeliveryLog(client *Client) *DeliveryLog {
	return &DeliveryLog{client: client}
}

func (l *DeliveryLog) key(date model.Date, half model.Half) string {
	return l.client.Key(reminderDeliveredPrefix, date.String(), half.Label())
}

// Delivered returns the halves already reminded on date.
func (l *DeliveryLog) Delivered(ctx context.Context, date model.Date) (model.Deliveries, error) {
	var out model.Deliveries
	for _, h := range model.Halves {
		n, err := l.client.rdb.Exists(ctx, l.key(date, h)).Result()
		if err != nil {
			return model.Deliveries{}, fmt.Errorf("check reminder delivered: %w", err)
		}
		if n > 0 {
			out.Add(h)
		}
	}
	return out, nil
}

// MarkDelivered sets the mark once; later calls keep the first timestamp.
func (l *DeliveryLog) MarkDelivered(ctx context.Context, date model.Date, half model.Half, at time.Time) error {
	err := l.client.rdb.SetNX(ctx, l.key(date, half), at.UTC().Format(time.RFC3339), deliveredTTL).Err()
	if err != nil {
		return fmt.Errorf("mark reminder delivered: %w", err)
	}
	return nil
}
