package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"montagebot/internal/model"
)

func (b *Bot) handleSettings(chatID int64) error {
	b.mu.Lock()
	status := b.status
	b.mu.Unlock()

	text := formatSettings(b.settings.Current())
	if status != nil {
		text += "\n" + formatSchedulerStatus(status.Status(), b.opts.Location)
	}
	return b.sendText(chatID, text)
}

func (b *Bot) handleWindow(ctx context.Context, chatID int64, args string) error {
	half, apply, err := parseWindowArgs(args)
	if err != nil {
		return b.sendText(chatID, "Format: /window morning|evening on|off|06:00-13:00")
	}
	return b.updateSettings(ctx, chatID, func(s *model.ReminderSettings) error {
		w := s.Window(half)
		apply(&w)
		s.SetWindow(half, w)
		return nil
	})
}

func (b *Bot) handleArea(ctx context.Context, chatID int64, args string) error {
	fields := strings.Fields(args)
	if len(fields) != 3 {
		return b.sendText(chatID, "Format: /area 51.340 12.374 30000")
	}
	var values [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.ReplaceAll(f, ",", "."), 64)
		if err != nil {
			return b.sendText(chatID, "Format: /area 51.340 12.374 30000")
		}
		values[i] = v
	}
	return b.updateSettings(ctx, chatID, func(s *model.ReminderSettings) error {
		s.CenterLat, s.CenterLon, s.RadiusMeters = values[0], values[1], values[2]
		return nil
	})
}

func (b *Bot) handleAccuracy(ctx context.Context, chatID int64, args string) error {
	meters, err := strconv.ParseFloat(strings.ReplaceAll(args, ",", "."), 64)
	if err != nil {
		return b.sendText(chatID, "Format: /accuracy 3000")
	}
	return b.updateSettings(ctx, chatID, func(s *model.ReminderSettings) error {
		s.MinAccuracyMeters = meters
		return nil
	})
}

func (b *Bot) updateSettings(ctx context.Context, chatID int64, fn func(*model.ReminderSettings) error) error {
	updated, err := b.settings.Update(ctx, fn)
	if err != nil {
		return b.replyError(chatID, "update settings", err)
	}
	return b.sendText(chatID, fmt.Sprintf("⚙️ Einstellungen gespeichert.\n\n%s", formatSettings(updated)))
}
