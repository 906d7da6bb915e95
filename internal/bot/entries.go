package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"montagebot/internal/model"
	"montagebot/internal/service"
)

const (
	reviewDays        = 30
	defaultExportDays = 31
	maxExportDays     = 366
)

func (b *Bot) handleToday(ctx context.Context, chatID int64, args string) error {
	date, _, err := parseDateArg(args, b.today())
	if err != nil {
		return b.replyError(chatID, "show entry", err)
	}
	entry, err := b.recorder.Entry(ctx, date)
	if err != nil {
		return b.replyError(chatID, "show entry", err)
	}
	if entry == nil {
		return b.sendText(chatID, fmt.Sprintf("Für %s gibt es noch keinen Eintrag.", formatDate(date, b.opts.Location)))
	}
	return b.sendText(chatID, formatEntry(entry, b.opts.Location))
}

func (b *Bot) handleDayType(ctx context.Context, chatID int64, dayType model.DayType, args string) error {
	date, _, err := parseDateArg(args, b.today())
	if err != nil {
		return b.replyError(chatID, "set day type", err)
	}
	entry, err := b.recorder.SetDayType(ctx, date, dayType)
	if err != nil {
		return b.replyError(chatID, "set day type", err)
	}
	return b.sendText(chatID, "✅ Gespeichert.\n\n"+formatEntry(entry, b.opts.Location))
}

func (b *Bot) handleTravel(ctx context.Context, chatID int64, start bool, label string) error {
	now := b.opts.Now()
	var ev service.TravelEvent
	var labelPtr *string
	if label != "" {
		labelPtr = &label
	}
	if start {
		ev.StartAt, ev.LabelStart = &now, labelPtr
	} else {
		ev.ArriveAt, ev.LabelEnd = &now, labelPtr
	}
	entry, err := b.recorder.SetTravelEvent(ctx, b.today(), ev)
	if err != nil {
		return b.replyError(chatID, "set travel event", err)
	}
	return b.sendText(chatID, "🚗 Fahrt gespeichert.\n\n"+formatEntry(entry, b.opts.Location))
}

func (b *Bot) handleTravelClear(ctx context.Context, chatID int64) error {
	entry, err := b.recorder.ClearTravelEvents(ctx, b.today())
	if err != nil {
		return b.replyError(chatID, "clear travel events", err)
	}
	return b.sendText(chatID, "🚗 Fahrtangaben gelöscht.\n\n"+formatEntry(entry, b.opts.Location))
}

func (b *Bot) handleHours(ctx context.Context, chatID int64, args string) error {
	patch, err := parseHours(args)
	if err != nil {
		return b.sendText(chatID, "Format: /hours 07:00 15:30 [Pause in Minuten]")
	}
	entry, err := b.updateToday(ctx, patch)
	if err != nil {
		return b.replyError(chatID, "update hours", err)
	}
	return b.sendText(chatID, "🕒 Arbeitszeit gespeichert.\n\n"+formatEntry(entry, b.opts.Location))
}

func (b *Bot) handleNote(ctx context.Context, chatID int64, args string) error {
	patch := service.EntryPatch{ClearNote: args == ""}
	if args != "" {
		patch.Note = &args
	}
	entry, err := b.updateToday(ctx, patch)
	if err != nil {
		return b.replyError(chatID, "update note", err)
	}
	return b.sendText(chatID, "📝 Notiz gespeichert.\n\n"+formatEntry(entry, b.opts.Location))
}

// updateToday applies patch to today's entry, creating a work day first when
// nothing has been recorded yet.
func (b *Bot) updateToday(ctx context.Context, patch service.EntryPatch) (*model.WorkEntry, error) {
	date := b.today()
	entry, err := b.recorder.UpdateEntry(ctx, date, patch)
	if !errors.Is(err, service.ErrRecordNotFound) {
		return entry, err
	}
	if _, err := b.recorder.SetDayType(ctx, date, model.DayTypeWork); err != nil {
		return nil, err
	}
	return b.recorder.UpdateEntry(ctx, date, patch)
}

func (b *Bot) handleReview(ctx context.Context, chatID int64) error {
	today := b.today()
	entries, err := b.recorder.NeedingReview(ctx, today.AddDays(-reviewDays), today)
	if err != nil {
		return b.replyError(chatID, "list review", err)
	}
	if len(entries) == 0 {
		return b.sendText(chatID, fmt.Sprintf("✅ Keine Einträge zur Prüfung in den letzten %d Tagen.", reviewDays))
	}

	var builder strings.Builder
	builder.WriteString("⚠️ <b>Zur Prüfung</b>\n")
	builder.WriteString("Tippe auf einen Tag, um den Standort als Referenzgebiet zu bestätigen.\n\n")

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, entry := range entries {
		builder.WriteString(fmt.Sprintf("• <b>%s</b>: %s\n", formatDate(entry.Date, b.opts.Location), formatReasons(entry.ReviewReasons())))
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ "+formatShortDate(entry.Date, b.opts.Location)+" bestätigen", cbResolvePrefix+entry.Date.String()),
		))
	}

	msg := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	_, err = b.api.Send(msg)
	return err
}

func (b *Bot) handleExport(ctx context.Context, chatID int64, args string) error {
	days := defaultExportDays
	if args != "" {
		n, err := strconv.Atoi(args)
		if err != nil || n <= 0 || n > maxExportDays {
			return b.sendText(chatID, fmt.Sprintf("Anzahl Tage muss zwischen 1 und %d liegen, z. B. /export 31", maxExportDays))
		}
		days = n
	}
	to := b.today()
	from := to.AddDays(-(days - 1))

	var buf bytes.Buffer
	rows, err := b.exporter.Export(ctx, from, to, &buf)
	if err != nil {
		return b.replyError(chatID, "export", err)
	}
	b.log.Info("export", zap.String("from", from.String()), zap.String("to", to.String()), zap.Int("rows", rows))

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("montage_%s_%s.csv", from, to),
		Bytes: buf.Bytes(),
	})
	doc.Caption = fmt.Sprintf("📄 %d Einträge (%s – %s)", rows, formatShortDate(from, b.opts.Location), formatShortDate(to, b.opts.Location))
	_, err = b.api.Send(doc)
	return err
}

func (b *Bot) handleDelete(chatID int64, args string) error {
	date, err := model.ParseDate(args)
	if err != nil {
		return b.sendText(chatID, "Datum angeben: /delete 2026-03-02")
	}
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("🗑 Eintrag vom %s wirklich löschen?", formatDate(date, b.opts.Location)))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(btnConfirm, cbDeletePrefix+date.String()),
		tgbotapi.NewInlineKeyboardButtonData(btnCancel, cbCancel),
	))
	_, err = b.api.Send(msg)
	return err
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.Warn("callback ack", zap.Error(err))
	}
	chatID := cb.Message.Chat.ID
	data := cb.Data

	switch {
	case strings.HasPrefix(data, cbCheckInPrefix):
		half, date, err := parseCheckInCallback(data)
		if err != nil {
			return b.replyError(chatID, "check-in callback", err)
		}
		return b.startCheckIn(ctx, chatID, half, date, "")
	case strings.HasPrefix(data, cbResolvePrefix):
		date, err := model.ParseDate(strings.TrimPrefix(data, cbResolvePrefix))
		if err != nil {
			return b.replyError(chatID, "resolve callback", err)
		}
		return b.resolveReview(ctx, chatID, date)
	case strings.HasPrefix(data, cbDeletePrefix):
		date, err := model.ParseDate(strings.TrimPrefix(data, cbDeletePrefix))
		if err != nil {
			return b.replyError(chatID, "delete callback", err)
		}
		deleted, err := b.recorder.DeleteEntry(ctx, date)
		if err != nil {
			return b.replyError(chatID, "delete entry", err)
		}
		if deleted == nil {
			return b.sendText(chatID, fmt.Sprintf("Für %s gab es keinen Eintrag.", formatDate(date, b.opts.Location)))
		}
		return b.sendText(chatID, "🗑 Gelöscht:\n\n"+formatEntry(deleted, b.opts.Location))
	case data == cbCancel:
		return b.sendText(chatID, "↩️ Abgebrochen.")
	default:
		b.log.Warn("unknown callback", zap.String("data", data))
		return nil
	}
}

// resolveReview confirms the recorded halves of date as inside the
// reference area.
func (b *Bot) resolveReview(ctx context.Context, chatID int64, date model.Date) error {
	entry, err := b.recorder.Entry(ctx, date)
	if err != nil {
		return b.replyError(chatID, "resolve review", err)
	}
	if entry == nil {
		return b.replyError(chatID, "resolve review", service.ErrRecordNotFound)
	}
	var halves []model.Half
	for _, h := range model.Halves {
		if entry.Half(h).Attempted() {
			halves = append(halves, h)
		}
	}
	entry, err = b.recorder.ResolveReview(ctx, date, halves, b.settings.Current().ReferenceLabel, true)
	if err != nil {
		return b.replyError(chatID, "resolve review", err)
	}
	text := "✅ Bestätigt.\n\n" + formatEntry(entry, b.opts.Location)
	return b.sendText(chatID, text)
}
