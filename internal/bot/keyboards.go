package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"montagebot/internal/model"
)

const (
	cbCheckInPrefix = "checkin:"
	cbResolvePrefix = "resolve:"
	cbDeletePrefix  = "delete:"
	cbCancel        = "cancel"
)

const (
	btnSendLocation   = "📍 Standort senden"
	btnSkipLocation   = "🚫 Ohne Standort"
	btnConfirm        = "✅ Bestätigen"
	btnCancel         = "↩️ Abbrechen"
	menuLabelMorning  = "🌅 Morgen"
	menuLabelEvening  = "🌇 Abend"
	menuLabelToday    = "📋 Heute"
	menuLabelReview   = "⚠️ Prüfen"
	menuLabelSettings = "⚙️ Einstellungen"
	menuLabelHelp     = "ℹ️ Hilfe"
)

var menuAliases = map[string]string{
	menuLabelMorning:  "morning",
	menuLabelEvening:  "evening",
	menuLabelToday:    "today",
	menuLabelReview:   "review",
	menuLabelSettings: "settings",
	menuLabelHelp:     "help",
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelMorning),
			tgbotapi.NewKeyboardButton(menuLabelEvening),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelToday),
			tgbotapi.NewKeyboardButton(menuLabelReview),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelSettings),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func locationKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonLocation(btnSendLocation),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkipLocation),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func isSkipLocationInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnSkipLocation) || value == "ohne standort"
}

func checkInCallback(half model.Half, date model.Date) string {
	return fmt.Sprintf("%s%s:%s", cbCheckInPrefix, half.Label(), date)
}

func parseCheckInCallback(data string) (model.Half, model.Date, error) {
	half, rawDate, ok := strings.Cut(strings.TrimPrefix(data, cbCheckInPrefix), ":")
	if !ok {
		return "", "", fmt.Errorf("%w: callback %q", model.ErrInvalidDate, data)
	}
	h, err := model.ParseHalf(half)
	if err != nil {
		return "", "", err
	}
	date, err := model.ParseDate(rawDate)
	if err != nil {
		return "", "", err
	}
	return h, date, nil
}
