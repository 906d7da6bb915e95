package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"montagebot/internal/location"
	"montagebot/internal/model"
	"montagebot/internal/service"
)

// telegramAPI is the subset of *tgbotapi.BotAPI the bot uses.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type statusReporter interface {
	Status() service.SchedulerStatus
}

// Options configures a Bot.
type Options struct {
	// ChatID is the only chat the bot talks to.
	ChatID          int64
	Location        *time.Location
	LocationTimeout time.Duration
	Now             func() time.Time
}

// Bot is the Telegram front end: commands, check-in dialogs and reminder
// delivery for a single owner.
type Bot struct {
	api      telegramAPI
	recorder *service.CheckInRecorder
	settings *service.SettingsService
	exporter *service.Exporter
	waiter   *location.Waiter
	opts     Options
	log      *zap.Logger

	mu         sync.Mutex
	status     statusReporter
	pendingSeq uint64
	pending    *pendingCheckIn
	wg         sync.WaitGroup
}

func New(token string, opts Options, recorder *service.CheckInRecorder, settings *service.SettingsService, exporter *service.Exporter, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Info("bot authorized", zap.String("account", api.Self.UserName))
	return newBot(api, opts, recorder, settings, exporter, log), nil
}

func newBot(api telegramAPI, opts Options, recorder *service.CheckInRecorder, settings *service.SettingsService, exporter *service.Exporter, log *zap.Logger) *Bot {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.LocationTimeout <= 0 {
		opts.LocationTimeout = 15 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Bot{
		api:      api,
		recorder: recorder,
		settings: settings,
		exporter: exporter,
		waiter:   location.NewWaiter(),
		opts:     opts,
		log:      log.Named("bot"),
	}
}

// SetScheduler lets /settings report the scheduler state. The scheduler is
// built after the bot because the bot is its notification sink.
func (b *Bot) SetScheduler(s statusReporter) {
	b.mu.Lock()
	b.status = s
	b.mu.Unlock()
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Info("start polling updates", zap.Int64("owner_chat", b.opts.ChatID))

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		b.handleUpdate(ctx, update)
	}

	b.wg.Wait()
	return nil
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		if cb.Message == nil || cb.Message.Chat == nil || !b.isOwner(cb.Message.Chat.ID) {
			return
		}
		if err := b.handleCallback(ctx, cb); err != nil {
			b.log.Error("handle callback", zap.String("data", cb.Data), zap.Error(err))
		}
	case update.Message != nil:
		msg := update.Message
		if msg.Chat == nil || !b.isOwner(msg.Chat.ID) {
			if msg.Chat != nil {
				b.log.Warn("ignoring message from foreign chat", zap.Int64("chat", msg.Chat.ID))
			}
			return
		}
		if err := b.handleMessage(ctx, msg); err != nil {
			b.log.Error("handle message", zap.String("text", msg.Text), zap.Error(err))
		}
	}
}

func (b *Bot) isOwner(chatID int64) bool {
	return chatID == b.opts.ChatID
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	switch {
	case msg.Location != nil:
		return b.handleLocation(msg)
	case msg.IsCommand():
		b.log.Info("command", zap.String("command", msg.Command()), zap.String("args", msg.CommandArguments()))
		return b.handleCommand(ctx, msg.Chat.ID, msg.Command(), strings.TrimSpace(msg.CommandArguments()))
	case isSkipLocationInput(msg.Text):
		if !b.waiter.Skip() {
			return b.sendText(msg.Chat.ID, "Kein offener Check-in. Starte mit /morning oder /evening.")
		}
		return nil
	}
	if command, ok := menuAliases[strings.TrimSpace(msg.Text)]; ok {
		return b.handleCommand(ctx, msg.Chat.ID, command, "")
	}
	return b.sendText(msg.Chat.ID, "Das habe ich nicht verstanden. /help zeigt alle Befehle.")
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, command, args string) error {
	switch command {
	case "start":
		return b.handleStart(chatID)
	case "help":
		return b.handleHelp(chatID)
	case "morning":
		return b.startCheckIn(ctx, chatID, model.HalfMorning, b.today(), args)
	case "evening":
		return b.startCheckIn(ctx, chatID, model.HalfEvening, b.today(), args)
	case "today":
		return b.handleToday(ctx, chatID, args)
	case "off":
		return b.handleDayType(ctx, chatID, model.DayTypeOff, args)
	case "work":
		return b.handleDayType(ctx, chatID, model.DayTypeWork, args)
	case "travel_start":
		return b.handleTravel(ctx, chatID, true, args)
	case "travel_arrive":
		return b.handleTravel(ctx, chatID, false, args)
	case "travel_clear":
		return b.handleTravelClear(ctx, chatID)
	case "hours":
		return b.handleHours(ctx, chatID, args)
	case "note":
		return b.handleNote(ctx, chatID, args)
	case "review":
		return b.handleReview(ctx, chatID)
	case "export":
		return b.handleExport(ctx, chatID, args)
	case "delete":
		return b.handleDelete(chatID, args)
	case "settings":
		return b.handleSettings(chatID)
	case "window":
		return b.handleWindow(ctx, chatID, args)
	case "area":
		return b.handleArea(ctx, chatID, args)
	case "accuracy":
		return b.handleAccuracy(ctx, chatID, args)
	default:
		return b.sendText(chatID, "Befehl wird nicht unterstützt. Schau in /help.")
	}
}

func (b *Bot) handleStart(chatID int64) error {
	text := "👋 <b>Montage-Zeiterfassung</b>\n" +
		"Ich erinnere dich morgens und abends an den Check-in und merke mir Ort und Zeit.\n\n" +
		"• /morning — Morgen-Check-in\n" +
		"• /evening — Abend-Check-in\n" +
		"• /today — heutigen Eintrag anzeigen\n" +
		"• /help — alle Befehle"
	return b.sendText(chatID, text)
}

func (b *Bot) handleHelp(chatID int64) error {
	text := "ℹ️ <b>Befehle</b>\n" +
		"• /morning [Ort], /evening [Ort] — Check-in mit Standort\n" +
		"• /today [JJJJ-MM-TT] — Eintrag anzeigen\n" +
		"• /off, /work [JJJJ-MM-TT] — Tagestyp setzen\n" +
		"• /travel_start [Ort], /travel_arrive [Ort], /travel_clear — Fahrt erfassen\n" +
		"• /hours 07:00 15:30 [Pause] — Arbeitszeit korrigieren\n" +
		"• /note Text — Notiz setzen (ohne Text löschen)\n" +
		"• /review — Einträge zur Prüfung\n" +
		"• /export [Tage] — CSV-Export\n" +
		"• /delete JJJJ-MM-TT — Eintrag löschen\n" +
		"• /settings — Einstellungen\n" +
		"• /window morning|evening on|off|06:00-13:00\n" +
		"• /area Breite Länge Radius\n" +
		"• /accuracy Meter"
	return b.sendText(chatID, text)
}

// Notify sends the reminder for half on date with a button that starts the
// matching check-in.
func (b *Bot) Notify(ctx context.Context, half model.Half, date model.Date) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	text := fmt.Sprintf("⏰ <b>%s-Check-in</b> fehlt noch für %s.", halfTitle(half), formatDate(date, b.opts.Location))
	msg := tgbotapi.NewMessage(b.opts.ChatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📍 Jetzt einchecken", checkInCallback(half, date)),
	))
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}
	return nil
}

func (b *Bot) today() model.Date {
	return model.DateOf(b.opts.Now().In(b.opts.Location))
}

func (b *Bot) sendText(chatID int64, text string) error {
	return b.sendWithReplyMarkup(chatID, text, mainMenuKeyboard())
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

// replyError logs err and answers with the matching user-facing text.
func (b *Bot) replyError(chatID int64, action string, err error) error {
	b.log.Warn(action+" failed", zap.Error(err), zap.String("error_kind", service.ErrorKind(err)))
	return b.sendText(chatID, errorMessage(err))
}
