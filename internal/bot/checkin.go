package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"montagebot/internal/location"
	"montagebot/internal/model"
	"montagebot/internal/service"
)

type pendingCheckIn struct {
	seq    uint64
	half   model.Half
	date   model.Date
	label  string
	cancel context.CancelFunc
	done   chan struct{}
}

// startCheckIn asks for a location and records the check-in once a location
// message, the skip button or the timeout completes the request. A newer
// check-in replaces one that is still waiting.
func (b *Bot) startCheckIn(ctx context.Context, chatID int64, half model.Half, date model.Date, label string) error {
	b.mu.Lock()
	prev := b.pending
	b.mu.Unlock()
	if prev != nil {
		prev.cancel()
		<-prev.done
	}

	pctx, cancel := context.WithCancel(ctx)
	b.mu.Lock()
	b.pendingSeq++
	p := &pendingCheckIn{seq: b.pendingSeq, half: half, date: date, label: label, cancel: cancel, done: make(chan struct{})}
	b.pending = p
	b.mu.Unlock()

	prompt := fmt.Sprintf("📍 <b>%s-Check-in</b> für %s\nSende deinen Standort oder wähle „%s“.",
		halfTitle(half), formatDate(date, b.opts.Location), btnSkipLocation)
	if err := b.sendWithReplyMarkup(chatID, prompt, locationKeyboard()); err != nil {
		b.finishPending(p)
		return err
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.awaitCheckIn(pctx, chatID, p)
	}()
	return nil
}

func (b *Bot) awaitCheckIn(ctx context.Context, chatID int64, p *pendingCheckIn) {
	defer b.finishPending(p)

	reading := b.waiter.RequestFix(ctx, b.opts.LocationTimeout)
	if ctx.Err() != nil {
		// Replaced by a newer check-in or shutting down.
		return
	}

	var opts []service.RecordOption
	if p.label != "" {
		opts = append(opts, service.WithLabel(p.label))
	}
	entry, err := b.recorder.RecordCheckIn(context.WithoutCancel(ctx), p.half, p.date, b.opts.Now(), reading, opts...)
	if err != nil {
		if sendErr := b.replyError(chatID, "record check-in", err); sendErr != nil {
			b.log.Error("send check-in error", zap.Error(sendErr))
		}
		return
	}
	if err := b.sendText(chatID, formatCheckInResult(p.half, entry, b.opts.Location)); err != nil {
		b.log.Error("send check-in result", zap.Error(err))
	}
}

func (b *Bot) finishPending(p *pendingCheckIn) {
	p.cancel()
	b.mu.Lock()
	if b.pending != nil && b.pending.seq == p.seq {
		b.pending = nil
	}
	b.mu.Unlock()
	close(p.done)
}

func (b *Bot) handleLocation(msg *tgbotapi.Message) error {
	reading := location.Reading{
		Lat:            msg.Location.Latitude,
		Lon:            msg.Location.Longitude,
		AccuracyMeters: msg.Location.HorizontalAccuracy,
	}
	if !b.waiter.Deliver(reading) {
		return b.sendText(msg.Chat.ID, "Kein offener Check-in. Starte mit /morning oder /evening.")
	}
	return nil
}
