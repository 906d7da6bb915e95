package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"montagebot/internal/bot"
	"montagebot/internal/metrics"
	"montagebot/internal/model"
	"montagebot/internal/service"
)

// deliveryRetention is how long reminder deliveries are kept in sqlite.
const deliveryRetention = 7

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot and the reminder scheduler",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

type deliveryPruner interface {
	Prune(ctx context.Context, before model.Date) error
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}()
	if err := a.cfg.RequireTelegram(); err != nil {
		return err
	}

	settings, err := a.settings(ctx)
	if err != nil {
		return err
	}
	deliveries, err := a.deliveryLog(ctx)
	if err != nil {
		return err
	}
	recorder := service.NewCheckInRecorder(a.entries, settings, time.Now, a.log)
	exporter := service.NewExporter(a.entries, a.loc)

	telegramBot, err := bot.New(a.cfg.TelegramToken, bot.Options{
		ChatID:          a.cfg.TelegramChatID,
		Location:        a.loc,
		LocationTimeout: a.cfg.LocationTimeout,
	}, recorder, settings, exporter, a.log)
	if err != nil {
		return fmt.Errorf("bot: %w", err)
	}

	cronSvc := service.NewSchedulerService(a.loc)
	scheduler := service.NewReminderScheduler(
		service.NewCronTimer(cronSvc, time.Now),
		settings,
		a.entries,
		deliveries,
		telegramBot,
		service.SchedulerOptions{
			RetryAttempts: a.cfg.RetryAttempts,
			RetryInitial:  a.cfg.RetryInitial,
			Location:      a.loc,
		},
		a.log,
	)
	telegramBot.SetScheduler(scheduler)
	settings.OnChange(scheduler.OnSettingsChanged)

	watcher := service.NewClockWatcher(a.cfg.ClockDriftTolerance, a.loc)
	watcher.Check()
	if _, err := cronSvc.ScheduleInterval(a.cfg.ClockWatchInterval, func() {
		housekeeping(ctx, a, watcher, scheduler, settings, deliveries)
	}); err != nil {
		return fmt.Errorf("schedule clock watch: %w", err)
	}

	cronSvc.Start()
	defer cronSvc.Stop()
	defer scheduler.Disable()

	if err := scheduler.Arm(ctx, service.TriggerBoot); err != nil {
		// Degraded; the next clock or settings change retries.
		a.log.Error("arm on boot", zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return telegramBot.Start(gctx)
	})
	if a.cfg.MetricsAddr != "" {
		g.Go(func() error {
			return metrics.Serve(gctx, a.cfg.MetricsAddr, a.log)
		})
	}

	a.log.Info("montagebot started", zap.String("timezone", a.loc.String()))
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	a.log.Info("shutdown complete")
	return nil
}

// housekeeping runs on every clock watch tick: it re-arms after clock or
// zone changes, picks up settings written by the CLI and prunes old
// delivery records.
func housekeeping(ctx context.Context, a *app, watcher *service.ClockWatcher, scheduler *service.ReminderScheduler, settings *service.SettingsService, deliveries service.DeliveryLog) {
	if ctx.Err() != nil {
		return
	}
	jobCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if change, ok := watcher.Check(); ok {
		a.log.Info("clock change detected",
			zap.Duration("drift", change.Drift),
			zap.Int("offset_before", change.OffsetBefore),
			zap.Int("offset_after", change.OffsetAfter),
		)
		if err := scheduler.Arm(jobCtx, service.TriggerClockChange); err != nil {
			a.log.Error("arm after clock change", zap.Error(err))
		}
	}

	// A changed row runs the OnChange hooks, which re-arm.
	if _, err := settings.Reload(jobCtx); err != nil {
		a.log.Warn("reload settings", zap.Error(err))
	}

	if p, ok := deliveries.(deliveryPruner); ok {
		if err := p.Prune(jobCtx, a.today().AddDays(-deliveryRetention)); err != nil {
			a.log.Warn("prune deliveries", zap.Error(err))
		}
	}
}
