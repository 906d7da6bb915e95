package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	checkinsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "montagebot_checkins_total",
		Help: "Recorded check-ins by half and location status",
	}, []string{"half", "status"})

	remindersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "montagebot_reminders_total",
		Help: "Reminders delivered by half",
	}, []string{"half"})

	schedulerArmsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "montagebot_scheduler_arms_total",
		Help: "Scheduler arm operations by trigger",
	}, []string{"trigger"})

	schedulerDegraded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "montagebot_scheduler_degraded",
		Help: "1 while the reminder timer could not be registered",
	})

	entriesNeedingReview = promauto.NewCounter(prometheus.CounterOpts{
		Name: "montagebot_entries_needing_review_total",
		Help: "Entry writes that left the entry flagged for review",
	})
)

func RecordCheckIn(half, status string) {
	checkinsTotal.WithLabelValues(half, status).Inc()
}

func RecordReminder(half string) {
	remindersTotal.WithLabelValues(half).Inc()
}

func RecordArm(trigger string) {
	schedulerArmsTotal.WithLabelValues(trigger).Inc()
}

func SetSchedulerDegraded(degraded bool) {
	if degraded {
		schedulerDegraded.Set(1)
		return
	}
	schedulerDegraded.Set(0)
}

func RecordNeedsReview() {
	entriesNeedingReview.Inc()
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("metrics shutdown", zap.Error(err))
		}
	}()

	log.Info("metrics listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
