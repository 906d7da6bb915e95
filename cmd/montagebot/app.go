package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"montagebot/internal/cache"
	"montagebot/internal/config"
	"montagebot/internal/logger"
	"montagebot/internal/model"
	"montagebot/internal/repository"
	"montagebot/internal/service"
)

// app holds what every command needs: config, logger, zone and the store.
type app struct {
	cfg     config.Config
	log     *zap.Logger
	loc     *time.Location
	db      *gorm.DB
	entries *repository.WorkEntryRepository
	closers []func() error
}

func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log := logger.New(cfg.LoggerLevel, cfg.LoggerFormat)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := repository.NewDB(cfg.DatabaseURL, log)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		loc:     loc,
		db:      db,
		entries: repository.NewWorkEntryRepository(db),
	}
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}
	return a, nil
}

// Close releases everything opened by the app in reverse order.
func (a *app) Close() error {
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.closers[i]())
	}
	logger.Sync(a.log)
	return err
}

func (a *app) settings(ctx context.Context) (*service.SettingsService, error) {
	svc := service.NewSettingsService(repository.NewSettingsRepository(a.db), a.cfg.DefaultSettings(), time.Now, a.log)
	if err := svc.Init(ctx); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return svc, nil
}

func (a *app) recorder(ctx context.Context) (*service.CheckInRecorder, error) {
	settings, err := a.settings(ctx)
	if err != nil {
		return nil, err
	}
	return service.NewCheckInRecorder(a.entries, settings, time.Now, a.log), nil
}

// deliveryLog returns the redis log when REDIS_ADDR is set, otherwise the
// sqlite table.
func (a *app) deliveryLog(ctx context.Context) (service.DeliveryLog, error) {
	if a.cfg.RedisAddr == "" {
		return repository.NewDeliveryRepository(a.db), nil
	}
	client, err := cache.Dial(ctx, cache.Options{
		Addr:     a.cfg.RedisAddr,
		Password: a.cfg.RedisPassword,
		DB:       a.cfg.RedisDB,
		Prefix:   a.cfg.RedisPrefix,
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Close)
	return cache.NewDeliveryLog(client), nil
}

func (a *app) today() model.Date {
	return model.DateOf(time.Now().In(a.loc))
}

// dateFlag resolves an optional YYYY-MM-DD flag value against today.
func (a *app) dateFlag(raw string) (model.Date, error) {
	if raw == "" {
		return a.today(), nil
	}
	return model.ParseDate(raw)
}
