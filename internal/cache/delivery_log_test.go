package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"montagebot/internal/cache"
	"montagebot/internal/model"
)

// Runs against a real server when REDIS_ADDR is set.
func dialTestRedis(t *testing.T) *cache.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client, err := cache.Dial(context.Background(), cache.Options{
		Addr:   addr,
		Prefix: "montagebot-test-" + uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestKey(t *testing.T) {
	client := dialTestRedis(t)
	got := client.Key("reminder", "", "2026-03-02")
	if got[len(got)-len("reminder:2026-03-02"):] != "reminder:2026-03-02" {
		t.Errorf("Key() = %q", got)
	}
}

func TestDeliveryLog(t *testing.T) {
	ctx := context.Background()
	log := cache.NewDeliveryLog(dialTestRedis(t))
	at := time.Date(2026, 3, 2, 6, 30, 0, 0, time.UTC)

	got, err := log.Delivered(ctx, "2026-03-02")
	if err != nil || got.Has(model.HalfMorning) {
		t.Fatalf("Delivered(empty) = %+v, %v", got, err)
	}
	if err := log.MarkDelivered(ctx, "2026-03-02", model.HalfEvening, at); err != nil {
		t.Fatalf("MarkDelivered() error = %v", err)
	}
	if err := log.MarkDelivered(ctx, "2026-03-02", model.HalfEvening, at.Add(time.Hour)); err != nil {
		t.Fatalf("MarkDelivered(repeat) error = %v", err)
	}
	got, err = log.Delivered(ctx, "2026-03-02")
	if err != nil || !got.Has(model.HalfEvening) || got.Has(model.HalfMorning) {
		t.Fatalf("Delivered() = %+v, %v", got, err)
	}
}
