package preview

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	adapters "github.com/goliatone/go-translate/internal/adapters/memory"
	"github.com/goliatone/go-translate/internal/ledger"
)

func TestPutGetClear(t *testing.T) {
	ctx := context.Background()
	store := NewStore(adapters.NewCacheProvider())

	job := &ledger.Job{
		ID:             uuid.New(),
		Type:           "pages",
		Mode:           ledger.ModePreview,
		TargetLanguage: "de",
		Status:         ledger.StatusPreview,
	}

	if err := store.Put(ctx, job); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, ok, err := store.Get(ctx, job.ID.String())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("snapshot missing after Put")
	}
	if got.TargetLanguage != "de" || got.Mode != ledger.ModePreview {
		t.Fatalf("snapshot = %+v", got)
	}

	if err := store.Clear(ctx, job.ID.String()); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, ok, _ := store.Get(ctx, job.ID.String()); ok {
		t.Fatal("snapshot survived Clear")
	}
}

func TestSnapshotExpires(t *testing.T) {
	ctx := context.Background()
	current := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	backend := adapters.NewCacheProviderWithClock(func() time.Time { return current })
	store := NewStore(backend, WithTTL(time.Hour))

	job := &ledger.Job{ID: uuid.New(), Type: "pages", Mode: ledger.ModePreview, TargetLanguage: "de"}
	if err := store.Put(ctx, job); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	current = current.Add(61 * time.Minute)
	if _, ok, _ := store.Get(ctx, job.ID.String()); ok {
		t.Fatal("snapshot still readable after TTL")
	}
}

func TestMissingSnapshotIsNotAnError(t *testing.T) {
	store := NewStore(adapters.NewCacheProvider())
	_, ok, err := store.Get(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Fatal("unknown job reported as present")
	}
}
