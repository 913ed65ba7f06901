package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/tanuja-67/vle-management/internal/domain"
)

func newTestClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()}), mr
}

func TestVillagerStoreRoundTrip(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewVillagerStore(client)
	ctx := context.Background()

	if err := store.Add(ctx, domain.Villager{ID: "v1", Name: "Asha", Age: 28, Contact: "1"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Add(ctx, domain.Villager{ID: "v2", Name: "Bina", Age: 32, Contact: "2"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.SetQuizOutcome(ctx, "v1", 75); err != nil {
		t.Fatalf("set outcome: %v", err)
	}

	villagers, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(villagers) != 2 || villagers[0].ID != "v1" {
		t.Fatalf("expected registration order preserved, got %+v", villagers)
	}
	if villagers[0].QuizScore == nil || *villagers[0].QuizScore != 75 {
		t.Fatalf("expected score 75, got %+v", villagers[0].QuizScore)
	}
}

func TestMissingKeyReadsAsEmpty(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewVillagerStore(client)

	villagers, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(villagers) != 0 {
		t.Fatalf("expected empty collection for missing key, got %d", len(villagers))
	}
}

func TestMalformedPayloadReadsAsEmpty(t *testing.T) {
	client, mr := newTestClient(t)
	store := NewResultStore(client)

	mr.Set(keyQuizResults, "not json at all")

	results, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("malformed content must read as empty, got error %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty collection, got %d", len(results))
	}
}

func TestSelectionStoreMergeDedupes(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewSelectionStore(client)
	ctx := context.Background()

	first := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	entry := domain.VLESelection{
		Villager:   domain.Villager{ID: "v1", Name: "Asha"},
		Score:      80,
		SelectedAt: first,
		Status:     domain.StatusPendingApproval,
	}
	if err := store.Merge(ctx, []domain.VLESelection{entry}); err != nil {
		t.Fatalf("merge: %v", err)
	}

	later := entry
	later.SelectedAt = first.Add(time.Hour)
	if err := store.Merge(ctx, []domain.VLESelection{later}); err != nil {
		t.Fatalf("second merge: %v", err)
	}

	entries, _ := store.List(ctx)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after duplicate merge, got %d", len(entries))
	}
	if !entries[0].SelectedAt.Equal(first) {
		t.Fatalf("expected earliest confirmation kept, got %v", entries[0].SelectedAt)
	}
}

func TestSelectionStoreUpdateStatus(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewSelectionStore(client)
	ctx := context.Background()

	_ = store.Merge(ctx, []domain.VLESelection{{
		Villager: domain.Villager{ID: "v1"}, Status: domain.StatusPendingApproval,
	}})

	if err := store.UpdateStatus(ctx, "ghost", domain.StatusApproved); err != domain.ErrSelectionNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.UpdateStatus(ctx, "v1", domain.StatusApproved); err != nil {
		t.Fatalf("update: %v", err)
	}
	entries, _ := store.List(ctx)
	if entries[0].Status != domain.StatusApproved {
		t.Fatalf("expected approved, got %s", entries[0].Status)
	}
}
