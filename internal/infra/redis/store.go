package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/tanuja-67/vle-management/internal/domain"
)

// Keys mirror the browser client's local storage layout: each key holds one
// JSON-encoded array. Missing or malformed payloads read as empty collections,
// and saves are whole-array writes with last-write-wins semantics.
const (
	keyVillagers       = "villagers"
	keyQuizResults     = "quizResults"
	keySelectedVLEs    = "selectedVLEs"
	keyRecommendations = "agriRecommendations"
)

func loadArray[T any](ctx context.Context, client *redis.Client, key string) ([]T, error) {
	raw, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		// Malformed content is treated as empty, never surfaced.
		return nil, nil
	}
	return items, nil
}

func saveArray[T any](ctx context.Context, client *redis.Client, key string, items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// VillagerStore is the Redis-backed app.VillagerRepository.
type VillagerStore struct {
	client *redis.Client
	mu     sync.Mutex
}

func NewVillagerStore(client *redis.Client) *VillagerStore {
	return &VillagerStore{client: client}
}

func (s *VillagerStore) List(ctx context.Context) ([]domain.Villager, error) {
	return loadArray[domain.Villager](ctx, s.client, keyVillagers)
}

func (s *VillagerStore) Get(ctx context.Context, id string) (domain.Villager, error) {
	villagers, err := s.List(ctx)
	if err != nil {
		return domain.Villager{}, err
	}
	for _, v := range villagers {
		if v.ID == id {
			return v, nil
		}
	}
	return domain.Villager{}, domain.ErrVillagerNotFound
}

func (s *VillagerStore) Add(ctx context.Context, v domain.Villager) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	villagers, err := s.List(ctx)
	if err != nil {
		return err
	}
	return saveArray(ctx, s.client, keyVillagers, append(villagers, v))
}

func (s *VillagerStore) SetQuizOutcome(ctx context.Context, id string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	villagers, err := s.List(ctx)
	if err != nil {
		return err
	}
	for i := range villagers {
		if villagers[i].ID == id {
			villagers[i].QuizCompleted = true
			villagers[i].QuizScore = &score
			return saveArray(ctx, s.client, keyVillagers, villagers)
		}
	}
	return domain.ErrVillagerNotFound
}

// ResultStore is the Redis-backed quiz result log.
type ResultStore struct {
	client *redis.Client
	mu     sync.Mutex
}

func NewResultStore(client *redis.Client) *ResultStore {
	return &ResultStore{client: client}
}

func (s *ResultStore) List(ctx context.Context) ([]domain.QuizResult, error) {
	return loadArray[domain.QuizResult](ctx, s.client, keyQuizResults)
}

func (s *ResultStore) Append(ctx context.Context, r domain.QuizResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	results, err := s.List(ctx)
	if err != nil {
		return err
	}
	return saveArray(ctx, s.client, keyQuizResults, append(results, r))
}

// SelectionStore is the Redis-backed persisted VLE selection set.
type SelectionStore struct {
	client *redis.Client
	mu     sync.Mutex
}

func NewSelectionStore(client *redis.Client) *SelectionStore {
	return &SelectionStore{client: client}
}

func (s *SelectionStore) List(ctx context.Context) ([]domain.VLESelection, error) {
	return loadArray[domain.VLESelection](ctx, s.client, keySelectedVLEs)
}

func (s *SelectionStore) Merge(ctx context.Context, entries []domain.VLESelection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, err := s.List(ctx)
	if err != nil {
		return err
	}
	present := make(map[string]struct{}, len(existing))
	for _, entry := range existing {
		present[entry.ID()] = struct{}{}
	}
	for _, entry := range entries {
		if _, ok := present[entry.ID()]; ok {
			continue
		}
		present[entry.ID()] = struct{}{}
		existing = append(existing, entry)
	}
	return saveArray(ctx, s.client, keySelectedVLEs, existing)
}

func (s *SelectionStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, err := s.List(ctx)
	if err != nil {
		return err
	}
	kept := existing[:0]
	for _, entry := range existing {
		if entry.ID() != id {
			kept = append(kept, entry)
		}
	}
	return saveArray(ctx, s.client, keySelectedVLEs, kept)
}

func (s *SelectionStore) UpdateStatus(ctx context.Context, id string, status domain.SelectionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, err := s.List(ctx)
	if err != nil {
		return err
	}
	for i := range existing {
		if existing[i].ID() == id {
			existing[i].Status = status
			return saveArray(ctx, s.client, keySelectedVLEs, existing)
		}
	}
	return domain.ErrSelectionNotFound
}

// RecommendationStore is the Redis-backed recommendation log.
type RecommendationStore struct {
	client *redis.Client
	mu     sync.Mutex
}

func NewRecommendationStore(client *redis.Client) *RecommendationStore {
	return &RecommendationStore{client: client}
}

func (s *RecommendationStore) List(ctx context.Context) ([]domain.Recommendation, error) {
	return loadArray[domain.Recommendation](ctx, s.client, keyRecommendations)
}

func (s *RecommendationStore) Append(ctx context.Context, r domain.Recommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs, err := s.List(ctx)
	if err != nil {
		return err
	}
	return saveArray(ctx, s.client, keyRecommendations, append(recs, r))
}
