package memory

import (
	"context"
	"sync"

	"github.com/tanuja-67/vle-management/internal/domain"
)

// VillagerStore is the in-memory implementation of app.VillagerRepository.
// Registration order is preserved. It doubles as the test fake.
type VillagerStore struct {
	mu    sync.RWMutex
	items []domain.Villager
}

func NewVillagerStore() *VillagerStore {
	return &VillagerStore{}
}

func (s *VillagerStore) List(_ context.Context) ([]domain.Villager, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Villager, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *VillagerStore) Get(_ context.Context, id string) (domain.Villager, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.items {
		if v.ID == id {
			return v, nil
		}
	}
	return domain.Villager{}, domain.ErrVillagerNotFound
}

func (s *VillagerStore) Add(_ context.Context, v domain.Villager) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, v)
	return nil
}

func (s *VillagerStore) SetQuizOutcome(_ context.Context, id string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].QuizCompleted = true
			s.items[i].QuizScore = &score
			return nil
		}
	}
	return domain.ErrVillagerNotFound
}

// ResultStore is the in-memory quiz result log.
type ResultStore struct {
	mu    sync.RWMutex
	items []domain.QuizResult
}

func NewResultStore() *ResultStore {
	return &ResultStore{}
}

func (s *ResultStore) List(_ context.Context) ([]domain.QuizResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.QuizResult, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *ResultStore) Append(_ context.Context, r domain.QuizResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, r)
	return nil
}

// SelectionStore is the in-memory persisted VLE selection set.
type SelectionStore struct {
	mu    sync.RWMutex
	items []domain.VLESelection
}

func NewSelectionStore() *SelectionStore {
	return &SelectionStore{}
}

func (s *SelectionStore) List(_ context.Context) ([]domain.VLESelection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.VLESelection, len(s.items))
	copy(out, s.items)
	return out, nil
}

// Merge inserts entries whose villager id is not already present, keeping the
// earliest entry for duplicates.
func (s *SelectionStore) Merge(_ context.Context, entries []domain.VLESelection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	present := make(map[string]struct{}, len(s.items))
	for _, existing := range s.items {
		present[existing.ID()] = struct{}{}
	}
	for _, entry := range entries {
		if _, ok := present[entry.ID()]; ok {
			continue
		}
		present[entry.ID()] = struct{}{}
		s.items = append(s.items, entry)
	}
	return nil
}

func (s *SelectionStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, entry := range s.items {
		if entry.ID() == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *SelectionStore) UpdateStatus(_ context.Context, id string, status domain.SelectionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID() == id {
			s.items[i].Status = status
			return nil
		}
	}
	return domain.ErrSelectionNotFound
}

// RecommendationStore is the in-memory recommendation log.
type RecommendationStore struct {
	mu    sync.RWMutex
	items []domain.Recommendation
}

func NewRecommendationStore() *RecommendationStore {
	return &RecommendationStore{}
}

func (s *RecommendationStore) List(_ context.Context) ([]domain.Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Recommendation, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *RecommendationStore) Append(_ context.Context, r domain.Recommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, r)
	return nil
}
