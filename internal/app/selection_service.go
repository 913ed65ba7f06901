package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tanuja-67/vle-management/internal/domain"
)

// SelectionRepository stores the persisted VLE selection set, keyed by
// villager id.
type SelectionRepository interface {
	List(ctx context.Context) ([]domain.VLESelection, error)
	// Merge inserts entries whose villager id is not already present. Existing
	// entries are left untouched, so the earliest confirmation wins.
	Merge(ctx context.Context, entries []domain.VLESelection) error
	// Remove deletes by villager id; absent ids are a no-op, not an error.
	Remove(ctx context.Context, id string) error
	// UpdateStatus sets the status of an existing entry or returns
	// domain.ErrSelectionNotFound.
	UpdateStatus(ctx context.Context, id string, status domain.SelectionStatus) error
}

// SelectionService ranks candidates and manages the working and persisted
// VLE selection sets. The working set lives in memory for one session and is
// only written to the store through Confirm or Select.
type SelectionService struct {
	villagers  VillagerRepository
	results    ResultRepository
	selections SelectionRepository
	recs       RecommendationRepository
	notifier   Notifier
	clock      func() time.Time
	invalidate func()

	mu      sync.Mutex
	working map[string]domain.VLESelection
	order   []string
}

func NewSelectionService(villagers VillagerRepository, results ResultRepository, selections SelectionRepository, recs RecommendationRepository, notifier Notifier) *SelectionService {
	return &SelectionService{
		villagers:  villagers,
		results:    results,
		selections: selections,
		recs:       recs,
		notifier:   notifier,
		clock:      time.Now,
		working:    make(map[string]domain.VLESelection),
	}
}

// NewSelectionServiceWithClock is test-only for deterministic timestamps.
func NewSelectionServiceWithClock(villagers VillagerRepository, results ResultRepository, selections SelectionRepository, recs RecommendationRepository, notifier Notifier, now func() time.Time) *SelectionService {
	s := NewSelectionService(villagers, results, selections, recs, notifier)
	s.clock = now
	return s
}

// OnChange registers a hook invoked after the persisted selection changes.
func (s *SelectionService) OnChange(fn func()) { s.invalidate = fn }

// Rank joins villagers with their quiz outcomes and the persisted selection.
// Only villagers with a completed quiz appear; the score comes from the
// villager summary field, not from a result log lookup. Output is sorted by
// score descending, stable on ties (registration order). Pure read.
func (s *SelectionService) Rank(ctx context.Context) ([]domain.Candidate, error) {
	villagers, err := s.villagers.List(ctx)
	if err != nil {
		return nil, err
	}
	selected, err := s.selections.List(ctx)
	if err != nil {
		return nil, err
	}
	selectedIDs := make(map[string]struct{}, len(selected))
	for _, entry := range selected {
		selectedIDs[entry.ID()] = struct{}{}
	}

	candidates := make([]domain.Candidate, 0, len(villagers))
	for _, v := range villagers {
		if !v.QuizCompleted {
			continue
		}
		score := 0
		if v.QuizScore != nil {
			score = *v.QuizScore
		}
		_, already := selectedIDs[v.ID]
		candidates = append(candidates, domain.Candidate{
			Villager:     v,
			Score:        score,
			IsAlreadyVLE: already,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates, nil
}

// LoadCandidates satisfies the candidate cache loader.
func (s *SelectionService) LoadCandidates(ctx context.Context) ([]domain.Candidate, error) {
	return s.Rank(ctx)
}

// Candidates returns the ranked list filtered by minimum score.
func (s *SelectionService) Candidates(ctx context.Context, minScore int) ([]domain.Candidate, error) {
	ranked, err := s.Rank(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(ranked, minScore), nil
}

// Filter keeps candidates with score >= minScore, preserving input order.
func Filter(candidates []domain.Candidate, minScore int) []domain.Candidate {
	kept := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Score >= minScore {
			kept = append(kept, c)
		}
	}
	return kept
}

// Toggle flips a candidate's membership in the working selection. Candidates
// who are already confirmed VLEs are not transitionable: the call reports
// "already selected" and changes nothing. Returns whether the candidate is in
// the working set after the call.
func (s *SelectionService) Toggle(ctx context.Context, villagerID string) (bool, error) {
	villager, err := s.villagers.Get(ctx, villagerID)
	if err != nil {
		return false, err
	}
	if !villager.QuizCompleted {
		return false, domain.ErrQuizNotCompleted
	}

	selected, err := s.selections.List(ctx)
	if err != nil {
		return false, err
	}
	for _, entry := range selected {
		if entry.ID() == villagerID {
			s.notifier.Info("This person is already selected as VLE")
			return false, domain.ErrAlreadySelected
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.working[villagerID]; ok {
		delete(s.working, villagerID)
		for i, id := range s.order {
			if id == villagerID {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		s.notifier.Info(fmt.Sprintf("%s removed from VLE selection", villager.Name))
		return false, nil
	}

	score := 0
	if villager.QuizScore != nil {
		score = *villager.QuizScore
	}
	s.working[villagerID] = domain.VLESelection{
		Villager:   villager,
		Score:      score,
		SelectedAt: s.clock(),
		Status:     domain.StatusPendingApproval,
	}
	s.order = append(s.order, villagerID)
	s.notifier.Success(fmt.Sprintf("%s selected as potential VLE", villager.Name))
	return true, nil
}

// Working returns the working selection in insertion order.
func (s *SelectionService) Working() []domain.VLESelection {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]domain.VLESelection, 0, len(s.order))
	for _, id := range s.order {
		entries = append(entries, s.working[id])
	}
	return entries
}

// Confirm merges the working selection into the persisted set and clears it.
// Fails without mutating anything when the working set is empty. The merge is
// idempotent: ids already persisted are not duplicated and keep their original
// entry.
func (s *SelectionService) Confirm(ctx context.Context) (int, error) {
	s.mu.Lock()
	entries := make([]domain.VLESelection, 0, len(s.order))
	for _, id := range s.order {
		entries = append(entries, s.working[id])
	}
	s.mu.Unlock()

	if len(entries) == 0 {
		s.notifier.Error("Please select at least one VLE")
		return 0, domain.ErrEmptySelection
	}

	if err := s.selections.Merge(ctx, entries); err != nil {
		return 0, fmt.Errorf("merge selection: %w", err)
	}

	s.mu.Lock()
	s.working = make(map[string]domain.VLESelection)
	s.order = nil
	s.mu.Unlock()

	if s.invalidate != nil {
		s.invalidate()
	}
	s.notifier.Success(fmt.Sprintf("%d VLE(s) confirmed for machine allocation", len(entries)))
	return len(entries), nil
}

// Select is the bulk path behind POST /vles/select: it snapshots each villager
// and merges directly into the persisted set. Ids already selected are skipped.
// Returns the number of entries submitted to the merge.
func (s *SelectionService) Select(ctx context.Context, villagerIDs []string) (int, error) {
	if len(villagerIDs) == 0 {
		s.notifier.Error("Please select at least one VLE")
		return 0, domain.ErrEmptySelection
	}

	selected, err := s.selections.List(ctx)
	if err != nil {
		return 0, err
	}
	already := make(map[string]struct{}, len(selected))
	for _, entry := range selected {
		already[entry.ID()] = struct{}{}
	}

	now := s.clock()
	entries := make([]domain.VLESelection, 0, len(villagerIDs))
	seen := make(map[string]struct{}, len(villagerIDs))
	for _, id := range villagerIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := already[id]; ok {
			continue
		}
		villager, err := s.villagers.Get(ctx, id)
		if err != nil {
			return 0, err
		}
		if !villager.QuizCompleted {
			return 0, domain.ErrQuizNotCompleted
		}
		score := 0
		if villager.QuizScore != nil {
			score = *villager.QuizScore
		}
		entries = append(entries, domain.VLESelection{
			Villager:   villager,
			Score:      score,
			SelectedAt: now,
			Status:     domain.StatusPendingApproval,
		})
	}

	if len(entries) > 0 {
		if err := s.selections.Merge(ctx, entries); err != nil {
			return 0, fmt.Errorf("merge selection: %w", err)
		}
		if s.invalidate != nil {
			s.invalidate()
		}
	}
	s.notifier.Success(fmt.Sprintf("%d VLE(s) confirmed for machine allocation", len(entries)))
	return len(entries), nil
}

// Selected lists the persisted VLE selection set.
func (s *SelectionService) Selected(ctx context.Context) ([]domain.VLESelection, error) {
	return s.selections.List(ctx)
}

// RemoveSelected administratively deletes a persisted entry. Absent ids are a
// no-op.
func (s *SelectionService) RemoveSelected(ctx context.Context, id string) error {
	if err := s.selections.Remove(ctx, id); err != nil {
		return err
	}
	if s.invalidate != nil {
		s.invalidate()
	}
	s.notifier.Info("VLE removed from selection")
	return nil
}

// UpdateStatus moves a persisted entry through the approval workflow.
// Only pending-approval entries may change, to approved or rejected.
func (s *SelectionService) UpdateStatus(ctx context.Context, id string, status domain.SelectionStatus) error {
	if !status.Valid() {
		return domain.ErrInvalidStatus
	}
	selected, err := s.selections.List(ctx)
	if err != nil {
		return err
	}
	var current *domain.VLESelection
	for i := range selected {
		if selected[i].ID() == id {
			current = &selected[i]
			break
		}
	}
	if current == nil {
		return domain.ErrSelectionNotFound
	}
	if !current.Status.CanTransitionTo(status) {
		return domain.ErrStatusTransition
	}
	if err := s.selections.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.notifier.Success(fmt.Sprintf("VLE status updated to %s", status))
	return nil
}

// Stats summarizes the dashboard counters.
func (s *SelectionService) Stats(ctx context.Context) (domain.Stats, error) {
	villagers, err := s.villagers.List(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	results, err := s.results.List(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	selected, err := s.selections.List(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	recs, err := s.recs.List(ctx)
	if err != nil {
		return domain.Stats{}, err
	}

	pending := 0
	for _, v := range villagers {
		if !v.QuizCompleted {
			pending++
		}
	}
	return domain.Stats{
		TotalVillagers:   len(villagers),
		CompletedQuizzes: len(results),
		PendingQuizzes:   pending,
		SelectedVLEs:     len(selected),
		Recommendations:  len(recs),
	}, nil
}
