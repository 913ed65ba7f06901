package app

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/tanuja-67/vle-management/internal/domain"
)

// ResultRepository stores the append-only quiz result log.
type ResultRepository interface {
	List(ctx context.Context) ([]domain.QuizResult, error)
	Append(ctx context.Context, r domain.QuizResult) error
}

// QuizService administers the fixed entrepreneurship quiz and records outcomes.
type QuizService struct {
	villagers  VillagerRepository
	results    ResultRepository
	bank       []domain.Question
	notifier   Notifier
	clock      func() time.Time
	invalidate func()
}

func NewQuizService(villagers VillagerRepository, results ResultRepository, notifier Notifier) *QuizService {
	return &QuizService{
		villagers: villagers,
		results:   results,
		bank:      domain.QuestionBank(),
		notifier:  notifier,
		clock:     time.Now,
	}
}

// NewQuizServiceWithClock is test-only for deterministic timestamps.
func NewQuizServiceWithClock(villagers VillagerRepository, results ResultRepository, notifier Notifier, now func() time.Time) *QuizService {
	s := NewQuizService(villagers, results, notifier)
	s.clock = now
	return s
}

// OnCompletion registers a hook invoked after a quiz is recorded. Used to
// invalidate the candidate cache.
func (s *QuizService) OnCompletion(fn func()) { s.invalidate = fn }

// Questions returns the fixed question bank.
func (s *QuizService) Questions() []domain.Question {
	return s.bank
}

// Complete grades the submitted answers, appends a quiz result, and overwrites
// the villager's summary fields. The two writes are separate; there is no
// atomicity between them. Last completion wins on re-takes.
func (s *QuizService) Complete(ctx context.Context, villagerID string, answers map[int]int) (domain.QuizResult, error) {
	villager, err := s.villagers.Get(ctx, villagerID)
	if err != nil {
		return domain.QuizResult{}, err
	}

	score := grade(s.bank, answers)
	result := domain.QuizResult{
		VillagerID:   villager.ID,
		VillagerName: villager.Name,
		Score:        score,
		Answers:      answers,
		CompletedAt:  s.clock(),
	}

	if err := s.results.Append(ctx, result); err != nil {
		return domain.QuizResult{}, fmt.Errorf("append quiz result: %w", err)
	}
	if err := s.villagers.SetQuizOutcome(ctx, villager.ID, score); err != nil {
		return domain.QuizResult{}, fmt.Errorf("update villager summary: %w", err)
	}

	if s.invalidate != nil {
		s.invalidate()
	}
	s.notifier.Success(fmt.Sprintf("Quiz completed! Score: %d%%", score))
	return result, nil
}

// Results lists the full quiz result log.
func (s *QuizService) Results(ctx context.Context) ([]domain.QuizResult, error) {
	return s.results.List(ctx)
}

// grade computes the percentage score, rounded half up. Unanswered questions
// count as incorrect; the function is total and never fails.
func grade(bank []domain.Question, answers map[int]int) int {
	if len(bank) == 0 {
		return 0
	}
	correct := 0
	for _, q := range bank {
		if chosen, ok := answers[q.ID]; ok && chosen == q.Correct {
			correct++
		}
	}
	return int(math.Round(float64(correct) / float64(len(bank)) * 100))
}
