package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tanuja-67/vle-management/internal/domain"
)

// VillagerRepository abstracts how villager records are stored
// (in-memory, Redis, Postgres).
type VillagerRepository interface {
	List(ctx context.Context) ([]domain.Villager, error)
	Get(ctx context.Context, id string) (domain.Villager, error)
	Add(ctx context.Context, v domain.Villager) error
	// SetQuizOutcome overwrites the villager's quiz summary fields in place.
	SetQuizOutcome(ctx context.Context, id string, score int) error
}

// RegistrationInput carries the registration form fields.
type RegistrationInput struct {
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Gender     string `json:"gender"`
	Contact    string `json:"contact"`
	Education  string `json:"education"`
	Occupation string `json:"occupation"`
	Income     int    `json:"income"`
	FamilySize int    `json:"familySize"`
	Address    string `json:"address"`
	Skills     string `json:"skills"`
	Experience string `json:"experience"`
}

// RegistryService registers and lists villagers.
type RegistryService struct {
	villagers VillagerRepository
	notifier  Notifier
	clock     func() time.Time
	newID     func() string
}

func NewRegistryService(villagers VillagerRepository, notifier Notifier) *RegistryService {
	return &RegistryService{
		villagers: villagers,
		notifier:  notifier,
		clock:     time.Now,
		newID:     uuid.NewString,
	}
}

// NewRegistryServiceWithClock is test-only for deterministic ids and timestamps.
func NewRegistryServiceWithClock(villagers VillagerRepository, notifier Notifier, now func() time.Time, newID func() string) *RegistryService {
	return &RegistryService{villagers: villagers, notifier: notifier, clock: now, newID: newID}
}

// Register validates the form and appends a new villager record. Nothing is
// mutated on a validation failure.
func (s *RegistryService) Register(ctx context.Context, in RegistrationInput) (domain.Villager, error) {
	if err := validateRegistration(in); err != nil {
		s.notifier.Error("Please fill in all required fields")
		return domain.Villager{}, err
	}

	v := domain.Villager{
		ID:           s.newID(),
		Name:         in.Name,
		Age:          in.Age,
		Gender:       in.Gender,
		Contact:      in.Contact,
		Education:    in.Education,
		Occupation:   in.Occupation,
		Income:       in.Income,
		FamilySize:   in.FamilySize,
		Address:      in.Address,
		Skills:       in.Skills,
		Experience:   in.Experience,
		RegisteredAt: s.clock(),
	}
	if err := s.villagers.Add(ctx, v); err != nil {
		return domain.Villager{}, fmt.Errorf("add villager: %w", err)
	}
	s.notifier.Success("Villager registered successfully!")
	return v, nil
}

// Villagers lists all records in registration order.
func (s *RegistryService) Villagers(ctx context.Context) ([]domain.Villager, error) {
	return s.villagers.List(ctx)
}

// Villager looks up one record by id.
func (s *RegistryService) Villager(ctx context.Context, id string) (domain.Villager, error) {
	return s.villagers.Get(ctx, id)
}

func validateRegistration(in RegistrationInput) error {
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if in.Age <= 0 {
		return fmt.Errorf("%w: age is required", domain.ErrValidation)
	}
	if in.Contact == "" {
		return fmt.Errorf("%w: contact is required", domain.ErrValidation)
	}
	return nil
}
