package domain

import "errors"

var (
	// ErrValidation wraps missing or malformed input on registration and uploads.
	ErrValidation = errors.New("validation failed")
	// ErrVillagerNotFound is returned when a villager id does not resolve.
	ErrVillagerNotFound = errors.New("villager not found")
	// ErrQuizNotCompleted is returned when a selection operation targets a
	// villager who has not completed the quiz.
	ErrQuizNotCompleted = errors.New("villager has not completed the quiz")
	// ErrAlreadySelected is returned when toggling a candidate who is already
	// a confirmed VLE.
	ErrAlreadySelected = errors.New("already selected as VLE")
	// ErrEmptySelection is returned when confirming an empty working selection.
	ErrEmptySelection = errors.New("no candidates selected")
	// ErrSelectionNotFound is returned when a VLE id is absent from the
	// persisted selection set.
	ErrSelectionNotFound = errors.New("selected VLE not found")
	// ErrInvalidStatus indicates an unknown selection status value.
	ErrInvalidStatus = errors.New("invalid selection status")
	// ErrStatusTransition indicates a forbidden status transition.
	ErrStatusTransition = errors.New("status transition not allowed")
)
