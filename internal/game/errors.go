package game

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when a session does not belong to the requesting
	// client or does not belong to the requested game.
	ErrUnauthorized = errors.New("session does not belong to this client and game")
	// ErrGameNotFound indicates the requested game does not exist or is inactive.
	ErrGameNotFound = errors.New("game not found")
	// ErrSessionNotFound indicates the requested session does not exist.
	ErrSessionNotFound = errors.New("game session not found")
)

// ValidationError carries field-level detail for a rejected finish submission.
// No mutation happens when one is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid submission: %d field error(s)", len(e.Fields))
}

// InsufficientQuestionsError reports a tier shortfall during question set assembly.
// It is logged as a warning and never fails a session start.
type InsufficientQuestionsError struct {
	Tier      string
	Required  int
	Available int
}

func (e *InsufficientQuestionsError) Error() string {
	return fmt.Sprintf("tier %s has %d approved questions, %d required", e.Tier, e.Available, e.Required)
}
