package core

import "fmt"

// ValidationError rejects a turn before any state mutation.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// RetrievalError marks corpus/index unavailability. The orchestrator
// recovers by proceeding with an empty context.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string {
	return "retrieval: " + e.Err.Error()
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// GenerationError marks an upstream generation failure or timeout. Session
// state committed earlier in the turn is unaffected.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return "generation: " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// SessionCorruptionError reports a persisted session state outside the
// known enum. Recovered by resetting the session, never fatal to the turn.
type SessionCorruptionError struct {
	SessionID string
	RawState  string
}

func (e *SessionCorruptionError) Error() string {
	return fmt.Sprintf("session %s corrupted: state %q", e.SessionID, e.RawState)
}
