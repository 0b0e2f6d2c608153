package domain

import "errors"

var (
	// ErrSessionNotFound is returned when no session exists for an access code.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionCompleted is returned for mutations against a completed session.
	ErrSessionCompleted = errors.New("session already completed")
	// ErrSessionActive is returned when results are requested before completion.
	ErrSessionActive = errors.New("session still active")
	// ErrQuestionNotFound indicates a submitted question ID is not in the session.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrDuplicateCode indicates an access-code collision in the store.
	ErrDuplicateCode = errors.New("access code already in use")
	// ErrStorageUnavailable wraps transient store failures; callers may retry.
	ErrStorageUnavailable = errors.New("session storage unavailable")
	// ErrBankIntegrity marks a malformed question bank. Fatal at load time.
	ErrBankIntegrity = errors.New("question bank integrity violation")
	// ErrBankNotFound indicates the configured bank could not be loaded.
	ErrBankNotFound = errors.New("question bank not found")
)
