package service

import (
	"errors"
	"fmt"
)

// MinWordPool is the fewest usable words a session can start with
const MinWordPool = 4

var (
	ErrInvalidOrInactiveCode   = errors.New("invalid or inactive assignment code")
	ErrSessionAlreadyCompleted = errors.New("session already completed")
	ErrSessionNotFound         = errors.New("session not found")
	ErrWordOrMasteryNotFound   = errors.New("word or mastery record not found")
	ErrInsufficientWordPool    = errors.New("not enough usable words to start a session")
	ErrModeMismatch            = errors.New("operation not supported in this session mode")
)

// SessionAlreadyCompletedError carries the completed session so the caller can
// offer a review or an explicit restart.
type SessionAlreadyCompletedError struct {
	SessionID int64
	TimedOut  bool
}

func (e *SessionAlreadyCompletedError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("session %d already completed: time limit exceeded", e.SessionID)
	}
	return fmt.Sprintf("session %d already completed", e.SessionID)
}

func (e *SessionAlreadyCompletedError) Is(target error) bool {
	return target == ErrSessionAlreadyCompleted
}
