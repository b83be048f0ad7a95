package session

import (
	"errors"
	"fmt"
)

var (
	ErrNotInProgress     = errors.New("session is not in progress")
	ErrAlreadySubmitting = errors.New("submission already in progress")
	ErrSubmissionFailed  = errors.New("submission failed")
	ErrSessionFinished   = errors.New("session already finished")
	ErrNotGraded         = errors.New("session is not graded yet")
	ErrQuestionNotFound  = errors.New("question not found in loaded structure")
	ErrPartNotFound      = errors.New("part not found in test structure")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrNoRecordings      = errors.New("no recordings to submit")
)

// RecordingError is a recoverable device or permission failure during
// speaking. The machine returns to prep; recorded parts are kept.
type RecordingError struct {
	Stage string // prepare, start or stop
	Err   error
}

func (e *RecordingError) Error() string {
	return fmt.Sprintf("recording %s failed: %v", e.Stage, e.Err)
}

func (e *RecordingError) Unwrap() error { return e.Err }

// IsRecoverable reports whether the error leaves the session retryable
// without losing in-memory answers or recordings.
func IsRecoverable(err error) bool {
	var re *RecordingError
	return errors.Is(err, ErrSubmissionFailed) || errors.As(err, &re)
}
