package service

import (
	"errors"
	"fmt"
)

var (
	// ErrSlotBusy is returned when a call is started on a slot that already has one in flight
	ErrSlotBusy = errors.New("a request for this operation is already in progress")
	// ErrEmptyMessage is returned for chat messages that are empty after trimming
	ErrEmptyMessage = errors.New("message must not be empty")
	// ErrInvalidActivityLevel is returned for an activity level outside the enumeration
	ErrInvalidActivityLevel = errors.New("invalid activity level")
	// ErrInvalidAssessment is returned for assessment answers outside their domain ranges
	ErrInvalidAssessment = errors.New("invalid assessment input")
	// ErrInvalidProfile is returned when a profile update fails validation
	ErrInvalidProfile = errors.New("invalid profile")
	// ErrInvalidHealthEntry is returned for a health log entry that cannot be recorded
	ErrInvalidHealthEntry = errors.New("invalid health log entry")
	// ErrSchemaViolation is the sentinel wrapped by every SchemaViolation
	ErrSchemaViolation = errors.New("model output does not match contract")
	// ErrSessionNotFound is returned when a session id is unknown or has been evicted
	ErrSessionNotFound = errors.New("session not found")
)

// SchemaViolation reports model output that could not be accepted under a contract
type SchemaViolation struct {
	Contract string
	Reason   string
	Err      error
}

func (e *SchemaViolation) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", ErrSchemaViolation, e.Contract, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", ErrSchemaViolation, e.Contract, e.Reason)
}

// Is makes errors.Is(err, ErrSchemaViolation) match
func (e *SchemaViolation) Is(target error) bool {
	return target == ErrSchemaViolation
}

func (e *SchemaViolation) Unwrap() error { return e.Err }

func invalid(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
