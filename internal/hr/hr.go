// Package hr holds the school's HR records together with their validation
// rules, workflow transitions and derived statistics.
package hr

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidTransition is returned when a workflow action is not allowed from
// the record's current state.
var ErrInvalidTransition = errors.New("invalid state transition")

// ValidationError reports a record field that breaks a constraint.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func transitionError(kind, action, from string) error {
	return fmt.Errorf("%s %s from %q: %w", kind, action, from, ErrInvalidTransition)
}

// NewID returns a random record identifier.
func NewID() string {
	return uuid.NewString()
}

// Date truncates t to midnight UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(t time.Time) *time.Time {
	d := Date(t)
	return &d
}

func checkDates(start, end time.Time) error {
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return invalid("end_date", "end date must be after or equal to start date")
	}
	return nil
}

func oneOf[T ~string](field string, v T, allowed ...T) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return invalid(field, "unknown value %q", v)
}
