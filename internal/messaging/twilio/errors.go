package twilio

import (
	"errors"
	"fmt"
)

// ErrIncompleteConfig is returned when the account SID, auth token or sender
// number is missing.
var ErrIncompleteConfig = errors.New("twilio whatsapp configuration incomplete")

// APIError is a non-success answer from Twilio.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("twilio error %d (status %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("twilio error (status %d): %s", e.StatusCode, e.Message)
}
