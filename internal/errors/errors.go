package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error types for the VinNote client
var (
	// Transport errors
	ErrNetwork = errors.New("network request failed")

	// Credential errors
	ErrNoSession      = errors.New("no stored session")
	ErrNoRefreshToken = errors.New("no refresh token")
	ErrStoreCorrupt   = errors.New("credential store corrupt")
	ErrWrongPassword  = errors.New("credential store passphrase mismatch")

	// Payload errors
	ErrInvalidPayload = errors.New("invalid payload")
	ErrInvalidForm    = errors.New("invalid form")
)

// User facing messages produced by Message.
const (
	NetworkMessage    = "No connection to the server. Check your internet."
	UnexpectedMessage = "Unexpected error. Please try again."
)

// StatusError is implemented by errors that carry an HTTP status from the remote service.
type StatusError interface {
	error
	StatusCode() int
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New is errors.New, re-exported so callers need a single errors import.
func New(text string) error {
	return errors.New(text)
}

// Status returns the HTTP status carried by err, or 0 when there is none.
func Status(err error) int {
	var se StatusError
	if errors.As(err, &se) {
		return se.StatusCode()
	}
	return 0
}

// IsRateLimited reports whether err is a 429 from the remote service.
func IsRateLimited(err error) bool {
	return Status(err) == http.StatusTooManyRequests
}

// Message classifies err into the text shown to the user.
//
// Remote errors keep the server message and transport failures map to NetworkMessage.
// Invalid payloads and a corrupt store map to UnexpectedMessage. Anything else falls back to
// its own text, or UnexpectedMessage when that is empty.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var se StatusError
	if errors.As(err, &se) {
		return se.Error()
	}

	if errors.Is(err, ErrNetwork) {
		return NetworkMessage
	}

	// Malformed responses and unreadable local state carry internal detail only.
	if errors.Is(err, ErrInvalidPayload) || errors.Is(err, ErrStoreCorrupt) {
		return UnexpectedMessage
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return UnexpectedMessage
}
