package errors

import (
	"errors"
	"fmt"
)

// Terminal failures abort the whole run. Everything else is absorbed at
// the page or item level and only counted.
var (
	// ErrNoResults means the tag query matched zero result pages.
	ErrNoResults = errors.New("no results found for tags")

	// ErrNothingToDownload means result pages existed but every post was
	// dropped by the rating exclusions.
	ErrNothingToDownload = errors.New("no posts to download")
)

// ErrorType classifies failures from the board API and the filesystem
type ErrorType string

const (
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeAuth       ErrorType = "auth"
	ErrorTypeParsing    ErrorType = "parsing"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeServer     ErrorType = "server_error"
	ErrorTypeFilesystem ErrorType = "filesystem"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// Error represents a classified failure carrying the HTTP status code
// when one was observed.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// New creates a classified error.
func New(t ErrorType, code int, format string, args ...interface{}) *Error {
	return &Error{
		Type:    t,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	}
}

// TypeOf returns the classification of err, unwrapping as needed.
// Errors that never passed through this package report ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsTerminal reports whether err should abort the run as a whole.
func IsTerminal(err error) bool {
	return errors.Is(err, ErrNoResults) || errors.Is(err, ErrNothingToDownload)
}
