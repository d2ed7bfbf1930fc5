package sumup

import (
	"errors"
	"fmt"
	"strings"
)

// ReaderErrorType tags a device-related failure
type ReaderErrorType string

// Reader error types
const (
	ReaderNotConnected ReaderErrorType = "READER_OFFLINE"
	ReaderBusy         ReaderErrorType = "READER_BUSY"
)

// APIError is the common part of every failure classified from a completed
// HTTP exchange. Each typed error unwraps to its APIError, so callers that do
// not care about the kind can use errors.As with *APIError.
type APIError struct {
	Message    string
	HTTPStatus int
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("sumup: %s (%d)", e.Message, e.HTTPStatus)
}

// AuthenticationError reports invalid or expired credentials
type AuthenticationError struct {
	APIError
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("sumup: authentication failed (%d): %s", e.HTTPStatus, e.Message)
}

func (e *AuthenticationError) Unwrap() error { return &e.APIError }

// ValidationError reports invalid or missing request fields.
// Fields keeps the order the API reported them in, duplicates included.
type ValidationError struct {
	APIError
	Fields []string
}

func newValidationError(fields []string, status int) *ValidationError {
	return &ValidationError{
		APIError: APIError{
			Message:    "Validation error in: " + strings.Join(fields, ", "),
			HTTPStatus: status,
		},
		Fields: fields,
	}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("sumup: validation failed (%d): %s", e.HTTPStatus, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error { return &e.APIError }

// ReaderError reports a failure of the card reader itself
type ReaderError struct {
	APIError
	Type ReaderErrorType
}

func (e *ReaderError) Error() string {
	return fmt.Sprintf("sumup: reader error %s (%d): %s", e.Type, e.HTTPStatus, e.Message)
}

func (e *ReaderError) Unwrap() error { return &e.APIError }

// ServerError is returned for 5xx responses without a more specific shape
type ServerError struct {
	APIError
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("sumup: server error (%d): %s", e.HTTPStatus, e.Message)
}

func (e *ServerError) Unwrap() error { return &e.APIError }

// ClientError is returned for 4xx responses without a more specific shape
type ClientError struct {
	APIError
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("sumup: client error (%d): %s", e.HTTPStatus, e.Message)
}

func (e *ClientError) Unwrap() error { return &e.APIError }

// ArgumentError is returned before any request is sent when a required
// parameter is empty.
type ArgumentError struct {
	Param string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("Missing parameter: '%s'.", e.Param)
}

// ConnectionError wraps a failure of the transport itself. The HTTP exchange
// did not complete, so nothing was classified.
type ConnectionError struct {
	Method string
	Path   string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("sumup: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// IsAuthentication reports whether err is an *AuthenticationError
func IsAuthentication(err error) bool {
	var target *AuthenticationError
	return errors.As(err, &target)
}

// IsValidation reports whether err is a *ValidationError
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsReaderOffline reports whether err is a *ReaderError for a disconnected reader
func IsReaderOffline(err error) bool {
	var target *ReaderError
	return errors.As(err, &target) && target.Type == ReaderNotConnected
}

// IsReaderBusy reports whether err is a *ReaderError for a busy reader
func IsReaderBusy(err error) bool {
	var target *ReaderError
	return errors.As(err, &target) && target.Type == ReaderBusy
}
