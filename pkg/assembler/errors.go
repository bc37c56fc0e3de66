package assembler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrInvalidTemperature is returned when temperature is outside [0, 1]
	ErrInvalidTemperature = errors.New("temperature must be between 0 and 1")

	// ErrUnsupportedModel is returned for model identifiers outside the supported set
	ErrUnsupportedModel = errors.New("unsupported model")

	// ErrNoTurns is returned when a stream is requested without any turns
	ErrNoTurns = errors.New("at least one turn is required")

	// ErrMissingAPIKey is returned when a provider has no credentials configured
	ErrMissingAPIKey = errors.New("api key is not configured")

	// ErrEmptyResponse is returned when a stream ends without producing any text
	ErrEmptyResponse = errors.New("response contained no text")
)

// ErrorKind classifies remote failures
type ErrorKind string

const (
	KindNetwork           ErrorKind = "network"
	KindAuthentication    ErrorKind = "authentication"
	KindQuota             ErrorKind = "quota"
	KindMalformedResponse ErrorKind = "malformed_response"
	KindInvalidRequest    ErrorKind = "invalid_request"
	KindCanceled          ErrorKind = "canceled"
)

// Sentinels matched by errors.Is against a *StreamError of the same kind
var (
	ErrNetwork           = errors.New("network failure")
	ErrAuthentication    = errors.New("authentication failure")
	ErrQuota             = errors.New("quota exceeded")
	ErrMalformedResponse = errors.New("malformed response")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrCanceled          = errors.New("request canceled")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindNetwork:
		return ErrNetwork
	case KindAuthentication:
		return ErrAuthentication
	case KindQuota:
		return ErrQuota
	case KindMalformedResponse:
		return ErrMalformedResponse
	case KindInvalidRequest:
		return ErrInvalidRequest
	case KindCanceled:
		return ErrCanceled
	default:
		return nil
	}
}

// StreamError is a classified failure of a remote completion call
type StreamError struct {
	Kind       ErrorKind
	Provider   string
	StatusCode int
	Err        error
}

// Error implements the error interface
func (e *StreamError) Error() string {
	prefix := string(e.Kind)
	if e.Provider != "" {
		prefix = e.Provider + " " + prefix
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error (status %d): %v", prefix, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s error: %v", prefix, e.Err)
}

// Unwrap returns the underlying error
func (e *StreamError) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinel, so errors.Is(err, ErrQuota) works
func (e *StreamError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf returns the kind of a stream error, or "" for anything else
func KindOf(err error) ErrorKind {
	var se *StreamError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// classify turns a provider error into a *StreamError.
// statusCode is the HTTP status reported by the SDK, zero when unknown.
func classify(provider string, statusCode int, err error) error {
	if err == nil {
		return nil
	}

	var se *StreamError
	if errors.As(err, &se) {
		return err
	}

	kind := KindNetwork
	switch {
	case statusCode != 0:
		kind = kindForStatus(statusCode)
	case errors.Is(err, ErrMissingAPIKey):
		kind = KindAuthentication
	case errors.Is(err, ErrEmptyResponse), isDecodeError(err):
		kind = KindMalformedResponse
	case errors.Is(err, context.Canceled):
		kind = KindCanceled
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindNetwork
	default:
		if k, ok := kindFromMessage(err.Error()); ok {
			kind = k
		}
	}

	return &StreamError{
		Kind:       kind,
		Provider:   provider,
		StatusCode: statusCode,
		Err:        err,
	}
}

func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return KindAuthentication
	case status == http.StatusTooManyRequests, status == http.StatusPaymentRequired:
		return KindQuota
	case status == http.StatusBadRequest, status == http.StatusNotFound, status == http.StatusUnprocessableEntity:
		return KindInvalidRequest
	default:
		return KindNetwork
	}
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

// kindFromMessage handles error events sent inside an already-open stream,
// which the SDKs surface without a status code.
func kindFromMessage(msg string) (ErrorKind, bool) {
	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "authentication"), strings.Contains(msg, "invalid_api_key"), strings.Contains(msg, "permission"):
		return KindAuthentication, true
	case strings.Contains(msg, "rate_limit"), strings.Contains(msg, "insufficient_quota"), strings.Contains(msg, "quota"):
		return KindQuota, true
	case strings.Contains(msg, "invalid_request"):
		return KindInvalidRequest, true
	case strings.Contains(msg, "overloaded"), strings.Contains(msg, "server_error"), strings.Contains(msg, "api_error"):
		return KindNetwork, true
	}
	return "", false
}
