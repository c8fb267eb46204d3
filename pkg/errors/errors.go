// Package errors defines the coded errors shared by the catalog, the
// registry client, the CLI and the JSON API.
//
// Every failure a user can see carries a [Code]. Codes are grouped into a
// [Kind] so that outer layers decide exit status, HTTP status or retry
// behaviour without listing individual codes:
//
//	KindInput       INVALID_*, MALFORMED_RECORD
//	KindNotFound    NOT_FOUND, *_NOT_FOUND
//	KindTransport   NETWORK_ERROR, TIMEOUT, RATE_LIMITED
//	KindUnsupported UNSUPPORTED
//	KindInternal    everything else, including uncoded errors
//
// Unresolved namespace or module references are not errors. The catalog
// reports them as nil results.
//
//	err := errors.New(errors.ErrCodeMalformedRecord, "line %d: bad row %q", line, field)
//	if errors.KindOf(err) == errors.KindInput { ... }
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeInvalidName        Code = "INVALID_NAME"
	ErrCodeInvalidCoordinate  Code = "INVALID_COORDINATE"
	ErrCodeMalformedRecord    Code = "MALFORMED_RECORD"
	ErrCodeInvalidFormat      Code = "INVALID_FORMAT"
	ErrCodeInvalidPath        Code = "INVALID_PATH"
	ErrCodeInvalidCacheConfig Code = "INVALID_CACHE_CONFIG"

	ErrCodeNotFound           Code = "NOT_FOUND"
	ErrCodeDistroNotFound     Code = "DISTRIBUTION_NOT_FOUND"
	ErrCodeMaintainerNotFound Code = "MAINTAINER_NOT_FOUND"
	ErrCodeFileNotFound       Code = "FILE_NOT_FOUND"

	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Kind groups codes by how a caller should react to them.
type Kind int

const (
	KindInternal Kind = iota
	KindInput
	KindNotFound
	KindTransport
	KindUnsupported
)

var kinds = map[Code]Kind{
	ErrCodeInvalidInput:       KindInput,
	ErrCodeInvalidName:        KindInput,
	ErrCodeInvalidCoordinate:  KindInput,
	ErrCodeMalformedRecord:    KindInput,
	ErrCodeInvalidFormat:      KindInput,
	ErrCodeInvalidPath:        KindInput,
	ErrCodeInvalidCacheConfig: KindInput,
	ErrCodeNotFound:           KindNotFound,
	ErrCodeDistroNotFound:     KindNotFound,
	ErrCodeMaintainerNotFound: KindNotFound,
	ErrCodeFileNotFound:       KindNotFound,
	ErrCodeNetwork:            KindTransport,
	ErrCodeTimeout:            KindTransport,
	ErrCodeRateLimited:        KindTransport,
	ErrCodeUnsupported:        KindUnsupported,
}

// Kind returns the group of c. Unknown and empty codes are internal.
func (c Code) Kind() Kind { return kinds[c] }

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindNotFound:
		return "not found"
	case KindTransport:
		return "transport"
	case KindUnsupported:
		return "unsupported"
	default:
		return "internal"
	}
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an *Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return Wrap(code, nil, format, args...)
}

// Wrap returns an *Error carrying cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	e, ok := asError(err)
	return ok && e.Code == code
}

// GetCode returns the code of err, or "" for uncoded errors.
// A *RateLimitedError anywhere in the chain reports RATE_LIMITED.
func GetCode(err error) Code {
	if e, ok := asError(err); ok {
		return e.Code
	}
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return rl.Code()
	}
	return ""
}

// KindOf returns the kind of err's code.
func KindOf(err error) Kind { return GetCode(err).Kind() }

// UserMessage returns the message of a coded error without its code prefix,
// or err.Error() for anything else.
func UserMessage(err error) string {
	if e, ok := asError(err); ok {
		return e.Message
	}
	return err.Error()
}

// IsTransport reports whether err is a registry transport failure. Callers
// may retry these; the catalog never retries on its own.
func IsTransport(err error) bool { return KindOf(err) == KindTransport }

// RateLimitedError is returned when the registry answers 429.
type RateLimitedError struct {
	RetryAfter int // seconds, 0 if the registry sent no hint
	Message    string
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter <= 0 {
		return "rate limited"
	}
	return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
}

// Code returns RATE_LIMITED.
func (e *RateLimitedError) Code() Code { return ErrCodeRateLimited }
