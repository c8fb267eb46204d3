package integrations

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	errs "github.com/matzehuels/cpanmap/pkg/errors"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a resource doesn't exist in the registry.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with a standard timeout for registry requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// Classify converts a client error into a coded error. Not-found becomes
// ErrCodeNotFound, deadlines become ErrCodeTimeout, rate limits keep their
// *errs.RateLimitedError, and every other failure is ErrCodeNetwork.
func Classify(err error, format string, args ...any) error {
	var rl *errs.RateLimitedError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &rl):
		return err
	case errors.Is(err, ErrNotFound):
		return errs.Wrap(errs.ErrCodeNotFound, err, format, args...)
	case errors.Is(err, context.DeadlineExceeded):
		return errs.Wrap(errs.ErrCodeTimeout, err, format, args...)
	case errors.Is(err, context.Canceled):
		return err
	}
	return errs.Wrap(errs.ErrCodeNetwork, err, format, args...)
}

// PathEscape escapes a single URL path segment.
// This is a convenience wrapper around [url.PathEscape].
func PathEscape(s string) string { return url.PathEscape(s) }
