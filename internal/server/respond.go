package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	errs "github.com/matzehuels/cpanmap/pkg/errors"
)

type errorBody struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes err as an error envelope. Errors without a code are
// reported as internal errors.
func writeError(w http.ResponseWriter, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	var rl *errs.RateLimitedError
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter))
	}
	writeJSON(w, statusOf(code), errorEnvelope{Error: errorBody{Code: code, Message: errs.UserMessage(err)}})
}

// statusOf maps an error code to an HTTP status. Registry transport
// failures surface as 502 so clients know a retry may succeed.
func statusOf(code errs.Code) int {
	switch code.Kind() {
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindInput:
		return http.StatusBadRequest
	case errs.KindTransport:
		return http.StatusBadGateway
	case errs.KindUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func errNoRoute(r *http.Request) error {
	return errs.New(errs.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path)
}
