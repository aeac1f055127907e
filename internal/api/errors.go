package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pinodelabs/pinode/internal/domain"
)

const tryAgainErr = "internal error, try again"

// HandlerFunc is an http handler that reports failures by returning them.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// handle adapts a HandlerFunc for chi, writing returned errors as JSON.
func handle(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			writeError(w, r, err)
		}
	}
}

// requestError is an error raised by the HTTP layer itself, before any
// service is involved.
type requestError struct {
	status int
	msg    string
	err    error
}

func (e *requestError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *requestError) Unwrap() error { return e.err }

func badRequest(err error, msg string) error {
	return &requestError{status: http.StatusBadRequest, msg: msg, err: err}
}

func unauthorized(msg string) error {
	return &requestError{status: http.StatusUnauthorized, msg: msg}
}

func forbidden(msg string) error {
	return &requestError{status: http.StatusForbidden, msg: msg}
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Code  int    `json:"code"`
}

// statusOf maps an error category onto a status code. Validation and
// precondition failures stay distinguishable.
func statusOf(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindPrecondition, domain.KindConflict:
		return http.StatusConflict
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		writeJSON(w, reqErr.status, errorResponse{
			Error: reqErr.msg,
			Kind:  domain.KindValidation.String(),
			Code:  reqErr.status,
		})
		return
	}

	kind := domain.KindOf(err)
	status := statusOf(kind)
	msg := err.Error()
	if kind == domain.KindInternal {
		slog.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		msg = tryAgainErr
	}
	writeJSON(w, status, errorResponse{Error: msg, Kind: kind.String(), Code: status})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encode response", "error", err)
	}
}
