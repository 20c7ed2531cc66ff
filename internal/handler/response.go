package handler

// RESPONSE HELPERS:
// These functions standardise how we send JSON responses and errors.
//
// CONSISTENT ERROR FORMAT:
// Every error response from the API has the same shape:
//   {"error": "not_found", "message": "user not found with id 42"}
//
// The frontend (or curl) always knows what fields to expect, whether the
// status is 400, 404, 409 or 500.

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sakif/accountkit/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`   // Machine-readable error type (e.g., "not_found")
	Message string `json:"message"` // Human-readable description
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// Headers and status must be set BEFORE the body. Once Encode writes, the
// headers are on the wire and later changes are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			zap.L().Error("failed to encode JSON response", zap.Error(err))
		}
	}
}

// writeBadRequest sends a 400 for problems with the request itself
// (malformed JSON, a missing query parameter) that never reach the service.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   "invalid_request",
		Message: message,
	})
}

// writeError maps a domain error to the appropriate HTTP status code and sends it.
//
// ERROR MAPPING:
// The service and calculator return apperror sentinels; this is the only
// place that knows they become 400, 404, 409 or 500.
//
// errors.Is walks the whole chain, including both branches of
// AppError.Unwrap() []error, so a wrapped storage error still matches
// apperror.ErrStorage.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError

	if errors.As(err, &appErr) {
		switch {
		case errors.Is(err, apperror.ErrValidation):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: appErr.Message})
			return
		case errors.Is(err, apperror.ErrDivisionByZero):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "division_by_zero", Message: appErr.Message})
			return
		case errors.Is(err, apperror.ErrNotFound):
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Message: appErr.Message})
			return
		case errors.Is(err, apperror.ErrConflict):
			writeJSON(w, http.StatusConflict, ErrorResponse{Error: "conflict", Message: appErr.Message})
			return
		}
	}

	// Storage failures and anything unrecognised: log the detail, return a
	// generic 500. The raw message can contain SQL, file paths or driver state.
	zap.L().Error("request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// decodeJSON decodes the request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
