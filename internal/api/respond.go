// Package api holds the JSON response conventions shared by every SwiftMart
// handler: {message, ...} bodies, stable error codes, no leaked internals.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"swiftmart/internal/model"

	"github.com/rs/zerolog"
)

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// MessageResponse is a bare confirmation body.
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already written; nothing useful left to do.
		return
	}
}

// WriteError writes an error response with the given status, code and message.
func WriteError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Error().Str("code", code).Str("error", message).Int("status", status).Msg("handler error")
	WriteJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// WriteDomainError maps a service error to an HTTP response. Domain errors
// surface their code and message; anything else becomes an opaque 500.
func WriteDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		WriteError(w, statusForCode(domainErr.Code), domainErr.Code, domainErr.Message, logger)
		return
	}

	logger.Error().Err(err).Msg("unexpected error")
	WriteError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "Internal server error.", logger)
}

func statusForCode(code string) int {
	switch code {
	case model.ErrCodeValidation, model.ErrCodeInvalidJSON, model.ErrCodeCouponInvalid:
		return http.StatusBadRequest
	case model.ErrCodeNotFound:
		return http.StatusNotFound
	case model.ErrCodeInsufficientStock, model.ErrCodeConflict:
		return http.StatusConflict
	case model.ErrCodeInvalidTransition:
		return http.StatusUnprocessableEntity
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeUpstreamService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
