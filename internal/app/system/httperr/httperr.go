// Package httperr translates the application's failure categories into
// uniform JSON error responses. Stores and policies return sentinel
// errors; handlers map those to exactly one of these writers at the
// request boundary, so every error body has the same shape:
//
//	{ "error": "not_found", "message": "category not found" }
//
// Validation errors may additionally carry field-level detail:
//
//	{ "error": "validation_error", "message": "...", "fields": {"name": "required"} }
package httperr

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Error categories carried in the JSON "error" field.
const (
	CodeValidation      = "validation_error"
	CodeUnauthenticated = "unauthenticated"
	CodeForbidden       = "forbidden"
	CodeNotFound        = "not_found"
	CodeConflict        = "conflict"
	CodeUpstream        = "upstream_failure"
	CodeInternal        = "internal_error"
)

type body struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func write(w http.ResponseWriter, status int, code, msg string, fields map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body{Error: code, Message: msg, Fields: fields})
}

// Validation writes a 400 with optional per-field detail.
func Validation(w http.ResponseWriter, msg string, fields map[string]string) {
	write(w, http.StatusBadRequest, CodeValidation, msg, fields)
}

// Unauthenticated writes a 401.
func Unauthenticated(w http.ResponseWriter, msg string) {
	write(w, http.StatusUnauthorized, CodeUnauthenticated, msg, nil)
}

// Forbidden writes a 403.
func Forbidden(w http.ResponseWriter, msg string) {
	write(w, http.StatusForbidden, CodeForbidden, msg, nil)
}

// NotFound writes a 404. Also used when an entity exists but is not
// visible to the caller, so probing cannot distinguish the two.
func NotFound(w http.ResponseWriter, msg string) {
	write(w, http.StatusNotFound, CodeNotFound, msg, nil)
}

// Conflict writes a 409 (duplicate email, duplicate join).
func Conflict(w http.ResponseWriter, msg string) {
	write(w, http.StatusConflict, CodeConflict, msg, nil)
}

// Upstream writes a 502 for external-service failures (OAuth, AI).
func Upstream(w http.ResponseWriter, msg string) {
	write(w, http.StatusBadGateway, CodeUpstream, msg, nil)
}

// Internal logs the underlying error and writes a generic 500 so
// internals never leak to clients.
func Internal(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	if log != nil {
		log.Error(op, zap.Error(err))
	}
	write(w, http.StatusInternalServerError, CodeInternal, "something went wrong", nil)
}
