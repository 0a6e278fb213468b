// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the HTTP endpoints for XLIFF exports, imports,
// presets and the event log.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-xliff/internal/service"
)

// Response is the standard API response wrapper.
type Response struct {
	Data     any               `json:"data,omitempty"`
	Outcomes []OutcomeResponse `json:"outcomes,omitempty"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error    ErrorDetail       `json:"error"`
	Outcomes []OutcomeResponse `json:"outcomes,omitempty"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// OutcomeResponse is a user-facing message in API responses.
type OutcomeResponse struct {
	Level string `json:"level"`
	HTML  string `json:"html"`
}

func outcomeResponses(outcomes []service.Outcome) []OutcomeResponse {
	out := make([]OutcomeResponse, 0, len(outcomes))
	for _, o := range outcomes {
		out = append(out, OutcomeResponse{Level: o.Level, HTML: o.HTML})
	}
	return out
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, outcomes []service.Outcome) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Outcomes: outcomeResponses(outcomes)})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, outcomes []service.Outcome) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error:    ErrorDetail{Code: code, Message: message},
		Outcomes: outcomeResponses(outcomes),
	})
}

// WriteValidationError writes a 422 response listing invalid fields.
func WriteValidationError(w http.ResponseWriter, details map[string]string) {
	WriteJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Error: ErrorDetail{Code: "validation_failed", Message: "Validation failed", Details: details},
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, nil)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// logAndInternalError logs an error and writes a 500 response.
func logAndInternalError(w http.ResponseWriter, logMsg string, args ...any) {
	slog.Error(logMsg, args...)
	WriteError(w, http.StatusInternalServerError, "internal_error", "Internal Server Error", nil)
}

// parseIDParam parses a positive int64 URL parameter.
func parseIDParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// decodeJSON decodes a JSON request body, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
