// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/ocms-xliff/internal/service"
)

// Event list limits.
const (
	DefaultEventLimit = 50
	MaxEventLimit     = 500
)

// EventsHandler handles event log routes.
type EventsHandler struct {
	events *service.EventService
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(events *service.EventService) *EventsHandler {
	return &EventsHandler{events: events}
}

// EventResponse represents an event in API responses.
type EventResponse struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// formatMetadata converts JSON metadata to readable text format.
// Example: {"batch":"b-1","file":"a.xml"} -> "batch: b-1, file: a.xml"
func formatMetadata(metadata string) string {
	if metadata == "" || metadata == "{}" {
		return ""
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(metadata), &data); err != nil {
		return metadata // Return as-is if not valid JSON
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		var strValue string
		switch v := data[key].(type) {
		case string:
			strValue = v
		case float64:
			strValue = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			strValue = strconv.FormatBool(v)
		default:
			if b, err := json.Marshal(v); err == nil {
				strValue = string(b)
			}
		}
		parts = append(parts, key+": "+strValue)
	}
	return strings.Join(parts, ", ")
}

// List handles GET /events?limit=N&level=L&category=C.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := DefaultEventLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			WriteBadRequest(w, "Invalid limit")
			return
		}
		limit = min(n, MaxEventLimit)
	}
	level := r.URL.Query().Get("level")
	category := r.URL.Query().Get("category")

	events, err := h.events.Recent(r.Context(), limit)
	if err != nil {
		logAndInternalError(w, "failed to list events", "error", err)
		return
	}

	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		if (level != "" && e.Level != level) || (category != "" && e.Category != category) {
			continue
		}
		out = append(out, EventResponse{
			ID:        e.ID,
			Level:     e.Level,
			Category:  e.Category,
			Message:   e.Message,
			Details:   formatMetadata(e.Metadata),
			CreatedAt: e.CreatedAt,
		})
	}
	WriteSuccess(w, out, nil)
}
