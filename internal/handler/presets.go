// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/ocms-xliff/internal/model"
	"github.com/olegiv/ocms-xliff/internal/scheduler"
	"github.com/olegiv/ocms-xliff/internal/store"
)

// PresetStore persists export presets.
type PresetStore interface {
	Preset(ctx context.Context, id int64) (*model.Preset, error)
	Presets(ctx context.Context, scheduledOnly bool) ([]model.Preset, error)
	CreatePreset(ctx context.Context, p model.Preset) (*model.Preset, error)
	DeletePreset(ctx context.Context, id int64) error
}

// PresetRunner schedules and triggers preset exports.
type PresetRunner interface {
	Reload(ctx context.Context) error
	Trigger(ctx context.Context, presetID int64) (string, error)
}

// PresetsHandler handles preset management routes.
type PresetsHandler struct {
	store      PresetStore
	runner     PresetRunner
	sourceSite int64
	logger     *slog.Logger
}

// NewPresetsHandler creates a new PresetsHandler. runner may be nil when
// no scheduler runs.
func NewPresetsHandler(ps PresetStore, runner PresetRunner, sourceSite int64, logger *slog.Logger) *PresetsHandler {
	return &PresetsHandler{store: ps, runner: runner, sourceSite: sourceSite, logger: logger}
}

// PresetResponse represents a preset in API responses.
type PresetResponse struct {
	ID        int64     `json:"id"`
	SiteID    int64     `json:"site_id"`
	Name      string    `json:"name"`
	RootIDs   []int64   `json:"root_ids"`
	Schedule  string    `json:"schedule,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func presetResponse(p model.Preset) PresetResponse {
	return PresetResponse{
		ID:        p.ID,
		SiteID:    p.SiteID,
		Name:      p.Name,
		RootIDs:   p.RootIDs,
		Schedule:  p.Schedule,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// CreatePresetRequest represents the request body for creating a preset.
type CreatePresetRequest struct {
	SiteID   int64   `json:"site_id,omitempty"`
	Name     string  `json:"name"`
	RootIDs  []int64 `json:"root_ids"`
	Schedule string  `json:"schedule,omitempty"`
}

// validate trims the request and returns field errors.
func (req *CreatePresetRequest) validate() map[string]string {
	errs := make(map[string]string)
	req.Name = strings.TrimSpace(req.Name)
	req.Schedule = strings.TrimSpace(req.Schedule)

	if req.Name == "" {
		errs["name"] = "Name is required"
	} else if len(req.Name) > 255 {
		errs["name"] = "Name must be less than 256 characters"
	}
	if len(req.RootIDs) == 0 {
		errs["root_ids"] = "At least one root ID is required"
	}
	for _, id := range req.RootIDs {
		if id < 1 {
			errs["root_ids"] = "Root IDs must be positive"
			break
		}
	}
	if req.Schedule != "" {
		if err := scheduler.ValidateSchedule(req.Schedule); err != nil {
			errs["schedule"] = err.Error()
		}
	}
	return errs
}

// List handles GET /presets.
func (h *PresetsHandler) List(w http.ResponseWriter, r *http.Request) {
	presets, err := h.store.Presets(r.Context(), r.URL.Query().Get("scheduled") == "true")
	if err != nil {
		logAndInternalError(w, "failed to list presets", "error", err)
		return
	}
	out := make([]PresetResponse, 0, len(presets))
	for _, p := range presets {
		out = append(out, presetResponse(p))
	}
	WriteSuccess(w, out, nil)
}

// Get handles GET /presets/{id}.
func (h *PresetsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		WriteBadRequest(w, "Invalid preset ID")
		return
	}
	p, err := h.store.Preset(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteNotFound(w, "Preset not found")
			return
		}
		logAndInternalError(w, "failed to get preset", "preset", id, "error", err)
		return
	}
	WriteSuccess(w, presetResponse(*p), nil)
}

// Create handles POST /presets.
func (h *PresetsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePresetRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "Invalid JSON body")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		WriteValidationError(w, errs)
		return
	}

	siteID := req.SiteID
	if siteID == 0 {
		siteID = h.sourceSite
	}
	p, err := h.store.CreatePreset(r.Context(), model.Preset{
		SiteID:   siteID,
		Name:     req.Name,
		RootIDs:  req.RootIDs,
		Schedule: req.Schedule,
	})
	if err != nil {
		logAndInternalError(w, "failed to create preset", "error", err)
		return
	}

	h.logger.Info("preset created", "category", model.EventCategoryScheduler, "preset", p.ID, "name", p.Name)
	if p.IsScheduled() {
		h.reload(r.Context())
	}
	WriteCreated(w, presetResponse(*p))
}

// Delete handles DELETE /presets/{id}.
func (h *PresetsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		WriteBadRequest(w, "Invalid preset ID")
		return
	}
	if err := h.store.DeletePreset(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteNotFound(w, "Preset not found")
			return
		}
		logAndInternalError(w, "failed to delete preset", "preset", id, "error", err)
		return
	}
	h.reload(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// Run handles POST /presets/{id}/run and writes the export to the export
// directory.
func (h *PresetsHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		WriteError(w, http.StatusServiceUnavailable, "scheduler_disabled", "Scheduler is not running", nil)
		return
	}
	id, ok := parseIDParam(r, "id")
	if !ok {
		WriteBadRequest(w, "Invalid preset ID")
		return
	}

	path, err := h.runner.Trigger(r.Context(), id)
	if err != nil {
		if errors.Is(err, scheduler.ErrTriggerLimited) {
			WriteError(w, http.StatusTooManyRequests, "rate_limit_exceeded", err.Error(), nil)
			return
		}
		status, code := exportErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("preset run failed", "preset", id, "error", err)
		}
		WriteError(w, status, code, err.Error(), nil)
		return
	}
	WriteSuccess(w, map[string]any{"preset_id": id, "file": path}, nil)
}

func (h *PresetsHandler) reload(ctx context.Context) {
	if h.runner == nil {
		return
	}
	if err := h.runner.Reload(ctx); err != nil {
		h.logger.Warn("scheduler reload failed", "category", model.EventCategoryScheduler, "error", err)
	}
}
