// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/olegiv/ocms-xliff/internal/model"
)

func presetFromRow(p Preset) (model.Preset, error) {
	ids, err := parseIDList(p.RootIds)
	if err != nil {
		return model.Preset{}, fmt.Errorf("preset %d root ids: %w", p.ID, err)
	}
	return model.Preset{
		ID:        p.ID,
		SiteID:    p.SiteID,
		Name:      p.Name,
		RootIDs:   ids,
		Schedule:  p.Schedule,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}, nil
}

// parseIDList parses a comma separated ID list.
func parseIDList(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func formatIDList(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ",")
}

// Preset returns a preset by ID.
func (r *Repository) Preset(ctx context.Context, id int64) (*model.Preset, error) {
	row, err := r.queries.GetPreset(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("preset %d: %w", id, err)
	}
	p, err := presetFromRow(row)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Presets returns all presets, or only scheduled ones.
func (r *Repository) Presets(ctx context.Context, scheduledOnly bool) ([]model.Preset, error) {
	var rows []Preset
	var err error
	if scheduledOnly {
		rows, err = r.queries.ListScheduledPresets(ctx)
	} else {
		rows, err = r.queries.ListPresets(ctx)
	}
	if err != nil {
		return nil, err
	}

	presets := make([]model.Preset, 0, len(rows))
	for _, row := range rows {
		p, err := presetFromRow(row)
		if err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}
	return presets, nil
}

// CreatePreset stores a new preset.
func (r *Repository) CreatePreset(ctx context.Context, p model.Preset) (*model.Preset, error) {
	now := r.now()
	row, err := r.queries.CreatePreset(ctx, CreatePresetParams{
		SiteID:    p.SiteID,
		Name:      p.Name,
		RootIds:   formatIDList(p.RootIDs),
		Schedule:  p.Schedule,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("creating preset: %w", err)
	}
	created, err := presetFromRow(row)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// DeletePreset removes a preset.
func (r *Repository) DeletePreset(ctx context.Context, id int64) error {
	return r.queries.DeletePreset(ctx, id)
}
