// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const presetColumns = `id, site_id, name, root_ids, schedule, created_at, updated_at`

func scanPreset(row interface{ Scan(...any) error }) (Preset, error) {
	var p Preset
	err := row.Scan(&p.ID, &p.SiteID, &p.Name, &p.RootIds, &p.Schedule, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const getPreset = `SELECT ` + presetColumns + ` FROM presets WHERE id = ?`

// GetPreset returns a preset by ID.
func (q *Queries) GetPreset(ctx context.Context, id int64) (Preset, error) {
	p, err := scanPreset(q.db.QueryRowContext(ctx, getPreset, id))
	return p, notFound(err)
}

const listPresets = `SELECT ` + presetColumns + ` FROM presets ORDER BY site_id, name`

// ListPresets returns all presets.
func (q *Queries) ListPresets(ctx context.Context) ([]Preset, error) {
	return q.queryPresets(ctx, listPresets)
}

const listScheduledPresets = `SELECT ` + presetColumns + ` FROM presets WHERE schedule != '' ORDER BY id`

// ListScheduledPresets returns presets that carry a cron schedule.
func (q *Queries) ListScheduledPresets(ctx context.Context) ([]Preset, error) {
	return q.queryPresets(ctx, listScheduledPresets)
}

func (q *Queries) queryPresets(ctx context.Context, query string, args ...any) ([]Preset, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Preset
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const createPreset = `
INSERT INTO presets (site_id, name, root_ids, schedule, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + presetColumns

// CreatePresetParams holds the values for CreatePreset.
type CreatePresetParams struct {
	SiteID    int64
	Name      string
	RootIds   string
	Schedule  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreatePreset inserts a preset.
func (q *Queries) CreatePreset(ctx context.Context, arg CreatePresetParams) (Preset, error) {
	return scanPreset(q.db.QueryRowContext(ctx, createPreset,
		arg.SiteID, arg.Name, arg.RootIds, arg.Schedule, arg.CreatedAt, arg.UpdatedAt,
	))
}

const deletePreset = `DELETE FROM presets WHERE id = ?`

// DeletePreset removes a preset. It returns ErrNotFound when no row matched.
func (q *Queries) DeletePreset(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, deletePreset, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
