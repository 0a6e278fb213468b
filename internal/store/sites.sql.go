// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import "context"

const getSite = `SELECT id, name, url, language, is_active FROM sites WHERE id = ?`

// GetSite returns a site by ID.
func (q *Queries) GetSite(ctx context.Context, id int64) (Site, error) {
	row := q.db.QueryRowContext(ctx, getSite, id)
	var s Site
	err := row.Scan(&s.ID, &s.Name, &s.Url, &s.Language, &s.IsActive)
	return s, notFound(err)
}

const listActiveSites = `SELECT id, name, url, language, is_active FROM sites WHERE is_active = 1 ORDER BY id`

// ListActiveSites returns all active sites ordered by ID.
func (q *Queries) ListActiveSites(ctx context.Context) ([]Site, error) {
	rows, err := q.db.QueryContext(ctx, listActiveSites)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Site
	for rows.Next() {
		var s Site
		if err := rows.Scan(&s.ID, &s.Name, &s.Url, &s.Language, &s.IsActive); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

const upsertSite = `
INSERT INTO sites (id, name, url, language, is_active) VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    url = excluded.url,
    language = excluded.language,
    is_active = excluded.is_active`

// UpsertSiteParams holds the values for UpsertSite.
type UpsertSiteParams struct {
	ID       int64
	Name     string
	Url      string
	Language string
	IsActive int64
}

// UpsertSite creates or replaces a site row.
func (q *Queries) UpsertSite(ctx context.Context, arg UpsertSiteParams) error {
	_, err := q.db.ExecContext(ctx, upsertSite, arg.ID, arg.Name, arg.Url, arg.Language, arg.IsActive)
	return err
}
