// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const mediaColumns = `id, site_id, filename, alt_text, caption, title, description, created_at, updated_at`

func scanMedium(row interface{ Scan(...any) error }, extra ...any) (Medium, error) {
	var m Medium
	dest := []any{
		&m.ID, &m.SiteID, &m.Filename, &m.AltText, &m.Caption,
		&m.Title, &m.Description, &m.CreatedAt, &m.UpdatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	return m, err
}

const getMedium = `SELECT ` + mediaColumns + ` FROM media WHERE site_id = ? AND id = ?`

// GetMedium returns a media row of the given site.
func (q *Queries) GetMedium(ctx context.Context, siteID, id int64) (Medium, error) {
	m, err := scanMedium(q.db.QueryRowContext(ctx, getMedium, siteID, id))
	return m, notFound(err)
}

const createMedium = `
INSERT INTO media (site_id, filename, alt_text, caption, title, description, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`

// CreateMediumParams holds the values for CreateMedium.
type CreateMediumParams struct {
	SiteID      int64
	Filename    string
	AltText     string
	Caption     string
	Title       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateMedium inserts a media row and returns its ID.
func (q *Queries) CreateMedium(ctx context.Context, arg CreateMediumParams) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, createMedium,
		arg.SiteID, arg.Filename, arg.AltText, arg.Caption, arg.Title, arg.Description,
		arg.CreatedAt, arg.UpdatedAt,
	).Scan(&id)
	return id, err
}

const updateMedium = `
UPDATE media SET alt_text = ?, caption = ?, title = ?, description = ?, updated_at = ?
WHERE site_id = ? AND id = ?`

// UpdateMediumParams holds the values for UpdateMedium.
type UpdateMediumParams struct {
	SiteID      int64
	ID          int64
	AltText     string
	Caption     string
	Title       string
	Description string
	UpdatedAt   time.Time
}

// UpdateMedium replaces the descriptors of a media row.
func (q *Queries) UpdateMedium(ctx context.Context, arg UpdateMediumParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateMedium,
		arg.AltText, arg.Caption, arg.Title, arg.Description, arg.UpdatedAt,
		arg.SiteID, arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listContentMedia = `
SELECT m.id, m.site_id, m.filename, m.alt_text, m.caption, m.title, m.description, m.created_at, m.updated_at,
       cm.scope, cm.position
FROM media m
JOIN content_media cm ON cm.media_id = m.id
WHERE cm.content_id = ?
ORDER BY CASE cm.scope WHEN 'post_thumbnail' THEN 0 WHEN 'attached' THEN 1 ELSE 2 END, cm.position, m.id`

// ListContentMedia returns the media attached to a content item, featured image first.
func (q *Queries) ListContentMedia(ctx context.Context, contentID int64) ([]ContentMedium, error) {
	rows, err := q.db.QueryContext(ctx, listContentMedia, contentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []ContentMedium
	for rows.Next() {
		var cm ContentMedium
		m, err := scanMedium(rows, &cm.Scope, &cm.Position)
		if err != nil {
			return nil, err
		}
		cm.Medium = m
		items = append(items, cm)
	}
	return items, rows.Err()
}

const clearContentMediaScope = `DELETE FROM content_media WHERE content_id = ? AND scope = ?`

// ClearContentMediaScope detaches all media of one scope.
func (q *Queries) ClearContentMediaScope(ctx context.Context, contentID int64, scope string) error {
	_, err := q.db.ExecContext(ctx, clearContentMediaScope, contentID, scope)
	return err
}

const addContentMedium = `INSERT OR REPLACE INTO content_media (content_id, media_id, scope, position) VALUES (?, ?, ?, ?)`

// AddContentMedium attaches a media item in a scope at position.
func (q *Queries) AddContentMedium(ctx context.Context, contentID, mediaID int64, scope string, position int64) error {
	_, err := q.db.ExecContext(ctx, addContentMedium, contentID, mediaID, scope, position)
	return err
}
