// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const contentColumns = `id, site_id, type, status, title, slug, body, excerpt, parent_id, created_at, updated_at`

func scanContent(row interface{ Scan(...any) error }) (Content, error) {
	var c Content
	err := row.Scan(
		&c.ID, &c.SiteID, &c.Type, &c.Status, &c.Title, &c.Slug,
		&c.Body, &c.Excerpt, &c.ParentID, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

const getContent = `SELECT ` + contentColumns + ` FROM contents WHERE site_id = ? AND id = ?`

// GetContent returns a content row of the given site.
func (q *Queries) GetContent(ctx context.Context, siteID, id int64) (Content, error) {
	c, err := scanContent(q.db.QueryRowContext(ctx, getContent, siteID, id))
	return c, notFound(err)
}

const createContent = `
INSERT INTO contents (site_id, type, status, title, slug, body, excerpt, parent_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + contentColumns

// CreateContentParams holds the values for CreateContent.
type CreateContentParams struct {
	SiteID    int64
	Type      string
	Status    string
	Title     string
	Slug      string
	Body      string
	Excerpt   string
	ParentID  sql.NullInt64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateContent inserts a content row.
func (q *Queries) CreateContent(ctx context.Context, arg CreateContentParams) (Content, error) {
	row := q.db.QueryRowContext(ctx, createContent,
		arg.SiteID, arg.Type, arg.Status, arg.Title, arg.Slug,
		arg.Body, arg.Excerpt, arg.ParentID, arg.CreatedAt, arg.UpdatedAt,
	)
	return scanContent(row)
}

const updateContent = `
UPDATE contents SET
    type = CASE WHEN ? = '' THEN type ELSE ? END,
    status = CASE WHEN ? = '' THEN status ELSE ? END,
    title = COALESCE(?, title),
    body = COALESCE(?, body),
    excerpt = COALESCE(?, excerpt),
    parent_id = CASE WHEN ? THEN ? ELSE parent_id END,
    updated_at = ?
WHERE site_id = ? AND id = ?`

// UpdateContentParams holds the values for UpdateContent. Null strings
// leave the column unchanged; ParentID is only written when SetParent is set.
type UpdateContentParams struct {
	SiteID    int64
	ID        int64
	Type      string
	Status    string
	Title     sql.NullString
	Body      sql.NullString
	Excerpt   sql.NullString
	SetParent bool
	ParentID  sql.NullInt64
	UpdatedAt time.Time
}

// UpdateContent updates an existing content row.
func (q *Queries) UpdateContent(ctx context.Context, arg UpdateContentParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateContent,
		arg.Type, arg.Type,
		arg.Status, arg.Status,
		arg.Title, arg.Body, arg.Excerpt,
		arg.SetParent, arg.ParentID,
		arg.UpdatedAt,
		arg.SiteID, arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const findContentBySlug = `SELECT ` + contentColumns + `
FROM contents WHERE site_id = ? AND slug = ? AND parent_id IS ?
ORDER BY id LIMIT 1`

// FindContentBySlug returns the first item with slug below parent (NULL for top level).
func (q *Queries) FindContentBySlug(ctx context.Context, siteID int64, slug string, parentID sql.NullInt64) (Content, error) {
	c, err := scanContent(q.db.QueryRowContext(ctx, findContentBySlug, siteID, slug, parentID))
	return c, notFound(err)
}

const countSiblingSlug = `SELECT COUNT(*) FROM contents WHERE site_id = ? AND slug = ? AND parent_id IS ?`

// CountSiblingSlug counts items using slug below parent.
func (q *Queries) CountSiblingSlug(ctx context.Context, siteID int64, slug string, parentID sql.NullInt64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countSiblingSlug, siteID, slug, parentID).Scan(&n)
	return n, err
}

const listChildContents = `SELECT ` + contentColumns + ` FROM contents WHERE site_id = ? AND parent_id = ? ORDER BY id`

// ListChildContents returns the direct children of a content item.
func (q *Queries) ListChildContents(ctx context.Context, siteID, parentID int64) ([]Content, error) {
	rows, err := q.db.QueryContext(ctx, listChildContents, siteID, parentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const listContentMeta = `SELECT id, content_id, meta_key, meta_value FROM content_meta WHERE content_id = ? ORDER BY id`

// ListContentMeta returns all meta rows of a content item in insertion order.
func (q *Queries) ListContentMeta(ctx context.Context, contentID int64) ([]ContentMeta, error) {
	rows, err := q.db.QueryContext(ctx, listContentMeta, contentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []ContentMeta
	for rows.Next() {
		var m ContentMeta
		if err := rows.Scan(&m.ID, &m.ContentID, &m.MetaKey, &m.MetaValue); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const addContentMeta = `INSERT INTO content_meta (content_id, meta_key, meta_value) VALUES (?, ?, ?)`

// AddContentMeta appends a meta value. Existing values for the key are kept.
func (q *Queries) AddContentMeta(ctx context.Context, contentID int64, key, value string) error {
	_, err := q.db.ExecContext(ctx, addContentMeta, contentID, key, value)
	return err
}

const deleteContentMetaKey = `DELETE FROM content_meta WHERE content_id = ? AND meta_key = ?`

// DeleteContentMetaKey removes all values of a meta key.
func (q *Queries) DeleteContentMetaKey(ctx context.Context, contentID int64, key string) error {
	_, err := q.db.ExecContext(ctx, deleteContentMetaKey, contentID, key)
	return err
}
