// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import "context"

const getTerm = `SELECT id, site_id, taxonomy, name, slug FROM terms WHERE site_id = ? AND id = ?`

// GetTerm returns a term of the given site.
func (q *Queries) GetTerm(ctx context.Context, siteID, id int64) (Term, error) {
	var t Term
	err := q.db.QueryRowContext(ctx, getTerm, siteID, id).Scan(&t.ID, &t.SiteID, &t.Taxonomy, &t.Name, &t.Slug)
	return t, notFound(err)
}

const getTermBySlug = `SELECT id, site_id, taxonomy, name, slug FROM terms WHERE site_id = ? AND taxonomy = ? AND slug = ?`

// GetTermBySlug looks a term up by taxonomy and slug.
func (q *Queries) GetTermBySlug(ctx context.Context, siteID int64, taxonomy, slug string) (Term, error) {
	var t Term
	err := q.db.QueryRowContext(ctx, getTermBySlug, siteID, taxonomy, slug).Scan(&t.ID, &t.SiteID, &t.Taxonomy, &t.Name, &t.Slug)
	return t, notFound(err)
}

const createTerm = `INSERT INTO terms (site_id, taxonomy, name, slug) VALUES (?, ?, ?, ?) RETURNING id`

// CreateTermParams holds the values for CreateTerm.
type CreateTermParams struct {
	SiteID   int64
	Taxonomy string
	Name     string
	Slug     string
}

// CreateTerm inserts a term and returns its ID.
func (q *Queries) CreateTerm(ctx context.Context, arg CreateTermParams) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, createTerm, arg.SiteID, arg.Taxonomy, arg.Name, arg.Slug).Scan(&id)
	return id, err
}

const listContentTerms = `
SELECT t.id, t.site_id, t.taxonomy, t.name, t.slug
FROM terms t
JOIN content_terms ct ON ct.term_id = t.id
WHERE ct.content_id = ?
ORDER BY t.taxonomy, t.id`

// ListContentTerms returns the terms of a content item ordered by taxonomy and ID.
func (q *Queries) ListContentTerms(ctx context.Context, contentID int64) ([]Term, error) {
	rows, err := q.db.QueryContext(ctx, listContentTerms, contentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Term
	for rows.Next() {
		var t Term
		if err := rows.Scan(&t.ID, &t.SiteID, &t.Taxonomy, &t.Name, &t.Slug); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const clearContentTerms = `DELETE FROM content_terms WHERE content_id = ?`

// ClearContentTerms detaches all terms from a content item.
func (q *Queries) ClearContentTerms(ctx context.Context, contentID int64) error {
	_, err := q.db.ExecContext(ctx, clearContentTerms, contentID)
	return err
}

const addContentTerm = `INSERT OR IGNORE INTO content_terms (content_id, term_id) VALUES (?, ?)`

// AddContentTerm attaches a term to a content item.
func (q *Queries) AddContentTerm(ctx context.Context, contentID, termID int64) error {
	_, err := q.db.ExecContext(ctx, addContentTerm, contentID, termID)
	return err
}
