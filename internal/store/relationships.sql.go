// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const getRelationshipID = `SELECT relationship_id FROM relationship_members WHERE kind = ? AND site_id = ? AND object_id = ?`

// GetRelationshipID returns the relationship an object belongs to.
func (q *Queries) GetRelationshipID(ctx context.Context, kind string, siteID, objectID int64) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, getRelationshipID, kind, siteID, objectID).Scan(&id)
	return id, notFound(err)
}

const listRelationshipMembers = `
SELECT relationship_id, kind, site_id, object_id FROM relationship_members
WHERE relationship_id = ? ORDER BY site_id`

// ListRelationshipMembers returns all members of a relationship ordered by site.
func (q *Queries) ListRelationshipMembers(ctx context.Context, relationshipID int64) ([]RelationshipMember, error) {
	rows, err := q.db.QueryContext(ctx, listRelationshipMembers, relationshipID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []RelationshipMember
	for rows.Next() {
		var m RelationshipMember
		if err := rows.Scan(&m.RelationshipID, &m.Kind, &m.SiteID, &m.ObjectID); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const createRelationship = `INSERT INTO relationships (kind, created_at) VALUES (?, ?) RETURNING id`

// CreateRelationship creates an empty relationship group.
func (q *Queries) CreateRelationship(ctx context.Context, kind string, createdAt time.Time) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, createRelationship, kind, createdAt).Scan(&id)
	return id, err
}

const deleteRelationshipMember = `DELETE FROM relationship_members WHERE kind = ? AND site_id = ? AND object_id = ?`

// DeleteRelationshipMember removes an object from whatever relationship holds it.
func (q *Queries) DeleteRelationshipMember(ctx context.Context, kind string, siteID, objectID int64) error {
	_, err := q.db.ExecContext(ctx, deleteRelationshipMember, kind, siteID, objectID)
	return err
}

const upsertRelationshipMember = `
INSERT INTO relationship_members (relationship_id, kind, site_id, object_id) VALUES (?, ?, ?, ?)
ON CONFLICT(relationship_id, site_id) DO UPDATE SET object_id = excluded.object_id`

// UpsertRelationshipMember sets the object representing siteID in a relationship.
func (q *Queries) UpsertRelationshipMember(ctx context.Context, relationshipID int64, kind string, siteID, objectID int64) error {
	_, err := q.db.ExecContext(ctx, upsertRelationshipMember, relationshipID, kind, siteID, objectID)
	return err
}
