// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/olegiv/ocms-xliff/internal/model"
	"github.com/olegiv/ocms-xliff/internal/transfer"
)

// Directory implements transfer.Directory with the relationships tables.
type Directory struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

var _ transfer.Directory = (*Directory)(nil)

// NewDirectory creates a Directory.
func NewDirectory(db *sql.DB) *Directory {
	return &Directory{db: db, queries: New(db), now: time.Now}
}

// Sites returns the active sites ordered by ID.
func (d *Directory) Sites(ctx context.Context) ([]model.Site, error) {
	rows, err := d.queries.ListActiveSites(ctx)
	if err != nil {
		return nil, err
	}
	sites := make([]model.Site, 0, len(rows))
	for _, s := range rows {
		sites = append(sites, siteFromRow(s))
	}
	return sites, nil
}

// Translations returns siteID -> objectID for the counterparts of an object
// on other sites.
func (d *Directory) Translations(ctx context.Context, siteID, objectID int64, kind model.RelationKind) (map[int64]int64, error) {
	out := make(map[int64]int64)

	relID, err := d.queries.GetRelationshipID(ctx, string(kind), siteID, objectID)
	if errors.Is(err, ErrNotFound) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}

	members, err := d.queries.ListRelationshipMembers(ctx, relID)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.SiteID == siteID {
			continue
		}
		out[m.SiteID] = m.ObjectID
	}
	return out, nil
}

// CreateLink connects the members as translations of each other. When
// members already belong to links, the lowest link ID is kept and the
// remaining members of the other links move into it unless their site is
// taken by a given member.
func (d *Directory) CreateLink(ctx context.Context, kind model.RelationKind, members map[int64]int64) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown relation kind %q", kind)
	}
	if len(members) == 0 {
		return nil
	}

	sites := make([]int64, 0, len(members))
	for site := range members {
		sites = append(sites, site)
	}
	sort.Slice(sites, func(i, j int) bool { return sites[i] < sites[j] })

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	q := d.queries.WithTx(tx)

	var existing []int64
	for _, site := range sites {
		relID, err := q.GetRelationshipID(ctx, string(kind), site, members[site])
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		existing = append(existing, relID)
	}
	sort.Slice(existing, func(i, j int) bool { return existing[i] < existing[j] })

	final := make(map[int64]int64, len(members))
	var relID int64
	if len(existing) == 0 {
		relID, err = q.CreateRelationship(ctx, string(kind), d.now())
		if err != nil {
			return fmt.Errorf("creating relationship: %w", err)
		}
	} else {
		relID = existing[0]
		for _, id := range existing {
			rows, err := q.ListRelationshipMembers(ctx, id)
			if err != nil {
				return err
			}
			for _, m := range rows {
				if _, taken := final[m.SiteID]; !taken {
					final[m.SiteID] = m.ObjectID
				}
			}
		}
	}
	for site, obj := range members {
		final[site] = obj
	}

	finalSites := make([]int64, 0, len(final))
	for site := range final {
		finalSites = append(finalSites, site)
	}
	sort.Slice(finalSites, func(i, j int) bool { return finalSites[i] < finalSites[j] })

	for _, id := range existing {
		rows, err := q.ListRelationshipMembers(ctx, id)
		if err != nil {
			return err
		}
		for _, m := range rows {
			if err := q.DeleteRelationshipMember(ctx, m.Kind, m.SiteID, m.ObjectID); err != nil {
				return err
			}
		}
	}
	for _, site := range finalSites {
		if err := q.DeleteRelationshipMember(ctx, string(kind), site, final[site]); err != nil {
			return err
		}
		if err := q.UpsertRelationshipMember(ctx, relID, string(kind), site, final[site]); err != nil {
			return fmt.Errorf("adding member %d/%d: %w", site, final[site], err)
		}
	}

	return tx.Commit()
}
