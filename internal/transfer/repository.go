// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package transfer exports site content as XLIFF 2.0 documents and imports
// translated documents back into the target site.
package transfer

import (
	"context"
	"time"

	"github.com/olegiv/ocms-xliff/internal/model"
)

// Repository gives access to the content of every site. All calls take the
// site explicitly; implementations must not keep an "active site".
type Repository interface {
	// Site returns the site with the given ID.
	Site(ctx context.Context, siteID int64) (*model.Site, error)

	// Content returns a content item with its meta, terms and media.
	// Missing items yield an error wrapping ErrContentNotFound.
	Content(ctx context.Context, siteID, id int64) (*model.ContentItem, error)

	// ModifiedAt returns the last modification time of a content item.
	ModifiedAt(ctx context.Context, siteID, id int64) (time.Time, error)

	// Permalink returns the public URL of a content item.
	Permalink(ctx context.Context, siteID, id int64) (string, error)

	// ResolveURL maps an absolute URL of the site to a content ID.
	// It returns 0 when the URL does not belong to any item.
	ResolveURL(ctx context.Context, siteID int64, rawURL string) (int64, error)

	// WriteContent creates (draft.ID == 0) or updates a content item and
	// returns its ID.
	WriteContent(ctx context.Context, siteID int64, draft model.ContentDraft) (int64, error)

	// UpdateContent changes individual columns of an existing item.
	UpdateContent(ctx context.Context, siteID, id int64, patch model.ContentPatch) error

	// AddMeta appends a meta value without touching existing values.
	AddMeta(ctx context.Context, siteID, id int64, key, value string) error

	// Media returns a media item of the site's library.
	Media(ctx context.Context, siteID, id int64) (*model.Media, error)

	// WriteMedia creates (m.ID == 0) or updates a media item and returns its ID.
	WriteMedia(ctx context.Context, siteID int64, m model.Media) (int64, error)

	// WriteTerm creates a term, or returns the ID of an existing term with
	// the same taxonomy and slug.
	WriteTerm(ctx context.Context, siteID int64, t model.Term) (int64, error)
}

// Directory records which objects on different sites are translations of
// each other.
type Directory interface {
	// Sites returns the active sites ordered by ID.
	Sites(ctx context.Context) ([]model.Site, error)

	// Translations returns siteID -> objectID for every counterpart of the
	// object, excluding the queried site itself.
	Translations(ctx context.Context, siteID, objectID int64, kind model.RelationKind) (map[int64]int64, error)

	// CreateLink connects the members (siteID -> objectID) as translations
	// of each other, merging into an existing link when one member has one.
	CreateLink(ctx context.Context, kind model.RelationKind, members map[int64]int64) error
}
