// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/ocms-xliff/internal/model"
	"github.com/olegiv/ocms-xliff/internal/transfer"
	"github.com/olegiv/ocms-xliff/internal/util"
)

// maxDepth bounds parent walks over corrupted data.
const maxDepth = 64

// Repository implements transfer.Repository on top of SQLite.
type Repository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

var _ transfer.Repository = (*Repository)(nil)

// NewRepository creates a Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, queries: New(db), now: time.Now}
}

// contentNotFound maps ErrNotFound to transfer.ErrContentNotFound.
func contentNotFound(err error, siteID, id int64) error {
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("site %d item %d: %w", siteID, id, transfer.ErrContentNotFound)
	}
	return err
}

func siteFromRow(s Site) model.Site {
	return model.Site{
		ID:       s.ID,
		Name:     s.Name,
		URL:      strings.TrimRight(s.Url, "/"),
		Language: s.Language,
		IsActive: s.IsActive == 1,
	}
}

func mediaFromRow(m Medium) model.Media {
	return model.Media{
		ID:          m.ID,
		SiteID:      m.SiteID,
		Filename:    m.Filename,
		AltText:     m.AltText,
		Caption:     m.Caption,
		Title:       m.Title,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// Site returns the site with the given ID.
func (r *Repository) Site(ctx context.Context, siteID int64) (*model.Site, error) {
	row, err := r.queries.GetSite(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("site %d: %w", siteID, err)
	}
	site := siteFromRow(row)
	return &site, nil
}

// Content returns a content item with its meta, terms and media.
func (r *Repository) Content(ctx context.Context, siteID, id int64) (*model.ContentItem, error) {
	row, err := r.queries.GetContent(ctx, siteID, id)
	if err != nil {
		return nil, contentNotFound(err, siteID, id)
	}

	item := &model.ContentItem{
		ID:        row.ID,
		SiteID:    row.SiteID,
		Type:      row.Type,
		Status:    row.Status,
		Title:     row.Title,
		Slug:      row.Slug,
		Body:      row.Body,
		Excerpt:   row.Excerpt,
		ParentID:  util.Int64FromNull(row.ParentID),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}

	meta, err := r.queries.ListContentMeta(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing meta: %w", err)
	}
	for _, m := range meta {
		item.Meta = append(item.Meta, model.MetaField{Key: m.MetaKey, Value: m.MetaValue})
	}

	terms, err := r.queries.ListContentTerms(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing terms: %w", err)
	}
	for _, t := range terms {
		item.Terms = append(item.Terms, model.Term{
			ID:       t.ID,
			SiteID:   t.SiteID,
			Taxonomy: t.Taxonomy,
			Name:     t.Name,
			Slug:     t.Slug,
		})
	}

	media, err := r.queries.ListContentMedia(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing media: %w", err)
	}
	for _, m := range media {
		item.Media = append(item.Media, model.MediaRef{Scope: m.Scope, Media: mediaFromRow(m.Medium)})
	}

	return item, nil
}

// ModifiedAt returns the last modification time of a content item.
func (r *Repository) ModifiedAt(ctx context.Context, siteID, id int64) (time.Time, error) {
	row, err := r.queries.GetContent(ctx, siteID, id)
	if err != nil {
		return time.Time{}, contentNotFound(err, siteID, id)
	}
	return row.UpdatedAt, nil
}

// Permalink returns "<site url>/<ancestor slugs>/<slug>/".
func (r *Repository) Permalink(ctx context.Context, siteID, id int64) (string, error) {
	site, err := r.queries.GetSite(ctx, siteID)
	if err != nil {
		return "", fmt.Errorf("site %d: %w", siteID, err)
	}

	var slugs []string
	visited := make(map[int64]bool)
	current := id
	for current != 0 && len(slugs) < maxDepth && !visited[current] {
		visited[current] = true
		row, err := r.queries.GetContent(ctx, siteID, current)
		if err != nil {
			if current != id && errors.Is(err, ErrNotFound) {
				break
			}
			return "", contentNotFound(err, siteID, current)
		}
		slugs = append(slugs, row.Slug)
		current = util.Int64FromNull(row.ParentID)
	}

	for i, j := 0, len(slugs)-1; i < j; i, j = i+1, j-1 {
		slugs[i], slugs[j] = slugs[j], slugs[i]
	}
	return strings.TrimRight(site.Url, "/") + "/" + strings.Join(slugs, "/") + "/", nil
}

// ResolveURL maps an absolute URL of the site to a content ID. Both
// "?p=<id>" and slug paths are understood; unknown URLs yield 0.
func (r *Repository) ResolveURL(ctx context.Context, siteID int64, rawURL string) (int64, error) {
	site, err := r.queries.GetSite(ctx, siteID)
	if err != nil {
		return 0, fmt.Errorf("site %d: %w", siteID, err)
	}
	base := strings.TrimRight(site.Url, "/")
	if !strings.HasPrefix(rawURL, base) {
		return 0, nil
	}

	u, err := url.Parse(rawURL[len(base):])
	if err != nil {
		return 0, nil
	}

	for _, key := range []string{"p", "page_id"} {
		if v := u.Query().Get(key); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return 0, nil
			}
			if _, err := r.queries.GetContent(ctx, siteID, id); err != nil {
				if errors.Is(err, ErrNotFound) {
					return 0, nil
				}
				return 0, err
			}
			return id, nil
		}
	}

	path := strings.Trim(u.Path, "/")
	if path == "" {
		return 0, nil
	}

	var parent sql.NullInt64
	var id int64
	for _, segment := range strings.Split(path, "/") {
		row, err := r.queries.FindContentBySlug(ctx, siteID, segment, parent)
		if errors.Is(err, ErrNotFound) {
			return 0, nil
		}
		if err != nil {
			return 0, err
		}
		id = row.ID
		parent = util.NullInt64FromID(row.ID)
	}
	return id, nil
}

// ChildIDs returns the IDs of the direct children of an item ordered by ID.
func (r *Repository) ChildIDs(ctx context.Context, siteID, parentID int64) ([]int64, error) {
	rows, err := r.queries.ListChildContents(ctx, siteID, parentID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

// inTx runs fn inside a transaction.
func (r *Repository) inTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(r.queries.WithTx(tx)); err != nil {
		return err
	}
	return tx.Commit()
}

// WriteContent creates or updates a content item together with its meta,
// terms and media attachments.
func (r *Repository) WriteContent(ctx context.Context, siteID int64, draft model.ContentDraft) (int64, error) {
	var id int64
	err := r.inTx(ctx, func(q *Queries) error {
		now := r.now()
		var err error
		if draft.IsUpdate() {
			id = draft.ID
			err = r.updateContent(ctx, q, siteID, draft, now)
		} else {
			id, err = r.createContent(ctx, q, siteID, draft, now)
		}
		if err != nil {
			return err
		}
		return r.writeRelations(ctx, q, siteID, id, draft)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *Repository) createContent(ctx context.Context, q *Queries, siteID int64, draft model.ContentDraft, now time.Time) (int64, error) {
	parent := util.NullInt64FromID(draft.ParentID)
	if parent.Valid {
		if _, err := q.GetContent(ctx, siteID, draft.ParentID); err != nil {
			return 0, fmt.Errorf("parent: %w", contentNotFound(err, siteID, draft.ParentID))
		}
	}

	title := deref(draft.Title)
	slug, err := util.UniqueSlug(util.Slugify(title), func(s string) (bool, error) {
		n, err := q.CountSiblingSlug(ctx, siteID, s, parent)
		return n > 0, err
	})
	if err != nil {
		return 0, fmt.Errorf("slug: %w", err)
	}

	row, err := q.CreateContent(ctx, CreateContentParams{
		SiteID:    siteID,
		Type:      orDefault(draft.Type, model.TypePage),
		Status:    orDefault(draft.Status, model.StatusDraft),
		Title:     title,
		Slug:      slug,
		Body:      deref(draft.Body),
		Excerpt:   deref(draft.Excerpt),
		ParentID:  parent,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return 0, fmt.Errorf("creating content: %w", err)
	}
	return row.ID, nil
}

func (r *Repository) updateContent(ctx context.Context, q *Queries, siteID int64, draft model.ContentDraft, now time.Time) error {
	if draft.ParentID == draft.ID {
		return fmt.Errorf("item %d cannot be its own parent", draft.ID)
	}
	n, err := q.UpdateContent(ctx, UpdateContentParams{
		SiteID:    siteID,
		ID:        draft.ID,
		Type:      draft.Type,
		Status:    draft.Status,
		Title:     util.NullStringFromPtr(draft.Title),
		Body:      util.NullStringFromPtr(draft.Body),
		Excerpt:   util.NullStringFromPtr(draft.Excerpt),
		SetParent: draft.ParentID != 0,
		ParentID:  util.NullInt64FromID(draft.ParentID),
		UpdatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("updating content: %w", err)
	}
	if n == 0 {
		return contentNotFound(ErrNotFound, siteID, draft.ID)
	}
	return nil
}

// writeRelations stores meta, terms and media of a draft. Meta keys in the
// draft replace existing values; a non-nil term list replaces the item's
// terms; media replace the attachments of the scopes they name.
func (r *Repository) writeRelations(ctx context.Context, q *Queries, siteID, id int64, draft model.ContentDraft) error {
	keys := make([]string, 0, len(draft.Meta))
	for k := range draft.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := q.DeleteContentMetaKey(ctx, id, k); err != nil {
			return fmt.Errorf("meta %s: %w", k, err)
		}
		if err := q.AddContentMeta(ctx, id, k, draft.Meta[k]); err != nil {
			return fmt.Errorf("meta %s: %w", k, err)
		}
	}

	if draft.TermIDs != nil {
		if err := q.ClearContentTerms(ctx, id); err != nil {
			return fmt.Errorf("clearing terms: %w", err)
		}
		for _, termID := range draft.TermIDs {
			if _, err := q.GetTerm(ctx, siteID, termID); err != nil {
				return fmt.Errorf("term %d: %w", termID, err)
			}
			if err := q.AddContentTerm(ctx, id, termID); err != nil {
				return fmt.Errorf("term %d: %w", termID, err)
			}
		}
	}

	cleared := make(map[string]bool)
	for pos, att := range draft.Media {
		if !cleared[att.Scope] {
			if err := q.ClearContentMediaScope(ctx, id, att.Scope); err != nil {
				return fmt.Errorf("clearing %s media: %w", att.Scope, err)
			}
			cleared[att.Scope] = true
		}
		if _, err := q.GetMedium(ctx, siteID, att.MediaID); err != nil {
			return fmt.Errorf("media %d: %w", att.MediaID, err)
		}
		if err := q.AddContentMedium(ctx, id, att.MediaID, att.Scope, int64(pos)); err != nil {
			return fmt.Errorf("media %d: %w", att.MediaID, err)
		}
	}
	return nil
}

// UpdateContent changes individual columns of an existing item.
func (r *Repository) UpdateContent(ctx context.Context, siteID, id int64, patch model.ContentPatch) error {
	params := UpdateContentParams{
		SiteID:    siteID,
		ID:        id,
		Body:      util.NullStringFromPtr(patch.Body),
		UpdatedAt: r.now(),
	}
	if patch.ParentID != nil {
		if *patch.ParentID == id {
			return fmt.Errorf("item %d cannot be its own parent", id)
		}
		params.SetParent = true
		params.ParentID = util.NullInt64FromPtr(patch.ParentID)
	}

	n, err := r.queries.UpdateContent(ctx, params)
	if err != nil {
		return fmt.Errorf("updating content: %w", err)
	}
	if n == 0 {
		return contentNotFound(ErrNotFound, siteID, id)
	}
	return nil
}

// AddMeta appends a meta value to an item of the site.
func (r *Repository) AddMeta(ctx context.Context, siteID, id int64, key, value string) error {
	if _, err := r.queries.GetContent(ctx, siteID, id); err != nil {
		return contentNotFound(err, siteID, id)
	}
	return r.queries.AddContentMeta(ctx, id, key, value)
}

// Media returns a media item of the site.
func (r *Repository) Media(ctx context.Context, siteID, id int64) (*model.Media, error) {
	row, err := r.queries.GetMedium(ctx, siteID, id)
	if err != nil {
		return nil, contentNotFound(err, siteID, id)
	}
	m := mediaFromRow(row)
	return &m, nil
}

// WriteMedia creates or updates a media item.
func (r *Repository) WriteMedia(ctx context.Context, siteID int64, m model.Media) (int64, error) {
	now := r.now()
	if m.ID == 0 {
		id, err := r.queries.CreateMedium(ctx, CreateMediumParams{
			SiteID:      siteID,
			Filename:    m.Filename,
			AltText:     m.AltText,
			Caption:     m.Caption,
			Title:       m.Title,
			Description: m.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return 0, fmt.Errorf("creating media: %w", err)
		}
		return id, nil
	}

	n, err := r.queries.UpdateMedium(ctx, UpdateMediumParams{
		SiteID:      siteID,
		ID:          m.ID,
		AltText:     m.AltText,
		Caption:     m.Caption,
		Title:       m.Title,
		Description: m.Description,
		UpdatedAt:   now,
	})
	if err != nil {
		return 0, fmt.Errorf("updating media: %w", err)
	}
	if n == 0 {
		return 0, contentNotFound(ErrNotFound, siteID, m.ID)
	}
	return m.ID, nil
}

// WriteTerm returns the ID of the term with the same taxonomy and slug,
// creating it when missing.
func (r *Repository) WriteTerm(ctx context.Context, siteID int64, t model.Term) (int64, error) {
	slug := t.Slug
	if !util.IsValidSlug(slug) {
		slug = util.Slugify(slug)
	}
	if slug == "" {
		slug = util.Slugify(t.Name)
	}
	if slug == "" {
		slug = "term"
	}

	existing, err := r.queries.GetTermBySlug(ctx, siteID, t.Taxonomy, slug)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return 0, err
	}

	id, err := r.queries.CreateTerm(ctx, CreateTermParams{
		SiteID:   siteID,
		Taxonomy: t.Taxonomy,
		Name:     t.Name,
		Slug:     slug,
	})
	if err != nil {
		return 0, fmt.Errorf("creating term: %w", err)
	}
	return id, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
