// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/ocms-xliff/internal/cache"
	"github.com/olegiv/ocms-xliff/internal/model"
	"github.com/olegiv/ocms-xliff/internal/transfer"
)

// Cache key prefixes.
const (
	permalinkPrefix   = "permalink:"
	resolvePrefix     = "resolve:"
	translationPrefix = "links:"
)

// DefaultLookupTTL is how long permalink and translation lookups are cached.
const DefaultLookupTTL = 10 * time.Minute

// CachedRepository caches permalink and URL lookups of a repository.
// Every write to a site drops the cached lookups of that site.
type CachedRepository struct {
	transfer.Repository

	cache      cache.Cache
	permalinks *cache.TypedCache[string]
	resolved   *cache.TypedCache[int64]
	logger     *slog.Logger
}

// NewCachedRepository wraps repo with a lookup cache.
func NewCachedRepository(repo transfer.Repository, c cache.Cache, ttl time.Duration, logger *slog.Logger) *CachedRepository {
	if ttl <= 0 {
		ttl = DefaultLookupTTL
	}
	return &CachedRepository{
		Repository: repo,
		cache:      c,
		permalinks: cache.NewTypedCache[string](c, ttl),
		resolved:   cache.NewTypedCache[int64](c, ttl),
		logger:     logger,
	}
}

func permalinkKey(siteID, id int64) string {
	return fmt.Sprintf("%s%d:%d", permalinkPrefix, siteID, id)
}

func resolveKey(siteID int64, rawURL string) string {
	return fmt.Sprintf("%s%d:%s", resolvePrefix, siteID, rawURL)
}

// Permalink returns the cached permalink of an item.
func (r *CachedRepository) Permalink(ctx context.Context, siteID, id int64) (string, error) {
	return r.permalinks.GetOrSet(ctx, permalinkKey(siteID, id), func() (string, error) {
		return r.Repository.Permalink(ctx, siteID, id)
	})
}

// ResolveURL returns the cached content ID of a URL.
func (r *CachedRepository) ResolveURL(ctx context.Context, siteID int64, rawURL string) (int64, error) {
	return r.resolved.GetOrSet(ctx, resolveKey(siteID, rawURL), func() (int64, error) {
		return r.Repository.ResolveURL(ctx, siteID, rawURL)
	})
}

// WriteContent writes the item and invalidates the site's lookups.
func (r *CachedRepository) WriteContent(ctx context.Context, siteID int64, draft model.ContentDraft) (int64, error) {
	id, err := r.Repository.WriteContent(ctx, siteID, draft)
	r.invalidateSite(ctx, siteID)
	return id, err
}

// UpdateContent updates the item and invalidates the site's lookups.
func (r *CachedRepository) UpdateContent(ctx context.Context, siteID, id int64, patch model.ContentPatch) error {
	err := r.Repository.UpdateContent(ctx, siteID, id, patch)
	r.invalidateSite(ctx, siteID)
	return err
}

// invalidateSite drops cached lookups of a site. Slug changes move the
// permalinks of every descendant, so the whole site goes.
func (r *CachedRepository) invalidateSite(ctx context.Context, siteID int64) {
	for _, prefix := range []string{permalinkPrefix, resolvePrefix} {
		key := fmt.Sprintf("%s%d:", prefix, siteID)
		if err := r.cache.DeleteByPrefix(ctx, key); err != nil {
			r.logger.Warn("cache invalidation failed", "category", model.EventCategoryCache,
				"prefix", key, "error", err)
		}
	}
}

// CachedDirectory caches translation lookups of a directory.
type CachedDirectory struct {
	transfer.Directory

	cache  cache.Cache
	links  *cache.TypedCache[map[int64]int64]
	logger *slog.Logger
}

// NewCachedDirectory wraps dir with a lookup cache.
func NewCachedDirectory(dir transfer.Directory, c cache.Cache, ttl time.Duration, logger *slog.Logger) *CachedDirectory {
	if ttl <= 0 {
		ttl = DefaultLookupTTL
	}
	return &CachedDirectory{
		Directory: dir,
		cache:     c,
		links:     cache.NewTypedCache[map[int64]int64](c, ttl),
		logger:    logger,
	}
}

func translationKey(kind model.RelationKind, siteID, objectID int64) string {
	return fmt.Sprintf("%s%s:%d:%d", translationPrefix, kind, siteID, objectID)
}

// Translations returns the cached counterparts of an object.
func (d *CachedDirectory) Translations(ctx context.Context, siteID, objectID int64, kind model.RelationKind) (map[int64]int64, error) {
	return d.links.GetOrSet(ctx, translationKey(kind, siteID, objectID), func() (map[int64]int64, error) {
		return d.Directory.Translations(ctx, siteID, objectID, kind)
	})
}

// CreateLink links the members and drops every cached lookup of this kind.
// Merging may change the counterparts of objects that are not members.
func (d *CachedDirectory) CreateLink(ctx context.Context, kind model.RelationKind, members map[int64]int64) error {
	err := d.Directory.CreateLink(ctx, kind, members)
	prefix := fmt.Sprintf("%s%s:", translationPrefix, kind)
	if cerr := d.cache.DeleteByPrefix(ctx, prefix); cerr != nil {
		d.logger.Warn("cache invalidation failed", "category", model.EventCategoryCache,
			"prefix", prefix, "error", cerr)
	}
	return err
}
