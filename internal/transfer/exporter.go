// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/ocms-xliff/internal/model"
)

// DefaultExcludeMetaKey marks items that are left out of collection exports.
const DefaultExcludeMetaKey = "xliff_exclude_from_mass_export"

// ExportOptions configures an Exporter.
type ExportOptions struct {
	// MetaAllowPrefixes lists prefixes of underscore meta keys that are
	// exported anyway.
	MetaAllowPrefixes []string

	// ExcludeMetaKey is the meta key that, when "1", excludes an item from
	// collection exports.
	ExcludeMetaKey string

	// Now returns the current time; used for the filename.
	Now func() time.Time
}

// DefaultExportOptions returns the options used when none are configured.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		MetaAllowPrefixes: []string{"_genesis_"},
		ExcludeMetaKey:    DefaultExcludeMetaKey,
		Now:               time.Now,
	}
}

// ExportRequest selects what to export.
type ExportRequest struct {
	SiteID int64
	IDs    []int64

	// Collection marks bulk and tree exports: missing items are skipped and
	// excluded items are honoured.
	Collection bool

	// Name is an optional preset name used for the filename.
	Name string
}

// SkippedItem is an item left out of an export.
type SkippedItem struct {
	ID     int64
	Reason string
	Err    error
}

// ExportResult is the outcome of an export.
type ExportResult struct {
	BatchID    string
	Filename   string
	SourceLang string
	TargetLang string

	// Document is nil when no item was exported.
	Document []byte

	Exported []int64
	Titles   map[int64]string
	Skipped  []SkippedItem
}

// Empty returns true if no file was produced.
func (r *ExportResult) Empty() bool {
	return len(r.Document) == 0
}

// Exporter serializes content items into XLIFF documents.
type Exporter struct {
	repo   Repository
	dir    Directory
	links  *LinkCodec
	logger *slog.Logger
	opts   ExportOptions
}

// NewExporter creates a new Exporter instance.
func NewExporter(repo Repository, dir Directory, logger *slog.Logger, opts ExportOptions) *Exporter {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Exporter{
		repo:   repo,
		dir:    dir,
		links:  NewLinkCodec(repo, dir, logger),
		logger: logger,
		opts:   opts,
	}
}

// exportSites holds the source and target site of an export.
type exportSites struct {
	source *model.Site
	target model.Site
}

// Export builds one XLIFF document for the requested items.
func (e *Exporter) Export(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	source, err := e.repo.Site(ctx, req.SiteID)
	if err != nil {
		return nil, fmt.Errorf("loading site %d: %w", req.SiteID, err)
	}
	lang := source.LanguageCode()
	if lang == "" {
		return nil, ErrMissingSourceLanguage
	}

	target, err := e.targetSite(ctx, source.ID)
	if err != nil {
		return nil, err
	}
	sites := exportSites{source: source, target: target}

	b := NewBatch()
	result := &ExportResult{
		BatchID:    b.ID,
		SourceLang: lang,
		TargetLang: target.LanguageCode(),
		Titles:     make(map[int64]string),
	}
	doc := Document{SrcLang: result.SourceLang, TrgLang: result.TargetLang}

	seen := make(map[int64]bool, len(req.IDs))
	for _, id := range req.IDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		file, title, reason, err := e.exportItem(ctx, sites, id, req.Collection)
		if err != nil {
			if !req.Collection {
				return nil, fmt.Errorf("exporting %d: %w", id, err)
			}
			if reason == "" {
				reason = SkipFailed
			}
			e.logger.Warn("item skipped", "batch", b.ID, "id", id, "reason", reason, "error", err)
			result.Skipped = append(result.Skipped, SkippedItem{ID: id, Reason: reason, Err: err})
			continue
		}
		if file == nil {
			e.logger.Info("item skipped", "batch", b.ID, "id", id, "reason", reason)
			result.Skipped = append(result.Skipped, SkippedItem{ID: id, Reason: reason})
			continue
		}

		doc.Files = append(doc.Files, *file)
		result.Exported = append(result.Exported, id)
		result.Titles[id] = title
	}

	if len(doc.Files) == 0 {
		return result, nil
	}

	data, err := doc.Marshal()
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	result.Document = data
	result.Filename = Filename(req.Name, source, e.opts.Now())

	e.logger.Info("export built", "batch", b.ID, "site", source.ID, "target", target.ID,
		"exported", len(result.Exported), "skipped", len(result.Skipped))
	return result, nil
}

// targetSite returns the first active site that is not the source.
func (e *Exporter) targetSite(ctx context.Context, sourceID int64) (model.Site, error) {
	sites, err := e.dir.Sites(ctx)
	if err != nil {
		return model.Site{}, fmt.Errorf("listing sites: %w", err)
	}
	for _, s := range sites {
		if s.ID != sourceID {
			return s, nil
		}
	}
	return model.Site{}, ErrNoTargetSite
}

// exportItem builds the file block of one item. A nil file with a reason
// means the item is skipped without an error.
func (e *Exporter) exportItem(ctx context.Context, sites exportSites, id int64, collection bool) (*File, string, string, error) {
	source, target := sites.source, sites.target

	item, err := e.repo.Content(ctx, source.ID, id)
	if errors.Is(err, ErrContentNotFound) {
		return nil, "", SkipNotFound, err
	}
	if err != nil {
		return nil, "", "", err
	}

	if collection && e.opts.ExcludeMetaKey != "" {
		if v, _ := item.MetaValue(e.opts.ExcludeMetaKey); v == "1" {
			return nil, "", SkipExcluded, nil
		}
	}

	translations, err := e.dir.Translations(ctx, source.ID, id, model.RelationPost)
	if err != nil {
		return nil, "", "", fmt.Errorf("translations: %w", err)
	}
	translatedID := translations[target.ID]
	if translatedID != 0 {
		modified, err := e.repo.ModifiedAt(ctx, target.ID, translatedID)
		switch {
		case errors.Is(err, ErrContentNotFound):
			translatedID = 0
		case err != nil:
			return nil, "", "", fmt.Errorf("translation modified time: %w", err)
		case modified.After(item.UpdatedAt):
			return nil, "", SkipTranslationNewer, nil
		}
	}

	body, err := e.links.Encode(ctx, source, item.Body)
	if err != nil {
		return nil, "", "", err
	}

	file := &File{ID: strconv.FormatInt(item.ID, 10)}
	file.SetAttr(AttrPostType, item.Type)
	file.SetAttr(AttrSiteID, strconv.FormatInt(source.ID, 10))
	file.SetAttr(AttrTargetSiteID, strconv.FormatInt(target.ID, 10))
	file.SetAttr(AttrPostStatus, item.Status)
	if translatedID != 0 {
		file.SetAttr(AttrTranslatedPost, strconv.FormatInt(translatedID, 10))
	}

	file.AddUnit(TitleField, item.Title)
	file.AddUnit(BodyField, body)
	file.AddUnit(ExcerptField, item.Excerpt)

	for _, m := range e.exportableMeta(item.Meta) {
		file.AddUnit(MetaField(m.Key), m.Value)
	}

	if err := e.addTerms(ctx, file, sites, item.Terms); err != nil {
		return nil, "", "", err
	}

	if err := e.addMedia(ctx, file, source, item); err != nil {
		return nil, "", "", err
	}

	if item.HasParent() {
		parents, err := e.dir.Translations(ctx, source.ID, item.ParentID, model.RelationPost)
		if err != nil {
			return nil, "", "", fmt.Errorf("parent translations: %w", err)
		}
		if parentID, ok := parents[target.ID]; ok {
			file.SetAttr(AttrTranslatedParentPost, strconv.FormatInt(parentID, 10))
		}
		file.SetAttr(AttrParentPost, strconv.FormatInt(item.ParentID, 10))
	}

	return file, item.Title, "", nil
}

// exportableMeta returns the first value of every meta key worth
// translating, in store order.
func (e *Exporter) exportableMeta(meta []model.MetaField) []model.MetaField {
	seen := make(map[string]bool, len(meta))
	var out []model.MetaField
	for _, m := range meta {
		if seen[m.Key] {
			continue
		}
		seen[m.Key] = true

		if strings.HasPrefix(m.Key, "_") && !e.metaAllowed(m.Key) {
			continue
		}
		if !translatableValue(m.Value) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (e *Exporter) metaAllowed(key string) bool {
	for _, p := range e.opts.MetaAllowPrefixes {
		if p != "" && strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

var (
	numericPattern    = regexp.MustCompile(`^\s*[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?\s*$`)
	serializedPattern = regexp.MustCompile(`^[aO]:\d+:`)
)

// translatableValue reports whether a meta value is plain text.
func translatableValue(v string) bool {
	if strings.TrimSpace(v) == "" || numericPattern.MatchString(v) || serializedPattern.MatchString(v) {
		return false
	}
	trimmed := strings.TrimSpace(v)
	if (strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{")) && json.Valid([]byte(trimmed)) {
		return false
	}
	return true
}

// addTerms emits a unit for every term without a translation on the target
// site and an attribute for every term that has one.
func (e *Exporter) addTerms(ctx context.Context, file *File, sites exportSites, terms []model.Term) error {
	for _, t := range terms {
		translations, err := e.dir.Translations(ctx, sites.source.ID, t.ID, model.RelationTerm)
		if err != nil {
			return fmt.Errorf("term translations: %w", err)
		}
		if targetID, ok := translations[sites.target.ID]; ok {
			file.SetAttr(TaxonomyAttr(t.Taxonomy, targetID), strconv.FormatInt(targetID, 10))
			continue
		}
		file.AddUnit(TermField(t.Taxonomy, t.ID), t.Name)
	}
	return nil
}

var galleryPattern = regexp.MustCompile(`\[gallery\b[^\]]*?\bids="([^"]*)"[^\]]*\]`)

// galleryIDs returns the image IDs of all gallery shortcodes in body.
func galleryIDs(body string) []int64 {
	var ids []int64
	for _, m := range galleryPattern.FindAllStringSubmatch(body, -1) {
		for _, part := range strings.Split(m[1], ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err == nil && id > 0 {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// addMedia emits units for the featured image, attached images and gallery
// images. Attached and gallery images share one dedupe list.
func (e *Exporter) addMedia(ctx context.Context, file *File, site *model.Site, item *model.ContentItem) error {
	if featured := item.Featured(); featured != nil {
		file.SetAttr(AttrPostThumbnail, strconv.FormatInt(featured.ID, 10))
		addMediaUnits(file, model.MediaScopeFeatured, &featured.Media)
	}

	seen := make(map[int64]bool)
	for i := range item.Media {
		ref := &item.Media[i]
		if ref.Scope != model.MediaScopeAttached || seen[ref.ID] {
			continue
		}
		seen[ref.ID] = true
		addMediaUnits(file, model.MediaScopeAttached, &ref.Media)
	}

	gallery := galleryIDs(item.Body)
	for _, ref := range item.Media {
		if ref.Scope == model.MediaScopeGallery {
			gallery = append(gallery, ref.ID)
		}
	}
	for _, id := range gallery {
		if seen[id] {
			continue
		}
		m, err := e.repo.Media(ctx, site.ID, id)
		if errors.Is(err, ErrContentNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("gallery image %d: %w", id, err)
		}
		seen[id] = true
		addMediaUnits(file, model.MediaScopeGallery, m)
	}
	return nil
}

func addMediaUnits(file *File, scope string, m *model.Media) {
	for _, attr := range mediaFields {
		file.AddUnit(MediaField(scope, m.ID, attr), mediaAttr(m, attr))
	}
}
