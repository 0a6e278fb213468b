// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/olegiv/ocms-xliff/internal/model"
)

// ImportedItem describes one written file block.
type ImportedItem struct {
	SourceSite int64
	TargetSite int64
	SourceID   int64
	TargetID   int64
	Created    bool
	Title      string
}

// ImportResult is the outcome of importing one document.
type ImportResult struct {
	BatchID string
	Items   []ImportedItem
	Errors  []Issue
	Notices []Issue
}

// Success returns true if no per-item error was recorded.
func (r *ImportResult) Success() bool {
	return len(r.Errors) == 0
}

// CreatedCount returns the number of newly created items.
func (r *ImportResult) CreatedCount() int {
	n := 0
	for _, it := range r.Items {
		if it.Created {
			n++
		}
	}
	return n
}

// UpdatedCount returns the number of updated items.
func (r *ImportResult) UpdatedCount() int {
	return len(r.Items) - r.CreatedCount()
}

// Importer applies translated XLIFF documents to the target site.
type Importer struct {
	repo   Repository
	dir    Directory
	links  *LinkCodec
	logger *slog.Logger
}

// NewImporter creates a new Importer instance.
func NewImporter(repo Repository, dir Directory, logger *slog.Logger) *Importer {
	return &Importer{
		repo:   repo,
		dir:    dir,
		links:  NewLinkCodec(repo, dir, logger),
		logger: logger,
	}
}

// Import parses data and writes every file block to its target site.
// A malformed document or a cancelled ctx is rejected before anything is
// written; after that, cancellation no longer interrupts the batch.
func (i *Importer) Import(ctx context.Context, data []byte) (*ImportResult, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Once the first block is written the batch runs to completion, so
	// deferred links and notices are never left half done.
	ctx = context.WithoutCancel(ctx)

	b := NewBatch()
	result := &ImportResult{BatchID: b.ID}
	i.logger.Info("import started", "batch", b.ID, "files", len(doc.Files))

	for idx := range doc.Files {
		item, ok := i.importFile(ctx, b, &doc.Files[idx])
		if ok {
			result.Items = append(result.Items, item)
		}
	}

	if err := i.links.ResolvePending(ctx, b); err != nil {
		return nil, fmt.Errorf("resolving deferred links: %w", err)
	}
	if err := i.reportPlaceholders(ctx, b); err != nil {
		return nil, err
	}

	result.Errors = b.Errors()
	result.Notices = b.Notices()
	i.logger.Info("import finished", "batch", b.ID, "written", len(result.Items),
		"errors", len(result.Errors), "notices", len(result.Notices))
	return result, nil
}

// blockDraft collects what a file block writes besides the content draft.
type blockDraft struct {
	draft    model.ContentDraft
	deferred []model.MetaField
	media    []*mediaUnit
}

// mediaUnit gathers the descriptors of one image in a block.
type mediaUnit struct {
	scope    string
	sourceID int64
	attrs    map[string]string
}

// importFile writes a single file block. Failures are recorded in the
// batch and never stop the remaining blocks.
func (i *Importer) importFile(ctx context.Context, b *Batch, f *File) (ImportedItem, bool) {
	ref := itemRef{
		SourceSite: f.IntAttr(AttrSiteID),
		TargetSite: f.IntAttr(AttrTargetSiteID),
		SourceID:   f.SourceID(),
	}
	logger := i.logger.With("batch", b.ID, "file", ref.SourceID)

	bd := blockDraft{draft: model.ContentDraft{
		ID:       f.IntAttr(AttrTranslatedPost),
		ParentID: f.IntAttr(AttrTranslatedParentPost),
		Meta:     make(map[string]string),
	}}
	bd.draft.Status, _ = f.Attr(AttrPostStatus)
	bd.draft.Type, _ = f.Attr(AttrPostType)

	if bd.draft.ParentID == 0 {
		if sourceParent := f.IntAttr(AttrParentPost); sourceParent > 0 {
			parentID, err := i.resolveParentChain(ctx, ref, sourceParent)
			if err != nil {
				logger.Warn("parent chain not resolved", "parent", sourceParent, "error", err)
			}
			bd.draft.ParentID = parentID
		}
	}

	if err := i.applyUnits(ctx, b, ref, f, &bd, logger); err != nil {
		b.AddError(Issue{Code: CodePostWriteFailed, SourceID: ref.SourceID, Err: err})
		logger.Error("file block failed", "error", err)
		return ImportedItem{}, false
	}

	bd.draft.TermIDs = append(bd.draft.TermIDs, f.TranslatedTerms()...)

	thumbnail := f.IntAttr(AttrPostThumbnail)
	for _, mu := range bd.media {
		if mu.scope == model.MediaScopeFeatured {
			if thumbnail == 0 {
				logger.Debug("featured image units without source id")
				continue
			}
			mu.sourceID = thumbnail
		}
		mediaID, err := i.reconcileMedia(ctx, ref, mu)
		if err != nil {
			b.AddError(Issue{Code: CodeMediaWriteFailed, SourceID: ref.SourceID, Err: err})
			logger.Warn("media not written", "media", mu.sourceID, "error", err)
			continue
		}
		bd.draft.Media = append(bd.draft.Media, model.MediaAttachment{Scope: mu.scope, MediaID: mediaID})
	}

	targetID, err := i.repo.WriteContent(ctx, ref.TargetSite, bd.draft)
	if err != nil {
		b.AddError(Issue{Code: CodePostWriteFailed, SourceID: ref.SourceID, TargetID: bd.draft.ID, Err: err})
		logger.Error("writing content failed", "error", err)
		return ImportedItem{}, false
	}

	created := !bd.draft.IsUpdate()
	if created {
		members := map[int64]int64{ref.SourceSite: ref.SourceID, ref.TargetSite: targetID}
		if err := i.dir.CreateLink(ctx, model.RelationPost, members); err != nil {
			logger.Warn("translation link not created", "target", targetID, "error", err)
		}
	}
	b.recordTranslation(ref, targetID)

	for _, m := range bd.deferred {
		if err := i.repo.AddMeta(ctx, ref.TargetSite, targetID, m.Key, m.Value); err != nil {
			logger.Warn("meta value not added", "key", m.Key, "error", err)
		}
	}

	if bd.draft.Body != nil && CountPlaceholders(*bd.draft.Body) > 0 {
		b.markPlaceholders(ref)
	}

	item := ImportedItem{
		SourceSite: ref.SourceSite,
		TargetSite: ref.TargetSite,
		SourceID:   ref.SourceID,
		TargetID:   targetID,
		Created:    created,
	}
	if bd.draft.Title != nil {
		item.Title = *bd.draft.Title
	}
	logger.Debug("file block written", "target", targetID, "created", created)
	return item, true
}

// applyUnits copies unit values into the block draft.
func (i *Importer) applyUnits(ctx context.Context, b *Batch, ref itemRef, f *File, bd *blockDraft, logger *slog.Logger) error {
	media := make(map[string]*mediaUnit)

	for _, u := range f.Units {
		value := u.Target.Text
		field := ParseField(u.ID)

		switch field.Kind {
		case FieldTitle:
			bd.draft.Title = &value
		case FieldBody:
			body, err := i.links.Decode(ctx, b, ref, value)
			if err != nil {
				return err
			}
			bd.draft.Body = &body
		case FieldExcerpt:
			bd.draft.Excerpt = &value
		case FieldMeta:
			if strings.TrimSpace(value) == "" || numericPattern.MatchString(value) {
				continue
			}
			if _, exists := bd.draft.Meta[field.Key]; exists {
				bd.deferred = append(bd.deferred, model.MetaField{Key: field.Key, Value: value})
				continue
			}
			bd.draft.Meta[field.Key] = value
		case FieldTerm:
			termID, err := i.reconcileTerm(ctx, ref, field, value)
			if err != nil {
				b.AddError(Issue{Code: CodeTermWriteFailed, SourceID: ref.SourceID, Err: err})
				logger.Warn("term not written", "term", field.ID, "error", err)
				continue
			}
			bd.draft.TermIDs = append(bd.draft.TermIDs, termID)
		case FieldMedia:
			key := field.Scope + ":" + fmt.Sprint(field.ID)
			mu, ok := media[key]
			if !ok {
				mu = &mediaUnit{scope: field.Scope, sourceID: field.ID, attrs: make(map[string]string)}
				media[key] = mu
				bd.media = append(bd.media, mu)
			}
			mu.attrs[field.Attr] = value
		default:
			logger.Debug("unknown unit ignored", "unit", u.ID)
		}
	}
	return nil
}

// reconcileTerm returns the target term for a translated term unit,
// creating and linking it when the source term has no translation yet.
func (i *Importer) reconcileTerm(ctx context.Context, ref itemRef, field Field, name string) (int64, error) {
	translations, err := i.dir.Translations(ctx, ref.SourceSite, field.ID, model.RelationTerm)
	if err != nil {
		return 0, err
	}
	if id, ok := translations[ref.TargetSite]; ok {
		return id, nil
	}

	id, err := i.repo.WriteTerm(ctx, ref.TargetSite, model.Term{Taxonomy: field.Taxonomy, Name: name})
	if err != nil {
		return 0, err
	}
	members := map[int64]int64{ref.SourceSite: field.ID, ref.TargetSite: id}
	if err := i.dir.CreateLink(ctx, model.RelationTerm, members); err != nil {
		return 0, err
	}
	return id, nil
}

// reconcileMedia updates the translation of a source image or creates one
// on the target site, and returns its ID.
func (i *Importer) reconcileMedia(ctx context.Context, ref itemRef, mu *mediaUnit) (int64, error) {
	translations, err := i.dir.Translations(ctx, ref.SourceSite, mu.sourceID, model.RelationMedia)
	if err != nil {
		return 0, err
	}

	if id, ok := translations[ref.TargetSite]; ok {
		m, err := i.repo.Media(ctx, ref.TargetSite, id)
		if err == nil {
			for attr, v := range mu.attrs {
				setMediaAttr(m, attr, v)
			}
			return i.repo.WriteMedia(ctx, ref.TargetSite, *m)
		}
		if !errors.Is(err, ErrContentNotFound) {
			return 0, err
		}
	}

	var m model.Media
	if src, err := i.repo.Media(ctx, ref.SourceSite, mu.sourceID); err == nil {
		m = *src
	} else if !errors.Is(err, ErrContentNotFound) {
		return 0, err
	}
	m.ID = 0
	m.SiteID = ref.TargetSite
	for attr, v := range mu.attrs {
		setMediaAttr(&m, attr, v)
	}

	id, err := i.repo.WriteMedia(ctx, ref.TargetSite, m)
	if err != nil {
		return 0, err
	}
	members := map[int64]int64{ref.SourceSite: mu.sourceID, ref.TargetSite: id}
	if err := i.dir.CreateLink(ctx, model.RelationMedia, members); err != nil {
		return 0, err
	}
	return id, nil
}

// reportPlaceholders adds a notice for every written item that still holds
// link placeholders after the second link pass.
func (i *Importer) reportPlaceholders(ctx context.Context, b *Batch) error {
	for _, ref := range b.placeholderOrder {
		targetID, ok := b.translation(ref)
		if !ok {
			continue
		}
		item, err := i.repo.Content(ctx, ref.TargetSite, targetID)
		if errors.Is(err, ErrContentNotFound) {
			b.AddNotice(Issue{Code: CodeMissingTranslationTarget, SourceID: ref.SourceID, TargetID: targetID})
			continue
		}
		if err != nil {
			return fmt.Errorf("loading %d: %w", targetID, err)
		}

		count := CountPlaceholders(item.Body)
		if count == 0 {
			continue
		}
		permalink, _ := i.repo.Permalink(ctx, ref.TargetSite, targetID)
		b.AddNotice(Issue{
			Code:     CodeLinkPlaceholderLeft,
			SourceID: ref.SourceID,
			TargetID: targetID,
			Title:    item.Title,
			URL:      permalink,
			Count:    count,
		})
	}
	return nil
}
