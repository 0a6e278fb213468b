// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"errors"
	"fmt"

	"github.com/olegiv/ocms-xliff/internal/model"
)

// resolveParent returns the target-site counterpart of a source item,
// creating a linked draft with the source title and type when none exists.
// It returns 0 when the source item does not exist.
func (i *Importer) resolveParent(ctx context.Context, ref itemRef, sourceID int64) (int64, error) {
	translations, err := i.dir.Translations(ctx, ref.SourceSite, sourceID, model.RelationPost)
	if err != nil {
		return 0, err
	}
	if id, ok := translations[ref.TargetSite]; ok {
		return id, nil
	}

	parent, err := i.repo.Content(ctx, ref.SourceSite, sourceID)
	if errors.Is(err, ErrContentNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	title := parent.Title
	id, err := i.repo.WriteContent(ctx, ref.TargetSite, model.ContentDraft{
		Type:   parent.Type,
		Status: model.StatusDraft,
		Title:  &title,
	})
	if err != nil {
		return 0, fmt.Errorf("creating parent draft: %w", err)
	}

	members := map[int64]int64{ref.SourceSite: sourceID, ref.TargetSite: id}
	if err := i.dir.CreateLink(ctx, model.RelationPost, members); err != nil {
		return 0, fmt.Errorf("linking parent draft: %w", err)
	}
	i.logger.Debug("parent draft created", "source", sourceID, "target", id)
	return id, nil
}

// resolveParentChain resolves the direct parent and then climbs the source
// chain, pointing each resolved target item at its resolved parent. A
// visited set stops the climb on cyclic chains.
func (i *Importer) resolveParentChain(ctx context.Context, ref itemRef, sourceParentID int64) (int64, error) {
	parentID, err := i.resolveParent(ctx, ref, sourceParentID)
	if err != nil || parentID == 0 {
		return 0, err
	}

	visited := map[int64]bool{ref.SourceID: true, sourceParentID: true}
	child, childTarget := sourceParentID, parentID
	for {
		src, err := i.repo.Content(ctx, ref.SourceSite, child)
		if err != nil {
			if errors.Is(err, ErrContentNotFound) {
				break
			}
			return parentID, err
		}
		if !src.HasParent() {
			break
		}
		grandparent := src.ParentID
		if visited[grandparent] {
			i.logger.Warn("cyclic parent chain", "source", ref.SourceID, "at", grandparent)
			break
		}
		visited[grandparent] = true

		grandparentTarget, err := i.resolveParent(ctx, ref, grandparent)
		if err != nil {
			return parentID, err
		}
		if grandparentTarget == 0 {
			break
		}

		if err := i.repo.UpdateContent(ctx, ref.TargetSite, childTarget, model.ContentPatch{ParentID: &grandparentTarget}); err != nil {
			return parentID, fmt.Errorf("updating parent of %d: %w", childTarget, err)
		}
		child, childTarget = grandparent, grandparentTarget
	}
	return parentID, nil
}
