// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"github.com/google/uuid"
)

// Issue is a per-item error or notice collected during a batch.
type Issue struct {
	Code     string
	SourceID int64
	TargetID int64

	// Title and URL identify the affected target item when it exists.
	Title string
	URL   string

	// Count is the number of link placeholders left in the item.
	Count int

	// Links lists the source-site permalinks that were kept as fallback.
	Links []string

	Err error
}

// PendingLink is a body link that was pointed at the source site because
// the linked item had no translation yet.
type PendingLink struct {
	LinkedID int64
	Fallback string
}

// itemRef identifies an imported item by its source and target sites.
type itemRef struct {
	SourceSite int64
	TargetSite int64
	SourceID   int64
}

// Batch is the state of a single export or import run. It is created per
// call and never shared between runs.
type Batch struct {
	ID string

	errors  []Issue
	notices []Issue

	pending      map[itemRef][]PendingLink
	pendingOrder []itemRef

	translated map[itemRef]int64

	placeholders     map[itemRef]bool
	placeholderOrder []itemRef
}

// NewBatch creates an empty batch with a fresh ID.
func NewBatch() *Batch {
	return &Batch{
		ID:           uuid.NewString(),
		pending:      make(map[itemRef][]PendingLink),
		translated:   make(map[itemRef]int64),
		placeholders: make(map[itemRef]bool),
	}
}

// AddError records a per-item error.
func (b *Batch) AddError(issue Issue) {
	b.errors = append(b.errors, issue)
}

// AddNotice records an informational notice.
func (b *Batch) AddNotice(issue Issue) {
	b.notices = append(b.notices, issue)
}

// Errors returns the recorded errors in insertion order.
func (b *Batch) Errors() []Issue {
	return b.errors
}

// Notices returns the recorded notices in insertion order.
func (b *Batch) Notices() []Issue {
	return b.notices
}

// addPending remembers a fallback link inside the item being imported.
func (b *Batch) addPending(ref itemRef, link PendingLink) {
	if _, ok := b.pending[ref]; !ok {
		b.pendingOrder = append(b.pendingOrder, ref)
	}
	b.pending[ref] = append(b.pending[ref], link)
}

// recordTranslation stores the target ID written for a source item.
func (b *Batch) recordTranslation(ref itemRef, targetID int64) {
	b.translated[ref] = targetID
}

// translation returns the target ID written for a source item in this batch.
func (b *Batch) translation(ref itemRef) (int64, bool) {
	id, ok := b.translated[ref]
	return id, ok
}

// markPlaceholders remembers an item whose body still holds placeholders.
func (b *Batch) markPlaceholders(ref itemRef) {
	if b.placeholders[ref] {
		return
	}
	b.placeholders[ref] = true
	b.placeholderOrder = append(b.placeholderOrder, ref)
}

// PendingCount returns the number of deferred links still waiting.
func (b *Batch) PendingCount() int {
	n := 0
	for _, links := range b.pending {
		n += len(links)
	}
	return n
}
