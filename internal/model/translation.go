// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// RelationKind identifies which object space a translation link belongs to.
type RelationKind string

// Relation kinds
const (
	RelationPost  RelationKind = "post"
	RelationTerm  RelationKind = "term"
	RelationMedia RelationKind = "media"
)

// Valid returns true for known relation kinds.
func (k RelationKind) Valid() bool {
	switch k {
	case RelationPost, RelationTerm, RelationMedia:
		return true
	}
	return false
}

// TranslationLink connects equivalent objects across sites.
// Members maps site ID to object ID; a site appears at most once.
type TranslationLink struct {
	ID      int64
	Kind    RelationKind
	Members map[int64]int64
}
