// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Common taxonomies
const (
	TaxonomyCategory = "category"
	TaxonomyTag      = "post_tag"
)

// Term is a taxonomy term assigned to content.
type Term struct {
	ID       int64
	SiteID   int64
	Taxonomy string
	Name     string
	Slug     string
}
