// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventCategoriesUnique(t *testing.T) {
	categories := []string{
		EventCategoryExport,
		EventCategoryImport,
		EventCategoryScheduler,
		EventCategoryCache,
		EventCategorySystem,
	}

	seen := make(map[string]bool)
	for _, cat := range categories {
		assert.False(t, seen[cat], "duplicate category %q", cat)
		seen[cat] = true
	}
}
