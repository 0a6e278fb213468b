// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	require.NoError(t, Init(nil))

	for _, lang := range SupportedLanguages {
		assert.NotZero(t, TranslationCount(lang), lang)
	}
	assert.Zero(t, TranslationCount("fr"))
}

func TestLanguagesHaveSameKeys(t *testing.T) {
	require.NoError(t, Init(nil))

	want := Keys(DefaultLanguage)
	for _, lang := range SupportedLanguages {
		assert.ElementsMatch(t, want, Keys(lang), lang)
	}
}

func TestT(t *testing.T) {
	require.NoError(t, Init(nil))

	tests := []struct {
		lang     string
		key      string
		args     []any
		expected string
	}{
		{"en", "import.success", nil, "Import successful"},
		{"de", "import.success", nil, "Import erfolgreich"},
		{"en", "export.empty", nil, "No file was found for download or sending."},
		{"en", "import.post_write_failed", []any{12}, "An unknown error occurred. The import of the source post with the ID 12 failed."},
		{"de", "import.source_content_links", []any{"Team"}, "Der Beitrag „Team“ enthält einen oder mehrere Links, die auf Inhalte der Quellseite zeigen."},
		{"fr", "import.success", nil, "Import successful"},
		{"en", "nonexistent.key", nil, "nonexistent.key"},
	}

	for _, tt := range tests {
		t.Run(tt.lang+"_"+tt.key, func(t *testing.T) {
			assert.Equal(t, tt.expected, T(tt.lang, tt.key, tt.args...))
		})
	}
}

func TestTN(t *testing.T) {
	require.NoError(t, Init(nil))

	assert.Contains(t, TN("en", "import.link_placeholder_left", 1, "A", 1), "is 1 link placeholder left")
	assert.Contains(t, TN("en", "import.link_placeholder_left", 3, "A", 3), "are 3 link placeholders left")
	assert.Contains(t, TN("de", "import.link_placeholder_left", 2, "A", 2), "sind 2 Link-Platzhalter")
}

func TestMatchLanguage(t *testing.T) {
	require.NoError(t, Init(nil))

	tests := []struct {
		input    string
		expected string
	}{
		{"en", "en"},
		{"de", "de"},
		{"de-DE", "de"},
		{"de-AT, en;q=0.5", "de"},
		{"fr", "en"},
		{"invalid!!", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, MatchLanguage(tt.input))
		})
	}
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("DE"))
	assert.False(t, IsSupported("ru"))
}
