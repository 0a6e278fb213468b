// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-xliff/internal/model"
)

func TestStripTags(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{`Linked <a href="https://www.example.org/about/" target="_blank">About</a> page`, "Linked About page"},
		{"Fish &amp; chips", "Fish & chips"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripTags(tt.in))
	}
}

func TestParsePresetID(t *testing.T) {
	id, err := parsePresetID("12")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	for _, bad := range []string{"", "0", "-3", "abc"} {
		_, err := parsePresetID(bad)
		assert.Error(t, err, bad)
	}
}

func TestWritePresets(t *testing.T) {
	var buf bytes.Buffer
	writePresets(&buf, []model.Preset{
		{ID: 1, SiteID: 1, Name: "Handbook", RootIDs: []int64{4, 9}, Schedule: "0 6 * * 1"},
		{ID: 2, SiteID: 1, Name: "Press", RootIDs: []int64{7}},
	})

	out := buf.String()
	assert.Contains(t, out, "SCHEDULE")
	assert.Contains(t, out, "4,9")
	assert.Contains(t, out, "0 6 * * 1")
	assert.Contains(t, out, "┌")
	assert.Regexp(t, `│\s*2\s*│\s*1\s*│\s*Press\s*│\s*7\s*│\s*-\s*│`, out)
}

func TestWriteEvents(t *testing.T) {
	var buf bytes.Buffer
	writeEvents(&buf, []model.Event{{
		Level:     model.EventLevelWarning,
		Category:  model.EventCategoryImport,
		Message:   "import finished",
		Metadata:  `{"created":2}`,
		CreatedAt: time.Date(2026, 10, 18, 9, 5, 0, 0, time.Local),
	}})

	out := buf.String()
	assert.Contains(t, out, "CATEGORY")
	assert.Contains(t, out, "2026-10-18 09:05:00")
	assert.Regexp(t, `│\s*warning\s*│\s*import\s*│\s*import finished\s*│`, out)
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XLIFF_DB_PATH", filepath.Join(dir, "xliff.db"))
	t.Setenv("XLIFF_EXPORT_DIR", filepath.Join(dir, "exports"))
	t.Setenv("XLIFF_DO_SEED", "true")
	t.Setenv("XLIFF_CACHE_TYPE", "none")
	t.Setenv("XLIFF_LOG_LEVEL", "error")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"export", "1"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, Execute())
	assert.Contains(t, out.String(), "[success]")
	assert.Contains(t, out.String(), "subject: XLIFF export: About (1)")

	files, err := filepath.Glob(filepath.Join(dir, "exports", "*.xml"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Contains(t, filepath.Base(files[0]), "www.example.org_")
	assert.Contains(t, filepath.Base(files[0]), time.Now().Format("2006"))

	data, err := os.ReadFile(files[0]) // #nosec G304 -- test temp dir
	require.NoError(t, err)
	assert.Contains(t, string(data), "<xliff")
}
