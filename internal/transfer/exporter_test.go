// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-xliff/internal/model"
)

func TestExportSingle(t *testing.T) {
	s := newFakeStore()
	s.addItem(siteEN, model.ContentItem{ID: 42, Title: "Other Post"})
	item := s.addItem(siteEN, model.ContentItem{
		ID:      7,
		Type:    model.TypePost,
		Title:   "Hello",
		Body:    `<p>See <a href="https://site/other-post">this</a>.</p>`,
		Excerpt: "Short",
	})

	res := mustExport(t, s, ExportRequest{SiteID: siteEN, IDs: []int64{item.ID}})
	require.False(t, res.Empty())
	assert.Equal(t, "en", res.SourceLang)
	assert.Equal(t, "de", res.TargetLang)
	assert.Equal(t, []int64{7}, res.Exported)
	assert.Equal(t, "Hello", res.Titles[7])
	assert.Equal(t, "site_18102026_0905.xml", res.Filename)
	assert.NotEmpty(t, res.BatchID)

	doc := mustParse(t, res.Document)
	assert.Equal(t, "en", doc.SrcLang)
	assert.Equal(t, "de", doc.TrgLang)
	require.Len(t, doc.Files, 1)

	f := &doc.Files[0]
	assert.Equal(t, "7", f.ID)
	wantAttrs := [][2]string{
		{AttrPostType, "post"},
		{AttrSiteID, "1"},
		{AttrTargetSiteID, "2"},
		{AttrPostStatus, "published"},
	}
	require.Len(t, f.Attrs, len(wantAttrs))
	for i, want := range wantAttrs {
		assert.Equal(t, want[0], f.Attrs[i].Name.Local)
		assert.Equal(t, want[1], f.Attrs[i].Value)
	}

	var ids []string
	for _, u := range f.Units {
		ids = append(ids, u.ID)
	}
	assert.Equal(t, []string{"title", "body", "excerpt"}, ids)

	body, _ := unitText(f, "body")
	assert.Equal(t, `<p>See <a href="{{hohenheim_url_post_id:42}}">this</a>.</p>`, body)
}

func TestExportFatalErrors(t *testing.T) {
	t.Run("missing source language", func(t *testing.T) {
		s := newFakeStore()
		s.sites[0].Language = ""
		item := s.addItem(siteEN, model.ContentItem{Title: "A"})

		_, err := newTestExporter(s).Export(context.Background(), ExportRequest{SiteID: siteEN, IDs: []int64{item.ID}})
		assert.ErrorIs(t, err, ErrMissingSourceLanguage)
	})

	t.Run("no target site", func(t *testing.T) {
		s := newFakeStore()
		s.sites = s.sites[:1]
		item := s.addItem(siteEN, model.ContentItem{Title: "A"})

		_, err := newTestExporter(s).Export(context.Background(), ExportRequest{SiteID: siteEN, IDs: []int64{item.ID}})
		assert.ErrorIs(t, err, ErrNoTargetSite)
	})

	t.Run("single item not found", func(t *testing.T) {
		s := newFakeStore()

		_, err := newTestExporter(s).Export(context.Background(), ExportRequest{SiteID: siteEN, IDs: []int64{999}})
		assert.ErrorIs(t, err, ErrContentNotFound)
	})
}

func TestExportSkipsNewerTranslation(t *testing.T) {
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		sourceTime time.Time
		targetTime time.Time
		exported   bool
	}{
		{"translation newer", base, base.Add(time.Hour), false},
		{"source newer", base.Add(time.Hour), base, true},
		{"same time", base, base, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newFakeStore()
			src := s.addItem(siteEN, model.ContentItem{Title: "Source", UpdatedAt: tt.sourceTime})
			dst := s.addItem(siteDE, model.ContentItem{Title: "Ziel", UpdatedAt: tt.targetTime})
			s.link(model.RelationPost, map[int64]int64{siteEN: src.ID, siteDE: dst.ID})

			res := mustExport(t, s, ExportRequest{SiteID: siteEN, IDs: []int64{src.ID}})
			if !tt.exported {
				assert.True(t, res.Empty())
				assert.Nil(t, res.Document)
				assert.Empty(t, res.Filename)
				require.Len(t, res.Skipped, 1)
				assert.Equal(t, SkipTranslationNewer, res.Skipped[0].Reason)
				return
			}

			doc := mustParse(t, res.Document)
			require.Len(t, doc.Files, 1)
			assert.Equal(t, dst.ID, doc.Files[0].IntAttr(AttrTranslatedPost))
		})
	}
}

func TestExportCollection(t *testing.T) {
	s := newFakeStore()
	a := s.addItem(siteEN, model.ContentItem{Title: "A"})
	excluded := s.addItem(siteEN, model.ContentItem{
		Title: "Hidden",
		Meta:  []model.MetaField{{Key: DefaultExcludeMetaKey, Value: "1"}},
	})
	b := s.addItem(siteEN, model.ContentItem{Title: "B"})

	res := mustExport(t, s, ExportRequest{
		SiteID:     siteEN,
		IDs:        []int64{a.ID, 999, excluded.ID, b.ID, a.ID},
		Collection: true,
		Name:       "Weekly Batch",
	})

	assert.Equal(t, []int64{a.ID, b.ID}, res.Exported)
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, int64(999), res.Skipped[0].ID)
	assert.Equal(t, SkipNotFound, res.Skipped[0].Reason)
	assert.ErrorIs(t, res.Skipped[0].Err, ErrContentNotFound)
	assert.Equal(t, excluded.ID, res.Skipped[1].ID)
	assert.Equal(t, SkipExcluded, res.Skipped[1].Reason)
	assert.Equal(t, "weekly-batch_18102026_0905.xml", res.Filename)

	doc := mustParse(t, res.Document)
	require.Len(t, doc.Files, 2)
}

func TestExportExcludeFlagIgnoredForSingleItem(t *testing.T) {
	s := newFakeStore()
	item := s.addItem(siteEN, model.ContentItem{
		Title: "Hidden",
		Meta:  []model.MetaField{{Key: DefaultExcludeMetaKey, Value: "1"}},
	})

	res := mustExport(t, s, ExportRequest{SiteID: siteEN, IDs: []int64{item.ID}})
	assert.Equal(t, []int64{item.ID}, res.Exported)
}

func TestExportMetaFilter(t *testing.T) {
	s := newFakeStore()
	item := s.addItem(siteEN, model.ContentItem{
		Title: "Meta",
		Meta: []model.MetaField{
			{Key: "subtitle", Value: "A subtitle"},
			{Key: "subtitle", Value: "second value"},
			{Key: "_edit_lock", Value: "1700000000:1"},
			{Key: "_genesis_title", Value: "SEO title"},
			{Key: "views", Value: "42"},
			{Key: "ratio", Value: "0.75"},
			{Key: "blank", Value: "  "},
			{Key: "serialized", Value: `a:1:{i:0;s:1:"x";}`},
			{Key: "object", Value: `O:8:"stdClass":0:{}`},
			{Key: "json", Value: `{"a":1}`},
			{Key: "list", Value: `[1,2]`},
			{Key: "bracketed", Value: "[not json"},
		},
	})

	res := mustExport(t, s, ExportRequest{SiteID: siteEN, IDs: []int64{item.ID}})
	f := &mustParse(t, res.Document).Files[0]

	var metaUnits []string
	for _, u := range f.Units {
		if field := ParseField(u.ID); field.Kind == FieldMeta {
			metaUnits = append(metaUnits, field.Key)
		}
	}
	assert.Equal(t, []string{"subtitle", "_genesis_title", "bracketed"}, metaUnits)

	subtitle, _ := unitText(f, "_meta_subtitle")
	assert.Equal(t, "A subtitle", subtitle)
}

func TestExportTerms(t *testing.T) {
	s := newFakeStore()
	news := s.addTerm(siteEN, model.Term{Taxonomy: model.TaxonomyCategory, Name: "News"})
	nachrichten := s.addTerm(siteDE, model.Term{Taxonomy: model.TaxonomyCategory, Name: "Nachrichten"})
	s.link(model.RelationTerm, map[int64]int64{siteEN: news.ID, siteDE: nachrichten.ID})
	tag := s.addTerm(siteEN, model.Term{Taxonomy: model.TaxonomyTag, Name: "Go"})

	item := s.addItem(siteEN, model.ContentItem{Title: "Tagged", Terms: []model.Term{*news, *tag}})

	res := mustExport(t, s, ExportRequest{SiteID: siteEN, IDs: []int64{item.ID}})
	f := &mustParse(t, res.Document).Files[0]

	attr := TaxonomyAttr(model.TaxonomyCategory, nachrichten.ID)
	_, ok := f.Attr(attr)
	require.True(t, ok, "translated term becomes an attribute")
	assert.Equal(t, nachrichten.ID, f.IntAttr(attr))
	assert.Equal(t, []int64{nachrichten.ID}, f.TranslatedTerms())

	name, ok := unitText(f, TermField(model.TaxonomyTag, tag.ID).UnitID())
	require.True(t, ok, "untranslated term becomes a unit")
	assert.Equal(t, "Go", name)
	_, ok = unitText(f, TermField(model.TaxonomyCategory, news.ID).UnitID())
	assert.False(t, ok)
}

func TestExportMedia(t *testing.T) {
	s := newFakeStore()
	thumb := s.addMedia(siteEN, model.Media{AltText: "Thumb alt", Title: "Thumb"})
	attached := s.addMedia(siteEN, model.Media{Caption: "Attached caption"})
	shortcode := s.addMedia(siteEN, model.Media{Description: "From shortcode"})
	stored := s.addMedia(siteEN, model.Media{AltText: "Stored gallery"})

	item := s.addItem(siteEN, model.ContentItem{
		Title: "Pictures",
		Body:  `[gallery columns="3" ids="` + itoa(shortcode.ID) + `,` + itoa(attached.ID) + `,9999"]`,
		Media: []model.MediaRef{
			{Scope: model.MediaScopeFeatured, Media: *thumb},
			{Scope: model.MediaScopeAttached, Media: *attached},
			{Scope: model.MediaScopeAttached, Media: *attached},
			{Scope: model.MediaScopeGallery, Media: *stored},
		},
	})

	res := mustExport(t, s, ExportRequest{SiteID: siteEN, IDs: []int64{item.ID}})
	f := &mustParse(t, res.Document).Files[0]

	assert.Equal(t, thumb.ID, f.IntAttr(AttrPostThumbnail))

	var mediaUnits []string
	for _, u := range f.Units {
		if ParseField(u.ID).Kind == FieldMedia {
			mediaUnits = append(mediaUnits, u.ID)
		}
	}
	assert.Equal(t, []string{
		"post_thumbnail_alt_text",
		"post_thumbnail_title",
		"attached_img_" + itoa(attached.ID) + "_caption",
		"gallery_img_" + itoa(shortcode.ID) + "_description",
		"gallery_img_" + itoa(stored.ID) + "_alt_text",
	}, mediaUnits)
}

func TestExportParentAttributes(t *testing.T) {
	s := newFakeStore()
	parent := s.addItem(siteEN, model.ContentItem{Title: "Parent"})
	translatedParent := s.addItem(siteDE, model.ContentItem{Title: "Eltern"})
	s.link(model.RelationPost, map[int64]int64{siteEN: parent.ID, siteDE: translatedParent.ID})
	child := s.addItem(siteEN, model.ContentItem{Title: "Child", ParentID: parent.ID})
	orphan := s.addItem(siteEN, model.ContentItem{Title: "Orphan", ParentID: child.ID})

	res := mustExport(t, s, ExportRequest{SiteID: siteEN, IDs: []int64{child.ID, orphan.ID}, Collection: true})
	doc := mustParse(t, res.Document)
	require.Len(t, doc.Files, 2)

	assert.Equal(t, parent.ID, doc.Files[0].IntAttr(AttrParentPost))
	assert.Equal(t, translatedParent.ID, doc.Files[0].IntAttr(AttrTranslatedParentPost))

	assert.Equal(t, child.ID, doc.Files[1].IntAttr(AttrParentPost))
	_, ok := doc.Files[1].Attr(AttrTranslatedParentPost)
	assert.False(t, ok)
}

func TestExportIsDeterministic(t *testing.T) {
	s := newFakeStore()
	parent := s.addItem(siteEN, model.ContentItem{Title: "Parent"})
	tag := s.addTerm(siteEN, model.Term{Taxonomy: model.TaxonomyTag, Name: "Tag"})
	img := s.addMedia(siteEN, model.Media{AltText: "alt"})
	item := s.addItem(siteEN, model.ContentItem{
		Title:    "Stable",
		Body:     `<a href="https://site/parent/#x">p</a>`,
		ParentID: parent.ID,
		Meta:     []model.MetaField{{Key: "a", Value: "1x"}, {Key: "b", Value: "y"}},
		Terms:    []model.Term{*tag},
		Media:    []model.MediaRef{{Scope: model.MediaScopeAttached, Media: *img}},
	})
	req := ExportRequest{SiteID: siteEN, IDs: []int64{item.ID, parent.ID}, Collection: true}

	first := mustExport(t, s, req)
	second := mustExport(t, s, req)
	assert.Equal(t, string(first.Document), string(second.Document))

	for _, f := range mustParse(t, first.Document).Files {
		seen := make(map[string]bool)
		for _, u := range f.Units {
			assert.False(t, seen[u.ID], "duplicate unit %s", u.ID)
			seen[u.ID] = true
		}
	}
}

func TestFilename(t *testing.T) {
	site := &model.Site{URL: "https://www.example.org"}
	now := time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC)

	tests := []struct {
		name string
		want string
	}{
		{"", "www.example.org_02012026_0304.xml"},
		{"Über Uns", "uber-uns_02012026_0304.xml"},
		{"  ", "www.example.org_02012026_0304.xml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Filename(tt.name, site, now))
		})
	}

	assert.Equal(t, "xliff_02012026_0304.xml", Filename("", &model.Site{}, now))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
