// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-xliff/internal/model"
)

func TestEncodeReplacesResolvableLinks(t *testing.T) {
	s := newFakeStore()
	s.addItem(siteEN, model.ContentItem{ID: 42, Title: "Other Post"})
	codec := NewLinkCodec(s, s, testLogger())
	ctx := context.Background()

	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "plain link",
			body: `<a href="https://site/other-post">x</a>`,
			want: `<a href="{{hohenheim_url_post_id:42}}">x</a>`,
		},
		{
			name: "query and fragment",
			body: `<a href="https://site/other-post/?lang=en&amp;a=1#part">x</a>`,
			want: `<a href="{{hohenheim_url_post_id:42}}{{hohenheim_url_query:lang=en&amp;a=1}}{{hohenheim_url_hash:part}}">x</a>`,
		},
		{
			name: "fragment only",
			body: `<a href="https://site/other-post/#top">x</a>`,
			want: `<a href="{{hohenheim_url_post_id:42}}{{hohenheim_url_hash:top}}">x</a>`,
		},
		{
			name: "unresolvable link untouched",
			body: `<a href="https://site/nowhere/">x</a>`,
			want: `<a href="https://site/nowhere/">x</a>`,
		},
		{
			name: "foreign host untouched",
			body: `<a href="https://site.evil/other-post">x</a><a href="https://elsewhere/other-post">y</a>`,
			want: `<a href="https://site.evil/other-post">x</a><a href="https://elsewhere/other-post">y</a>`,
		},
		{
			name: "no links",
			body: `<p>plain</p>`,
			want: `<p>plain</p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := codec.Encode(ctx, s.site(siteEN), tt.body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeSubstitutesOverlappingURLsOnce(t *testing.T) {
	s := newFakeStore()
	parent := s.addItem(siteEN, model.ContentItem{Title: "News"})
	child := s.addItem(siteEN, model.ContentItem{Title: "Today", ParentID: parent.ID})
	codec := NewLinkCodec(s, s, testLogger())

	body := `<a href="https://site/news/">a</a> <a href="https://site/news/today/">b</a> <a href="https://site/news/">c</a>`
	got, err := codec.Encode(context.Background(), s.site(siteEN), body)
	require.NoError(t, err)

	want := `<a href="` + linkRef{ID: parent.ID}.Placeholder() + `">a</a> ` +
		`<a href="` + linkRef{ID: child.ID}.Placeholder() + `">b</a> ` +
		`<a href="` + linkRef{ID: parent.ID}.Placeholder() + `">c</a>`
	assert.Equal(t, want, got)
	assert.Equal(t, 2, s.resolveCalls, "each distinct URL is resolved once")
}

func TestLinkRoundTrip(t *testing.T) {
	urls := []string{
		"https://site/other-post/",
		"https://site/other-post/?a=1",
		"https://site/other-post/#frag",
		"https://site/other-post/?a=1&b=2#frag",
	}

	for _, u := range urls {
		t.Run(u, func(t *testing.T) {
			s := newFakeStore()
			src := s.addItem(siteEN, model.ContentItem{Title: "Other Post"})
			dst := s.addItem(siteDE, model.ContentItem{Title: "Anderer Beitrag"})
			s.link(model.RelationPost, map[int64]int64{siteEN: src.ID, siteDE: dst.ID})
			codec := NewLinkCodec(s, s, testLogger())
			ctx := context.Background()

			encoded, err := codec.Encode(ctx, s.site(siteEN), `<a href="`+u+`">x</a>`)
			require.NoError(t, err)
			require.Contains(t, encoded, "{{hohenheim_url_post_id:")

			b := NewBatch()
			decoded, err := codec.Decode(ctx, b, itemRef{SourceSite: siteEN, TargetSite: siteDE, SourceID: 1}, encoded)
			require.NoError(t, err)

			tail := u[len("https://site/other-post/"):]
			assert.Equal(t, `<a href="https://de.site/anderer-beitrag/`+tail+`">x</a>`, decoded)
			assert.Zero(t, b.PendingCount())
		})
	}
}

func TestDecodeFallsBackToSourcePermalink(t *testing.T) {
	s := newFakeStore()
	linked := s.addItem(siteEN, model.ContentItem{Title: "Linked"})
	codec := NewLinkCodec(s, s, testLogger())
	ref := itemRef{SourceSite: siteEN, TargetSite: siteDE, SourceID: 7}

	b := NewBatch()
	body := `<a href="` + linkRef{ID: linked.ID, Query: "x=1"}.Placeholder() + `">x</a>`
	got, err := codec.Decode(context.Background(), b, ref, body)
	require.NoError(t, err)

	assert.Equal(t, `<a href="https://site/linked/?x=1">x</a>`, got)
	assert.Equal(t, 1, b.PendingCount())
	assert.Equal(t, []PendingLink{{LinkedID: linked.ID, Fallback: "https://site/linked/"}}, b.pending[ref])
}

func TestDecodeKeepsTokensForMissingItems(t *testing.T) {
	s := newFakeStore()
	codec := NewLinkCodec(s, s, testLogger())

	b := NewBatch()
	body := `<a href="{{hohenheim_url_post_id:999}}{{hohenheim_url_hash:a}}">x</a>`
	got, err := codec.Decode(context.Background(), b, itemRef{SourceSite: siteEN, TargetSite: siteDE, SourceID: 1}, body)
	require.NoError(t, err)

	assert.Equal(t, body, got)
	assert.Equal(t, 1, CountPlaceholders(got))
	assert.Zero(t, b.PendingCount())
}

func TestResolvePendingUpgradesAndReports(t *testing.T) {
	s := newFakeStore()
	ctx := context.Background()
	codec := NewLinkCodec(s, s, testLogger())

	later := s.addItem(siteEN, model.ContentItem{Title: "Later"})
	never := s.addItem(siteEN, model.ContentItem{Title: "Never"})
	ref := itemRef{SourceSite: siteEN, TargetSite: siteDE, SourceID: 1}

	b := NewBatch()
	body := `<a href="` + linkRef{ID: later.ID, Fragment: "f"}.Placeholder() + `">a</a>` +
		`<a href="` + linkRef{ID: never.ID}.Placeholder() + `">b</a>`
	decoded, err := codec.Decode(ctx, b, ref, body)
	require.NoError(t, err)

	written := s.addItem(siteDE, model.ContentItem{Title: "Geschrieben", Body: decoded})
	b.recordTranslation(ref, written.ID)

	translated := s.addItem(siteDE, model.ContentItem{Title: "Spaeter"})
	s.link(model.RelationPost, map[int64]int64{siteEN: later.ID, siteDE: translated.ID})

	require.NoError(t, codec.ResolvePending(ctx, b))

	assert.Equal(t, `<a href="https://de.site/spaeter/#f">a</a><a href="https://site/never/">b</a>`, s.item(siteDE, written.ID).Body)
	require.Len(t, b.Notices(), 1)
	notice := b.Notices()[0]
	assert.Equal(t, CodeSourceContentLinks, notice.Code)
	assert.Equal(t, "Geschrieben", notice.Title)
	assert.Equal(t, "https://de.site/geschrieben/", notice.URL)
	assert.Equal(t, []string{"https://site/never/"}, notice.Links)
	assert.Zero(t, b.PendingCount(), "the second pass is the last one")
}

func TestResolvePendingWithoutWrittenItem(t *testing.T) {
	s := newFakeStore()
	ctx := context.Background()
	codec := NewLinkCodec(s, s, testLogger())
	linked := s.addItem(siteEN, model.ContentItem{Title: "Linked"})
	ref := itemRef{SourceSite: siteEN, TargetSite: siteDE, SourceID: 5}

	b := NewBatch()
	_, err := codec.Decode(ctx, b, ref, `<a href="`+linkRef{ID: linked.ID}.Placeholder()+`">x</a>`)
	require.NoError(t, err)

	require.NoError(t, codec.ResolvePending(ctx, b))
	require.Len(t, b.Notices(), 1)
	assert.Equal(t, CodeMissingTranslationTarget, b.Notices()[0].Code)
	assert.Equal(t, int64(5), b.Notices()[0].SourceID)
}

func TestRewriteHref(t *testing.T) {
	body := `<a href="https://site/a/">1</a><a href="https://site/a/?q=1">2</a><a href="https://site/a/b/">3</a><a href="https://site/a/#x">4</a>`
	got := rewriteHref(body, "https://site/a/", "https://de.site/a-de/")
	assert.Equal(t, `<a href="https://de.site/a-de/">1</a><a href="https://de.site/a-de/?q=1">2</a><a href="https://site/a/b/">3</a><a href="https://de.site/a-de/#x">4</a>`, got)
}

func TestCountPlaceholders(t *testing.T) {
	assert.Equal(t, 0, CountPlaceholders("<p>none</p>"))
	assert.Equal(t, 2, CountPlaceholders(`{{hohenheim_url_post_id:1}} and {{hohenheim_url_post_id:22}}{{hohenheim_url_hash:x}}`))
}
