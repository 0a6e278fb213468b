// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDocument = `<?xml version="1.0" encoding="UTF-8"?>
<xliff xmlns="urn:oasis:names:tc:xliff:document:2.0" version="2.0" srcLang="en-US" trgLang="de-DE">
  <file id="10" data-post-type="page" data-site-id="1" data-target-site-id="2" data-taxonomy-category-term_id-7="7">
    <unit id="title"><segment><target>Hallo</target></segment></unit>
    <unit id="body"><segment><target><![CDATA[<p>Text</p>]]></target></segment></unit>
  </file>
</xliff>
`

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument([]byte(validDocument))
	require.NoError(t, err)

	assert.Equal(t, "en-US", doc.SrcLang)
	assert.Equal(t, "de-DE", doc.TrgLang)
	require.Len(t, doc.Files, 1)

	f := &doc.Files[0]
	assert.Equal(t, int64(10), f.SourceID())
	assert.Equal(t, int64(1), f.IntAttr(AttrSiteID))
	assert.Equal(t, int64(2), f.IntAttr(AttrTargetSiteID))
	v, ok := f.Attr(AttrPostType)
	assert.True(t, ok)
	assert.Equal(t, "page", v)
	assert.Equal(t, []int64{7}, f.TranslatedTerms())

	title, _ := unitText(f, "title")
	body, _ := unitText(f, "body")
	assert.Equal(t, "Hallo", title)
	assert.Equal(t, "<p>Text</p>", body)
}

func TestParseDocumentMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"whitespace", "  \n"},
		{"not xml", "hello world"},
		{"wrong root", `<html><body/></html>`},
		{"truncated", `<xliff version="2.0" srcLang="en"><file id="1"`},
		{"wrong namespace", `<xliff xmlns="urn:other" version="2.0" srcLang="en"></xliff>`},
		{"missing file id", `<xliff version="2.0" srcLang="en"><file data-site-id="1" data-target-site-id="2"></file></xliff>`},
		{"missing site", `<xliff version="2.0" srcLang="en"><file id="3" data-target-site-id="2"></file></xliff>`},
		{"missing target site", `<xliff version="2.0" srcLang="en"><file id="3" data-site-id="1"></file></xliff>`},
		{"same sites", `<xliff version="2.0" srcLang="en"><file id="3" data-site-id="1" data-target-site-id="1"></file></xliff>`},
		{"bad id", `<xliff version="2.0" srcLang="en"><file id="abc" data-site-id="1" data-target-site-id="2"></file></xliff>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedDocument)
		})
	}
}

func TestWrapTargets(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "markup wrapped",
			in:   `<target><p>a &nbsp; b</p></target>`,
			want: `<target><![CDATA[<p>a &nbsp; b</p>]]></target>`,
		},
		{
			name: "cdata kept",
			in:   `<target><![CDATA[<b>x</b>]]></target>`,
			want: `<target><![CDATA[<b>x</b>]]></target>`,
		},
		{
			name: "attributes kept",
			in:   `<target xml:lang="de">x</target>`,
			want: `<target xml:lang="de"><![CDATA[x]]></target>`,
		},
		{
			name: "cdata terminator split",
			in:   `<target>a]]>b</target>`,
			want: `<target><![CDATA[a]]]]><![CDATA[>b]]></target>`,
		},
		{
			name: "multiline",
			in:   "<target>\n<p>1</p>\n</target><target>2</target>",
			want: "<target><![CDATA[\n<p>1</p>\n]]></target><target><![CDATA[2]]></target>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(wrapTargets([]byte(tt.in))))
		})
	}
}

func TestParseDocumentRawMarkupInTarget(t *testing.T) {
	data := `<xliff version="2.0" srcLang="en-US"><file id="4" data-site-id="1" data-target-site-id="2">` +
		`<unit id="body"><segment><target><p>Eins &nbsp; <a href="https://de.site/">zwei</a></p></target></segment></unit>` +
		`</file></xliff>`

	doc, err := ParseDocument([]byte(data))
	require.NoError(t, err)
	body, ok := unitText(&doc.Files[0], "body")
	require.True(t, ok)
	assert.Equal(t, `<p>Eins &nbsp; <a href="https://de.site/">zwei</a></p>`, body)
}

func TestMarshalRoundTrip(t *testing.T) {
	doc := &Document{SrcLang: "en-US", TrgLang: "de-DE"}
	f := File{ID: "5"}
	f.SetAttr(AttrPostType, "post")
	f.SetAttr(AttrSiteID, "1")
	f.SetAttr(AttrTargetSiteID, "2")
	f.AddUnit(TitleField, "Title")
	f.AddUnit(ExcerptField, "")
	f.AddUnit(BodyField, "<p>x ]]> y</p>")
	doc.Files = append(doc.Files, f)

	data, err := doc.Marshal()
	require.NoError(t, err)

	out := string(data)
	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, out, `xmlns="urn:oasis:names:tc:xliff:document:2.0"`)
	assert.Contains(t, out, `version="2.0"`)
	assert.NotContains(t, out, `id="excerpt"`)

	parsed := mustParse(t, data)
	require.Len(t, parsed.Files, 1)
	require.Len(t, parsed.Files[0].Units, 2)
	body, _ := unitText(&parsed.Files[0], "body")
	assert.Equal(t, "<p>x ]]> y</p>", body)
}

func TestMarshalWritesNamespaceOnRoot(t *testing.T) {
	f := File{ID: "5"}
	f.SetAttr(AttrSiteID, "1")
	f.SetAttr(AttrTargetSiteID, "2")
	f.AddUnit(TitleField, "Title")
	data, err := (&Document{SrcLang: "en", Files: []File{f}}).Marshal()
	require.NoError(t, err)

	assert.Contains(t, string(data), `<xliff xmlns="urn:oasis:names:tc:xliff:document:2.0" version="2.0" srcLang="en">`)
	assert.Contains(t, string(data), `<file id="5"`)
	assert.NotContains(t, string(data), `xmlns=""`)

	parsed := mustParse(t, data)
	assert.Equal(t, Namespace, parsed.XMLName.Space)
	assert.Equal(t, "xliff", parsed.XMLName.Local)
}

func TestParseDocumentRootChecks(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"wrong root", `<xlf version="2.0" srcLang="en"></xlf>`},
		{"wrong namespace", `<xliff xmlns="urn:oasis:names:tc:xliff:document:1.2" version="2.0" srcLang="en"></xliff>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.data))
			assert.ErrorIs(t, err, ErrMalformedDocument)
		})
	}
}

func TestTaxonomyAttr(t *testing.T) {
	assert.Equal(t, "data-taxonomy-post_tag-term_id-12", TaxonomyAttr("post_tag", 12))
}
