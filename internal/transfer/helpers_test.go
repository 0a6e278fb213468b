// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/olegiv/ocms-xliff/internal/model"
)

const (
	siteEN = int64(1)
	siteDE = int64(2)
)

var errWriteRejected = errors.New("write rejected")

// fakeStore is an in-memory Repository and Directory.
type fakeStore struct {
	sites  []model.Site
	items  map[int64]map[int64]*model.ContentItem
	media  map[int64]map[int64]*model.Media
	terms  map[int64]map[int64]*model.Term
	links  map[model.RelationKind][]map[int64]int64
	nextID int64
	clock  time.Time

	// rejectTitles makes WriteContent fail for drafts with these titles.
	rejectTitles map[string]bool

	contentWrites int
	resolveCalls  int

	// afterWrite runs after every content write.
	afterWrite func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sites: []model.Site{
			{ID: siteEN, Name: "English", URL: "https://site", Language: "en-US", IsActive: true},
			{ID: siteDE, Name: "Deutsch", URL: "https://de.site", Language: "de-DE", IsActive: true},
		},
		items:        map[int64]map[int64]*model.ContentItem{siteEN: {}, siteDE: {}},
		media:        map[int64]map[int64]*model.Media{siteEN: {}, siteDE: {}},
		terms:        map[int64]map[int64]*model.Term{siteEN: {}, siteDE: {}},
		links:        make(map[model.RelationKind][]map[int64]int64),
		nextID:       100,
		clock:        time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		rejectTitles: make(map[string]bool),
	}
}

func (s *fakeStore) tick() time.Time {
	s.clock = s.clock.Add(time.Minute)
	return s.clock
}

func (s *fakeStore) id() int64 {
	s.nextID++
	return s.nextID
}

// addItem stores an item on a site. ID 0 allocates one.
func (s *fakeStore) addItem(site int64, item model.ContentItem) *model.ContentItem {
	if item.ID == 0 {
		item.ID = s.id()
	}
	item.SiteID = site
	if item.Slug == "" {
		item.Slug = strings.ToLower(strings.ReplaceAll(item.Title, " ", "-"))
	}
	if item.Type == "" {
		item.Type = model.TypePage
	}
	if item.Status == "" {
		item.Status = model.StatusPublished
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = s.tick()
	}
	s.items[site][item.ID] = &item
	return &item
}

func (s *fakeStore) addMedia(site int64, m model.Media) *model.Media {
	if m.ID == 0 {
		m.ID = s.id()
	}
	m.SiteID = site
	s.media[site][m.ID] = &m
	return &m
}

func (s *fakeStore) addTerm(site int64, t model.Term) *model.Term {
	if t.ID == 0 {
		t.ID = s.id()
	}
	t.SiteID = site
	s.terms[site][t.ID] = &t
	return &t
}

func (s *fakeStore) link(kind model.RelationKind, members map[int64]int64) {
	_ = s.CreateLink(context.Background(), kind, members)
}

func (s *fakeStore) item(site, id int64) *model.ContentItem {
	return s.items[site][id]
}

func (s *fakeStore) site(id int64) *model.Site {
	for i := range s.sites {
		if s.sites[i].ID == id {
			return &s.sites[i]
		}
	}
	return nil
}

func (s *fakeStore) Site(_ context.Context, siteID int64) (*model.Site, error) {
	site := s.site(siteID)
	if site == nil {
		return nil, fmt.Errorf("site %d missing", siteID)
	}
	cp := *site
	return &cp, nil
}

func (s *fakeStore) Content(_ context.Context, siteID, id int64) (*model.ContentItem, error) {
	item, ok := s.items[siteID][id]
	if !ok {
		return nil, fmt.Errorf("item %d: %w", id, ErrContentNotFound)
	}
	cp := *item
	return &cp, nil
}

func (s *fakeStore) ModifiedAt(ctx context.Context, siteID, id int64) (time.Time, error) {
	item, err := s.Content(ctx, siteID, id)
	if err != nil {
		return time.Time{}, err
	}
	return item.UpdatedAt, nil
}

func (s *fakeStore) Permalink(_ context.Context, siteID, id int64) (string, error) {
	var slugs []string
	current := id
	for depth := 0; current != 0 && depth < 32; depth++ {
		item, ok := s.items[siteID][current]
		if !ok {
			if current == id {
				return "", fmt.Errorf("item %d: %w", id, ErrContentNotFound)
			}
			break
		}
		slugs = append([]string{item.Slug}, slugs...)
		current = item.ParentID
	}
	return s.site(siteID).URL + "/" + strings.Join(slugs, "/") + "/", nil
}

func (s *fakeStore) ResolveURL(ctx context.Context, siteID int64, rawURL string) (int64, error) {
	s.resolveCalls++
	clean := rawURL
	if i := strings.IndexAny(clean, "?#"); i >= 0 {
		clean = clean[:i]
	}
	if !strings.HasSuffix(clean, "/") {
		clean += "/"
	}
	for id := range s.items[siteID] {
		link, _ := s.Permalink(ctx, siteID, id)
		if link == clean {
			return id, nil
		}
	}
	return 0, nil
}

func (s *fakeStore) WriteContent(ctx context.Context, siteID int64, d model.ContentDraft) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s.afterWrite != nil {
		defer s.afterWrite()
	}
	if d.Title != nil && s.rejectTitles[*d.Title] {
		return 0, errWriteRejected
	}
	s.contentWrites++

	var item *model.ContentItem
	if d.IsUpdate() {
		existing, ok := s.items[siteID][d.ID]
		if !ok {
			return 0, fmt.Errorf("item %d: %w", d.ID, ErrContentNotFound)
		}
		item = existing
		if d.Type != "" {
			item.Type = d.Type
		}
		if d.Status != "" {
			item.Status = d.Status
		}
	} else {
		item = &model.ContentItem{ID: s.id(), SiteID: siteID, Type: d.Type, Status: d.Status}
		s.items[siteID][item.ID] = item
	}

	if d.Title != nil {
		item.Title = *d.Title
		if item.Slug == "" {
			item.Slug = strings.ToLower(strings.ReplaceAll(*d.Title, " ", "-"))
		}
	}
	if d.Body != nil {
		item.Body = *d.Body
	}
	if d.Excerpt != nil {
		item.Excerpt = *d.Excerpt
	}
	if d.ParentID != 0 {
		item.ParentID = d.ParentID
	}

	keys := make([]string, 0, len(d.Meta))
	for k := range d.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		item.Meta = append(item.Meta, model.MetaField{Key: k, Value: d.Meta[k]})
	}

	if d.TermIDs != nil {
		item.Terms = nil
		for _, id := range d.TermIDs {
			if t, ok := s.terms[siteID][id]; ok {
				item.Terms = append(item.Terms, *t)
			}
		}
	}
	for _, att := range d.Media {
		if m, ok := s.media[siteID][att.MediaID]; ok {
			item.Media = append(item.Media, model.MediaRef{Scope: att.Scope, Media: *m})
		}
	}

	item.UpdatedAt = s.tick()
	return item.ID, nil
}

func (s *fakeStore) UpdateContent(_ context.Context, siteID, id int64, patch model.ContentPatch) error {
	item, ok := s.items[siteID][id]
	if !ok {
		return fmt.Errorf("item %d: %w", id, ErrContentNotFound)
	}
	if patch.ParentID != nil {
		item.ParentID = *patch.ParentID
	}
	if patch.Body != nil {
		item.Body = *patch.Body
	}
	item.UpdatedAt = s.tick()
	return nil
}

func (s *fakeStore) AddMeta(_ context.Context, siteID, id int64, key, value string) error {
	item, ok := s.items[siteID][id]
	if !ok {
		return fmt.Errorf("item %d: %w", id, ErrContentNotFound)
	}
	item.Meta = append(item.Meta, model.MetaField{Key: key, Value: value})
	return nil
}

func (s *fakeStore) Media(_ context.Context, siteID, id int64) (*model.Media, error) {
	m, ok := s.media[siteID][id]
	if !ok {
		return nil, fmt.Errorf("media %d: %w", id, ErrContentNotFound)
	}
	cp := *m
	return &cp, nil
}

func (s *fakeStore) WriteMedia(_ context.Context, siteID int64, m model.Media) (int64, error) {
	if m.ID == 0 {
		m.ID = s.id()
	} else if _, ok := s.media[siteID][m.ID]; !ok {
		return 0, fmt.Errorf("media %d: %w", m.ID, ErrContentNotFound)
	}
	m.SiteID = siteID
	s.media[siteID][m.ID] = &m
	return m.ID, nil
}

func (s *fakeStore) WriteTerm(_ context.Context, siteID int64, t model.Term) (int64, error) {
	for id, existing := range s.terms[siteID] {
		if existing.Taxonomy == t.Taxonomy && strings.EqualFold(existing.Name, t.Name) {
			return id, nil
		}
	}
	return s.addTerm(siteID, t).ID, nil
}

func (s *fakeStore) Sites(context.Context) ([]model.Site, error) {
	return append([]model.Site(nil), s.sites...), nil
}

func (s *fakeStore) Translations(_ context.Context, siteID, objectID int64, kind model.RelationKind) (map[int64]int64, error) {
	out := make(map[int64]int64)
	for _, group := range s.links[kind] {
		if group[siteID] != objectID {
			continue
		}
		for site, id := range group {
			if site != siteID {
				out[site] = id
			}
		}
	}
	return out, nil
}

func (s *fakeStore) CreateLink(_ context.Context, kind model.RelationKind, members map[int64]int64) error {
	for _, group := range s.links[kind] {
		for site, id := range members {
			if group[site] == id {
				for site, id := range members {
					group[site] = id
				}
				return nil
			}
		}
	}
	group := make(map[int64]int64, len(members))
	for site, id := range members {
		group[site] = id
	}
	s.links[kind] = append(s.links[kind], group)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestExporter(s *fakeStore) *Exporter {
	opts := DefaultExportOptions()
	opts.Now = func() time.Time { return time.Date(2026, 10, 18, 9, 5, 0, 0, time.UTC) }
	return NewExporter(s, s, testLogger(), opts)
}

func newTestImporter(s *fakeStore) *Importer {
	return NewImporter(s, s, testLogger())
}

func mustExport(t *testing.T, s *fakeStore, req ExportRequest) *ExportResult {
	t.Helper()
	res, err := newTestExporter(s).Export(context.Background(), req)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	return res
}

func mustParse(t *testing.T, data []byte) *Document {
	t.Helper()
	doc, err := ParseDocument(data)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	return doc
}

func unitText(f *File, unitID string) (string, bool) {
	for _, u := range f.Units {
		if u.ID == unitID {
			return u.Target.Text, true
		}
	}
	return "", false
}
