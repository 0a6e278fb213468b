// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/ocms-xliff/internal/cache"
	"github.com/olegiv/ocms-xliff/internal/i18n"
	"github.com/olegiv/ocms-xliff/internal/model"
	"github.com/olegiv/ocms-xliff/internal/store"
	"github.com/olegiv/ocms-xliff/internal/transfer"
)

// ErrPresetNotFound is returned when an export preset does not exist.
var ErrPresetNotFound = errors.New("preset not found")

// Outcome levels.
const (
	LevelSuccess = "success"
	LevelInfo    = "info"
	LevelError   = "error"
)

// Outcome is a user-facing message about an export or import.
type Outcome struct {
	Level string
	HTML  string
}

// outcomePolicy sanitizes outcome messages; titles and URLs come from
// imported documents.
var outcomePolicy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}()

func newOutcome(level, msg string) Outcome {
	return Outcome{Level: level, HTML: outcomePolicy.Sanitize(msg)}
}

// ContentTree lists the children of a content item.
type ContentTree interface {
	ChildIDs(ctx context.Context, siteID, parentID int64) ([]int64, error)
}

// PresetStore loads export presets.
type PresetStore interface {
	Preset(ctx context.Context, id int64) (*model.Preset, error)
}

// Deps are the collaborators of an XLIFFService.
type Deps struct {
	Repo    transfer.Repository
	Dir     transfer.Directory
	Tree    ContentTree
	Presets PresetStore
	Events  *EventService
	Logger  *slog.Logger
}

// XLIFFService runs exports and imports and turns their results into
// outcome messages.
type XLIFFService struct {
	tree     ContentTree
	presets  PresetStore
	exporter *transfer.Exporter
	importer *transfer.Importer
	events   *EventService
	logger   *slog.Logger
}

// NewXLIFFService creates a new XLIFFService.
func NewXLIFFService(deps Deps, opts transfer.ExportOptions) *XLIFFService {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &XLIFFService{
		tree:     deps.Tree,
		presets:  deps.Presets,
		exporter: transfer.NewExporter(deps.Repo, deps.Dir, logger, opts),
		importer: transfer.NewImporter(deps.Repo, deps.Dir, logger),
		events:   deps.Events,
		logger:   logger,
	}
}

// NewStoreService creates an XLIFFService backed by the database. Lookups
// are cached when c is not nil.
func NewStoreService(db *sql.DB, c cache.Cache, ttl time.Duration, logger *slog.Logger, opts transfer.ExportOptions) *XLIFFService {
	repo := store.NewRepository(db)
	deps := Deps{
		Repo:    repo,
		Dir:     store.NewDirectory(db),
		Tree:    repo,
		Presets: repo,
		Events:  NewEventService(db),
		Logger:  logger,
	}
	if c != nil {
		deps.Repo = NewCachedRepository(repo, c, ttl, logger)
		deps.Dir = NewCachedDirectory(deps.Dir, c, ttl, logger)
	}
	return NewXLIFFService(deps, opts)
}

// ExportReport is the result of an export with its outcome messages.
// Result is nil when the export failed.
type ExportReport struct {
	Result   *transfer.ExportResult
	Outcomes []Outcome
}

// File returns the filename and the document, or false when no file was
// produced.
func (r *ExportReport) File() (string, []byte, bool) {
	if r.Result == nil || r.Result.Empty() {
		return "", nil, false
	}
	return r.Result.Filename, r.Result.Document, true
}

// ExportSingle exports one item. Any problem with the item fails the export.
func (s *XLIFFService) ExportSingle(ctx context.Context, lang string, siteID, id int64) (*ExportReport, error) {
	return s.export(ctx, lang, transfer.ExportRequest{SiteID: siteID, IDs: []int64{id}})
}

// ExportBulk exports a list of items. Missing and excluded items are skipped.
func (s *XLIFFService) ExportBulk(ctx context.Context, lang string, siteID int64, ids []int64) (*ExportReport, error) {
	return s.export(ctx, lang, transfer.ExportRequest{SiteID: siteID, IDs: ids, Collection: true})
}

// ExportTree exports the roots and all their descendants, depth first with
// children ordered by ID. name is used for the filename.
func (s *XLIFFService) ExportTree(ctx context.Context, lang string, siteID int64, rootIDs []int64, name string) (*ExportReport, error) {
	ids, err := s.collectTree(ctx, siteID, rootIDs)
	if err != nil {
		return s.failExport(ctx, lang, err)
	}
	return s.export(ctx, lang, transfer.ExportRequest{SiteID: siteID, IDs: ids, Collection: true, Name: name})
}

// ExportPreset exports the page tree of a saved preset.
func (s *XLIFFService) ExportPreset(ctx context.Context, lang string, presetID int64) (*ExportReport, error) {
	p, err := s.presets.Preset(ctx, presetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			err = fmt.Errorf("%w: %d", ErrPresetNotFound, presetID)
			return &ExportReport{Outcomes: []Outcome{
				newOutcome(LevelError, i18n.T(lang, "export.preset_not_found", presetID)),
			}}, err
		}
		return s.failExport(ctx, lang, err)
	}
	return s.ExportTree(ctx, lang, p.SiteID, p.RootIDs, p.Name)
}

// collectTree walks the page tree below the roots.
func (s *XLIFFService) collectTree(ctx context.Context, siteID int64, rootIDs []int64) ([]int64, error) {
	var ids []int64
	visited := make(map[int64]bool)

	var walk func(id int64) error
	walk = func(id int64) error {
		if visited[id] {
			return nil
		}
		visited[id] = true
		ids = append(ids, id)

		children, err := s.tree.ChildIDs(ctx, siteID, id)
		if err != nil {
			return fmt.Errorf("listing children of %d: %w", id, err)
		}
		for _, child := range children {
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range rootIDs {
		if err := walk(root); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func (s *XLIFFService) export(ctx context.Context, lang string, req transfer.ExportRequest) (*ExportReport, error) {
	res, err := s.exporter.Export(ctx, req)
	if err != nil {
		return s.failExport(ctx, lang, err)
	}

	report := &ExportReport{Result: res}
	for _, skipped := range res.Skipped {
		report.Outcomes = append(report.Outcomes,
			newOutcome(LevelInfo, i18n.T(lang, "export.skipped."+skipped.Reason, skipped.ID)))
	}

	meta := map[string]any{
		"batch":    res.BatchID,
		"site":     req.SiteID,
		"exported": len(res.Exported),
		"skipped":  len(res.Skipped),
	}
	if res.Empty() {
		report.Outcomes = append(report.Outcomes, newOutcome(LevelError, i18n.T(lang, "export.empty")))
		s.logEvent(ctx, model.EventLevelWarning, model.EventCategoryExport, "export produced no file", meta)
		return report, nil
	}

	meta["filename"] = res.Filename
	report.Outcomes = append(report.Outcomes, newOutcome(LevelSuccess,
		i18n.T(lang, "export.success", len(res.Exported), html.EscapeString(res.Filename))))
	s.logEvent(ctx, model.EventLevelInfo, model.EventCategoryExport, "export built", meta)
	return report, nil
}

// failExport reports a fatal export error.
func (s *XLIFFService) failExport(ctx context.Context, lang string, err error) (*ExportReport, error) {
	var msg string
	switch {
	case errors.Is(err, transfer.ErrMissingSourceLanguage):
		msg = i18n.T(lang, "export.missing_source_language")
	case errors.Is(err, transfer.ErrNoTargetSite):
		msg = i18n.T(lang, "export.no_target_site")
	case errors.Is(err, transfer.ErrContentNotFound):
		msg = i18n.T(lang, "export.not_found")
	default:
		msg = i18n.T(lang, "export.failed", html.EscapeString(err.Error()))
	}
	s.logEvent(ctx, model.EventLevelError, model.EventCategoryExport, "export failed",
		map[string]any{"error": err.Error()})
	return &ExportReport{Outcomes: []Outcome{newOutcome(LevelError, msg)}}, err
}

// ImportFile is an uploaded document.
type ImportFile struct {
	Name string
	Data []byte
}

// FileReport is the result of importing one file. Result is nil when the
// file was rejected.
type FileReport struct {
	Name   string
	Result *transfer.ImportResult
	Err    error
}

// ImportReport is the result of a multi-file import.
type ImportReport struct {
	Files    []FileReport
	Outcomes []Outcome
}

// Success returns true if every file was imported without errors.
func (r *ImportReport) Success() bool {
	if len(r.Files) == 0 {
		return false
	}
	for _, f := range r.Files {
		if f.Err != nil || !f.Result.Success() {
			return false
		}
	}
	return true
}

// Import imports each file independently. A rejected file does not stop
// the others; only a cancelled context aborts the run.
func (s *XLIFFService) Import(ctx context.Context, lang string, files ...ImportFile) (*ImportReport, error) {
	report := &ImportReport{}
	if len(files) == 0 {
		report.Outcomes = append(report.Outcomes, newOutcome(LevelError, i18n.T(lang, "import.no_file")))
		return report, nil
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		fr := s.importFile(ctx, lang, f, report)
		report.Files = append(report.Files, fr)
	}

	if report.Success() {
		report.Outcomes = append([]Outcome{newOutcome(LevelSuccess, i18n.T(lang, "import.success"))}, report.Outcomes...)
	}
	return report, nil
}

func (s *XLIFFService) importFile(ctx context.Context, lang string, f ImportFile, report *ImportReport) FileReport {
	name := html.EscapeString(f.Name)
	fr := FileReport{Name: f.Name}

	if len(f.Data) == 0 {
		fr.Err = fmt.Errorf("%s: %w", f.Name, transfer.ErrMalformedDocument)
		report.Outcomes = append(report.Outcomes,
			newOutcome(LevelError, i18n.T(lang, "import.failed", name, i18n.T(lang, "import.no_file"))))
		return fr
	}

	res, err := s.importer.Import(ctx, f.Data)
	if err != nil {
		fr.Err = err
		reason := html.EscapeString(err.Error())
		if errors.Is(err, transfer.ErrMalformedDocument) {
			reason = i18n.T(lang, "import.malformed")
		}
		report.Outcomes = append(report.Outcomes,
			newOutcome(LevelError, i18n.T(lang, "import.failed", name, reason)))
		s.logEvent(ctx, model.EventLevelError, model.EventCategoryImport, "import rejected",
			map[string]any{"file": f.Name, "error": err.Error()})
		return fr
	}
	fr.Result = res

	level := LevelInfo
	if res.Success() {
		level = LevelSuccess
	}
	report.Outcomes = append(report.Outcomes, newOutcome(level,
		i18n.T(lang, "import.summary", name, res.CreatedCount(), res.UpdatedCount())))
	for _, issue := range res.Errors {
		report.Outcomes = append(report.Outcomes, newOutcome(LevelError, issueMessage(lang, issue)))
	}
	for _, issue := range res.Notices {
		report.Outcomes = append(report.Outcomes, newOutcome(LevelInfo, issueMessage(lang, issue)))
	}

	eventLevel := model.EventLevelInfo
	if !res.Success() {
		eventLevel = model.EventLevelWarning
	}
	s.logEvent(ctx, eventLevel, model.EventCategoryImport, "import finished", map[string]any{
		"batch":   res.BatchID,
		"file":    f.Name,
		"created": res.CreatedCount(),
		"updated": res.UpdatedCount(),
		"errors":  len(res.Errors),
		"notices": len(res.Notices),
	})
	return fr
}

// issueMessage renders a per-item error or notice.
func issueMessage(lang string, issue transfer.Issue) string {
	switch issue.Code {
	case transfer.CodeSourceContentLinks:
		return i18n.T(lang, "import.source_content_links", itemLink(issue)) + sourceLinks(issue.Links)
	case transfer.CodeLinkPlaceholderLeft:
		return i18n.TN(lang, "import.link_placeholder_left", issue.Count, itemLink(issue), issue.Count)
	default:
		return i18n.T(lang, "import."+issue.Code, issue.SourceID)
	}
}

// itemLink renders the title of the affected item, linked when its URL is
// known.
func itemLink(issue transfer.Issue) string {
	title := html.EscapeString(issue.Title)
	if issue.URL == "" {
		return title
	}
	return `<a href="` + html.EscapeString(issue.URL) + `">` + title + `</a>`
}

// sourceLinks renders the kept source-site permalinks as a list.
func sourceLinks(links []string) string {
	if len(links) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<ul>")
	for _, l := range links {
		u := html.EscapeString(l)
		b.WriteString(`<li><a href="` + u + `">` + u + `</a></li>`)
	}
	b.WriteString("</ul>")
	return b.String()
}

func (s *XLIFFService) logEvent(ctx context.Context, level, category, message string, meta map[string]any) {
	if s.events == nil {
		return
	}
	if err := s.events.LogEvent(ctx, level, category, message, meta); err != nil {
		s.logger.Debug("event not recorded", "error", err)
	}
}

// Subject template tags.
const (
	TagPostID    = "%%POST_ID%%"
	TagPostTitle = "%%POST_TITLE%%"
)

// ExportSubject fills the template tags of a mail subject for an export.
// Only a single exported item fills them; for collections both tags are
// left blank.
func ExportSubject(template string, res *transfer.ExportResult) string {
	if res == nil {
		return template
	}
	var id, title string
	if len(res.Exported) == 1 {
		id = strconv.FormatInt(res.Exported[0], 10)
		title = res.Titles[res.Exported[0]]
	}
	return strings.NewReplacer(TagPostID, id, TagPostTitle, title).Replace(template)
}
