// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/olegiv/ocms-xliff/internal/middleware"
	"github.com/olegiv/ocms-xliff/internal/service"
	"github.com/olegiv/ocms-xliff/internal/transfer"
)

// XLIFFContentType is the media type of downloaded documents.
const XLIFFContentType = "application/xliff+xml"

// Response headers of a download.
const (
	HeaderBatch    = "X-Xliff-Batch"
	HeaderExported = "X-Xliff-Exported"
	HeaderSkipped  = "X-Xliff-Skipped"
	HeaderSubject  = "X-Xliff-Subject"
)

// importField is the multipart field carrying uploaded documents.
const importField = "files"

// XLIFFHandler handles export downloads and import uploads.
type XLIFFHandler struct {
	svc             *service.XLIFFService
	sourceSite      int64
	maxUpload       int64
	subjectTemplate string
	logger          *slog.Logger
}

// XLIFFOptions configures an XLIFFHandler.
type XLIFFOptions struct {
	SourceSite      int64
	MaxUploadBytes  int64
	SubjectTemplate string
}

// NewXLIFFHandler creates a new XLIFFHandler.
func NewXLIFFHandler(svc *service.XLIFFService, opts XLIFFOptions, logger *slog.Logger) *XLIFFHandler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 20 << 20
	}
	return &XLIFFHandler{
		svc:             svc,
		sourceSite:      opts.SourceSite,
		maxUpload:       opts.MaxUploadBytes,
		subjectTemplate: opts.SubjectTemplate,
		logger:          logger,
	}
}

// ExportRequest is the body of bulk and tree exports.
type ExportRequest struct {
	SiteID  int64   `json:"site_id,omitempty"`
	IDs     []int64 `json:"ids,omitempty"`
	RootIDs []int64 `json:"root_ids,omitempty"`
	// Name names the file of tree exports.
	Name string `json:"name,omitempty"`
}

func (h *XLIFFHandler) site(siteID int64) int64 {
	if siteID > 0 {
		return siteID
	}
	return h.sourceSite
}

// ExportSingle handles GET /export/{id}?site=N.
func (h *XLIFFHandler) ExportSingle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		WriteBadRequest(w, "Invalid content ID")
		return
	}
	var siteID int64
	if s := r.URL.Query().Get("site"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 1 {
			WriteBadRequest(w, "Invalid site ID")
			return
		}
		siteID = n
	}

	report, err := h.svc.ExportSingle(r.Context(), middleware.GetLanguage(r), h.site(siteID), id)
	h.writeExport(w, report, err)
}

// ExportBulk handles POST /export with a list of IDs.
func (h *XLIFFHandler) ExportBulk(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "Invalid JSON body")
		return
	}
	if len(req.IDs) == 0 {
		WriteValidationError(w, map[string]string{"ids": "At least one ID is required"})
		return
	}

	report, err := h.svc.ExportBulk(r.Context(), middleware.GetLanguage(r), h.site(req.SiteID), req.IDs)
	h.writeExport(w, report, err)
}

// ExportTree handles POST /export/tree with root IDs.
func (h *XLIFFHandler) ExportTree(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "Invalid JSON body")
		return
	}
	if len(req.RootIDs) == 0 {
		WriteValidationError(w, map[string]string{"root_ids": "At least one root ID is required"})
		return
	}

	report, err := h.svc.ExportTree(r.Context(), middleware.GetLanguage(r), h.site(req.SiteID), req.RootIDs, req.Name)
	h.writeExport(w, report, err)
}

// ExportPreset handles GET /export/preset/{id}.
func (h *XLIFFHandler) ExportPreset(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		WriteBadRequest(w, "Invalid preset ID")
		return
	}

	report, err := h.svc.ExportPreset(r.Context(), middleware.GetLanguage(r), id)
	h.writeExport(w, report, err)
}

// writeExport sends the document as a download, or the outcomes as JSON
// when no file was produced.
func (h *XLIFFHandler) writeExport(w http.ResponseWriter, report *service.ExportReport, err error) {
	if err != nil {
		var outcomes []service.Outcome
		if report != nil {
			outcomes = report.Outcomes
		}
		status, code := exportErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("export failed", "error", err)
		}
		WriteError(w, status, code, err.Error(), outcomes)
		return
	}

	filename, data, ok := report.File()
	if !ok {
		WriteError(w, http.StatusUnprocessableEntity, "empty_export", "No file was produced", report.Outcomes)
		return
	}

	w.Header().Set("Content-Type", XLIFFContentType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set(HeaderBatch, report.Result.BatchID)
	w.Header().Set(HeaderExported, strconv.Itoa(len(report.Result.Exported)))
	w.Header().Set(HeaderSkipped, strconv.Itoa(len(report.Result.Skipped)))
	if h.subjectTemplate != "" {
		w.Header().Set(HeaderSubject, mime.QEncoding.Encode("utf-8",
			service.ExportSubject(h.subjectTemplate, report.Result)))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// exportErrorStatus maps a fatal export error to an HTTP status and code.
func exportErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, transfer.ErrContentNotFound):
		return http.StatusNotFound, "content_not_found"
	case errors.Is(err, service.ErrPresetNotFound):
		return http.StatusNotFound, "preset_not_found"
	case errors.Is(err, transfer.ErrMissingSourceLanguage):
		return http.StatusUnprocessableEntity, "missing_source_language"
	case errors.Is(err, transfer.ErrNoTargetSite):
		return http.StatusUnprocessableEntity, "no_target_site"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// FileResponse summarizes one imported file.
type FileResponse struct {
	Name    string `json:"name"`
	BatchID string `json:"batch_id,omitempty"`
	Created int    `json:"created"`
	Updated int    `json:"updated"`
	Errors  int    `json:"errors"`
	Notices int    `json:"notices"`
	Error   string `json:"error,omitempty"`
}

// ImportResponse is the result of an upload.
type ImportResponse struct {
	Success bool           `json:"success"`
	Files   []FileResponse `json:"files"`
}

// Import handles POST /import with one or more uploaded documents.
func (h *XLIFFHandler) Import(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxUpload {
		WriteError(w, http.StatusRequestEntityTooLarge, "too_large",
			fmt.Sprintf("Upload exceeds %d bytes", h.maxUpload), nil)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, "too_large",
				fmt.Sprintf("Upload exceeds %d bytes", h.maxUpload), nil)
			return
		}
		WriteBadRequest(w, "Invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File[importField]
	files := make([]service.ImportFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			logAndInternalError(w, "failed to open upload", "file", fh.Filename, "error", err)
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			logAndInternalError(w, "failed to read upload", "file", fh.Filename, "error", err)
			return
		}
		files = append(files, service.ImportFile{Name: fh.Filename, Data: data})
	}

	lang := middleware.GetLanguage(r)
	report, err := h.svc.Import(r.Context(), lang, files...)
	if err != nil {
		status, code := exportErrorStatus(err)
		WriteError(w, status, code, err.Error(), report.Outcomes)
		return
	}
	if len(files) == 0 {
		WriteError(w, http.StatusBadRequest, "no_file", "No file uploaded", report.Outcomes)
		return
	}

	resp := ImportResponse{Success: report.Success()}
	for _, f := range report.Files {
		fr := FileResponse{Name: f.Name}
		if f.Err != nil {
			fr.Error = f.Err.Error()
		} else {
			fr.BatchID = f.Result.BatchID
			fr.Created = f.Result.CreatedCount()
			fr.Updated = f.Result.UpdatedCount()
			fr.Errors = len(f.Result.Errors)
			fr.Notices = len(f.Result.Notices)
		}
		resp.Files = append(resp.Files, fr)
	}
	WriteSuccess(w, resp, report.Outcomes)
}
