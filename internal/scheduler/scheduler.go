// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the exports of scheduled presets and writes the
// resulting XLIFF files to the export directory.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"github.com/olegiv/ocms-xliff/internal/model"
	"github.com/olegiv/ocms-xliff/internal/service"
	"github.com/olegiv/ocms-xliff/internal/util"
)

// ErrTriggerLimited is returned when a preset is triggered again too soon.
var ErrTriggerLimited = errors.New("rate limit exceeded, try again in a few seconds")

// triggerInterval is the minimum time between manual runs of one preset.
const triggerInterval = 10 * time.Second

// PresetSource lists presets.
type PresetSource interface {
	Presets(ctx context.Context, scheduledOnly bool) ([]model.Preset, error)
}

// PresetExporter exports the page tree of a preset.
type PresetExporter interface {
	ExportPreset(ctx context.Context, lang string, presetID int64) (*service.ExportReport, error)
}

// JobInfo is the public view of a scheduled preset.
type JobInfo struct {
	PresetID int64
	Name     string
	Schedule string
	LastRun  time.Time
	NextRun  time.Time
	LastFile string
}

type job struct {
	preset   model.Preset
	entryID  cron.EntryID
	lastFile string
}

// Scheduler exports scheduled presets on their cron schedule.
type Scheduler struct {
	presets   PresetSource
	exporter  PresetExporter
	exportDir string
	lang      string
	cron      *cron.Cron
	logger    *slog.Logger

	mu       sync.Mutex
	jobs     map[int64]*job
	limiters map[int64]*rate.Limiter
}

// New creates a new scheduler instance. lang selects the language of the
// logged outcome messages.
func New(presets PresetSource, exporter PresetExporter, exportDir, lang string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		presets:   presets,
		exporter:  exporter,
		exportDir: exportDir,
		lang:      lang,
		cron:      cron.New(),
		logger:    logger,
		jobs:      make(map[int64]*job),
		limiters:  make(map[int64]*rate.Limiter),
	}
}

// ValidateSchedule checks a standard five-field cron expression.
func ValidateSchedule(spec string) error {
	if spec == "" {
		return errors.New("schedule is required")
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// Start schedules every scheduled preset and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.Reload(ctx); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("scheduler started", "category", model.EventCategoryScheduler, "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler and waits for running exports.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// Reload replaces all jobs with the currently scheduled presets. Presets
// with an invalid schedule are logged and skipped.
func (s *Scheduler) Reload(ctx context.Context) error {
	presets, err := s.presets.Presets(ctx, true)
	if err != nil {
		return fmt.Errorf("loading scheduled presets: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, j := range s.jobs {
		s.cron.Remove(j.entryID)
		delete(s.jobs, id)
	}

	for _, p := range presets {
		presetID := p.ID
		entryID, err := s.cron.AddFunc(p.Schedule, func() {
			if _, err := s.RunPreset(context.Background(), presetID); err != nil {
				s.logger.Error("scheduled preset export failed", "category", model.EventCategoryScheduler,
					"preset", presetID, "error", err)
			}
		})
		if err != nil {
			s.logger.Error("preset not scheduled", "category", model.EventCategoryScheduler,
				"preset", p.ID, "schedule", p.Schedule, "error", err)
			continue
		}
		s.jobs[p.ID] = &job{preset: p, entryID: entryID}
	}
	return nil
}

// Jobs returns the scheduled presets ordered by preset ID.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		entry := s.cron.Entry(j.entryID)
		infos = append(infos, JobInfo{
			PresetID: j.preset.ID,
			Name:     j.preset.Name,
			Schedule: j.preset.Schedule,
			LastRun:  entry.Prev,
			NextRun:  entry.Next,
			LastFile: j.lastFile,
		})
	}
	sort.Slice(infos, func(a, b int) bool {
		return infos[a].PresetID < infos[b].PresetID
	})
	return infos
}

// Trigger runs a preset export immediately, at most once per preset every
// few seconds.
func (s *Scheduler) Trigger(ctx context.Context, presetID int64) (string, error) {
	s.mu.Lock()
	limiter := s.limiters[presetID]
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Every(triggerInterval), 1)
		s.limiters[presetID] = limiter
	}
	s.mu.Unlock()

	if !limiter.Allow() {
		return "", ErrTriggerLimited
	}
	return s.RunPreset(ctx, presetID)
}

// RunPreset exports a preset and writes the file to the export directory.
// It returns the written path, or "" when the export produced no file.
func (s *Scheduler) RunPreset(ctx context.Context, presetID int64) (string, error) {
	report, err := s.exporter.ExportPreset(ctx, s.lang, presetID)
	if err != nil {
		return "", err
	}
	for _, o := range report.Outcomes {
		if o.Level != service.LevelSuccess {
			s.logger.Info("preset export notice", "preset", presetID, "level", o.Level, "message", o.HTML)
		}
	}

	name, data, ok := report.File()
	if !ok {
		s.logger.Warn("scheduled preset produced no file", "category", model.EventCategoryScheduler,
			"preset", presetID)
		return "", nil
	}

	path, err := writeFile(s.exportDir, name, data)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	if j, ok := s.jobs[presetID]; ok {
		j.lastFile = path
	}
	s.mu.Unlock()

	s.logger.Info("preset exported", "category", model.EventCategoryScheduler,
		"preset", presetID, "file", path, "items", len(report.Result.Exported))
	return path, nil
}

// writeFile writes data to dir/name through a temporary file so readers
// never see a partial document.
func writeFile(dir, name string, data []byte) (string, error) {
	path, err := util.SafeJoinPath(dir, name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".export-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("writing export file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("writing export file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("moving export file: %w", err)
	}
	return path, nil
}
