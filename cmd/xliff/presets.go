// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/olegiv/ocms-xliff/internal/model"
	"github.com/olegiv/ocms-xliff/internal/scheduler"
	"github.com/olegiv/ocms-xliff/internal/store"
)

func newPresetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "Manage stored tree export presets",
	}
	cmd.AddCommand(newPresetsListCmd(), newPresetsCreateCmd(), newPresetsDeleteCmd(), newPresetsRunCmd())
	return cmd
}

func newPresetsListCmd() *cobra.Command {
	var scheduled bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()

			presets, err := a.repo.Presets(cmd.Context(), scheduled)
			if err != nil {
				return err
			}
			writePresets(cmd.OutOrStdout(), presets)
			return nil
		},
	}
	cmd.Flags().BoolVar(&scheduled, "scheduled", false, "only presets with a schedule")
	return cmd
}

func newPresetsCreateCmd() *cobra.Command {
	var (
		site     int64
		roots    []int64
		schedule string
	)
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Store a tree export preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return errors.New("name is required")
			}
			if len(roots) == 0 {
				return errors.New("--roots is required")
			}
			if schedule != "" {
				if err := scheduler.ValidateSchedule(schedule); err != nil {
					return err
				}
			}

			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()

			if site == 0 {
				site = a.cfg.SourceSiteID
			}
			p, err := a.repo.CreatePreset(cmd.Context(), model.Preset{
				SiteID:   site,
				Name:     name,
				RootIDs:  roots,
				Schedule: schedule,
			})
			if err != nil {
				return err
			}
			writePresets(cmd.OutOrStdout(), []model.Preset{*p})
			return nil
		},
	}
	cmd.Flags().Int64Var(&site, "site", 0, "source site (default XLIFF_SOURCE_SITE)")
	cmd.Flags().Int64SliceVar(&roots, "roots", nil, "comma-separated root item ids")
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron schedule, e.g. \"0 6 * * 1\"")
	return cmd
}

func newPresetsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePresetID(args[0])
			if err != nil {
				return err
			}
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.repo.DeletePreset(cmd.Context(), id); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("preset %d not found", id)
				}
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted preset %d\n", id)
			return nil
		},
	}
}

func newPresetsRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run ID",
		Short: "Export a preset into the export directory now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePresetID(args[0])
			if err != nil {
				return err
			}
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()

			sched := scheduler.New(a.repo, a.svc, a.cfg.ExportDir, a.lang, a.logger)
			path, err := sched.RunPreset(cmd.Context(), id)
			if err != nil {
				return err
			}
			if path == "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "preset %d exported nothing\n", id)
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
}

func parsePresetID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid preset id %q", s)
	}
	return id, nil
}

func writePresets(w io.Writer, presets []model.Preset) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Site", "Name", "Roots", "Schedule"})
	for _, p := range presets {
		roots := make([]string, len(p.RootIDs))
		for i, id := range p.RootIDs {
			roots[i] = strconv.FormatInt(id, 10)
		}
		schedule := p.Schedule
		if schedule == "" {
			schedule = "-"
		}
		t.AppendRow(table.Row{p.ID, p.SiteID, p.Name, strings.Join(roots, ","), schedule})
	}
	t.Render()
}
