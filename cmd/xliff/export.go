// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/olegiv/ocms-xliff/internal/service"
	"github.com/olegiv/ocms-xliff/internal/util"
)

type exportFlags struct {
	site   int64
	ids    []int64
	roots  []int64
	name   string
	preset int64
	out    string
}

func newExportCmd() *cobra.Command {
	var f exportFlags

	cmd := &cobra.Command{
		Use:   "export [id]",
		Short: "Export content items to an XLIFF file",
		Long: `Export one item by id, several items with --ids, whole page trees with
--tree or a stored preset with --preset. The file is written to --out or,
when --out is empty, to the export directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()
			return runExport(cmd, a, f, args)
		},
	}

	cmd.Flags().Int64Var(&f.site, "site", 0, "source site (default XLIFF_SOURCE_SITE)")
	cmd.Flags().Int64SliceVar(&f.ids, "ids", nil, "comma-separated item ids for a bulk export")
	cmd.Flags().Int64SliceVar(&f.roots, "tree", nil, "comma-separated root ids; descendants are exported too")
	cmd.Flags().StringVar(&f.name, "name", "", "collection name used for the file name of tree exports")
	cmd.Flags().Int64Var(&f.preset, "preset", 0, "export a stored preset")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "output file")
	cmd.MarkFlagsMutuallyExclusive("ids", "tree", "preset")

	return cmd
}

func runExport(cmd *cobra.Command, a *app, f exportFlags, args []string) error {
	ctx := cmd.Context()
	site := f.site
	if site == 0 {
		site = a.cfg.SourceSiteID
	}

	var (
		report *service.ExportReport
		err    error
	)
	switch {
	case f.preset > 0:
		report, err = a.svc.ExportPreset(ctx, a.lang, f.preset)
	case len(f.roots) > 0:
		report, err = a.svc.ExportTree(ctx, a.lang, site, f.roots, f.name)
	case len(f.ids) > 0:
		report, err = a.svc.ExportBulk(ctx, a.lang, site, f.ids)
	case len(args) == 1:
		id, perr := strconv.ParseInt(args[0], 10, 64)
		if perr != nil || id <= 0 {
			return fmt.Errorf("invalid id %q", args[0])
		}
		report, err = a.svc.ExportSingle(ctx, a.lang, site, id)
	default:
		return errors.New("nothing to export: pass an id, --ids, --tree or --preset")
	}
	if report != nil {
		printOutcomes(cmd, report.Outcomes)
	}
	if err != nil {
		return err
	}

	filename, data, ok := report.File()
	if !ok {
		return errors.New("export produced no file")
	}

	path := f.out
	if path == "" {
		if err := os.MkdirAll(a.cfg.ExportDir, 0o750); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
		path, err = util.SafeJoinPath(a.cfg.ExportDir, filename)
		if err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "wrote %s (%d bytes)\n", path, len(data))
	if a.cfg.SubjectTemplate != "" {
		_, _ = fmt.Fprintf(out, "subject: %s\n", service.ExportSubject(a.cfg.SubjectTemplate, report.Result))
	}
	return nil
}
