// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/olegiv/ocms-xliff/internal/service"
)

// errImportFailed is returned when at least one file had errors; the
// details were already printed as outcomes.
var errImportFailed = errors.New("import finished with errors")

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE...",
		Short: "Import translated XLIFF files into the target sites",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()

			files := make([]service.ImportFile, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path) // #nosec G304 -- paths come from the operator
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}
				files = append(files, service.ImportFile{Name: filepath.Base(path), Data: data})
			}

			report, err := a.svc.Import(cmd.Context(), a.lang, files...)
			if report != nil {
				printOutcomes(cmd, report.Outcomes)
			}
			if err != nil {
				return err
			}
			if !report.Success() {
				return errImportFailed
			}
			return nil
		},
	}
}
