// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/olegiv/ocms-xliff/internal/store"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default sites and demo pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := store.Seed(cmd.Context(), a.db, store.DefaultSeedSites); err != nil {
				return err
			}
			for _, s := range store.DefaultSeedSites {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "site %d: %s (%s, %s)\n", s.ID, s.Name, s.URL, s.Language)
			}
			return nil
		},
	}
}
