// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/olegiv/ocms-xliff/internal/model"
	"github.com/olegiv/ocms-xliff/internal/service"
)

func newEventsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show recent export, import and scheduler events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()

			events, err := service.NewEventService(a.db).Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			writeEvents(cmd.OutOrStdout(), events)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "number of events to show")
	return cmd
}

func writeEvents(w io.Writer, events []model.Event) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Time", "Level", "Category", "Message", "Metadata"})
	for _, e := range events {
		t.AppendRow(table.Row{
			e.CreatedAt.Local().Format(time.DateTime),
			e.Level,
			e.Category,
			e.Message,
			e.Metadata,
		})
	}
	t.Render()
}
