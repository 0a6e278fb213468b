// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/olegiv/ocms-xliff/internal/handler"
	"github.com/olegiv/ocms-xliff/internal/scheduler"
	"github.com/olegiv/ocms-xliff/internal/service"
	"github.com/olegiv/ocms-xliff/internal/version"
)

func newServeCmd() *cobra.Command {
	var noScheduler bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the preset scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()
			return serve(cmd.Context(), a, !noScheduler)
		},
	}
	cmd.Flags().BoolVar(&noScheduler, "no-scheduler", false, "do not run scheduled preset exports")
	return cmd
}

func serve(ctx context.Context, a *app, withScheduler bool) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var runner handler.PresetRunner
	var sched *scheduler.Scheduler
	if withScheduler {
		sched = scheduler.New(a.repo, a.svc, a.cfg.ExportDir, a.lang, a.logger)
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("starting scheduler: %w", err)
		}
		defer sched.Stop()
		runner = sched
	}

	router := handler.NewRouter(
		handler.NewXLIFFHandler(a.svc, handler.XLIFFOptions{
			SourceSite:      a.cfg.SourceSiteID,
			MaxUploadBytes:  a.cfg.MaxUploadBytes(),
			SubjectTemplate: a.cfg.SubjectTemplate,
		}, a.logger),
		handler.NewPresetsHandler(a.repo, runner, a.cfg.SourceSiteID, a.logger),
		handler.NewEventsHandler(service.NewEventService(a.db)),
		handler.NewHealthHandler(a.db, a.cache),
		handler.RouterOptions{
			Language:    a.cfg.Language,
			ImportRate:  a.cfg.ImportRateLimit,
			ImportBurst: a.cfg.ImportBurst,
		},
	)

	srv := &http.Server{
		Addr:              a.cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      3 * time.Minute,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting server", "addr", a.cfg.ServerAddr(), "env", a.cfg.Env, "version", version.Get().Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	a.logger.Info("server stopped")
	return nil
}
