// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"fmt"
	"html"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/microcosm-cc/bluemonday"
	"github.com/spf13/cobra"

	"github.com/olegiv/ocms-xliff/internal/cache"
	"github.com/olegiv/ocms-xliff/internal/config"
	"github.com/olegiv/ocms-xliff/internal/i18n"
	"github.com/olegiv/ocms-xliff/internal/logging"
	"github.com/olegiv/ocms-xliff/internal/service"
	"github.com/olegiv/ocms-xliff/internal/store"
	"github.com/olegiv/ocms-xliff/internal/transfer"
	"github.com/olegiv/ocms-xliff/internal/version"
)

var (
	// envFile is an optional dotenv file loaded before the environment.
	envFile string

	// debug forces the debug log level.
	debug bool

	// language overrides XLIFF_LANGUAGE for outcome messages.
	language string

	rootCmd = &cobra.Command{
		Use:           "xliff",
		Short:         "Export and import CMS content as XLIFF 2.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env when present)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&language, "lang", "", "language of outcome messages (default XLIFF_LANGUAGE)")

	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSeedCmd())
	rootCmd.AddCommand(newPresetsCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "xliff %s\n", version.Get())
		},
	})
}

// app holds what every command needs once configuration is loaded.
type app struct {
	cfg    *config.Config
	db     *sql.DB
	cache  cache.Cache
	logger *slog.Logger
	repo   *store.Repository
	svc    *service.XLIFFService
	lang   string
}

// setup loads configuration, opens and migrates the database and builds
// the XLIFF service.
func setup() (*app, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	} else {
		// A missing .env is fine; the environment may carry everything.
		_ = godotenv.Load()
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := logging.ParseLevel(cfg.LogLevel)
	if debug {
		level = slog.LevelDebug
	}
	textHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(textHandler))

	if err := i18n.Init(slog.Default()); err != nil {
		return nil, fmt.Errorf("initializing i18n: %w", err)
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	// Warnings and errors also land in the event log from here on.
	logger := slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)

	if cfg.DoSeed {
		if err := store.Seed(context.Background(), db, store.DefaultSeedSites); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("seeding database: %w", err)
		}
	}

	var c cache.Cache
	if cfg.CacheType != "none" {
		c, err = cache.New(cache.Config{
			Type:            cfg.CacheType,
			RedisURL:        cfg.RedisURL,
			Prefix:          cfg.CachePrefix,
			DefaultTTL:      cfg.CacheTTLDuration(),
			MaxSize:         cfg.CacheMaxSize,
			CleanupInterval: cache.DefaultConfig().CleanupInterval,
		})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("creating cache: %w", err)
		}
		logger.Debug("cache ready", "type", cfg.CacheType, "redis", cache.SanitizeRedisURL(cfg.RedisURL))
	}

	opts := transfer.DefaultExportOptions()
	opts.MetaAllowPrefixes = cfg.MetaAllowPrefixes
	opts.ExcludeMetaKey = cfg.ExcludeMetaKey

	lang := cfg.Language
	if language != "" {
		lang = language
	}

	return &app{
		cfg:    cfg,
		db:     db,
		cache:  c,
		logger: logger,
		repo:   store.NewRepository(db),
		svc:    service.NewStoreService(db, c, cfg.CacheTTLDuration(), logger, opts),
		lang:   lang,
	}, nil
}

// Close releases the cache and the database.
func (a *app) Close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("closing cache", "error", err)
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("closing database", "error", err)
	}
}

// printOutcomes writes outcome messages, one per line, prefixed by level.
func printOutcomes(cmd *cobra.Command, outcomes []service.Outcome) {
	for _, o := range outcomes {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", o.Level, stripTags(o.HTML))
	}
}

var textPolicy = bluemonday.StrictPolicy()

// stripTags renders outcome HTML as plain text.
func stripTags(s string) string {
	return html.UnescapeString(textPolicy.Sanitize(s))
}
