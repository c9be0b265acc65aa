// ============================================================================
// SmartScript - Templating engine and script server
// ============================================================================
//
// Package:     cmd
// Description: serve command: HTTP server for a script directory
// Author:      frle10
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	sslog "github.com/frle10/smartscript/foundation/core/log"
	"github.com/frle10/smartscript/foundation/smartscript"
	"github.com/frle10/smartscript/internal/scripts"
	"github.com/frle10/smartscript/internal/server"
	"github.com/frle10/smartscript/internal/store"
	"github.com/frle10/smartscript/pkg/core/cache"
	"github.com/frle10/smartscript/pkg/core/config"
	"github.com/frle10/smartscript/pkg/core/logging"
	"github.com/frle10/smartscript/pkg/core/version"
)

var (
	serveHost      string
	servePort      int
	serveScriptDir string
	serveWatch     bool
	serveStore     string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a directory of scripts over HTTP",
	Long: `Start the script server. Every request path names a script below the
script directory; "/" serves the index script.

Query and form values become request parameters. Persistent parameters
survive across requests and, with the sqlite store, across restarts.

Routes:
  /_health   health report (JSON)
  /_stats    expvar counters (JSON)

Flags override the values from the config file.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port")
	serveCmd.Flags().StringVar(&serveScriptDir, "scripts", "", "script directory")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "invalidate cached documents when files change")
	serveCmd.Flags().StringVar(&serveStore, "store", "", "persistent parameter store (memory, sqlite)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return err
	}
	applyServeFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closeLog, err := serverLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := smartscript.NewEngine(smartscript.Options{
		Logger:            logger,
		MaxDocumentLength: cfg.Engine.MaxDocumentLength,
	})
	if err != nil {
		return err
	}

	docs := cache.New(cache.Config{
		MaxItems:        cfg.Cache.MaxItems,
		TTL:             cfg.Cache.TTL.Duration,
		CleanupInterval: cfg.Cache.CleanupInterval.Duration,
	})
	defer docs.Close()

	loader := scripts.NewLoader(scripts.Config{
		Dir:         cfg.Server.ScriptDir,
		Extension:   cfg.Server.Extension,
		IndexScript: cfg.Server.IndexScript,
	}, engine, docs, logger)
	defer loader.Stop()

	if cfg.Cache.Watch {
		if err := loader.StartWatching(ctx); err != nil {
			logger.WarnWithErr("File watching disabled", err)
		}
	}

	backend, err := store.NewBackend(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return err
	}
	params, err := store.Open(ctx, backend)
	if err != nil {
		_ = backend.Close()
		return err
	}
	defer params.Close()

	srv := server.New(cfg.Server, engine, loader, params, logger)
	if interval := cfg.Server.StatsInterval.Duration; interval > 0 {
		reporter, err := srv.StartStatsReporter(interval)
		if err != nil {
			return err
		}
		defer reporter.Stop()
	}

	logger.Info("Starting SmartScript server", sslog.Fields{
		"version":     version.String(),
		"address":     cfg.Address(),
		"scriptDir":   cfg.Server.ScriptDir,
		"store":       cfg.Store.Driver,
		"watch":       cfg.Cache.Watch,
		"environment": cfg.General.Environment,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(cfg.Address())
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down SmartScript server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("SmartScript server stopped")
	return nil
}

// applyServeFlags copies explicitly set flags over the config values
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Server.Host = serveHost
	}
	if flags.Changed("port") {
		cfg.Server.Port = servePort
	}
	if flags.Changed("scripts") {
		cfg.Server.ScriptDir = serveScriptDir
	}
	if flags.Changed("watch") {
		cfg.Cache.Watch = serveWatch
	}
	if flags.Changed("store") {
		cfg.Store.Driver = serveStore
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
}

// serverLogger builds the server logger, teeing into the configured log
// file when there is one
func serverLogger(cfg *config.Config) (*sslog.Logger, func(), error) {
	lc := logging.LoggerConfig{
		Name:   cfg.General.Name,
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}

	var closer io.Closer
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		lc.AdditionalOutputs = []io.Writer{f}
		closer = f
	}

	return logging.NewLogger(lc), func() {
		if closer != nil {
			_ = closer.Close()
		}
	}, nil
}
