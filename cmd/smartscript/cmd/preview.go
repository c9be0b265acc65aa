// ============================================================================
// SmartScript - Templating engine and script server
// ============================================================================
//
// Package:     cmd
// Description: preview command: live editing TUI
// Author:      frle10
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	sslog "github.com/frle10/smartscript/foundation/core/log"
	"github.com/frle10/smartscript/foundation/smartscript"
	"github.com/frle10/smartscript/internal/tui/preview"
	"github.com/frle10/smartscript/pkg/core/config"
)

var (
	previewParams     []string
	previewParamsFile string
)

var previewCmd = &cobra.Command{
	Use:   "preview [file]",
	Short: "Edit a document with a live preview",
	Long: `Open an editor next to the rendered output of the document. The output
is refreshed shortly after each edit.

A missing file starts with an empty document and is created on save.

Keys:
  Tab         Cycle output / tree / canonical source
  Ctrl+S      Save to the file
  Ctrl+R      Render now
  PgUp/PgDn   Scroll the right pane
  Esc/Ctrl+C  Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringArrayVarP(&previewParams, "param", "p", nil, "request parameter as name=value (repeatable)")
	previewCmd.Flags().StringVar(&previewParamsFile, "params-file", "", "YAML file with request parameters")
}

func runPreview(cmd *cobra.Command, args []string) error {
	var path, source string
	if len(args) > 0 {
		path = args[0]
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		source = string(data)
	}

	params := map[string]string{}
	if previewParamsFile != "" {
		var err error
		if params, err = loadParamsFile(previewParamsFile); err != nil {
			return err
		}
	}
	if err := parseAssignments(previewParams, params); err != nil {
		return err
	}

	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return err
	}
	// Log lines would corrupt the alternate screen
	engine, err := smartscript.NewEngine(smartscript.Options{
		Logger:            sslog.NewNop(),
		MaxDocumentLength: cfg.Engine.MaxDocumentLength,
	})
	if err != nil {
		return err
	}

	return preview.Run(preview.Options{
		Engine: engine,
		Path:   path,
		Source: source,
		Params: params,
	})
}
