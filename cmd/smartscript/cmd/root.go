// ============================================================================
// SmartScript - Templating engine and script server
// ============================================================================
//
// Package:     cmd
// Description: Root command and shared helpers of the smartscript CLI
// Author:      frle10
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/frle10/smartscript/foundation/smartscript"
	"github.com/frle10/smartscript/pkg/core/config"
	"github.com/frle10/smartscript/pkg/core/logging"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "smartscript",
	Short: "SmartScript templating engine",
	Long: `smartscript parses and executes SmartScript documents.

Templates are plain text with {$ ... $} tags: FOR loops over numeric
ranges and echo tags that evaluate a postfix expression.

Examples:
  smartscript run page.smscr --param name=World
  smartscript tree page.smscr
  smartscript serve --config configs/smartscript.toml
  smartscript preview page.smscr`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError("", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $SMARTSCRIPT_CONFIG or ./configs/smartscript.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// printError prints an error message to stderr
func printError(msg string, err error) {
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	if msg == "" {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("error:"), err)
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s: %v\n", red("error:"), msg, err)
}

// newEngine builds the engine used by the one-shot commands. The document
// length limit comes from the config file when one is found.
func newEngine() (*smartscript.Engine, error) {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}
	return smartscript.NewEngine(smartscript.Options{
		Logger:            logging.NewCLILogger("smartscript", verbose),
		MaxDocumentLength: cfg.Engine.MaxDocumentLength,
	})
}

// readSource reads the named file, or stdin for "" and "-"
func readSource(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	return string(data), nil
}
