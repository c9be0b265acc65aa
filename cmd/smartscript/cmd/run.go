// ============================================================================
// SmartScript - Templating engine and script server
// ============================================================================
//
// Package:     cmd
// Description: run command: executes a document against stdout
// Author:      frle10
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/frle10/smartscript/foundation/smartscript/request"
)

var (
	runParams         []string
	runPersistent     []string
	runParamsFile     string
	runRawHTTP        bool
	runShowPersistent bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Execute a document and write its output to stdout",
	Long: `Execute a SmartScript document. Without a file argument (or with "-")
the document is read from stdin.

Request parameters come from --param and from a YAML file holding a flat
name: value mapping. Values given with --param win over the file.

Examples:
  smartscript run hello.smscr --param name=World
  smartscript run page.smscr --params-file params.yaml --raw-http
  echo '{$= "a" "b" @paramGet $}' | smartscript run --param a=1`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringArrayVarP(&runParams, "param", "p", nil, "request parameter as name=value (repeatable)")
	runCmd.Flags().StringArrayVar(&runPersistent, "persistent", nil, "initial persistent parameter as name=value (repeatable)")
	runCmd.Flags().StringVar(&runParamsFile, "params-file", "", "YAML file with request parameters")
	runCmd.Flags().BoolVar(&runRawHTTP, "raw-http", false, "write an HTTP header block before the output")
	runCmd.Flags().BoolVar(&runShowPersistent, "show-persistent", false, "print persistent parameters to stderr after execution")
}

func runRun(cmd *cobra.Command, args []string) error {
	src, err := readSource(cmd, args)
	if err != nil {
		return err
	}

	params := map[string]string{}
	if runParamsFile != "" {
		params, err = loadParamsFile(runParamsFile)
		if err != nil {
			return err
		}
	}
	if err := parseAssignments(runParams, params); err != nil {
		return err
	}
	persistent := map[string]string{}
	if err := parseAssignments(runPersistent, persistent); err != nil {
		return err
	}

	engine, err := newEngine()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var opts []request.Option
	if runRawHTTP {
		opts = append(opts, request.WithCommitter(request.RawHTTPCommitter(out)))
	}
	rc := request.New(out, params, persistent, opts...)

	if err := engine.Render(context.Background(), src, rc, rc); err != nil {
		return err
	}
	if err := rc.Flush(); err != nil {
		return err
	}

	if runShowPersistent {
		printParams(cmd, persistent)
	}
	return nil
}

// parseAssignments adds name=value pairs to dst
func parseAssignments(pairs []string, dst map[string]string) error {
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return fmt.Errorf("invalid parameter %q, expected name=value", pair)
		}
		dst[name] = value
	}
	return nil
}

// loadParamsFile reads a flat YAML mapping. Scalars of any type are kept
// as written.
func loadParamsFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read params file: %w", err)
	}

	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse params file: %w", err)
	}

	params := make(map[string]string, len(raw))
	for name, node := range raw {
		if node.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("params file: %q must be a scalar (line %d)", name, node.Line)
		}
		params[name] = node.Value
	}
	return params, nil
}

func printParams(cmd *cobra.Command, params map[string]string) {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	w := cmd.ErrOrStderr()
	for _, name := range names {
		fmt.Fprintf(w, "%s=%s\n", name, params[name])
	}
}
