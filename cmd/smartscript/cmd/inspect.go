// ============================================================================
// SmartScript - Templating engine and script server
// ============================================================================
//
// Package:     cmd
// Description: tokens, tree, fmt and check commands
// Author:      frle10
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/frle10/smartscript/foundation/smartscript/ast"
	"github.com/frle10/smartscript/foundation/smartscript/parser"
	"github.com/frle10/smartscript/internal/tui"
)

var (
	treePlain  bool
	treeStats  bool
	fmtCheck   bool
	fmtInPlace bool
)

var tokensCmd = &cobra.Command{
	Use:   "tokens [file]",
	Short: "Print the token stream of a document",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTokens,
}

var treeCmd = &cobra.Command{
	Use:   "tree [file]",
	Short: "Print the document tree",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTree,
}

var fmtCmd = &cobra.Command{
	Use:   "fmt [file]",
	Short: "Print the canonical source of a document",
	Long: `Parse a document and print it back in canonical form. Reparsing the
output yields an equal tree.

With --check the command only reports whether the file is already
canonical and exits non-zero when it is not.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFmt,
}

var checkCmd = &cobra.Command{
	Use:   "check <file>...",
	Short: "Validate documents without executing them",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

// errNotCanonical is returned by fmt --check
var errNotCanonical = errors.New("document is not in canonical form")

func init() {
	rootCmd.AddCommand(tokensCmd, treeCmd, fmtCmd, checkCmd)

	treeCmd.Flags().BoolVar(&treePlain, "plain", false, "disable colours")
	treeCmd.Flags().BoolVar(&treeStats, "stats", false, "print node counts after the tree")
	fmtCmd.Flags().BoolVar(&fmtCheck, "check", false, "fail when the input is not canonical")
	fmtCmd.Flags().BoolVarP(&fmtInPlace, "write", "w", false, "write the result back to the file")
}

func runTokens(cmd *cobra.Command, args []string) error {
	src, err := readSource(cmd, args)
	if err != nil {
		return err
	}

	tokens, err := parser.Tokenize(src)
	out := cmd.OutOrStdout()
	for _, tok := range tokens {
		fmt.Fprintf(out, "%-8s %s\n", tok.Pos, tok)
	}
	return err
}

func runTree(cmd *cobra.Command, args []string) error {
	src, err := readSource(cmd, args)
	if err != nil {
		return err
	}
	engine, err := newEngine()
	if err != nil {
		return err
	}
	doc, err := engine.Parse(src)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	dump := ast.Dump(doc)
	if treePlain || color.NoColor {
		fmt.Fprint(out, dump)
	} else {
		fmt.Fprintln(out, tui.RenderTree(dump))
	}

	if treeStats {
		s := ast.Collect(doc)
		fmt.Fprintf(out, "\ntext=%d for=%d echo=%d elements=%d depth=%d\n",
			s.Text, s.ForLoops, s.Echoes, s.Elements, s.MaxDepth)
	}
	return nil
}

func runFmt(cmd *cobra.Command, args []string) error {
	if fmtInPlace && (len(args) == 0 || args[0] == "-") {
		return errors.New("--write needs a file argument")
	}

	src, err := readSource(cmd, args)
	if err != nil {
		return err
	}
	engine, err := newEngine()
	if err != nil {
		return err
	}
	doc, err := engine.Parse(src)
	if err != nil {
		return err
	}

	formatted := ast.Source(doc)
	reparsed, err := engine.Parse(formatted)
	if err != nil {
		return fmt.Errorf("formatted output does not parse: %w", err)
	}
	if !ast.Equal(doc, reparsed) {
		return errors.New("formatting changed the document structure")
	}

	switch {
	case fmtCheck:
		if formatted != src {
			return errNotCanonical
		}
		return nil
	case fmtInPlace:
		info, err := os.Stat(args[0])
		if err != nil {
			return err
		}
		return os.WriteFile(args[0], []byte(formatted), info.Mode().Perm())
	default:
		fmt.Fprint(cmd.OutOrStdout(), formatted)
		return nil
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	out := cmd.OutOrStdout()

	failed := 0
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err == nil {
			err = engine.Validate(string(data))
		}
		if err != nil {
			failed++
			fmt.Fprintf(out, "%s %s: %v\n", red("FAIL"), path, err)
			continue
		}
		fmt.Fprintf(out, "%s   %s\n", green("ok"), path)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(args))
	}
	return nil
}
