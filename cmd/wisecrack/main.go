// Command wisecrack is the wisecrack language's CLI: run scripts, drive
// an interactive REPL, check syntax without executing, reformat
// source, and run `test_`-prefixed test functions.
//
// Grounded on GlyphLang's cmd/glyph/main.go cobra.Command tree and its
// fatih/color print helpers; wisecrack has no compiler/bytecode, HTTP
// dev-server, LSP, or database layer, so compile/decompile/dev/init/
// lsp/exec/context/validate/expand/compact have no equivalent here and
// are not ported (ambient-stack Non-goals, SPEC_FULL.md).
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var (
	infoColor    = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
)

func printInfo(msg string)    { infoColor.Printf("[INFO] %s\n", msg) }
func printSuccess(msg string) { successColor.Printf("[SUCCESS] %s\n", msg) }
func printWarning(msg string) { warningColor.Printf("[WARNING] %s\n", msg) }
func printError(err error)    { errorColor.Printf("[ERROR] %s\n", err.Error()) }

func main() {
	var rootCmd = &cobra.Command{
		Use:     "wisecrack",
		Short:   "wisecrack language interpreter",
		Long:    `wisecrack is a tree-walking interpreter for the wisecrack language: tri-valued logic, value history, reactive when-blocks, and priority-overloaded declarations.`,
		Version: version,
	}
	rootCmd.SetVersionTemplate("wisecrack v{{.Version}}\n")
	rootCmd.PersistentFlags().String("config", "wisecrack.yaml", "path to config file")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newReplCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newFmtCmd())
	rootCmd.AddCommand(newTestCmd())

	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func configPath(cmd *cobra.Command) string {
	p, _ := cmd.Flags().GetString("config")
	return p
}

func fail(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
