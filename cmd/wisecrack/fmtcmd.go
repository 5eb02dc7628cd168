package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wisecracklang/wisecrack/internal/diagnostics"
	"github.com/wisecracklang/wisecrack/internal/format"
	"github.com/wisecracklang/wisecrack/internal/lexer"
	"github.com/wisecracklang/wisecrack/internal/parser"
)

func newFmtCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fmt <file>",
		Short: "Reformat a wisecrack source file to canonical style",
		Args:  cobra.ExactArgs(1),
		RunE:  runFmt,
	}
	cmd.Flags().BoolP("write", "w", false, "overwrite the file in place instead of printing to stdout")
	return cmd
}

func runFmt(cmd *cobra.Command, args []string) error {
	path := args[0]
	write, _ := cmd.Flags().GetBool("write")

	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("fmt: %w", err)
	}

	toks, err := lexer.New(string(source)).Tokenize()
	if err != nil {
		return fmt.Errorf("%s", diagnostics.FormatError(err, string(source)))
	}
	prog, err := parser.New(toks).Parse()
	if err != nil {
		return fmt.Errorf("%s", diagnostics.FormatError(err, string(source)))
	}

	out := format.Format(prog)
	if !write {
		fmt.Print(out)
		return nil
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("fmt: %w", err)
	}
	printSuccess(fmt.Sprintf("formatted %s", path))
	return nil
}
