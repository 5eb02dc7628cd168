package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wisecracklang/wisecrack/internal/diagnostics"
	"github.com/wisecracklang/wisecrack/internal/lexer"
	"github.com/wisecracklang/wisecrack/internal/parser"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Check a wisecrack source file for syntax errors without running it",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}

	toks, err := lexer.New(string(source)).Tokenize()
	if err != nil {
		return fmt.Errorf("%s", diagnostics.FormatError(err, string(source)))
	}
	if _, err := parser.New(toks).Parse(); err != nil {
		return fmt.Errorf("%s", diagnostics.FormatError(err, string(source)))
	}

	printSuccess(fmt.Sprintf("%s is syntactically valid", path))
	return nil
}
