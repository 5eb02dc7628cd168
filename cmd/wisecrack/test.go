package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wisecracklang/wisecrack/internal/config"
	"github.com/wisecracklang/wisecrack/internal/diagnostics"
	"github.com/wisecracklang/wisecrack/internal/eval"
	"github.com/wisecracklang/wisecrack/internal/host"
	"github.com/wisecracklang/wisecrack/internal/lexer"
	"github.com/wisecracklang/wisecrack/internal/logging"
	"github.com/wisecracklang/wisecrack/internal/parser"
	"github.com/wisecracklang/wisecrack/internal/stdlib"
)

// testResult is one test_ function's outcome, grounded on GlyphLang's
// interpreter.TestResult{Name, Passed, Duration, Error} shape used by
// cmd/glyph's runTest.
type testResult struct {
	Name     string
	Passed   bool
	Duration time.Duration
	Err      error
}

func newTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test <file>",
		Short: "Run every function named test_* in a wisecrack file as a test case",
		Long: `Loads a wisecrack file and calls every zero-parameter top-level
function whose name starts with "test_". A test passes if the call
returns without error; any evaluation error (including a failed
assertion raised via the stdlib's "assert" builtin) fails it.`,
		Args: cobra.ExactArgs(1),
		RunE: runTestCmd,
	}
	cmd.Flags().BoolP("verbose", "v", false, "print every passing test, not just failures")
	cmd.Flags().String("filter", "", "only run test_ functions whose name contains this substring")
	cmd.Flags().Bool("fail-fast", false, "stop at the first failure")
	return cmd
}

func runTestCmd(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	verbose, _ := cmd.Flags().GetBool("verbose")
	filter, _ := cmd.Flags().GetString("filter")
	failFast, _ := cmd.Flags().GetBool("fail-fast")

	cfg, err := config.Load(configPath(cmd))
	if err != nil {
		return err
	}

	source, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("test: %w", err)
	}

	toks, err := lexer.New(string(source)).Tokenize()
	if err != nil {
		return fmt.Errorf("%s", diagnostics.FormatError(err, string(source)))
	}
	prog, err := parser.New(toks).Parse()
	if err != nil {
		return fmt.Errorf("%s", diagnostics.FormatError(err, string(source)))
	}

	logger := logging.New(logging.Config{MinLevel: logging.WARN})
	defer logger.Close()

	e := eval.New(eval.Config{
		Host:               host.OS{},
		Logger:             logger,
		Out:                os.Stdout,
		SafetyLimit:        cfg.DispatchSafetyLimit,
		HistoryBoundsError: cfg.HistoryBoundsError,
		MaxDisplayWidth:    cfg.MaxDisplayWidth,
	})
	stdlib.Register(e)

	if err := e.Run(prog); err != nil {
		return fmt.Errorf("%s", diagnostics.FormatError(err, string(source)))
	}

	names := testNames(e, filter)
	if len(names) == 0 {
		printWarning("no test_ functions found in " + filePath)
		return nil
	}

	results := runTests(e, names, failFast)
	return reportResults(results, verbose)
}

func testNames(e *eval.Evaluator, filter string) []string {
	var names []string
	for _, n := range e.FunctionNames() {
		if !strings.HasPrefix(n, "test_") {
			continue
		}
		if filter != "" && !strings.Contains(n, filter) {
			continue
		}
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func runTests(e *eval.Evaluator, names []string, failFast bool) []testResult {
	results := make([]testResult, 0, len(names))
	for _, name := range names {
		start := time.Now()
		_, err := e.CallFunction(name, nil)
		r := testResult{Name: name, Passed: err == nil, Duration: time.Since(start), Err: err}
		results = append(results, r)
		if !r.Passed && failFast {
			break
		}
	}
	return results
}

func reportResults(results []testResult, verbose bool) error {
	greenCheck := color.New(color.FgGreen).SprintFunc()
	redX := color.New(color.FgRed).SprintFunc()

	passed, failed := 0, 0
	for _, r := range results {
		if r.Passed {
			passed++
			if verbose {
				fmt.Printf("  %s %s (%s)\n", greenCheck("PASS"), r.Name, r.Duration)
			}
			continue
		}
		failed++
		fmt.Printf("  %s %s\n", redX("FAIL"), r.Name)
		if r.Err != nil {
			fmt.Printf("       %s\n", r.Err.Error())
		}
	}

	fmt.Println()
	total := passed + failed
	if failed > 0 {
		color.New(color.FgRed, color.Bold).Printf("FAIL: %d/%d tests passed\n", passed, total)
		return fmt.Errorf("%d test(s) failed", failed)
	}
	color.New(color.FgGreen, color.Bold).Printf("PASS: %d/%d tests passed\n", passed, total)
	return nil
}
