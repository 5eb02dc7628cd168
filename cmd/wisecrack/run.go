package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fsnotify/fsnotify"
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

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Run a wisecrack source file",
		Args:  cobra.ExactArgs(1),
		RunE:  runRun,
	}
	cmd.Flags().Bool("watch", false, "re-run the file whenever it changes on disk")
	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	path := args[0]
	watch, _ := cmd.Flags().GetBool("watch")

	cfg, err := config.Load(configPath(cmd))
	if err != nil {
		return err
	}
	logger := logging.New(logging.Config{MinLevel: logging.WARN})
	defer logger.Close()

	if !watch {
		return runFile(cfg, logger, path, os.Stdout)
	}

	if err := runFile(cfg, logger, path, os.Stdout); err != nil {
		printError(err)
	}
	return watchAndRerun(cfg, logger, path)
}

func runFile(cfg config.Config, logger *logging.Logger, path string, out io.Writer) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	toks, err := lexer.New(string(source)).Tokenize()
	if err != nil {
		return fmt.Errorf("%s", diagnostics.FormatError(err, string(source)))
	}
	prog, err := parser.New(toks).Parse()
	if err != nil {
		return fmt.Errorf("%s", diagnostics.FormatError(err, string(source)))
	}

	e := eval.New(eval.Config{
		Host:               host.OS{},
		Logger:             logger,
		Out:                out,
		SafetyLimit:        cfg.DispatchSafetyLimit,
		HistoryBoundsError: cfg.HistoryBoundsError,
		MaxDisplayWidth:    cfg.MaxDisplayWidth,
	})
	stdlib.Register(e)

	if err := e.Run(prog); err != nil {
		return fmt.Errorf("%s", diagnostics.FormatError(err, string(source)))
	}
	return nil
}

// watchAndRerun re-runs path in a fresh Evaluator on every write,
// mirroring the `internal/replshell` :watch command's fsnotify idiom
// but for batch `run --watch` instead of a live REPL session.
func watchAndRerun(cfg config.Config, logger *logging.Logger, path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("run --watch: %w", err)
	}
	defer w.Close()
	if err := w.Add(path); err != nil {
		return fmt.Errorf("run --watch: %w", err)
	}

	printInfo(fmt.Sprintf("watching %s for changes (ctrl-c to stop)", path))
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			printInfo(fmt.Sprintf("%s changed, re-running...", path))
			if err := runFile(cfg, logger, path, os.Stdout); err != nil {
				printError(err)
			}
		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			printWarning(werr.Error())
		}
	}
}
