package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/wisecracklang/wisecrack/internal/config"
	"github.com/wisecracklang/wisecrack/internal/logging"
	repl "github.com/wisecracklang/wisecrack/internal/replshell"
)

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive wisecrack REPL session",
		Long: `Start an interactive Read-Eval-Print Loop for wisecrack.

Commands:
  :help               - Show available commands
  :quit               - Exit the REPL
  :load <file>        - Run a file against this session
  :watch <file>        - Reload a file into this session on every change
  :reset              - Start a fresh session
  :vars, :functions, :classes, :poison, :when, :history <name>
                      - Inspect interpreter state

A bare expression is auto-printed, same as suffixing it with '?'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath(cmd))
			if err != nil {
				return err
			}
			logger := logging.New(logging.Config{MinLevel: logging.WARN})
			defer logger.Close()

			r := repl.New(os.Stdin, os.Stdout, cfg, logger, version)
			return r.Start()
		},
	}
}
