package repl

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"strings"

	"github.com/wisecracklang/wisecrack/internal/value"
)

// executeCommand dispatches a line starting with ":" to the matching
// REPL command.
func (r *REPL) executeCommand(line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case ":help", ":h":
		return r.cmdHelp(args)
	case ":quit", ":q", ":exit":
		return r.cmdQuit(args)
	case ":load", ":l":
		return r.cmdLoad(args)
	case ":watch", ":w":
		return r.cmdWatch(args)
	case ":reset", ":r":
		return r.cmdReset(args)
	case ":clear", ":cls":
		return r.cmdClear(args)
	case ":vars", ":v":
		return r.cmdVars(args)
	case ":functions", ":fns":
		return r.cmdFunctions(args)
	case ":classes", ":c":
		return r.cmdClasses(args)
	case ":poison", ":p":
		return r.cmdPoison(args)
	case ":when":
		return r.cmdWhen(args)
	case ":history":
		return r.cmdHistory(args)
	default:
		return fmt.Errorf("unknown command: %s (type :help for available commands)", cmd)
	}
}

func (r *REPL) cmdHelp(args []string) error {
	r.printf("wisecrack REPL Commands:\n")
	r.printf("========================\n\n")
	r.printf("  :help, :h              - Show this help message\n")
	r.printf("  :quit, :q, :exit       - Exit the REPL\n")
	r.printf("  :load, :l <file>       - Run a .wc file against this session\n")
	r.printf("  :watch, :w <file>      - Watch a file and reload it on change\n")
	r.printf("  :reset, :r             - Reset the session (fresh store/classes/dispatcher)\n")
	r.printf("  :clear, :cls           - Clear the screen\n")
	r.printf("  :vars, :v              - List all defined variables\n")
	r.printf("  :functions, :fns       - List all defined functions\n")
	r.printf("  :classes, :c           - List all declared classes\n")
	r.printf("  :poison, :p            - Show counts of deleted (poisoned) primitive values\n")
	r.printf("  :when                  - List `when` dependency keys and subscriber counts\n")
	r.printf("  :history <name>        - Show a variable's full assignment history\n")
	r.printf("\n")
	r.printf("A bare expression is auto-printed, same as suffixing it with `?`:\n")
	r.printf("  wc> 1 + 2 * 3\n")
	r.printf("  [DEBUG] 7\n")
	r.printf("\n")
	return nil
}

func (r *REPL) cmdQuit(args []string) error {
	r.running = false
	return nil
}

func (r *REPL) cmdLoad(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: :load <filename>")
	}
	path := args[0]
	if !strings.HasSuffix(path, ".wc") {
		path += ".wc"
	}

	r.printf("Loading %s...\n", path)
	if err := r.LoadFile(path); err != nil {
		return err
	}
	r.printf("Loaded successfully\n")
	return nil
}

func (r *REPL) cmdWatch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: :watch <filename>")
	}
	path := args[0]
	if !strings.HasSuffix(path, ".wc") {
		path += ".wc"
	}

	if err := r.LoadFile(path); err != nil {
		return err
	}
	if err := r.watchFile(path); err != nil {
		return err
	}
	r.printf("Watching %s for changes\n", path)
	return nil
}

func (r *REPL) cmdReset(args []string) error {
	r.Reset()
	r.printf("Session reset\n")
	return nil
}

func (r *REPL) cmdClear(args []string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "cls")
	default:
		cmd = exec.Command("clear")
	}
	cmd.Stdout = os.Stdout
	if err := cmd.Run(); err != nil {
		for i := 0; i < 50; i++ {
			r.printf("\n")
		}
	}
	return nil
}

func (r *REPL) cmdVars(args []string) error {
	names := r.eval.Store.Names()
	if len(names) == 0 {
		r.printf("No variables defined\n")
		return nil
	}

	sort.Strings(names)
	r.printf("Variables:\n")
	for _, name := range names {
		v, ok := r.eval.Store.TryGet(name)
		if !ok {
			continue
		}
		r.printf("  %s :: %s = %s\n", name, v.Kind.String(), value.ToStringValue(v))
	}
	return nil
}

func (r *REPL) cmdFunctions(args []string) error {
	names := r.eval.FunctionNames()
	if len(names) == 0 {
		r.printf("No functions defined\n")
		return nil
	}

	sort.Strings(names)
	r.printf("Functions:\n")
	for _, name := range names {
		fn, ok := r.eval.LookupFunction(name)
		if !ok {
			continue
		}
		r.printf("  !%s(%s)\n", name, strings.Join(fn.Params, ", "))
	}
	return nil
}

func (r *REPL) cmdClasses(args []string) error {
	names := r.eval.Classes.Names()
	if len(names) == 0 {
		r.printf("No classes declared\n")
		return nil
	}

	sort.Strings(names)
	r.printf("Classes:\n")
	for _, name := range names {
		r.printf("  %s\n", name)
	}
	return nil
}

func (r *REPL) cmdPoison(args []string) error {
	numbers, strs, bools := r.eval.PoisonCounts()
	r.printf("Poisoned values: %d number(s), %d string(s), %d boolean(s)\n", numbers, strs, bools)
	return nil
}

func (r *REPL) cmdWhen(args []string) error {
	keys := r.eval.Dispatcher.Keys()
	if len(keys) == 0 {
		r.printf("No active `when` subscriptions\n")
		return nil
	}

	sort.Strings(keys)
	r.printf("When dependencies:\n")
	for _, key := range keys {
		r.printf("  %s -> %d subscriber(s)\n", key, r.eval.Dispatcher.CountFor(key))
	}
	return nil
}

func (r *REPL) cmdHistory(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: :history <name>")
	}
	name := args[0]

	values, index, ok := r.eval.Store.TryGetHistory(name)
	if !ok {
		return fmt.Errorf("no such variable: %s", name)
	}

	r.printf("history(%s):\n", name)
	for i, v := range values {
		marker := " "
		if i == index {
			marker = "*"
		}
		r.printf("  %s [%d] %s\n", marker, i, value.ToStringValue(v))
	}
	return nil
}
