package repl_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisecracklang/wisecrack/internal/config"
	repl "github.com/wisecracklang/wisecrack/internal/replshell"
)

func newREPL(t *testing.T, in string) (*repl.REPL, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	r := repl.New(strings.NewReader(in), &out, config.Default(), nil, "test")
	return r, &out
}

func TestBareExpressionAutoPrints(t *testing.T) {
	r, out := newREPL(t, "1 + 2 * 3\n")
	require.NoError(t, r.Start())
	assert.Contains(t, out.String(), "[DEBUG] 7")
}

func TestVarDeclAndReassignment(t *testing.T) {
	r, out := newREPL(t, "var var x = 1! x = 2! x?\n")
	require.NoError(t, r.Start())
	assert.Contains(t, out.String(), "[DEBUG] 2")
}

func TestMultilineInputWaitsForBalancedBraces(t *testing.T) {
	r, out := newREPL(t, "if (true) {\nprint(\"hi\")\n}\n")
	require.NoError(t, r.Start())
	assert.Contains(t, out.String(), "hi")
}

func TestUnknownCommandReportsError(t *testing.T) {
	r, out := newREPL(t, ":bogus\n")
	require.NoError(t, r.Start())
	assert.Contains(t, out.String(), "unknown command")
}

func TestVarsCommandListsDeclaredVariables(t *testing.T) {
	r, out := newREPL(t, "var var x = 1!\n:vars\n")
	require.NoError(t, r.Start())
	assert.Contains(t, out.String(), "x :: number = 1")
}

func TestFunctionsCommandListsDeclaredFunctions(t *testing.T) {
	r, out := newREPL(t, "double(n) { return n * 2 }\n:functions\n")
	require.NoError(t, r.Start())
	assert.Contains(t, out.String(), "!double(n)")
}

func TestHistoryCommandShowsAllVersions(t *testing.T) {
	r, out := newREPL(t, "var var x = 1! x = 2! x = 3!\n:history x\n")
	require.NoError(t, r.Start())
	s := out.String()
	assert.Contains(t, s, "history(x):")
	assert.Contains(t, s, "[0] 1")
	assert.Contains(t, s, "[2] 3")
}

func TestHistoryCommandUnknownVariable(t *testing.T) {
	r, out := newREPL(t, ":history nope\n")
	require.NoError(t, r.Start())
	assert.Contains(t, out.String(), "no such variable")
}

func TestPoisonCommandReportsZeroByDefault(t *testing.T) {
	r, out := newREPL(t, ":poison\n")
	require.NoError(t, r.Start())
	assert.Contains(t, out.String(), "0 number(s)")
}

func TestWhenCommandReportsNoSubscriptionsInitially(t *testing.T) {
	r, out := newREPL(t, ":when\n")
	require.NoError(t, r.Start())
	assert.Contains(t, out.String(), "No active")
}

func TestResetClearsSessionState(t *testing.T) {
	r, out := newREPL(t, "var var x = 1!\n:reset\n:vars\n")
	require.NoError(t, r.Start())
	assert.Contains(t, out.String(), "No variables defined")
}

func TestLoadCommandRunsFileAgainstSession(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "greet.wc")
	require.NoError(t, os.WriteFile(path, []byte(`var var greeting = "hi"!`), 0o644))

	r, out := newREPL(t, ":load "+path+"\n:vars\n")
	require.NoError(t, r.Start())
	s := out.String()
	assert.Contains(t, s, "Loaded successfully")
	assert.Contains(t, s, "greeting :: string")
}

func TestParseErrorIsReportedNotFatal(t *testing.T) {
	r, out := newREPL(t, "var var x = 1 +\n1 + 1?\n")
	require.NoError(t, r.Start())
	s := out.String()
	assert.Contains(t, s, "[DEBUG] 2")
}
