package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisecracklang/wisecrack/internal/lexer"
)

func types(toks []lexer.Token) []lexer.Type {
	out := make([]lexer.Type, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func TestOverloadPriorityDeclarationRuns(t *testing.T) {
	toks, err := lexer.New("var var x = 1! var var x = 2!!").Tokenize()
	require.NoError(t, err)
	require.Equal(t, lexer.BANGRUN, toks[5].Type)
	assert.Equal(t, 1, toks[5].Count)

	last := toks[len(toks)-2] // trailing bangrun before EOF
	assert.Equal(t, lexer.BANGRUN, last.Type)
	assert.Equal(t, 2, last.Count)
}

func TestPostfixRunsDistinguishSingleFromRun(t *testing.T) {
	toks, err := lexer.New("x++ a++++ b** c****").Tokenize()
	require.NoError(t, err)

	var runs []lexer.Token
	for _, tk := range toks {
		if tk.Type == lexer.PLUSRUN || tk.Type == lexer.STARRUN {
			runs = append(runs, tk)
		}
	}
	require.Len(t, runs, 4)
	assert.Equal(t, lexer.PLUSRUN, runs[0].Type)
	assert.Equal(t, 2, runs[0].Count)
	assert.Equal(t, lexer.PLUSRUN, runs[1].Type)
	assert.Equal(t, 4, runs[1].Count)
	assert.Equal(t, lexer.STARRUN, runs[2].Type)
	assert.Equal(t, 2, runs[2].Count)
	assert.Equal(t, lexer.STARRUN, runs[3].Type)
	assert.Equal(t, 4, runs[3].Count)
}

func TestEqualityLadderTokens(t *testing.T) {
	toks, err := lexer.New("a == b === c ==== d").Tokenize()
	require.NoError(t, err)
	filtered := []lexer.Type{}
	for _, tk := range toks {
		switch tk.Type {
		case lexer.EQ, lexer.EQEQ, lexer.EQEQEQ:
			filtered = append(filtered, tk.Type)
		}
	}
	assert.Equal(t, []lexer.Type{lexer.EQ, lexer.EQEQ, lexer.EQEQEQ}, filtered)
}

func TestStringLiteralDoesNotInterpretEscapes(t *testing.T) {
	toks, err := lexer.New(`"a\nb"`).Tokenize()
	require.NoError(t, err)
	require.Equal(t, lexer.STRING, toks[0].Type)
	assert.Equal(t, `a\nb`, toks[0].Literal)
}

func TestUnterminatedStringIsLexError(t *testing.T) {
	_, err := lexer.New(`"unterminated`).Tokenize()
	require.Error(t, err)
	var lexErr *lexer.LexError
	require.ErrorAs(t, err, &lexErr)
}

func TestNumberWithFraction(t *testing.T) {
	toks, err := lexer.New("3.14 10").Tokenize()
	require.NoError(t, err)
	assert.Equal(t, "3.14", toks[0].Literal)
	assert.Equal(t, "10", toks[1].Literal)
}

func TestKeywordsRecognized(t *testing.T) {
	toks, err := lexer.New("const var reverse forward delete when if else idk return while break continue class is a matches true false maybe null undefined").Tokenize()
	require.NoError(t, err)
	want := []lexer.Type{
		lexer.CONST, lexer.VAR, lexer.REVERSE, lexer.FORWARD, lexer.DELETE,
		lexer.WHEN, lexer.IF, lexer.ELSE, lexer.IDK, lexer.RETURN, lexer.WHILE,
		lexer.BREAK, lexer.CONTINUE, lexer.CLASS, lexer.IS, lexer.A,
		lexer.MATCHES, lexer.TRUE, lexer.FALSE, lexer.MAYBE, lexer.NULL, lexer.UNDEFINED,
	}
	assert.Equal(t, want, types(toks)[:len(want)])
}

func TestLineCommentSkipped(t *testing.T) {
	toks, err := lexer.New("x // comment with + and ** in it\ny").Tokenize()
	require.NoError(t, err)
	assert.Equal(t, []lexer.Type{lexer.IDENT, lexer.NEWLINE, lexer.IDENT, lexer.EOF}, types(toks))
}

func TestDollarAndUnderscoreIdentifiers(t *testing.T) {
	toks, err := lexer.New("$foo _bar").Tokenize()
	require.NoError(t, err)
	assert.Equal(t, "$foo", toks[0].Literal)
	assert.Equal(t, "_bar", toks[1].Literal)
}

func TestExtraTokens(t *testing.T) {
	toks, err := lexer.New("<> >< .. @ \\ =>").Tokenize()
	require.NoError(t, err)
	assert.Equal(t, []lexer.Type{
		lexer.LTGT, lexer.GTLT, lexer.DOTDOT, lexer.AT, lexer.BACKSLASH, lexer.FATARROW, lexer.EOF,
	}, types(toks))
}

func TestQuestionTokenEmittedForBothTerminatorAndConditional(t *testing.T) {
	toks, err := lexer.New("x? a ? b : c").Tokenize()
	require.NoError(t, err)
	var qCount int
	for _, tk := range toks {
		if tk.Type == lexer.QUESTION {
			qCount++
		}
	}
	assert.Equal(t, 2, qCount)
}
