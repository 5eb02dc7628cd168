// Package parser turns a wisecrack token stream into the internal/ast
// tree the evaluator consumes (§6 AST contract). Grounded on GlyphLang's
// pkg/parser/parser.go recursive-descent shape: a flat Parser{tokens,
// position} cursor, current/advance/check/match/expect helpers, and
// precedence-climbing for binary operators (parseBinaryExpr/
// currentBinaryOp).
package parser

import (
	"strconv"

	"github.com/wisecracklang/wisecrack/internal/ast"
	"github.com/wisecracklang/wisecrack/internal/lexer"
	"github.com/wisecracklang/wisecrack/internal/store"
)

// Parser consumes a token slice produced by internal/lexer.
type Parser struct {
	tokens []lexer.Token
	pos    int
}

// New creates a Parser over tokens (normally the output of
// lexer.Lexer.Tokenize).
func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse tokenizes nothing itself; it parses an already-scanned token
// stream into a Program. Source callers typically do
// parser.New(toks).Parse().
func (p *Parser) Parse() (*ast.Program, error) {
	var stmts []ast.Statement
	p.skipNewlines()
	for !p.isAtEnd() {
		st, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, st)
		p.skipStatementTerminator()
	}
	return &ast.Program{Statements: stmts}, nil
}

// ---- token cursor helpers ------------------------------------------------

func (p *Parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Type: lexer.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek(n int) lexer.Token {
	idx := p.pos + n
	if idx >= len(p.tokens) {
		return lexer.Token{Type: lexer.EOF}
	}
	return p.tokens[idx]
}

func (p *Parser) advance() lexer.Token {
	tok := p.current()
	if !p.isAtEnd() {
		p.pos++
	}
	return tok
}

func (p *Parser) isAtEnd() bool {
	return p.current().Type == lexer.EOF
}

func (p *Parser) check(t lexer.Type) bool {
	return p.current().Type == t
}

func (p *Parser) match(types ...lexer.Type) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) expect(t lexer.Type) (lexer.Token, error) {
	if p.check(t) {
		return p.advance(), nil
	}
	got := p.current()
	return lexer.Token{}, &ParseError{
		Msg:    "expected " + t.String() + ", found " + got.Type.String(),
		Pos:    got.Pos, Line: got.Line, Column: got.Column,
	}
}

func (p *Parser) expectIdent() (string, error) {
	if !p.check(lexer.IDENT) {
		got := p.current()
		return "", &ParseError{
			Msg: "expected identifier, found " + got.Type.String(),
			Pos: got.Pos, Line: got.Line, Column: got.Column,
		}
	}
	return p.advance().Literal, nil
}

func (p *Parser) skipNewlines() {
	for p.match(lexer.NEWLINE) {
	}
}

// skipStatementTerminator consumes the generic `!` / newline terminator
// between top-level and block statements; a var-decl's own priority
// bangrun is already consumed inside parseVarDecl, so any BANGRUN seen
// here is purely a terminator (§6 gives `!` no other surface role).
func (p *Parser) skipStatementTerminator() {
	for p.check(lexer.BANGRUN) || p.check(lexer.NEWLINE) {
		p.advance()
	}
}

func errAt(tok lexer.Token, msg string) error {
	return &ParseError{Msg: msg, Pos: tok.Pos, Line: tok.Line, Column: tok.Column}
}

// questionIsTerminator implements §6's literal rule: a `?` is a bare
// statement terminator when followed only by whitespace/EOL/`}`/a line
// comment — which, once the lexer has already collapsed whitespace and
// comments away, means the very next token is NEWLINE, EOF, or RBRACE.
// Anything else makes it the head of a `c ? t : f` conditional.
func (p *Parser) questionIsTerminator() bool {
	switch p.peek(1).Type {
	case lexer.NEWLINE, lexer.EOF, lexer.RBRACE:
		return true
	default:
		return false
	}
}

// ---- statements -----------------------------------------------------------

func (p *Parser) parseStatement() (ast.Statement, error) {
	tok := p.current()
	switch tok.Type {
	case lexer.VAR, lexer.CONST:
		return p.parseVarDeclOrTripleConst()
	case lexer.REVERSE:
		return p.parseHistoryMove(ast.HistoryReverse)
	case lexer.FORWARD:
		return p.parseHistoryMove(ast.HistoryForward)
	case lexer.IF:
		return p.parseIf()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.BREAK:
		p.advance()
		return ast.BreakStmt{Base: ast.NewBase(tok.Pos)}, nil
	case lexer.CONTINUE:
		p.advance()
		return ast.ContinueStmt{Base: ast.NewBase(tok.Pos)}, nil
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.WHEN:
		return p.parseWhen()
	case lexer.DELETE:
		return p.parseDelete()
	case lexer.CLASS:
		return p.parseClass()
	case lexer.LBRACE:
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return ast.BlockStmt{Base: ast.NewBase(tok.Pos), Body: body}, nil
	case lexer.IDENT:
		if fn, ok, err := p.tryParseFunctionDecl(); err != nil {
			return nil, err
		} else if ok {
			return fn, nil
		}
		return p.parseSimpleStatement()
	default:
		return p.parseSimpleStatement()
	}
}

// parseVarDeclOrTripleConst parses `<const|var> <const|var> name = expr
// [lifetime] [!!]` or, when a third `const` follows, the
// `const const const name = expr` immutable-outside-the-store form
// (§3, §4.4).
func (p *Parser) parseVarDeclOrTripleConst() (ast.Statement, error) {
	first := p.advance()
	second, err := p.expectMutabilityWord()
	if err != nil {
		return nil, err
	}

	if first.Type == lexer.CONST && second == lexer.CONST && p.check(lexer.CONST) {
		p.advance()
		return p.parseTripleConst(first)
	}

	mut := mutabilityOf(first.Type, second)
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.EQUALS); err != nil {
		return nil, err
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	lifetime, err := p.parseOptionalLifetime()
	if err != nil {
		return nil, err
	}
	priority := 1
	if p.check(lexer.BANGRUN) {
		priority = p.advance().Count
	}
	return ast.VarDeclStmt{
		Base: ast.NewBase(first.Pos), Name: name, Mutability: mut,
		Priority: priority, Value: val, Lifetime: lifetime,
	}, nil
}

func (p *Parser) expectMutabilityWord() (lexer.Type, error) {
	tok := p.current()
	if tok.Type != lexer.CONST && tok.Type != lexer.VAR {
		return 0, errAt(tok, "expected 'const' or 'var'")
	}
	p.advance()
	return tok.Type, nil
}

func mutabilityOf(first, second lexer.Type) store.Mutability {
	switch {
	case first == lexer.VAR && second == lexer.VAR:
		return store.VarVar
	case first == lexer.VAR && second == lexer.CONST:
		return store.VarConst
	case first == lexer.CONST && second == lexer.VAR:
		return store.ConstVar
	default:
		return store.ConstConst
	}
}

func (p *Parser) parseTripleConst(first lexer.Token) (ast.Statement, error) {
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.EQUALS); err != nil {
		return nil, err
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.ConstConstConstStmt{Base: ast.NewBase(first.Pos), Name: name, Value: val}, nil
}

// parseOptionalLifetime recognizes the contextual words lines/seconds/
// infinity right after a var-decl initializer (§3 LifetimeClause); none
// of §6's reserved keywords, so they're read as plain identifiers.
func (p *Parser) parseOptionalLifetime() (*ast.LifetimeClause, error) {
	if !p.check(lexer.IDENT) {
		return nil, nil
	}
	switch p.current().Literal {
	case "lines", "seconds":
		word := p.advance().Literal
		if _, err := p.expect(lexer.LPAREN); err != nil {
			return nil, err
		}
		numTok, err := p.expect(lexer.NUMBER)
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(numTok.Literal)
		if err != nil {
			return nil, errAt(numTok, "invalid lifetime count")
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		kind := store.LifetimeLines
		if word == "seconds" {
			kind = store.LifetimeSeconds
		}
		return &ast.LifetimeClause{Kind: kind, N: n}, nil
	case "infinity":
		p.advance()
		return &ast.LifetimeClause{Kind: store.LifetimeInfinity}, nil
	default:
		return nil, nil
	}
}

func (p *Parser) parseHistoryMove(dir ast.HistoryDirection) (ast.Statement, error) {
	tok := p.advance()
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	return ast.HistoryMoveStmt{Base: ast.NewBase(tok.Pos), Name: name, Direction: dir}, nil
}

// parseIf implements `if (cond) { then } [else { elseBody }] [idk {
// idkBody }]`, matching §8 scenario 3's else-before-idk ordering.
func (p *Parser) parseIf() (ast.Statement, error) {
	tok := p.advance()
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	st := ast.IfStmt{Base: ast.NewBase(tok.Pos), Cond: cond, Then: then}
	p.skipNewlines()
	if p.check(lexer.ELSE) {
		p.advance()
		elseBody, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		st.Else = elseBody
	}
	p.skipNewlines()
	if p.check(lexer.IDK) {
		p.advance()
		idkBody, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		st.Idk = idkBody
	}
	return st, nil
}

func (p *Parser) parseWhile() (ast.Statement, error) {
	tok := p.advance()
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.WhileStmt{Base: ast.NewBase(tok.Pos), Cond: cond, Body: body}, nil
}

func (p *Parser) parseReturn() (ast.Statement, error) {
	tok := p.advance()
	if p.statementEndsHere() {
		return ast.ReturnStmt{Base: ast.NewBase(tok.Pos)}, nil
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.ReturnStmt{Base: ast.NewBase(tok.Pos), Value: val}, nil
}

func (p *Parser) statementEndsHere() bool {
	switch p.current().Type {
	case lexer.NEWLINE, lexer.BANGRUN, lexer.EOF, lexer.RBRACE:
		return true
	default:
		return false
	}
}

// parseDelete implements §4.4's two delete forms: `delete name` (bare
// identifier, nothing else before the statement ends) removes a
// binding; anything richer is evaluated and the resulting value is
// poisoned. The spec names both forms without giving concrete surface
// grammar beyond §8 scenario 6's `delete 3!`, so the bare-identifier
// shape is this parser's resolution of that silence.
func (p *Parser) parseDelete() (ast.Statement, error) {
	tok := p.advance()
	if p.check(lexer.IDENT) {
		save := p.pos
		name := p.advance().Literal
		if p.statementEndsHere() {
			return ast.DeleteStmt{Base: ast.NewBase(tok.Pos), Kind: ast.DeleteBinding, Name: name}, nil
		}
		p.pos = save
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.DeleteStmt{Base: ast.NewBase(tok.Pos), Kind: ast.DeleteValue, Value: val}, nil
}

// parseWhen implements both `when(cond) body` and `when target matches
// pattern if guard? body` (§4.5).
func (p *Parser) parseWhen() (ast.Statement, error) {
	tok := p.advance()
	if p.check(lexer.LPAREN) {
		p.advance()
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return ast.WhenStmt{Base: ast.NewBase(tok.Pos), Cond: cond, Body: body}, nil
	}

	target, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.MATCHES); err != nil {
		return nil, err
	}
	pattern, err := p.parsePattern()
	if err != nil {
		return nil, err
	}
	var guard ast.Expr
	if p.check(lexer.IF) {
		p.advance()
		guard, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.WhenStmt{Base: ast.NewBase(tok.Pos), Target: target, Pattern: pattern, Guard: guard, Body: body}, nil
}

// tryParseFunctionDecl speculatively parses `name(param, ...) { body }`
// at statement position. §6's keyword list has no `function` token, so
// a declaration is distinguished from a call-used-as-statement purely
// by shape: plain identifier parameters followed immediately by a
// block. On any mismatch the cursor is rewound and the caller falls
// back to ordinary expression-statement parsing.
func (p *Parser) tryParseFunctionDecl() (*ast.FunctionDeclStmt, bool, error) {
	save := p.pos
	nameTok := p.current()
	if nameTok.Type != lexer.IDENT || p.peek(1).Type != lexer.LPAREN {
		return nil, false, nil
	}
	p.advance()
	p.advance()

	var params []string
	for !p.check(lexer.RPAREN) {
		if !p.check(lexer.IDENT) {
			p.pos = save
			return nil, false, nil
		}
		params = append(params, p.advance().Literal)
		if !p.match(lexer.COMMA) {
			break
		}
	}
	if !p.check(lexer.RPAREN) {
		p.pos = save
		return nil, false, nil
	}
	p.advance()
	if !p.check(lexer.LBRACE) {
		p.pos = save
		return nil, false, nil
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, false, err
	}
	return &ast.FunctionDeclStmt{Base: ast.NewBase(nameTok.Pos), Name: nameTok.Literal, Params: params, Body: body}, true, nil
}

// parseClass implements `class Name { ... }` with `@`-prefixed static
// members (§4.3, §6 — `@` is scanned but unassigned by the distilled
// spec; this parser gives it the "static" sigil role since
// PropertyDecl/MethodDecl already carry an IsStatic flag with no
// surface syntax to set it).
func (p *Parser) parseClass() (ast.Statement, error) {
	tok := p.advance()
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LBRACE); err != nil {
		return nil, err
	}
	p.skipNewlines()

	decl := ast.ClassDeclStmt{Base: ast.NewBase(tok.Pos), Name: name}
	for !p.check(lexer.RBRACE) && !p.isAtEnd() {
		isStatic := p.match(lexer.AT)

		if p.check(lexer.IDENT) && p.current().Literal == "fallback" {
			p.advance()
			fieldName, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			if isStatic {
				decl.StaticFallback = fieldName
			} else {
				decl.InstanceFallback = fieldName
			}
			p.skipStatementTerminator()
			p.skipNewlines()
			continue
		}

		memberName, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if p.check(lexer.LPAREN) {
			p.advance()
			var params []string
			for !p.check(lexer.RPAREN) {
				pname, err := p.expectIdent()
				if err != nil {
					return nil, err
				}
				params = append(params, pname)
				if !p.match(lexer.COMMA) {
					break
				}
			}
			if _, err := p.expect(lexer.RPAREN); err != nil {
				return nil, err
			}
			body, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			decl.Methods = append(decl.Methods, ast.MethodDecl{Name: memberName, IsStatic: isStatic, Params: params, Body: body})
		} else {
			if _, err := p.expect(lexer.EQUALS); err != nil {
				return nil, err
			}
			init, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			decl.Properties = append(decl.Properties, ast.PropertyDecl{Name: memberName, IsStatic: isStatic, Initializer: init})
		}
		p.skipStatementTerminator()
		p.skipNewlines()
	}
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *Parser) parseBlock() ([]ast.Statement, error) {
	if _, err := p.expect(lexer.LBRACE); err != nil {
		return nil, err
	}
	p.skipNewlines()
	var stmts []ast.Statement
	for !p.check(lexer.RBRACE) && !p.isAtEnd() {
		st, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, st)
		p.skipStatementTerminator()
		p.skipNewlines()
	}
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return stmts, nil
}

// parseSimpleStatement covers assignment (plain/index/member) and
// expression statements, distinguished after the fact by what
// parseExpr actually produced — mirrors GlyphLang's parsePrimary
// building a VariableExpr/FunctionCallExpr/etc. that later grammar
// layers reinterpret by shape.
func (p *Parser) parseSimpleStatement() (ast.Statement, error) {
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.check(lexer.EQUALS) {
		p.advance()
		rhs, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		switch t := expr.(type) {
		case ast.Identifier:
			return ast.AssignStmt{Base: ast.NewBase(t.Pos()), Name: t.Name, Value: rhs}, nil
		case ast.IndexExpr:
			return ast.IndexAssignStmt{Base: ast.NewBase(t.Pos()), Target: t.Target, Index: t.Index, Value: rhs}, nil
		case ast.MemberExpr:
			return ast.MemberAssignStmt{Base: ast.NewBase(t.Pos()), Target: t.Target, Name: t.Name, Value: rhs}, nil
		default:
			return nil, errAt(p.current(), "invalid assignment target")
		}
	}
	print := false
	if p.check(lexer.QUESTION) && p.questionIsTerminator() {
		p.advance()
		print = true
	}
	return ast.ExprStmt{Base: ast.NewBase(expr.Pos()), Value: expr, Print: print}, nil
}

// ---- expressions ------------------------------------------------------

func (p *Parser) parseExpr() (ast.Expr, error) {
	left, err := p.parseBinaryExpr(0)
	if err != nil {
		return nil, err
	}
	return p.parseTernaryTail(left)
}

// parseTernaryTail resolves the ambiguity between a '?' that starts a
// new ternary rooted at left and a '?' that extends an ENCLOSING
// ternary's elseExpr with a trailing '? maybe'/'? undefined' arm: a
// '?' immediately followed by 'maybe'/'undefined' always belongs to
// the caller, never to a ternary freshly started here. Without this
// check, parsing an elseExpr via parseExpr would greedily try to
// consume that '?' as the head of its own cond?then:else and fail
// for want of a colon after the 'maybe'/'undefined' value.
func (p *Parser) parseTernaryTail(left ast.Expr) (ast.Expr, error) {
	if !p.check(lexer.QUESTION) || p.questionIsTerminator() {
		return left, nil
	}
	if p.peek(1).Type == lexer.MAYBE || p.peek(1).Type == lexer.UNDEFINED {
		return left, nil
	}
	tok := p.advance()
	thenExpr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.COLON); err != nil {
		return nil, err
	}
	elseBase, err := p.parseBinaryExpr(0)
	if err != nil {
		return nil, err
	}
	elseExpr, err := p.parseTernaryTail(elseBase)
	if err != nil {
		return nil, err
	}
	cond := ast.ConditionalExpr{Base: ast.NewBase(tok.Pos), Cond: left, Then: thenExpr, Else: elseExpr}
	for p.check(lexer.QUESTION) && !p.questionIsTerminator() {
		p.advance()
		switch {
		case p.check(lexer.MAYBE):
			p.advance()
			arm, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			cond.MaybeArm = arm
		case p.check(lexer.UNDEFINED):
			p.advance()
			arm, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			cond.UndefArm = arm
		default:
			return nil, errAt(p.current(), "expected 'maybe' or 'undefined' arm after extended conditional '?'")
		}
	}
	return cond, nil
}

const rootInfixPrecedence = 15

func (p *Parser) parseBinaryExpr(minPrec int) (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		if p.check(lexer.BACKSLASH) {
			if rootInfixPrecedence < minPrec {
				return left, nil
			}
			tok := p.advance()
			right, err := p.parseBinaryExpr(rootInfixPrecedence + 1)
			if err != nil {
				return nil, err
			}
			left = ast.RootInfixExpr{Base: ast.NewBase(tok.Pos), Operand: left, N: right}
			continue
		}
		op, prec := p.currentBinaryOp()
		if prec < 0 || prec < minPrec {
			return left, nil
		}
		tok := p.advance()
		right, err := p.parseBinaryExpr(prec + 1)
		if err != nil {
			return nil, err
		}
		left = ast.BinaryExpr{Base: ast.NewBase(tok.Pos), Op: op, Left: left, Right: right}
	}
}

// currentBinaryOp assigns precedence the way GlyphLang's
// currentBinaryOp does (additive < multiplicative, comparisons bind
// tighter than the equality ladder).
func (p *Parser) currentBinaryOp() (string, int) {
	switch p.current().Type {
	case lexer.PLUS:
		return "+", 10
	case lexer.MINUS:
		return "-", 10
	case lexer.STAR:
		return "*", 20
	case lexer.SLASH:
		return "/", 20
	case lexer.LT:
		return "<", 6
	case lexer.LTE:
		return "<=", 6
	case lexer.GT:
		return ">", 6
	case lexer.GTE:
		return ">=", 6
	case lexer.EQ:
		return "==", 5
	case lexer.EQEQ:
		return "===", 5
	case lexer.EQEQEQ:
		return "====", 5
	case lexer.LTGT:
		return "<>", 5
	case lexer.GTLT:
		return "><", 5
	default:
		return "", -1
	}
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	tok := p.current()
	switch tok.Type {
	case lexer.MINUS:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.UnaryExpr{Base: ast.NewBase(tok.Pos), Op: "-", Operand: operand}, nil
	case lexer.NOT:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.UnaryExpr{Base: ast.NewBase(tok.Pos), Op: "not", Operand: operand}, nil
	case lexer.BACKSLASH:
		p.advance()
		n := 2
		if p.check(lexer.NUMBER) {
			numTok := p.advance()
			parsed, err := strconv.Atoi(numTok.Literal)
			if err != nil {
				return nil, errAt(numTok, "invalid root index")
			}
			n = parsed
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.PrefixRootExpr{Base: ast.NewBase(tok.Pos), N: n, Operand: operand}, nil
	default:
		return p.parsePostfixChain()
	}
}

// parsePostfixChain handles the primary-expression postfix family:
// `.member`, `[index]`, `(args)` call forms, the mutation postfixes
// `++.. / --.. / **..`, and the `is a ClassName` type check — all at
// the same tight precedence, chained left to right.
func (p *Parser) parsePostfixChain() (ast.Expr, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.current().Type {
		case lexer.DOT:
			p.advance()
			nameTok := p.current()
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			if p.check(lexer.LPAREN) {
				args, err := p.parseArgList()
				if err != nil {
					return nil, err
				}
				base = ast.CallExpr{Base: ast.NewBase(nameTok.Pos), Target: base, Callee: name, Args: args}
			} else {
				base = ast.MemberExpr{Base: ast.NewBase(nameTok.Pos), Target: base, Name: name}
			}
		case lexer.LBRACKET:
			lb := p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBRACKET); err != nil {
				return nil, err
			}
			base = ast.IndexExpr{Base: ast.NewBase(lb.Pos), Target: base, Index: idx}
		case lexer.LPAREN:
			id, ok := base.(ast.Identifier)
			if !ok {
				return base, nil
			}
			lp := p.current()
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			base = ast.CallExpr{Base: ast.NewBase(lp.Pos), Callee: id.Name, Args: args}
		case lexer.PLUSRUN:
			run := p.advance()
			return ast.PostfixUpdateExpr{Base: ast.NewBase(run.Pos), Target: base, Delta: run.Count - 1}, nil
		case lexer.MINUSRUN:
			run := p.advance()
			return ast.PostfixUpdateExpr{Base: ast.NewBase(run.Pos), Target: base, Delta: -(run.Count - 1)}, nil
		case lexer.STARRUN:
			run := p.advance()
			return ast.PowerStarsExpr{Base: ast.NewBase(run.Pos), Target: base, Run: run.Count}, nil
		case lexer.IS:
			isTok := p.advance()
			if _, err := p.expect(lexer.A); err != nil {
				return nil, err
			}
			className, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			return ast.IsAExpr{Base: ast.NewBase(isTok.Pos), Target: base, ClassName: className}, nil
		default:
			return base, nil
		}
	}
}

func (p *Parser) parseArgList() ([]ast.Expr, error) {
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	var args []ast.Expr
	for !p.check(lexer.RPAREN) {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.match(lexer.COMMA) {
			break
		}
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.current()
	switch tok.Type {
	case lexer.NUMBER:
		p.advance()
		n, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, errAt(tok, "invalid number literal")
		}
		return ast.NumberLit{Base: ast.NewBase(tok.Pos), Value: n}, nil
	case lexer.STRING:
		p.advance()
		return ast.StringLit{Base: ast.NewBase(tok.Pos), Value: tok.Literal}, nil
	case lexer.TRUE:
		p.advance()
		return ast.BoolLit{Base: ast.NewBase(tok.Pos), Value: 1}, nil
	case lexer.FALSE:
		p.advance()
		return ast.BoolLit{Base: ast.NewBase(tok.Pos), Value: 0}, nil
	case lexer.MAYBE:
		p.advance()
		return ast.BoolLit{Base: ast.NewBase(tok.Pos), Value: 2}, nil
	case lexer.NULL:
		p.advance()
		return ast.NullLit{Base: ast.NewBase(tok.Pos)}, nil
	case lexer.UNDEFINED:
		p.advance()
		return ast.UndefinedLit{Base: ast.NewBase(tok.Pos)}, nil
	case lexer.IDENT:
		p.advance()
		return ast.Identifier{Base: ast.NewBase(tok.Pos), Name: tok.Literal}, nil
	case lexer.LPAREN:
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	case lexer.LBRACKET:
		p.advance()
		p.skipNewlines()
		var elems []ast.Expr
		for !p.check(lexer.RBRACKET) {
			el, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			elems = append(elems, el)
			if !p.match(lexer.COMMA) {
				break
			}
			p.skipNewlines()
		}
		p.skipNewlines()
		if _, err := p.expect(lexer.RBRACKET); err != nil {
			return nil, err
		}
		return ast.ArrayLit{Base: ast.NewBase(tok.Pos), Elements: elems}, nil
	default:
		return nil, errAt(tok, "unexpected token in expression: "+tok.Type.String())
	}
}

// ---- patterns -----------------------------------------------------------

// parsePattern implements §4.4's `when ... matches` pattern grammar:
// binding (with optional `= default`), `_` wildcard, array (with
// optional `..rest` collecting unconsumed entries — the use §6's `..`
// token was scanned for but never assigned), object (`key: pattern`
// with optional default), and literal (anything else, matched via
// `====`).
func (p *Parser) parsePattern() (ast.Pattern, error) {
	tok := p.current()
	switch tok.Type {
	case lexer.IDENT:
		if tok.Literal == "_" {
			p.advance()
			return ast.WildcardPattern{Base: ast.NewBase(tok.Pos)}, nil
		}
		p.advance()
		pat := ast.BindingPattern{Base: ast.NewBase(tok.Pos), Name: tok.Literal}
		if p.check(lexer.EQUALS) {
			p.advance()
			def, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			pat.Default = def
		}
		return pat, nil
	case lexer.LBRACKET:
		return p.parseArrayPattern()
	case lexer.LBRACE:
		return p.parseObjectPattern()
	default:
		val, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.LiteralPattern{Base: ast.NewBase(tok.Pos), Value: val}, nil
	}
}

func (p *Parser) parseArrayPattern() (ast.Pattern, error) {
	tok := p.advance()
	p.skipNewlines()
	pat := ast.ArrayPattern{Base: ast.NewBase(tok.Pos)}
	for !p.check(lexer.RBRACKET) {
		if p.check(lexer.DOTDOT) {
			p.advance()
			rest, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			pat.Rest = rest
			break
		}
		el, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		pat.Elements = append(pat.Elements, el)
		if !p.match(lexer.COMMA) {
			break
		}
		p.skipNewlines()
	}
	p.skipNewlines()
	if _, err := p.expect(lexer.RBRACKET); err != nil {
		return nil, err
	}
	return pat, nil
}

func (p *Parser) parseObjectPattern() (ast.Pattern, error) {
	tok := p.advance()
	p.skipNewlines()
	pat := ast.ObjectPattern{Base: ast.NewBase(tok.Pos)}
	for !p.check(lexer.RBRACE) {
		key, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.COLON); err != nil {
			return nil, err
		}
		sub, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		field := ast.ObjectPatternField{Key: key, Pattern: sub}
		if p.check(lexer.EQUALS) {
			p.advance()
			def, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			field.Default = def
		}
		pat.Fields = append(pat.Fields, field)
		if !p.match(lexer.COMMA) {
			break
		}
		p.skipNewlines()
	}
	p.skipNewlines()
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return pat, nil
}
