// Package format re-serializes a parsed wisecrack Program back to
// canonical source text, for the `wisecrack fmt` subcommand.
//
// Grounded on GlyphLang's pkg/formatter/formatter.go: a Formatter{indent,
// output strings.Builder} walking the AST with one formatX method per
// node kind and a writeln helper. GlyphLang's Formatter carries a
// Compact/Expanded Mode because glyph has two concrete syntaxes for the
// same AST; wisecrack has exactly one, so that axis is dropped and this
// formatter always emits the single canonical rendering.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wisecracklang/wisecrack/internal/ast"
	"github.com/wisecracklang/wisecrack/internal/store"
	"github.com/wisecracklang/wisecrack/internal/value"
)

// Formatter renders a Program to source text.
type Formatter struct {
	indent int
	output strings.Builder
}

// New creates a Formatter.
func New() *Formatter {
	return &Formatter{}
}

// Format renders prog's statements, one per line (blocks indented).
func Format(prog *ast.Program) string {
	f := New()
	for i, st := range prog.Statements {
		if i > 0 {
			f.writeln("")
		}
		f.formatStatement(st)
	}
	return f.output.String()
}

func (f *Formatter) writeln(s string) {
	if s != "" {
		f.output.WriteString(strings.Repeat("  ", f.indent))
		f.output.WriteString(s)
	}
	f.output.WriteString("\n")
}

func (f *Formatter) formatBlock(body []ast.Statement) {
	f.writeln("{")
	f.indent++
	for _, st := range body {
		f.formatStatement(st)
	}
	f.indent--
	f.writeln("}")
}

func mutKeyword(m store.Mutability) string {
	switch m {
	case store.VarVar:
		return "var var"
	case store.VarConst:
		return "var const"
	case store.ConstVar:
		return "const var"
	case store.ConstConst:
		return "const const"
	default:
		return "var var"
	}
}

func lifetimeSuffix(l *ast.LifetimeClause) string {
	if l == nil {
		return ""
	}
	switch l.Kind {
	case store.LifetimeInfinity:
		return " infinity"
	case store.LifetimeLines:
		return fmt.Sprintf(" lines(%d)", l.N)
	case store.LifetimeSeconds:
		return fmt.Sprintf(" seconds(%d)", l.N)
	default:
		return ""
	}
}

func (f *Formatter) formatStatement(st ast.Statement) {
	switch v := st.(type) {
	case ast.VarDeclStmt:
		bang := "!"
		if v.Priority > 1 {
			bang = strings.Repeat("!", v.Priority)
		}
		f.writeln(fmt.Sprintf("%s %s = %s%s%s", mutKeyword(v.Mutability), v.Name, f.expr(v.Value), lifetimeSuffix(v.Lifetime), bang))
	case ast.ConstConstConstStmt:
		f.writeln(fmt.Sprintf("const const const %s = %s", v.Name, f.expr(v.Value)))
	case ast.AssignStmt:
		f.writeln(fmt.Sprintf("%s = %s!", v.Name, f.expr(v.Value)))
	case ast.IndexAssignStmt:
		f.writeln(fmt.Sprintf("%s[%s] = %s!", f.expr(v.Target), f.expr(v.Index), f.expr(v.Value)))
	case ast.MemberAssignStmt:
		f.writeln(fmt.Sprintf("%s.%s = %s!", f.expr(v.Target), v.Name, f.expr(v.Value)))
	case ast.IfStmt:
		f.writeln(fmt.Sprintf("if (%s) {", f.expr(v.Cond)))
		f.indent++
		for _, s := range v.Then {
			f.formatStatement(s)
		}
		f.indent--
		if len(v.Else) > 0 {
			f.writeln("} else {")
			f.indent++
			for _, s := range v.Else {
				f.formatStatement(s)
			}
			f.indent--
		}
		if len(v.Idk) > 0 {
			f.writeln("} idk {")
			f.indent++
			for _, s := range v.Idk {
				f.formatStatement(s)
			}
			f.indent--
		}
		f.writeln("}")
	case ast.WhileStmt:
		f.writeln(fmt.Sprintf("while (%s) {", f.expr(v.Cond)))
		f.indent++
		for _, s := range v.Body {
			f.formatStatement(s)
		}
		f.indent--
		f.writeln("}")
	case ast.BreakStmt:
		f.writeln("break!")
	case ast.ContinueStmt:
		f.writeln("continue!")
	case ast.ReturnStmt:
		if v.Value == nil {
			f.writeln("return")
		} else {
			f.writeln("return " + f.expr(v.Value))
		}
	case ast.WhenStmt:
		if v.Cond != nil {
			f.writeln(fmt.Sprintf("when (%s) {", f.expr(v.Cond)))
		} else {
			guard := ""
			if v.Guard != nil {
				guard = " if " + f.expr(v.Guard)
			}
			f.writeln(fmt.Sprintf("when %s matches %s%s {", f.expr(v.Target), f.pattern(v.Pattern), guard))
		}
		f.indent++
		for _, s := range v.Body {
			f.formatStatement(s)
		}
		f.indent--
		f.writeln("}")
	case ast.DeleteStmt:
		if v.Kind == ast.DeleteBinding {
			f.writeln("delete " + v.Name + "!")
		} else {
			f.writeln("delete " + f.expr(v.Value) + "!")
		}
	case *ast.FunctionDeclStmt:
		f.writeln(fmt.Sprintf("%s(%s) {", v.Name, strings.Join(v.Params, ", ")))
		f.indent++
		for _, s := range v.Body {
			f.formatStatement(s)
		}
		f.indent--
		f.writeln("}")
	case ast.ClassDeclStmt:
		f.formatClassDecl(v)
	case ast.BlockStmt:
		f.formatBlock(v.Body)
	case ast.ExprStmt:
		suffix := "!"
		if v.Print {
			suffix = "?"
		}
		f.writeln(f.expr(v.Value) + suffix)
	case ast.HistoryMoveStmt:
		verb := "reverse"
		if v.Direction == ast.HistoryForward {
			verb = "forward"
		}
		f.writeln(fmt.Sprintf("%s %s!", verb, v.Name))
	default:
		f.writeln(fmt.Sprintf("/* unknown statement %T */", st))
	}
}

func (f *Formatter) formatClassDecl(v ast.ClassDeclStmt) {
	f.writeln("class " + v.Name + " {")
	f.indent++
	for _, p := range v.Properties {
		sigil := ""
		if p.IsStatic {
			sigil = "@"
		}
		if p.Initializer != nil {
			f.writeln(fmt.Sprintf("%s%s = %s", sigil, p.Name, f.expr(p.Initializer)))
		} else {
			f.writeln(sigil + p.Name)
		}
	}
	for _, m := range v.Methods {
		sigil := ""
		if m.IsStatic {
			sigil = "@"
		}
		f.writeln(fmt.Sprintf("%s%s(%s) {", sigil, m.Name, strings.Join(m.Params, ", ")))
		f.indent++
		for _, s := range m.Body {
			f.formatStatement(s)
		}
		f.indent--
		f.writeln("}")
	}
	if v.InstanceFallback != "" {
		f.writeln("fallback " + v.InstanceFallback)
	}
	if v.StaticFallback != "" {
		f.writeln("@fallback " + v.StaticFallback)
	}
	f.indent--
	f.writeln("}")
}

// expr renders e inline (expressions never span lines).
func (f *Formatter) expr(e ast.Expr) string {
	switch v := e.(type) {
	case ast.NumberLit:
		return value.ToStringValue(value.Number(v.Value))
	case ast.StringLit:
		return strconv.Quote(v.Value)
	case ast.BoolLit:
		return value.ToStringValue(value.Boolean(value.Tri(v.Value)))
	case ast.NullLit:
		return "null"
	case ast.UndefinedLit:
		return "undefined"
	case ast.Identifier:
		return v.Name
	case ast.ArrayLit:
		parts := make([]string, len(v.Elements))
		for i, el := range v.Elements {
			parts[i] = f.expr(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case ast.BinaryExpr:
		return fmt.Sprintf("%s %s %s", f.expr(v.Left), v.Op, f.expr(v.Right))
	case ast.UnaryExpr:
		if v.Op == "not" {
			return "not " + f.expr(v.Operand)
		}
		return v.Op + f.expr(v.Operand)
	case ast.ConditionalExpr:
		s := fmt.Sprintf("%s ? %s : %s", f.expr(v.Cond), f.expr(v.Then), f.expr(v.Else))
		if v.MaybeArm != nil {
			s += " ? maybe " + f.expr(v.MaybeArm)
		}
		if v.UndefArm != nil {
			s += " ? undefined " + f.expr(v.UndefArm)
		}
		return s
	case ast.CallExpr:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = f.expr(a)
		}
		if v.Target != nil {
			return fmt.Sprintf("%s.%s(%s)", f.expr(v.Target), v.Callee, strings.Join(args, ", "))
		}
		return fmt.Sprintf("%s(%s)", v.Callee, strings.Join(args, ", "))
	case ast.IndexExpr:
		return fmt.Sprintf("%s[%s]", f.expr(v.Target), f.expr(v.Index))
	case ast.MemberExpr:
		return fmt.Sprintf("%s.%s", f.expr(v.Target), v.Name)
	case ast.PostfixUpdateExpr:
		ch := "+"
		n := v.Delta
		if n < 0 {
			ch = "-"
			n = -n
		}
		return f.expr(v.Target) + strings.Repeat(ch, n+1)
	case ast.PowerStarsExpr:
		return f.expr(v.Target) + strings.Repeat("*", v.Run)
	case ast.PrefixRootExpr:
		n := ""
		if v.N != 2 {
			n = strconv.Itoa(v.N)
		}
		return fmt.Sprintf("\\%s%s", n, f.expr(v.Operand))
	case ast.RootInfixExpr:
		return fmt.Sprintf("%s \\ %s", f.expr(v.Operand), f.expr(v.N))
	case ast.IsAExpr:
		return fmt.Sprintf("%s is a %s", f.expr(v.Target), v.ClassName)
	default:
		return fmt.Sprintf("/* unknown expr %T */", e)
	}
}

func (f *Formatter) pattern(p ast.Pattern) string {
	switch v := p.(type) {
	case ast.BindingPattern:
		if v.Default != nil {
			return fmt.Sprintf("%s = %s", v.Name, f.expr(v.Default))
		}
		return v.Name
	case ast.WildcardPattern:
		return "_"
	case ast.LiteralPattern:
		return f.expr(v.Value)
	case ast.ArrayPattern:
		parts := make([]string, len(v.Elements))
		for i, el := range v.Elements {
			parts[i] = f.pattern(el)
		}
		if v.Rest != "" {
			parts = append(parts, ".."+v.Rest)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case ast.ObjectPattern:
		parts := make([]string, len(v.Fields))
		for i, fld := range v.Fields {
			s := fld.Key + ": " + f.pattern(fld.Pattern)
			if fld.Default != nil {
				s += " = " + f.expr(fld.Default)
			}
			parts[i] = s
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("/* unknown pattern %T */", p)
	}
}
