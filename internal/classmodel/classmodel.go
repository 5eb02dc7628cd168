// Package classmodel implements ClassModel (C3): class definitions,
// lazily-materialized singleton instances, per-field history, and bound
// methods (§3, §4.3). Grounded on GlyphLang's map-based object
// expressions and the field-access resolution order in its
// evaluateFieldAccess, generalized into a real class/instance/
// bound-method model with the static-then-instance-then-fallback
// resolution order §4.3 specifies.
package classmodel

import (
	"fmt"
	"sync/atomic"

	"github.com/wisecracklang/wisecrack/internal/ast"
	"github.com/wisecracklang/wisecrack/internal/value"
)

var identitySeq uint64

func nextIdentity() uintptr {
	return uintptr(atomic.AddUint64(&identitySeq, 1))
}

// ClassDefinition is the registered shape of a `class` declaration
// (§3).
type ClassDefinition struct {
	Name             string
	Properties       []ast.PropertyDecl
	InstanceMethods  map[string]ast.MethodDecl
	StaticMethods    map[string]ast.MethodDecl
	InstanceFallback string
	StaticFallback   string

	staticFields        map[string]value.Value
	staticHistory        map[string]*fieldHistory
	staticPropertyNames  map[string]bool
	instance             *ClassInstance
}

// NewClassDefinition builds a ClassDefinition from a parsed
// ClassDeclStmt, splitting properties/methods into static and instance
// buckets.
func NewClassDefinition(decl ast.ClassDeclStmt) *ClassDefinition {
	cd := &ClassDefinition{
		Name:                decl.Name,
		Properties:          decl.Properties,
		InstanceMethods:     make(map[string]ast.MethodDecl),
		StaticMethods:       make(map[string]ast.MethodDecl),
		InstanceFallback:    decl.InstanceFallback,
		StaticFallback:      decl.StaticFallback,
		staticFields:        make(map[string]value.Value),
		staticHistory:       make(map[string]*fieldHistory),
		staticPropertyNames: make(map[string]bool),
	}
	for _, m := range decl.Methods {
		if m.IsStatic {
			cd.StaticMethods[m.Name] = m
		} else {
			cd.InstanceMethods[m.Name] = m
		}
	}
	for _, p := range decl.Properties {
		if p.IsStatic {
			cd.staticPropertyNames[p.Name] = true
		}
	}
	return cd
}

// fieldHistory mirrors store's per-variable history, versioned per
// (className, fieldName, static?) (§3).
type fieldHistory struct {
	values []value.Value
	index  int
}

func newFieldHistory(initial value.Value) *fieldHistory {
	return &fieldHistory{values: []value.Value{initial}, index: 0}
}

func (h *fieldHistory) record(v value.Value) {
	if value.Strict(h.values[h.index], v) {
		return
	}
	h.values = append(h.values[:h.index+1], v)
	h.index = len(h.values) - 1
}

func (h *fieldHistory) current() value.Value { return h.values[h.index] }

// ClassInstance is the at-most-one-per-class singleton (§3, Open
// Question (a)).
type ClassInstance struct {
	Def         *ClassDefinition
	Initialized bool
	identity    uintptr

	fields  map[string]value.Value
	history map[string]*fieldHistory
}

// ClassName implements value.ObjectRef.
func (c *ClassInstance) ClassName() string { return c.Def.Name }

// Identity implements value.ObjectRef.
func (c *ClassInstance) Identity() uintptr { return c.identity }

// BoundMethod is (target instance, method name, function definition)
// (§3).
type BoundMethod struct {
	Target *ClassInstance
	Name   string
	Decl   ast.MethodDecl
	identity uintptr
}

// ClassName / MethodName / Identity implement value.MethodRef.
func (b *BoundMethod) ClassName() string  { return b.Target.ClassName() }
func (b *BoundMethod) MethodName() string { return b.Name }
func (b *BoundMethod) Identity() uintptr  { return b.identity }

// ExprEvaluator is the callback the evaluator injects so
// ClassModel can run field initializers without classmodel importing
// eval (which itself imports classmodel) — the same DI seam GlyphLang
// uses for its SetDatabaseHandler-style hooks, repurposed here.
type ExprEvaluator interface {
	EvalExpr(e ast.Expr) (value.Value, error)
	RunConstructor(instance *ClassInstance, ctor ast.MethodDecl) error
}

// Registry owns every ClassDefinition registered in a program, and
// materializes singleton instances on first reference.
type Registry struct {
	defs map[string]*ClassDefinition
}

func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*ClassDefinition)}
}

// Register records a class declaration (§4.3).
func (r *Registry) Register(def *ClassDefinition) {
	r.defs[def.Name] = def
}

// Lookup returns the ClassDefinition for name, if registered.
func (r *Registry) Lookup(name string) (*ClassDefinition, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// Names returns every registered class name, for REPL introspection
// (`:classes`).
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	return names
}

// EnsureInstance materializes the class singleton on first reference:
// fields initialize in declaration order (Undefined -> initial value,
// recorded in history), then `constructor` runs with an implicit self
// binding named `source` (§4.3).
func (r *Registry) EnsureInstance(name string, ev ExprEvaluator) (*ClassInstance, error) {
	def, ok := r.defs[name]
	if !ok {
		return nil, fmt.Errorf("classmodel: class %q is not declared", name)
	}
	if def.instance != nil {
		return def.instance, nil
	}

	inst := &ClassInstance{
		Def:      def,
		identity: nextIdentity(),
		fields:   make(map[string]value.Value),
		history:  make(map[string]*fieldHistory),
	}
	def.instance = inst // set before running initializers: a constructor may self-reference the singleton

	for _, p := range def.Properties {
		initial := value.Undefined()
		if p.Initializer != nil {
			v, err := ev.EvalExpr(p.Initializer)
			if err != nil {
				return nil, err
			}
			initial = v
		}
		h := newFieldHistory(value.Undefined())
		h.record(initial)
		if p.IsStatic {
			def.staticFields[p.Name] = initial
			def.staticHistory[p.Name] = h
		} else {
			inst.fields[p.Name] = initial
			inst.history[p.Name] = h
		}
	}

	if ctor, ok := def.InstanceMethods["constructor"]; ok {
		if err := ev.RunConstructor(inst, ctor); err != nil {
			return nil, err
		}
	}

	return inst, nil
}

// ResolveMember implements §4.3's resolution order: static methods,
// static fields, instance methods, instance fields, instance fallback
// field, static fallback field; otherwise Undefined.
func (c *ClassInstance) ResolveMember(name string) value.Value {
	def := c.Def
	if m, ok := def.StaticMethods[name]; ok {
		return value.Method(&BoundMethod{Target: c, Name: name, Decl: m, identity: nextIdentity()})
	}
	if v, ok := def.staticFields[name]; ok {
		return v
	}
	if m, ok := def.InstanceMethods[name]; ok {
		return value.Method(&BoundMethod{Target: c, Name: name, Decl: m, identity: nextIdentity()})
	}
	if v, ok := c.fields[name]; ok {
		return v
	}
	if def.InstanceFallback != "" {
		if v, ok := c.fields[def.InstanceFallback]; ok {
			return v
		}
	}
	if def.StaticFallback != "" {
		if v, ok := def.staticFields[def.StaticFallback]; ok {
			return v
		}
	}
	return value.Undefined()
}

// AssignField resolves static vs. instance via staticPropertyNames,
// updates the value, and records field history (§4.3). It does not
// publish the mutation event — the evaluator does that after a
// successful assign (§5).
func (c *ClassInstance) AssignField(name string, v value.Value) {
	def := c.Def
	if def.staticPropertyNames[name] {
		def.staticFields[name] = v
		if h, ok := def.staticHistory[name]; ok {
			h.record(v)
		} else {
			def.staticHistory[name] = newFieldHistory(v)
		}
		return
	}
	c.fields[name] = v
	if h, ok := c.history[name]; ok {
		h.record(v)
	} else {
		c.history[name] = newFieldHistory(v)
	}
}

// FieldHistory returns the version list and cursor index for an
// instance field, for `:history` REPL introspection (§3 FieldHistory).
func (c *ClassInstance) FieldHistory(name string) ([]value.Value, int, bool) {
	h, ok := c.history[name]
	if !ok {
		return nil, 0, false
	}
	return h.values, h.index, true
}
