// Package store implements the VariableStore (C2): scoped overload sets
// with priority selection, wall-clock/line-count lifetimes, and a
// per-variable history cursor (§3, §4.2). Grounded on GlyphLang's
// Environment (scope stack of name->value maps), generalized to
// overload sets and history.
package store

import (
	"fmt"
	"time"

	"github.com/wisecracklang/wisecrack/internal/host"
	"github.com/wisecracklang/wisecrack/internal/value"
)

type scope struct {
	vars map[string]*OverloadSet
}

func newScope() *scope {
	return &scope{vars: make(map[string]*OverloadSet)}
}

// VariableStore is the scope stack plus the injected clock lifetimes
// read from (Open Question (b)).
type VariableStore struct {
	scopes []*scope
	clock  host.Clock
}

// New creates a VariableStore with a single global scope.
func New(clock host.Clock) *VariableStore {
	if clock == nil {
		clock = host.SystemClock{}
	}
	return &VariableStore{scopes: []*scope{newScope()}, clock: clock}
}

// PushScope opens a child scope (function call, block, pattern match).
func (s *VariableStore) PushScope() {
	s.scopes = append(s.scopes, newScope())
}

// PopScope closes the innermost scope. Popping the global scope is a
// programmer error in the evaluator, not a user-facing one, since the
// evaluator always balances Push/Pop.
func (s *VariableStore) PopScope() error {
	if len(s.scopes) <= 1 {
		return fmt.Errorf("store: cannot pop the global scope")
	}
	s.scopes = s.scopes[:len(s.scopes)-1]
	return nil
}

func (s *VariableStore) current() *scope {
	return s.scopes[len(s.scopes)-1]
}

// Declare appends a new Entry to name's OverloadSet in the current
// scope, creating the set if this is the first declaration of name
// there (§4.2 declare).
func (s *VariableStore) Declare(name string, mutability Mutability, val value.Value, priority int, lifetime *LifetimeInfo, stmtIdx int) {
	if priority < 1 {
		priority = 1
	}
	cur := s.current()
	set, ok := cur.vars[name]
	if !ok {
		set = &OverloadSet{Name: name}
		cur.vars[name] = set
	}
	entry := &Entry{
		Mutability:               mutability,
		Priority:                 priority,
		DeclaredAtStatementIndex: stmtIdx,
		Lifetime:                 lifetime,
		hist:                     newHistory(val),
	}
	set.Entries = append(set.Entries, entry)
}

// lookup walks outward from the innermost scope and returns the first
// OverloadSet found for name.
func (s *VariableStore) lookup(name string) *OverloadSet {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if set, ok := s.scopes[i].vars[name]; ok {
			return set
		}
	}
	return nil
}

// TryGet reads name's active entry's current value (§4.2 tryGet).
func (s *VariableStore) TryGet(name string) (value.Value, bool) {
	set := s.lookup(name)
	if set == nil {
		return value.Value{}, false
	}
	return set.Active().CurrentValue(), true
}

// Assign implements §4.2 assign: outward lookup, const-flavor rejection,
// history recording on the active entry.
func (s *VariableStore) Assign(name string, val value.Value, stmtIdx int) error {
	set := s.lookup(name)
	if set == nil {
		return fmt.Errorf("store: assignment to undefined variable %q", name)
	}
	active := set.Active()
	if !active.Mutability.Reassignable() {
		return fmt.Errorf("store: %q is not reassignable", name)
	}
	active.hist.record(val)
	return nil
}

// Delete removes the whole OverloadSet for name from the first scope it
// is found in (§4.2 delete — deletion of a binding, not a value).
func (s *VariableStore) Delete(name string) error {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if _, ok := s.scopes[i].vars[name]; ok {
			delete(s.scopes[i].vars, name)
			return nil
		}
	}
	return fmt.Errorf("store: cannot delete undefined variable %q", name)
}

// ExpireLifetimes sweeps every scope, removing entries whose lifetime
// has elapsed and any OverloadSet left with no entries (§4.2). It
// collects expirations before mutating so it is safe under iteration.
func (s *VariableStore) ExpireLifetimes(currentStmtIdx int, now time.Time) {
	for _, sc := range s.scopes {
		var emptyNames []string
		for name, set := range sc.vars {
			kept := set.Entries[:0:0]
			for _, e := range set.Entries {
				if !e.Lifetime.Expired(currentStmtIdx, now) {
					kept = append(kept, e)
				}
			}
			set.Entries = kept
			if len(set.Entries) == 0 {
				emptyNames = append(emptyNames, name)
			}
		}
		for _, name := range emptyNames {
			delete(sc.vars, name)
		}
	}
}

// TryPrevious moves name's active entry's history cursor back one slot
// (§4.2 tryPrevious). It does not append to history.
func (s *VariableStore) TryPrevious(name string) (value.Value, bool, error) {
	set := s.lookup(name)
	if set == nil {
		return value.Value{}, false, fmt.Errorf("store: %q is undefined", name)
	}
	v, changed := set.Active().hist.previous()
	return v, changed, nil
}

// TryNext moves name's active entry's history cursor forward one slot
// (§4.2 tryNext).
func (s *VariableStore) TryNext(name string) (value.Value, bool, error) {
	set := s.lookup(name)
	if set == nil {
		return value.Value{}, false, fmt.Errorf("store: %q is undefined", name)
	}
	v, changed := set.Active().hist.next()
	return v, changed, nil
}

// TryGetHistory returns the active entry's full version list and
// cursor index (§4.2 tryGetHistory), used by `?`-statement history
// traces (§7).
func (s *VariableStore) TryGetHistory(name string) ([]value.Value, int, bool) {
	set := s.lookup(name)
	if set == nil {
		return nil, 0, false
	}
	h := set.Active().hist
	return h.values, h.index, true
}

// ActiveEntryForTest exposes the selected entry directly, for tests
// probing selection monotonicity (§8 property 4) without a parser.
func (s *VariableStore) ActiveEntryForTest(name string) *Entry {
	set := s.lookup(name)
	if set == nil {
		return nil
	}
	return set.Active()
}

// Names returns every variable name visible from the current scope
// (innermost first, no duplicates), for REPL introspection (`:vars`).
func (s *VariableStore) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for i := len(s.scopes) - 1; i >= 0; i-- {
		for name := range s.scopes[i].vars {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}
