package store

import (
	"time"

	"github.com/wisecracklang/wisecrack/internal/value"
)

// Mutability tags a declaration with its two const/var tokens. Only the
// FIRST token governs reassignability (§3): VarVar and VarConst can be
// reassigned, ConstVar and ConstConst cannot.
type Mutability int

const (
	VarVar Mutability = iota
	VarConst
	ConstVar
	ConstConst
)

// Reassignable reports whether an entry of this mutability may be
// assigned after its initial declaration.
func (m Mutability) Reassignable() bool {
	return m == VarVar || m == VarConst
}

// LifetimeKind selects how an Entry expires, if at all.
type LifetimeKind int

const (
	LifetimeNone LifetimeKind = iota
	LifetimeInfinity
	LifetimeLines
	LifetimeSeconds
)

// LifetimeInfo is the optional expiry attached to a declaration (§3).
type LifetimeInfo struct {
	Kind             LifetimeKind
	N                int
	DeclarationIndex int
	CreatedAtUTC     time.Time
}

// Expired reports whether this lifetime has elapsed as of currentStmt /
// now (§4.2 expireLifetimes).
func (l *LifetimeInfo) Expired(currentStmt int, now time.Time) bool {
	if l == nil {
		return false
	}
	switch l.Kind {
	case LifetimeLines:
		return currentStmt-l.DeclarationIndex >= l.N
	case LifetimeSeconds:
		return now.Sub(l.CreatedAtUTC) >= time.Duration(l.N)*time.Second
	default:
		return false
	}
}

// history is a per-entry version list with a movable cursor, mirrored
// by ClassModel's FieldHistory (§3).
type history struct {
	values []value.Value
	index  int
}

func newHistory(initial value.Value) history {
	return history{values: []value.Value{initial}, index: 0}
}

// record appends a new version, truncating any redo tail beyond the
// current cursor, unless the new value is identical to the value
// already at the cursor (§3 invariant: "assignment that differs... "),
// in which case it is a no-op.
func (h *history) record(v value.Value) {
	if value.Strict(h.values[h.index], v) {
		return
	}
	h.values = append(h.values[:h.index+1], v)
	h.index = len(h.values) - 1
}

// previous moves the cursor back one slot, saturating at 0.
func (h *history) previous() (value.Value, bool) {
	if h.index == 0 {
		return h.values[h.index], false
	}
	h.index--
	return h.values[h.index], true
}

// next moves the cursor forward one slot, saturating at the tail.
func (h *history) next() (value.Value, bool) {
	if h.index == len(h.values)-1 {
		return h.values[h.index], false
	}
	h.index++
	return h.values[h.index], true
}

// Entry is one declaration living in an OverloadSet (§3).
type Entry struct {
	Mutability               Mutability
	Priority                 int
	DeclaredAtStatementIndex int
	Lifetime                 *LifetimeInfo
	hist                     history
}

// CurrentValue is the value at the entry's history cursor.
func (e *Entry) CurrentValue() value.Value {
	return e.hist.values[e.hist.index]
}

// OverloadSet is every live declaration of one name in one scope (§3,
// GLOSSARY). The active entry is recomputed on every read.
type OverloadSet struct {
	Name    string
	Entries []*Entry
}

// Active implements §4.2's stable selection algorithm: highest
// priority, then highest declaration index, then list order; ties at
// the tail keep the later-list entry.
func (s *OverloadSet) Active() *Entry {
	best := s.Entries[0]
	for _, e := range s.Entries[1:] {
		if e.Priority > best.Priority {
			best = e
			continue
		}
		if e.Priority == best.Priority && e.DeclaredAtStatementIndex >= best.DeclaredAtStatementIndex {
			best = e
		}
	}
	return best
}
