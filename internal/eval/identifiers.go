package eval

import "github.com/wisecracklang/wisecrack/internal/value"

// resolveIdentifier implements §4.4 Call frames: "Identifier reads
// consult the top frame's locals before the VariableStore."
func (e *Evaluator) resolveIdentifier(name string) (value.Value, bool) {
	if f := e.currentFrame(); f != nil {
		if v, ok := f.locals[name]; ok {
			return v, true
		}
	}
	if v, ok := e.constants[name]; ok {
		return v, true
	}
	return e.Store.TryGet(name)
}

// assignIdentifier implements §4.4's "Assignments to an existing local
// update the local; otherwise they assign through the store."
func (e *Evaluator) assignIdentifier(name string, v value.Value) error {
	if f := e.currentFrame(); f != nil {
		if _, ok := f.locals[name]; ok {
			f.locals[name] = v
			return nil
		}
	}
	return e.Store.Assign(name, v, e.stmtIdx)
}
